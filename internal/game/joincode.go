// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"strings"

	"github.com/taibuivan/checkmate/internal/platform/constants"
	"github.com/taibuivan/checkmate/internal/platform/sec"
)

// CodeGenerator produces candidate join codes.
type CodeGenerator func() (string, error)

// NewJoinCode returns a random code of uppercase letters and digits.
func NewJoinCode() (string, error) {
	return sec.GenerateSecureCode(constants.JoinCodeLength, constants.JoinCodeAlphabet)
}

// NormalizeJoinCode makes lookups case-insensitive.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
