// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// GenerateSecureCode returns length characters drawn uniformly from alphabet
// using the operating system's CSPRNG.
func GenerateSecureCode(length int, alphabet string) (string, error) {
	if length <= 0 || alphabet == "" {
		return "", errors.New("sec: code length and alphabet are required")
	}

	limit := big.NewInt(int64(len(alphabet)))
	code := make([]byte, length)
	for i := range code {
		index, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
		}
		code[i] = alphabet[index.Int64()]
	}
	return string(code), nil
}
