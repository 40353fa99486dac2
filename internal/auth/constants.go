// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// DefaultTokenTTL is used when the service is built without [WithTokenTTL].
	DefaultTokenTTL = 24 * time.Hour

	// DefaultGuestTTL is used when the service is built without [WithGuestTTL].
	DefaultGuestTTL = 24 * time.Hour

	UsernameMinLength = 3
	UsernameMaxLength = 32

	// bcrypt ignores everything past 72 bytes.
	PasswordMinLength = 8
	PasswordMaxLength = 72

	EmailMaxLength = 254
)

// # Field Names

const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)
