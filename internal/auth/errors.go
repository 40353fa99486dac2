// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/taibuivan/checkmate/internal/platform/apperr"
)

var (
	ErrUsernameTaken      = apperr.New("USERNAME_TAKEN", http.StatusConflict, "Username is already taken")
	ErrEmailTaken         = apperr.New("EMAIL_TAKEN", http.StatusConflict, "Email is already registered")
	ErrInvalidCredentials = apperr.New("INVALID_CREDENTIALS", http.StatusUnauthorized, "Invalid username or password")
	ErrAccountNotFound    = apperr.New("ACCOUNT_NOT_FOUND", http.StatusNotFound, "Account not found")
	ErrGuestNotFound      = apperr.New("GUEST_NOT_FOUND", http.StatusUnauthorized, "Guest session has expired")
)
