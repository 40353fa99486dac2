// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain-text password using bcrypt at the given cost.
// Costs outside bcrypt's range fall back to [bcrypt.DefaultCost].
func HashPassword(plainTextPassword string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// dummyHash is compared against when an account does not exist so that
// unknown usernames cost the same bcrypt work as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("checkmate-dummy-password"), bcrypt.MinCost)

// BurnPasswordCheck performs a throwaway bcrypt comparison.
func BurnPasswordCheck(plainTextPassword string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plainTextPassword))
}
