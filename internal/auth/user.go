// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth issues the identities that play games.
//
// # Identities
//
// Two kinds of caller may hold a seat:
//   - Account: a registered user, stored in the relational store.
//   - Guest: an ephemeral identity kept in Redis until its TTL lapses.
//
// Both receive the same RS256 access token; the 'knd' claim tells them apart and
// the 'uid' claim becomes the player ID recorded on game sessions.
package auth

import (
	"time"

	"github.com/taibuivan/checkmate/internal/platform/sec"
)

// Account represents a registered player.
//
// # Rules
//   - Username is stored NFC-normalized and lower-cased, and is unique.
//   - Email is optional; when present it is unique.
//   - PasswordHash never leaves the service layer.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	IsDeleted    bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Guest is an unauthenticated player identity issued with a TTL.
type Guest struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity is who a token speaks for.
type Identity struct {
	ID       string           `json:"id"`
	Kind     sec.IdentityKind `json:"kind"`
	Username string           `json:"username,omitempty"`
}

// TokenGrant is the access token handed to a client.
type TokenGrant struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Identity    Identity  `json:"identity"`
}

// IdentityOf returns the token identity of a registered account.
func (account *Account) IdentityOf() Identity {
	return Identity{ID: account.ID, Kind: sec.KindUser, Username: account.Username}
}

// IdentityOf returns the token identity of a guest.
func (guest *Guest) IdentityOf() Identity {
	return Identity{ID: guest.ID, Kind: sec.KindGuest}
}

// withoutSecrets returns a copy safe to hand to callers.
func (account *Account) withoutSecrets() *Account {
	clone := *account
	clone.PasswordHash = ""
	return &clone
}
