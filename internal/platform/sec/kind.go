// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Identity Kinds

// IdentityKind tells a registered account apart from an ephemeral guest.
type IdentityKind string

const (
	// Registered account backed by the accounts table
	KindUser IdentityKind = "user"

	// Ephemeral identity held in Redis with a TTL
	KindGuest IdentityKind = "guest"
)

// Valid reports whether k is one of the known identity kinds.
func (k IdentityKind) Valid() bool {
	return k == KindUser || k == KindGuest
}
