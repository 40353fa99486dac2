// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// AuthAccountTable represents the 'accounts' table.
type AuthAccountTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsDeleted    string
	CreatedAt    string
	UpdatedAt    string

	// Constraint names (PostgreSQL) and column fragments (SQLite).
	UsernameKey    string
	UsernameColumn string
	EmailKey       string
	EmailColumn    string
}

// AuthAccount is the schema definition for accounts.
var AuthAccount = AuthAccountTable{
	Table:          "accounts",
	ID:             "id",
	Username:       "username",
	Email:          "email",
	PasswordHash:   "password_hash",
	IsDeleted:      "is_deleted",
	CreatedAt:      "created_at",
	UpdatedAt:      "updated_at",
	UsernameKey:    "accounts_username_key",
	UsernameColumn: "accounts.username",
	EmailKey:       "accounts_email_key",
	EmailColumn:    "accounts.email",
}

// Columns returns the columns in scan order.
func (t AuthAccountTable) Columns() []string {
	return []string{t.ID, t.Username, t.Email, t.PasswordHash, t.IsDeleted, t.CreatedAt, t.UpdatedAt}
}
