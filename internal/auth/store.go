// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/checkmate/internal/platform/database/schema"
	"github.com/taibuivan/checkmate/internal/platform/dberr"
)

// AccountRepository defines the data access contract for registered accounts.
//
// # Implementations
//
// [PostgresAccountRepository] in production, [SQLiteAccountRepository] for the
// embedded store and tests.
type AccountRepository interface {
	// CreateAccount persists a new account.
	//
	// Returns [ErrUsernameTaken] or [ErrEmailTaken] when a unique constraint fails.
	CreateAccount(ctx context.Context, account *Account) error

	// FindAccountByID returns a live account, or [ErrAccountNotFound].
	FindAccountByID(ctx context.Context, id string) (*Account, error)

	// FindAccountByUsername returns a live account by its normalized username,
	// or [ErrAccountNotFound].
	FindAccountByUsername(ctx context.Context, username string) (*Account, error)

	// SoftDeleteAccount marks the account deleted and reports how many rows changed.
	SoftDeleteAccount(ctx context.Context, id string, at time.Time) (int64, error)
}

// GuestRepository stores ephemeral guest identities.
type GuestRepository interface {
	// SaveGuest stores the guest until ttl elapses.
	SaveGuest(ctx context.Context, guest *Guest, ttl time.Duration) error

	// FindGuest returns a guest that has not expired, or [ErrGuestNotFound].
	FindGuest(ctx context.Context, id string) (*Guest, error)
}

// # Shared SQL

var (
	accountColumns = schema.List(schema.AuthAccount.Columns()...)

	insertAccountSQL = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		schema.AuthAccount.Table, accountColumns, schema.Placeholders(len(schema.AuthAccount.Columns())))

	selectAccountByIDSQL = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? AND NOT %s`,
		accountColumns, schema.AuthAccount.Table, schema.AuthAccount.ID, schema.AuthAccount.IsDeleted)

	selectAccountByUsernameSQL = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? AND NOT %s`,
		accountColumns, schema.AuthAccount.Table, schema.AuthAccount.Username, schema.AuthAccount.IsDeleted)

	softDeleteAccountSQL = fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = ? WHERE %s = ? AND NOT %s`,
		schema.AuthAccount.Table, schema.AuthAccount.IsDeleted, schema.AuthAccount.UpdatedAt,
		schema.AuthAccount.ID, schema.AuthAccount.IsDeleted)
)

type accountRow struct {
	ID           string
	Username     string
	Email        *string
	PasswordHash string
	IsDeleted    bool
}

func (row *accountRow) targets(createdAt, updatedAt any) []any {
	return []any{&row.ID, &row.Username, &row.Email, &row.PasswordHash, &row.IsDeleted, createdAt, updatedAt}
}

func (row *accountRow) toAccount(createdAt, updatedAt time.Time) *Account {
	return &Account{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		IsDeleted:    row.IsDeleted,
		CreatedAt:    createdAt.UTC(),
		UpdatedAt:    updatedAt.UTC(),
	}
}

func accountArgs(account *Account, stamp func(time.Time) any) []any {
	return []any{
		account.ID, account.Username, account.Email, account.PasswordHash,
		account.IsDeleted, stamp(account.CreatedAt), stamp(account.UpdatedAt),
	}
}

// # Error Mapping

func accountInsertError(err error) error {
	switch {
	case dberr.IsUniqueViolation(err, schema.AuthAccount.UsernameKey, schema.AuthAccount.UsernameColumn):
		return ErrUsernameTaken.WithCause(err)
	case dberr.IsUniqueViolation(err, schema.AuthAccount.EmailKey, schema.AuthAccount.EmailColumn):
		return ErrEmailTaken.WithCause(err)
	}
	return dberr.Wrap(err, "auth_create_account")
}

func accountLookupError(err error, action string) error {
	if dberr.IsNoRows(err) {
		return ErrAccountNotFound
	}
	return dberr.Wrap(err, action)
}
