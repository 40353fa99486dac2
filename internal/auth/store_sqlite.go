// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/taibuivan/checkmate/internal/platform/dberr"
)

// SQLiteAccountRepository implements [AccountRepository] on the embedded
// SQLite store. Timestamps are stored as Unix milliseconds.
type SQLiteAccountRepository struct {
	db *sql.DB
}

// NewSQLiteAccountRepository returns a repository bound to db.
func NewSQLiteAccountRepository(db *sql.DB) *SQLiteAccountRepository {
	return &SQLiteAccountRepository{db: db}
}

func sqliteStamp(at time.Time) any { return at.UTC().UnixMilli() }

func (repository *SQLiteAccountRepository) CreateAccount(context context.Context, account *Account) error {
	_, err := repository.db.ExecContext(context, insertAccountSQL, accountArgs(account, sqliteStamp)...)
	if err != nil {
		return accountInsertError(err)
	}
	return nil
}

func (repository *SQLiteAccountRepository) FindAccountByID(context context.Context, id string) (*Account, error) {
	account, err := scanSQLiteAccount(repository.db.QueryRowContext(context, selectAccountByIDSQL, id))
	if err != nil {
		return nil, accountLookupError(err, "auth_find_account")
	}
	return account, nil
}

func (repository *SQLiteAccountRepository) FindAccountByUsername(context context.Context, username string) (*Account, error) {
	account, err := scanSQLiteAccount(repository.db.QueryRowContext(context, selectAccountByUsernameSQL, username))
	if err != nil {
		return nil, accountLookupError(err, "auth_find_account_by_username")
	}
	return account, nil
}

func (repository *SQLiteAccountRepository) SoftDeleteAccount(context context.Context, id string, at time.Time) (int64, error) {
	result, err := repository.db.ExecContext(context, softDeleteAccountSQL, sqliteStamp(at), id)
	if err != nil {
		return 0, dberr.Wrap(err, "auth_delete_account")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, dberr.Wrap(err, "auth_delete_account")
	}
	return affected, nil
}

func scanSQLiteAccount(row *sql.Row) (*Account, error) {
	var (
		record    accountRow
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(record.targets(&createdAt, &updatedAt)...); err != nil {
		return nil, err
	}
	return record.toAccount(time.UnixMilli(createdAt), time.UnixMilli(updatedAt)), nil
}
