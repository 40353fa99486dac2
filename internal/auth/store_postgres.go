// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/checkmate/internal/platform/database/schema"
	"github.com/taibuivan/checkmate/internal/platform/dberr"
)

// PostgresAccountRepository implements [AccountRepository] on a pgx pool.
type PostgresAccountRepository struct {
	db *pgxpool.Pool
}

// NewPostgresAccountRepository returns a repository bound to pool.
func NewPostgresAccountRepository(db *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func postgresStamp(at time.Time) any { return at.UTC() }

func (repository *PostgresAccountRepository) CreateAccount(context context.Context, account *Account) error {
	_, err := repository.db.Exec(context, schema.Rebind(insertAccountSQL), accountArgs(account, postgresStamp)...)
	if err != nil {
		return accountInsertError(err)
	}
	return nil
}

func (repository *PostgresAccountRepository) FindAccountByID(context context.Context, id string) (*Account, error) {
	account, err := scanPostgresAccount(repository.db.QueryRow(context, schema.Rebind(selectAccountByIDSQL), id))
	if err != nil {
		return nil, accountLookupError(err, "auth_find_account")
	}
	return account, nil
}

func (repository *PostgresAccountRepository) FindAccountByUsername(context context.Context, username string) (*Account, error) {
	account, err := scanPostgresAccount(repository.db.QueryRow(context, schema.Rebind(selectAccountByUsernameSQL), username))
	if err != nil {
		return nil, accountLookupError(err, "auth_find_account_by_username")
	}
	return account, nil
}

func (repository *PostgresAccountRepository) SoftDeleteAccount(context context.Context, id string, at time.Time) (int64, error) {
	tag, err := repository.db.Exec(context, schema.Rebind(softDeleteAccountSQL), at.UTC(), id)
	if err != nil {
		return 0, dberr.Wrap(err, "auth_delete_account")
	}
	return tag.RowsAffected(), nil
}

func scanPostgresAccount(row pgx.Row) (*Account, error) {
	var (
		record    accountRow
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(record.targets(&createdAt, &updatedAt)...); err != nil {
		return nil, err
	}
	return record.toAccount(createdAt, updatedAt), nil
}
