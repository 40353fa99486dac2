// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// Both storage backends are understood: PostgreSQL through pgx ([*pgconn.PgError]
// with SQLSTATE codes from pgerrcode) and the embedded SQLite driver (modernc).
// Store adapters use [IsUniqueViolation] to translate the constraints they own
// into domain errors, and [Wrap] for everything else.
package dberr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/taibuivan/checkmate/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

const sqliteUniquePrefix = "unique constraint failed:"

// IsNoRows reports whether err means the query matched nothing, for either driver.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// UniqueViolation reports whether err is a unique-constraint violation.
//
// The returned identifier is the constraint name for PostgreSQL
// (e.g. "moves_session_id_move_number_key") and the column list reported by
// SQLite (e.g. "moves.session_id, moves.move_number").
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	// 1. PostgreSQL (SQLSTATE 23505)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgerrcode.UniqueViolation {
			return pgErr.ConstraintName, true
		}
		return "", false
	}

	// 2. SQLite extended result codes
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return sqliteColumns(err.Error()), true
		}
		return "", false
	}

	// 3. Message fallback for wrapped driver errors
	message := strings.ToLower(err.Error())
	if strings.Contains(message, sqliteUniquePrefix) {
		return sqliteColumns(message), true
	}
	return "", false
}

// IsUniqueViolation reports whether err violates one of the given constraints.
// Each entry may be a PostgreSQL constraint name or a SQLite "table.column" fragment.
func IsUniqueViolation(err error, constraints ...string) bool {
	identifier, ok := UniqueViolation(err)
	if !ok {
		return false
	}
	identifier = strings.ToLower(identifier)
	for _, constraint := range constraints {
		if strings.Contains(identifier, strings.ToLower(constraint)) {
			return true
		}
	}
	return false
}

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if IsNoRows(err) {
		return ErrNotFound
	}

	// 2. Unclaimed constraint violations
	if _, ok := UniqueViolation(err); ok {
		return apperr.Conflict("Resource already exists").WithCause(err)
	}

	// 3. Everything else is an internal failure
	return apperr.Internal(fmt.Errorf("%s_failed: %w", action, err))
}

func sqliteColumns(message string) string {
	lower := strings.ToLower(message)
	index := strings.Index(lower, sqliteUniquePrefix)
	if index == -1 {
		return ""
	}
	columns := strings.TrimSpace(lower[index+len(sqliteUniquePrefix):])
	if paren := strings.LastIndex(columns, " ("); paren != -1 {
		columns = columns[:paren]
	}
	return columns
}
