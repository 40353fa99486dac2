// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"database/sql"
	"time"

	"github.com/taibuivan/checkmate/internal/platform/dberr"
	"github.com/taibuivan/checkmate/internal/rules"
	"github.com/taibuivan/checkmate/pkg/pagination"
)

// SQLiteRepository implements [Repository] on the embedded SQLite store.
// Timestamps are stored as Unix milliseconds.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a repository bound to db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func sqliteStamp(at time.Time) any { return at.UTC().UnixMilli() }

func fromMillis(millis int64) time.Time { return time.UnixMilli(millis).UTC() }

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// # Sessions

func (repository *SQLiteRepository) CreateSession(context context.Context, session *Session) error {
	metadata, err := encodeMetadata(session.Metadata)
	if err != nil {
		return err
	}

	var metadataArg any
	if metadata != nil {
		metadataArg = string(metadata)
	}

	_, err = repository.db.ExecContext(context, insertSessionSQL, sessionArgs(session, metadataArg, sqliteStamp)...)
	if err != nil {
		return sessionInsertError(err)
	}
	return nil
}

func (repository *SQLiteRepository) FindSessionByID(context context.Context, id string) (*Session, error) {
	session, err := scanSQLiteSession(repository.db.QueryRowContext(context, selectSessionByIDSQL, id))
	if err != nil {
		return nil, sessionLookupError(err, "game_find_session")
	}
	return session, nil
}

func (repository *SQLiteRepository) FindSessionByJoinCode(context context.Context, joinCode string) (*Session, error) {
	session, err := scanSQLiteSession(repository.db.QueryRowContext(context, selectSessionByCodeSQL, joinCode))
	if err != nil {
		return nil, sessionLookupError(err, "game_find_session_by_code")
	}
	return session, nil
}

func (repository *SQLiteRepository) AttachOpponent(context context.Context, id string, opponent Participant, color rules.Color, at time.Time) (*Session, error) {
	row := repository.db.QueryRowContext(context, attachOpponentSQL,
		opponent.ID, string(opponent.Kind), string(color), sqliteStamp(at), id)

	session, err := scanSQLiteSession(row)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrGameAlreadyFull
		}
		return nil, dberr.Wrap(err, "game_attach_opponent")
	}
	return session, nil
}

func (repository *SQLiteRepository) SoftDeleteSession(context context.Context, id string, at time.Time) (int64, error) {
	result, err := repository.db.ExecContext(context, softDeleteSessionSQL, sqliteStamp(at), id)
	if err != nil {
		return 0, dberr.Wrap(err, "game_delete_session")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, dberr.Wrap(err, "game_delete_session")
	}
	return affected, nil
}

func (repository *SQLiteRepository) ListSessionsByParticipant(context context.Context, playerID string, page pagination.Params) ([]*Session, int, error) {
	var total int
	if err := repository.db.QueryRowContext(context, countSessionsSQL, playerID, playerID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "game_count_sessions")
	}

	rows, err := repository.db.QueryContext(context, listSessionsSQL, playerID, playerID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "game_list_sessions")
	}
	defer rows.Close()

	sessions := make([]*Session, 0, page.Limit)
	for rows.Next() {
		session, err := scanSQLiteSession(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "game_scan_session")
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "game_list_sessions")
	}

	return sessions, total, nil
}

// # Moves

func (repository *SQLiteRepository) CreateMove(context context.Context, move *Move) error {
	if _, err := repository.db.ExecContext(context, insertMoveSQL, moveArgs(move, sqliteStamp)...); err != nil {
		return moveInsertError(err)
	}
	return nil
}

func (repository *SQLiteRepository) ListMoves(context context.Context, sessionID string) ([]*Move, error) {
	rows, err := repository.db.QueryContext(context, listMovesSQL, sessionID)
	if err != nil {
		return nil, dberr.Wrap(err, "game_list_moves")
	}
	defer rows.Close()

	moves := make([]*Move, 0)
	for rows.Next() {
		var (
			row       moveRow
			createdAt int64
		)
		if err := rows.Scan(row.targets(&createdAt)...); err != nil {
			return nil, dberr.Wrap(err, "game_scan_move")
		}
		moves = append(moves, row.toMove(fromMillis(createdAt)))
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "game_list_moves")
	}

	return moves, nil
}

func scanSQLiteSession(row rowScanner) (*Session, error) {
	var (
		scanned              sessionRow
		createdAt, updatedAt int64
	)
	if err := row.Scan(scanned.targets(&createdAt, &updatedAt)...); err != nil {
		return nil, err
	}
	return scanned.toSession(fromMillis(createdAt), fromMillis(updatedAt))
}
