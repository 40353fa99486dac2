// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/checkmate/internal/platform/database/schema"
	"github.com/taibuivan/checkmate/internal/platform/dberr"
	"github.com/taibuivan/checkmate/internal/rules"
	"github.com/taibuivan/checkmate/pkg/pagination"
)

// PostgresRepository implements [Repository] on a pgx pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a repository bound to pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func postgresStamp(at time.Time) any { return at.UTC() }

// # Sessions

func (repository *PostgresRepository) CreateSession(context context.Context, session *Session) error {
	metadata, err := encodeMetadata(session.Metadata)
	if err != nil {
		return err
	}

	// JSONB takes the raw document; a nil slice must reach the driver as NULL
	var metadataArg any
	if metadata != nil {
		metadataArg = metadata
	}

	_, err = repository.db.Exec(context, schema.Rebind(insertSessionSQL), sessionArgs(session, metadataArg, postgresStamp)...)
	if err != nil {
		return sessionInsertError(err)
	}
	return nil
}

func (repository *PostgresRepository) FindSessionByID(context context.Context, id string) (*Session, error) {
	session, err := scanPostgresSession(repository.db.QueryRow(context, schema.Rebind(selectSessionByIDSQL), id))
	if err != nil {
		return nil, sessionLookupError(err, "game_find_session")
	}
	return session, nil
}

func (repository *PostgresRepository) FindSessionByJoinCode(context context.Context, joinCode string) (*Session, error) {
	session, err := scanPostgresSession(repository.db.QueryRow(context, schema.Rebind(selectSessionByCodeSQL), joinCode))
	if err != nil {
		return nil, sessionLookupError(err, "game_find_session_by_code")
	}
	return session, nil
}

func (repository *PostgresRepository) AttachOpponent(context context.Context, id string, opponent Participant, color rules.Color, at time.Time) (*Session, error) {
	row := repository.db.QueryRow(context, schema.Rebind(attachOpponentSQL),
		opponent.ID, string(opponent.Kind), string(color), at.UTC(), id)

	session, err := scanPostgresSession(row)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrGameAlreadyFull
		}
		return nil, dberr.Wrap(err, "game_attach_opponent")
	}
	return session, nil
}

func (repository *PostgresRepository) SoftDeleteSession(context context.Context, id string, at time.Time) (int64, error) {
	tag, err := repository.db.Exec(context, schema.Rebind(softDeleteSessionSQL), at.UTC(), id)
	if err != nil {
		return 0, dberr.Wrap(err, "game_delete_session")
	}
	return tag.RowsAffected(), nil
}

func (repository *PostgresRepository) ListSessionsByParticipant(context context.Context, playerID string, page pagination.Params) ([]*Session, int, error) {
	var total int
	if err := repository.db.QueryRow(context, schema.Rebind(countSessionsSQL), playerID, playerID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "game_count_sessions")
	}

	rows, err := repository.db.Query(context, schema.Rebind(listSessionsSQL), playerID, playerID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "game_list_sessions")
	}
	defer rows.Close()

	sessions := make([]*Session, 0, page.Limit)
	for rows.Next() {
		session, err := scanPostgresSession(rows)
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

func (repository *PostgresRepository) CreateMove(context context.Context, move *Move) error {
	if _, err := repository.db.Exec(context, schema.Rebind(insertMoveSQL), moveArgs(move, postgresStamp)...); err != nil {
		return moveInsertError(err)
	}
	return nil
}

func (repository *PostgresRepository) ListMoves(context context.Context, sessionID string) ([]*Move, error) {
	rows, err := repository.db.Query(context, schema.Rebind(listMovesSQL), sessionID)
	if err != nil {
		return nil, dberr.Wrap(err, "game_list_moves")
	}
	defer rows.Close()

	moves := make([]*Move, 0)
	for rows.Next() {
		var (
			row       moveRow
			createdAt time.Time
		)
		if err := rows.Scan(row.targets(&createdAt)...); err != nil {
			return nil, dberr.Wrap(err, "game_scan_move")
		}
		moves = append(moves, row.toMove(createdAt))
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "game_list_moves")
	}

	return moves, nil
}

func scanPostgresSession(row pgx.Row) (*Session, error) {
	var (
		scanned              sessionRow
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(scanned.targets(&createdAt, &updatedAt)...); err != nil {
		return nil, err
	}
	return scanned.toSession(createdAt, updatedAt)
}
