// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/taibuivan/checkmate/internal/platform/database/schema"
	"github.com/taibuivan/checkmate/internal/platform/dberr"
	"github.com/taibuivan/checkmate/internal/rules"
	"github.com/taibuivan/checkmate/pkg/pagination"
)

// SessionRepository persists session records.
//
// FindSessionByID returns soft-deleted sessions too; the service decides what a
// deleted session means. Every other read ignores them.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *Session) error
	FindSessionByID(ctx context.Context, id string) (*Session, error)
	FindSessionByJoinCode(ctx context.Context, joinCode string) (*Session, error)

	// AttachOpponent fills the empty seat in one conditional statement and
	// returns ErrGameAlreadyFull when the seat was taken (or the session deleted).
	AttachOpponent(ctx context.Context, id string, opponent Participant, color rules.Color, at time.Time) (*Session, error)

	SoftDeleteSession(ctx context.Context, id string, at time.Time) (int64, error)
	ListSessionsByParticipant(ctx context.Context, playerID string, page pagination.Params) ([]*Session, int, error)
}

// MoveRepository persists the append-only move log.
type MoveRepository interface {
	// CreateMove returns ErrDuplicateMove when the move number is already taken.
	CreateMove(ctx context.Context, move *Move) error
	ListMoves(ctx context.Context, sessionID string) ([]*Move, error)
}

// Repository is the full store contract the service depends on.
type Repository interface {
	SessionRepository
	MoveRepository
}

// # Shared SQL
//
// Both adapters run the same statements; PostgreSQL runs them through
// [schema.Rebind].

var (
	sessionColumns = schema.List(schema.GameSession.Columns()...)
	moveColumns    = schema.List(schema.GameMove.Columns()...)

	insertSessionSQL = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		schema.GameSession.Table, sessionColumns, schema.Placeholders(len(schema.GameSession.Columns())))

	selectSessionByIDSQL = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		sessionColumns, schema.GameSession.Table, schema.GameSession.ID)

	selectSessionByCodeSQL = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? AND NOT %s`,
		sessionColumns, schema.GameSession.Table, schema.GameSession.JoinCode, schema.GameSession.IsDeleted)

	attachOpponentSQL = fmt.Sprintf(`
		UPDATE %s SET %s = ?, %s = ?, %s = ?, %s = ?
		WHERE %s = ? AND %s IS NULL AND NOT %s
		RETURNING %s`,
		schema.GameSession.Table,
		schema.GameSession.OpponentID, schema.GameSession.OpponentKind, schema.GameSession.OpponentColor, schema.GameSession.UpdatedAt,
		schema.GameSession.ID, schema.GameSession.OpponentID, schema.GameSession.IsDeleted,
		sessionColumns)

	softDeleteSessionSQL = fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = ? WHERE %s = ? AND NOT %s`,
		schema.GameSession.Table, schema.GameSession.IsDeleted, schema.GameSession.UpdatedAt,
		schema.GameSession.ID, schema.GameSession.IsDeleted)

	participantFilter = fmt.Sprintf(`(%s = ? OR %s = ?) AND NOT %s`,
		schema.GameSession.OwnerID, schema.GameSession.OpponentID, schema.GameSession.IsDeleted)

	countSessionsSQL = fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`,
		schema.GameSession.Table, participantFilter)

	listSessionsSQL = fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s DESC, %s DESC LIMIT ? OFFSET ?`,
		sessionColumns, schema.GameSession.Table, participantFilter,
		schema.GameSession.CreatedAt, schema.GameSession.ID)

	insertMoveSQL = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		schema.GameMove.Table, moveColumns, schema.Placeholders(len(schema.GameMove.Columns())))

	listMovesSQL = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY %s ASC`,
		moveColumns, schema.GameMove.Table, schema.GameMove.SessionID, schema.GameMove.MoveNumber)
)

// # Row Mapping

// sessionRow is the driver-neutral scan target for a sessions row. Timestamps
// are scanned by each adapter because the two stores encode them differently.
type sessionRow struct {
	ID            string
	Mode          string
	OwnerID       string
	OwnerKind     string
	OwnerColor    string
	OpponentID    *string
	OpponentKind  *string
	OpponentColor *string
	JoinCode      *string
	Metadata      []byte
	IsDeleted     bool
}

func (row *sessionRow) targets(createdAt, updatedAt any) []any {
	return []any{
		&row.ID, &row.Mode, &row.OwnerID, &row.OwnerKind, &row.OwnerColor,
		&row.OpponentID, &row.OpponentKind, &row.OpponentColor,
		&row.JoinCode, &row.Metadata, &row.IsDeleted, createdAt, updatedAt,
	}
}

func (row *sessionRow) toSession(createdAt, updatedAt time.Time) (*Session, error) {
	session := &Session{
		ID:         row.ID,
		Mode:       Mode(row.Mode),
		OwnerID:    row.OwnerID,
		OwnerKind:  Kind(row.OwnerKind),
		OwnerColor: rules.Color(row.OwnerColor),
		OpponentID: row.OpponentID,
		JoinCode:   row.JoinCode,
		IsDeleted:  row.IsDeleted,
		CreatedAt:  createdAt.UTC(),
		UpdatedAt:  updatedAt.UTC(),
	}
	if row.OpponentKind != nil {
		kind := Kind(*row.OpponentKind)
		session.OpponentKind = &kind
	}
	if row.OpponentColor != nil {
		color := rules.Color(*row.OpponentColor)
		session.OpponentColor = &color
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &session.Metadata); err != nil {
			return nil, fmt.Errorf("game_decode_metadata_failed: %w", err)
		}
	}
	return session, nil
}

// sessionArgs returns insert arguments in column order. stamp converts
// timestamps to the store's representation.
func sessionArgs(session *Session, metadata any, stamp func(time.Time) any) []any {
	return []any{
		session.ID, string(session.Mode), session.OwnerID, string(session.OwnerKind), string(session.OwnerColor),
		session.OpponentID, kindArg(session.OpponentKind), colorArg(session.OpponentColor),
		session.JoinCode, metadata, session.IsDeleted, stamp(session.CreatedAt), stamp(session.UpdatedAt),
	}
}

type moveRow struct {
	ID          string
	SessionID   string
	Number      int
	PlayerColor string
	From        string
	To          string
	Promotion   *string
	FenAfter    string
}

func (row *moveRow) targets(createdAt any) []any {
	return []any{
		&row.ID, &row.SessionID, &row.Number, &row.PlayerColor,
		&row.From, &row.To, &row.Promotion, &row.FenAfter, createdAt,
	}
}

func (row *moveRow) toMove(createdAt time.Time) *Move {
	return &Move{
		ID:          row.ID,
		SessionID:   row.SessionID,
		Number:      row.Number,
		PlayerColor: rules.Color(row.PlayerColor),
		From:        row.From,
		To:          row.To,
		Promotion:   row.Promotion,
		FenAfter:    row.FenAfter,
		CreatedAt:   createdAt.UTC(),
	}
}

func moveArgs(move *Move, stamp func(time.Time) any) []any {
	return []any{
		move.ID, move.SessionID, move.Number, string(move.PlayerColor),
		move.From, move.To, move.Promotion, move.FenAfter, stamp(move.CreatedAt),
	}
}

func encodeMetadata(metadata map[string]any) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("game_encode_metadata_failed: %w", err)
	}
	return encoded, nil
}

func kindArg(kind *Kind) *string {
	if kind == nil {
		return nil
	}
	value := string(*kind)
	return &value
}

func colorArg(color *rules.Color) *string {
	if color == nil {
		return nil
	}
	value := string(*color)
	return &value
}

// # Error Mapping

func sessionInsertError(err error) error {
	if dberr.IsUniqueViolation(err, schema.GameSession.JoinCodeKey, schema.GameSession.JoinCodeColumn) {
		return ErrJoinCodeTaken.WithCause(err)
	}
	return dberr.Wrap(err, "game_create_session")
}

func sessionLookupError(err error, action string) error {
	if dberr.IsNoRows(err) {
		return ErrGameNotFound
	}
	return dberr.Wrap(err, action)
}

func moveInsertError(err error) error {
	if dberr.IsUniqueViolation(err, schema.GameMove.NumberKey, schema.GameMove.NumberColumn) {
		return ErrDuplicateMove.WithCause(err)
	}
	return dberr.Wrap(err, "game_create_move")
}
