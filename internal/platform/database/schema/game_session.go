// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// GameSessionTable represents the 'sessions' table.
type GameSessionTable struct {
	Table         string
	ID            string
	Mode          string
	OwnerID       string
	OwnerKind     string
	OwnerColor    string
	OpponentID    string
	OpponentKind  string
	OpponentColor string
	JoinCode      string
	Metadata      string
	IsDeleted     string
	CreatedAt     string
	UpdatedAt     string

	// Constraint names (PostgreSQL) and column fragments (SQLite).
	JoinCodeKey    string
	JoinCodeColumn string
}

// GameSession is the schema definition for sessions.
var GameSession = GameSessionTable{
	Table:          "sessions",
	ID:             "id",
	Mode:           "mode",
	OwnerID:        "owner_id",
	OwnerKind:      "owner_kind",
	OwnerColor:     "owner_color",
	OpponentID:     "opponent_id",
	OpponentKind:   "opponent_kind",
	OpponentColor:  "opponent_color",
	JoinCode:       "join_code",
	Metadata:       "metadata",
	IsDeleted:      "is_deleted",
	CreatedAt:      "created_at",
	UpdatedAt:      "updated_at",
	JoinCodeKey:    "sessions_join_code_key",
	JoinCodeColumn: "sessions.join_code",
}

// Columns returns the columns in scan order.
func (t GameSessionTable) Columns() []string {
	return []string{
		t.ID, t.Mode, t.OwnerID, t.OwnerKind, t.OwnerColor,
		t.OpponentID, t.OpponentKind, t.OpponentColor,
		t.JoinCode, t.Metadata, t.IsDeleted, t.CreatedAt, t.UpdatedAt,
	}
}
