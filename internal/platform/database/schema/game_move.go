// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// GameMoveTable represents the append-only 'moves' table.
type GameMoveTable struct {
	Table       string
	ID          string
	SessionID   string
	MoveNumber  string
	PlayerColor string
	From        string
	To          string
	Promotion   string
	FenAfter    string
	CreatedAt   string

	// Constraint names (PostgreSQL) and column fragments (SQLite).
	NumberKey    string
	NumberColumn string
}

// GameMove is the schema definition for moves.
var GameMove = GameMoveTable{
	Table:        "moves",
	ID:           "id",
	SessionID:    "session_id",
	MoveNumber:   "move_number",
	PlayerColor:  "player_color",
	From:         "move_from",
	To:           "move_to",
	Promotion:    "promotion",
	FenAfter:     "fen_after",
	CreatedAt:    "created_at",
	NumberKey:    "moves_session_id_move_number_key",
	NumberColumn: "moves.move_number",
}

// Columns returns the columns in scan order.
func (t GameMoveTable) Columns() []string {
	return []string{
		t.ID, t.SessionID, t.MoveNumber, t.PlayerColor,
		t.From, t.To, t.Promotion, t.FenAfter, t.CreatedAt,
	}
}
