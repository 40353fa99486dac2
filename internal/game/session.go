// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package game coordinates chess sessions between two participants.

The durable store is the only source of truth: a session row records who plays
which side, and an append-only move log records what happened. Every read
rebuilds the current position by taking the last move's resulting FEN, and
every write is a single guarded statement, so concurrent requests are ordered
by the store's constraints rather than by in-process locks.

Lifecycle (derived, never stored):

	OPEN ──join──▶ FULL ──first move──▶ IN_PROGRESS ──mate/stalemate──▶ FINISHED
	  └──────────────────── delete (any state) ────────────────────▶ DELETED
*/
package game

import (
	"time"

	"github.com/taibuivan/checkmate/internal/platform/constants"
	"github.com/taibuivan/checkmate/internal/rules"
)

// # Enumerations

// Mode selects who the owner plays against.
type Mode string

const (
	ModeComputer Mode = "computer"
	ModeFriend   Mode = "friend"
)

// Valid reports whether m is a supported mode.
func (m Mode) Valid() bool { return m == ModeComputer || m == ModeFriend }

// Kind tells registered accounts, guests and the computer apart.
type Kind string

const (
	KindUser     Kind = "user"
	KindGuest    Kind = "guest"
	KindComputer Kind = "computer"
)

// Status is the derived lifecycle state of a session.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusFull       Status = "FULL"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
	StatusDeleted    Status = "DELETED"
)

// # Entities

// Participant identifies one side of a game: an account, a guest or the computer.
type Participant struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
}

// Session is one game instance.
//
// Opponent fields are nil until a friend joins; computer sessions get them
// at creation. JoinCode is set only for friend sessions.
type Session struct {
	ID            string         `json:"id"`
	Mode          Mode           `json:"mode"`
	OwnerID       string         `json:"owner_id"`
	OwnerKind     Kind           `json:"owner_kind"`
	OwnerColor    rules.Color    `json:"owner_color"`
	OpponentID    *string        `json:"opponent_id"`
	OpponentKind  *Kind          `json:"opponent_kind"`
	OpponentColor *rules.Color   `json:"opponent_color"`
	JoinCode      *string        `json:"join_code,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	IsDeleted     bool           `json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// HasOpponent reports whether the second seat is taken.
func (s *Session) HasOpponent() bool { return s.OpponentID != nil }

// ColorOf returns the side played by playerID, or false if they are not seated.
func (s *Session) ColorOf(playerID string) (rules.Color, bool) {
	if playerID == "" {
		return "", false
	}
	if playerID == s.OwnerID {
		return s.OwnerColor, true
	}
	if s.OpponentID != nil && *s.OpponentID == playerID && s.OpponentColor != nil {
		return *s.OpponentColor, true
	}
	return "", false
}

// IsParticipant reports whether playerID holds either seat.
func (s *Session) IsParticipant(playerID string) bool {
	_, ok := s.ColorOf(playerID)
	return ok
}

// PlayerFor returns the participant playing color, if seated.
func (s *Session) PlayerFor(color rules.Color) (Participant, bool) {
	if s.OwnerColor == color {
		return Participant{ID: s.OwnerID, Kind: s.OwnerKind}, true
	}
	if s.OpponentID != nil && s.OpponentKind != nil && s.OpponentColor != nil && *s.OpponentColor == color {
		return Participant{ID: *s.OpponentID, Kind: *s.OpponentKind}, true
	}
	return Participant{}, false
}

// Move is one recorded ply. Moves are immutable once written.
type Move struct {
	ID          string      `json:"id"`
	SessionID   string      `json:"session_id"`
	Number      int         `json:"move_number"`
	PlayerColor rules.Color `json:"player_color"`
	From        string      `json:"from"`
	To          string      `json:"to"`
	Promotion   *string     `json:"promotion,omitempty"`
	FenAfter    string      `json:"fen_after"`
	CreatedAt   time.Time   `json:"created_at"`
}

// # Views

// State is a session together with its replayed move history.
type State struct {
	Session   *Session    `json:"game"`
	Moves     []*Move     `json:"moves"`
	Position  string      `json:"fen"`
	MoveCount int         `json:"move_count"`
	Turn      rules.Color `json:"turn"`
	Status    Status      `json:"status"`
}

// AwaitsComputer reports whether the computer side of a computer game is to move.
func (s *State) AwaitsComputer() bool {
	if s.Session.Mode != ModeComputer || s.Status == StatusFinished {
		return false
	}
	color, seated := s.Session.ColorOf(constants.ComputerPlayerID)
	return seated && color == s.Turn
}

// MoveResult is returned after a move is recorded.
type MoveResult struct {
	Move       *Move  `json:"move"`
	Position   string `json:"fen"`
	IsGameOver bool   `json:"is_game_over"`
	Outcome    string `json:"outcome,omitempty"`
	Method     string `json:"method,omitempty"`

	// awaitsComputer is set when the computer is to move next.
	awaitsComputer bool
}

// TurnInfo answers "whose move is it" for polling clients.
type TurnInfo struct {
	GameID    string      `json:"game_id"`
	Turn      rules.Color `json:"turn"`
	MoveCount int         `json:"move_count"`
	Status    Status      `json:"status"`
	YourColor rules.Color `json:"your_color"`
	YourTurn  bool        `json:"your_turn"`
}

// # State Machine

// DeriveStatus computes the lifecycle state from persisted data.
func DeriveStatus(session *Session, moveCount int, gameOver bool) Status {
	switch {
	case session.IsDeleted:
		return StatusDeleted
	case gameOver:
		return StatusFinished
	case moveCount > 0:
		return StatusInProgress
	case session.HasOpponent():
		return StatusFull
	default:
		return StatusOpen
	}
}
