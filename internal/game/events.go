// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"time"
)

// EventType names what happened to a game.
type EventType string

const (
	EventJoined  EventType = "game_joined"
	EventMove    EventType = "move_recorded"
	EventDeleted EventType = "game_deleted"
)

// Event is a notification that a game changed. It carries enough for a client
// to update without a reload; the store remains the source of truth.
type Event struct {
	Type      EventType    `json:"type"`
	GameID    string       `json:"game_id"`
	Move      *Move        `json:"move,omitempty"`
	Position  string       `json:"fen,omitempty"`
	Status    Status       `json:"status,omitempty"`
	Opponent  *Participant `json:"opponent,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Publisher fans game events out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subscriber streams the events of one game until ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, gameID string) (<-chan Event, error)
}

// noopPublisher drops every event. It is the default when no feed is wired.
type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }
