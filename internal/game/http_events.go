// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/taibuivan/checkmate/internal/platform/apperr"
	"github.com/taibuivan/checkmate/internal/platform/ctxutil"
	"github.com/taibuivan/checkmate/internal/platform/respond"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames
	maxMessageSize = 512
)

// EventSnapshot is the first frame of every feed: the full state at subscribe time.
const EventSnapshot EventType = "snapshot"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The token travels in the query string rather than a cookie, so a
	// cross-origin page cannot ride on the player's credentials.
	CheckOrigin: func(*http.Request) bool { return true },
}

type snapshotFrame struct {
	Type  EventType `json:"type"`
	State *State    `json:"state"`
}

// streamEvents upgrades to a websocket and forwards the game's events to a
// participant until either side goes away.
func (handler *Handler) streamEvents(writer http.ResponseWriter, request *http.Request) {
	if handler.feed == nil {
		respond.Error(writer, request, apperr.ServiceUnavailable("Live updates are unavailable"))
		return
	}

	// ── 1. Only seated players may listen ──
	state, err := handler.participantState(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	ctx, cancel := context.WithCancel(request.Context())
	defer cancel()
	logger := ctxutil.GetLogger(ctx).With(slog.String("game_id", state.Session.ID))

	// ── 2. Subscribe before upgrading so failures are still plain HTTP errors ──
	events, err := handler.feed.Subscribe(ctx, state.Session.ID)
	if err != nil {
		respond.Error(writer, request, apperr.ServiceUnavailable("Live updates are unavailable").WithCause(err))
		return
	}

	// Load the snapshot after subscribing so no move falls between the two
	snapshot, err := handler.service.GetGame(ctx, state.Session.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	connection, err := upgrader.Upgrade(writer, request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logger.WarnContext(ctx, "websocket_upgrade_failed", slog.Any("error", err))
		return
	}
	defer connection.Close()

	logger.DebugContext(ctx, "websocket_connected")
	go readPump(connection, cancel)

	// ── 3. Pump events until the client leaves or the game is deleted ──
	if err := writeFrame(connection, snapshotFrame{Type: EventSnapshot, State: snapshot}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				_ = connection.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			if err := writeFrame(connection, event); err != nil {
				return
			}
			if event.Type == EventDeleted {
				_ = connection.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game deleted"), time.Now().Add(writeWait))
				return
			}

		case <-ticker.C:
			_ = connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeFrame(connection *websocket.Conn, frame any) error {
	_ = connection.SetWriteDeadline(time.Now().Add(writeWait))
	return connection.WriteJSON(frame)
}

// readPump drains client frames so pongs and close frames are processed, and
// cancels the stream when the connection drops.
func readPump(connection *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	connection.SetReadLimit(maxMessageSize)
	_ = connection.SetReadDeadline(time.Now().Add(pongWait))
	connection.SetPongHandler(func(string) error {
		return connection.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := connection.ReadMessage(); err != nil {
			return
		}
	}
}
