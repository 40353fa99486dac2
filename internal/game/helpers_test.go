// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/checkmate/internal/game"
	"github.com/taibuivan/checkmate/internal/platform/apperr"
	"github.com/taibuivan/checkmate/internal/platform/sqlite"
	"github.com/taibuivan/checkmate/internal/rules"
)

var (
	alice = game.Participant{ID: "0190b5a8-0000-7000-8000-00000000a11c", Kind: game.KindUser}
	bob   = game.Participant{ID: "0190b5a8-0000-7000-8000-000000000b0b", Kind: game.KindGuest}
	carol = game.Participant{ID: "0190b5a8-0000-7000-8000-00000000ca01", Kind: game.KindUser}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRepository(t *testing.T) *game.SQLiteRepository {
	t.Helper()

	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "games.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return game.NewSQLiteRepository(db)
}

func newService(t *testing.T, options ...game.Option) (*game.Service, *game.SQLiteRepository) {
	t.Helper()

	repository := newRepository(t)
	return game.NewService(repository, rules.NewOracle(), discardLogger(), options...), repository
}

// createFriendGame opens a friend game for owner playing white.
func createFriendGame(t *testing.T, service *game.Service, owner game.Participant) *game.Session {
	t.Helper()

	session, err := service.CreateSession(context.Background(), game.ModeFriend, owner, rules.White, game.CreateOptions{})
	require.NoError(t, err)
	return session
}

// startFriendGame opens a friend game for alice (white) and seats bob (black).
func startFriendGame(t *testing.T, service *game.Service) *game.Session {
	t.Helper()

	session := createFriendGame(t, service, alice)
	joined, err := service.JoinGame(context.Background(), *session.JoinCode, bob)
	require.NoError(t, err)
	return joined
}

func errorCode(err error) string {
	if appErr := apperr.As(err); appErr != nil {
		return appErr.Code
	}
	return ""
}

func move(from, to string) rules.Move {
	return rules.Move{From: from, To: to}
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []game.Event
}

func (publisher *recordingPublisher) Publish(_ context.Context, event game.Event) error {
	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	publisher.events = append(publisher.events, event)
	return nil
}

func (publisher *recordingPublisher) types() []game.EventType {
	publisher.mu.Lock()
	defer publisher.mu.Unlock()

	types := make([]game.EventType, 0, len(publisher.events))
	for _, event := range publisher.events {
		types = append(types, event.Type)
	}
	return types
}

// sequenceCodes returns the given codes in order and counts the calls.
type sequenceCodes struct {
	codes []string
	calls int
}

func (generator *sequenceCodes) next() (string, error) {
	code := generator.codes[min(generator.calls, len(generator.codes)-1)]
	generator.calls++
	return code, nil
}

// stallingRepository fails the next black move once, the way a dropped
// connection would.
type stallingRepository struct {
	*game.SQLiteRepository
	stall atomic.Bool
}

func (repository *stallingRepository) CreateMove(ctx context.Context, candidate *game.Move) error {
	if candidate.PlayerColor == rules.Black && repository.stall.CompareAndSwap(true, false) {
		return errors.New("connection reset by peer")
	}
	return repository.SQLiteRepository.CreateMove(ctx, candidate)
}

// newStallingService returns a service whose first computer reply as black fails.
func newStallingService(t *testing.T) *game.Service {
	t.Helper()

	repository := &stallingRepository{SQLiteRepository: newRepository(t)}
	repository.stall.Store(true)
	return game.NewService(repository, rules.NewOracle(), discardLogger())
}
