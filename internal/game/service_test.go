// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/checkmate/internal/game"
	"github.com/taibuivan/checkmate/internal/rules"
	"github.com/taibuivan/checkmate/pkg/pagination"
	"github.com/taibuivan/checkmate/pkg/uuidv7"
)

func TestCreateSession_InvalidModeNeverTouchesStore(t *testing.T) {
	// A nil repository panics on any call
	service := game.NewService(nil, rules.NewOracle(), discardLogger())

	_, err := service.CreateSession(context.Background(), game.Mode("blitz"), alice, rules.White, game.CreateOptions{})
	assert.ErrorIs(t, err, game.ErrInvalidMode)
}

func TestCreateSession_ValidatesOwner(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		owner game.Participant
		color rules.Color
	}{
		{"missing id", game.Participant{Kind: game.KindUser}, rules.White},
		{"computer owner", game.Participant{ID: "x", Kind: game.KindComputer}, rules.White},
		{"bad color", alice, rules.Color("green")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateSession(ctx, game.ModeFriend, tt.owner, tt.color, game.CreateOptions{})
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", errorCode(err))
		})
	}
}

func TestCreateSession_Friend(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	session := createFriendGame(t, service, alice)

	require.NotNil(t, session.JoinCode)
	assert.Len(t, *session.JoinCode, 8)
	assert.Equal(t, strings.ToUpper(*session.JoinCode), *session.JoinCode)
	assert.False(t, session.HasOpponent())

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusOpen, state.Status)
	assert.Equal(t, rules.StartingFEN, state.Position)
	assert.Equal(t, rules.White, state.Turn)
	assert.Zero(t, state.MoveCount)
	assert.Empty(t, state.Moves)
}

func TestCreateSession_Computer(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	difficulty := 1200

	session, err := service.CreateSession(ctx, game.ModeComputer, alice, rules.White, game.CreateOptions{Difficulty: &difficulty})
	require.NoError(t, err)

	require.NotNil(t, session.OpponentID)
	assert.Equal(t, "computer", *session.OpponentID)
	assert.Equal(t, game.KindComputer, *session.OpponentKind)
	assert.Equal(t, rules.Black, *session.OpponentColor)
	assert.Nil(t, session.JoinCode)

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFull, state.Status)
	assert.EqualValues(t, 1200, state.Session.Metadata["difficulty"])
}

func TestCreateSession_DifficultyOutOfRange(t *testing.T) {
	service, _ := newService(t)
	difficulty := 99999

	_, err := service.CreateSession(context.Background(), game.ModeComputer, alice, rules.White, game.CreateOptions{Difficulty: &difficulty})
	assert.Equal(t, "VALIDATION_ERROR", errorCode(err))
}

func TestCreateSession_JoinCodeCollisionRetriedOnce(t *testing.T) {
	codes := &sequenceCodes{codes: []string{"AAAAAAAA", "AAAAAAAA", "BBBBBBBB"}}
	service, _ := newService(t, game.WithCodeGenerator(codes.next))

	first := createFriendGame(t, service, alice)
	assert.Equal(t, "AAAAAAAA", *first.JoinCode)

	second := createFriendGame(t, service, carol)
	assert.Equal(t, "BBBBBBBB", *second.JoinCode)
	assert.Equal(t, 3, codes.calls)
}

func TestCreateSession_SecondCollisionSurfaces(t *testing.T) {
	ctx := context.Background()
	codes := &sequenceCodes{codes: []string{"AAAAAAAA"}}
	service, _ := newService(t, game.WithCodeGenerator(codes.next))

	createFriendGame(t, service, alice)

	_, err := service.CreateSession(ctx, game.ModeFriend, carol, rules.White, game.CreateOptions{})
	assert.ErrorIs(t, err, game.ErrJoinCodeTaken)
	assert.Equal(t, 3, codes.calls)
}

func TestCreateSession_CodeOfDeletedGameIsReusable(t *testing.T) {
	ctx := context.Background()
	codes := &sequenceCodes{codes: []string{"REUSE001"}}
	service, _ := newService(t, game.WithCodeGenerator(codes.next))

	first := createFriendGame(t, service, alice)
	_, err := service.DeleteGame(ctx, first.ID)
	require.NoError(t, err)

	second := createFriendGame(t, service, carol)
	assert.Equal(t, "REUSE001", *second.JoinCode)
}

func TestGetGame_NotFound(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	for _, id := range []string{uuidv7.New(), "not-a-uuid", ""} {
		_, err := service.GetGame(ctx, id)
		assert.ErrorIs(t, err, game.ErrGameNotFound, id)
	}
}

func TestGetGameByJoinCode(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := createFriendGame(t, service, alice)

	found, err := service.GetGameByJoinCode(ctx, " "+strings.ToLower(*session.JoinCode)+" ")
	require.NoError(t, err)
	assert.Equal(t, session.ID, found.ID)

	// Scenario: a wrong code is simply not found
	_, err = service.GetGameByJoinCode(ctx, "ZZZZZZZZ")
	assert.ErrorIs(t, err, game.ErrGameNotFound)

	_, err = service.JoinGame(ctx, "ZZZZZZZZ", bob)
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestJoinGame(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := createFriendGame(t, service, alice)

	joined, err := service.JoinGame(ctx, *session.JoinCode, bob)
	require.NoError(t, err)

	require.NotNil(t, joined.OpponentID)
	assert.Equal(t, bob.ID, *joined.OpponentID)
	assert.Equal(t, game.KindGuest, *joined.OpponentKind)
	assert.Equal(t, rules.Black, *joined.OpponentColor)

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFull, state.Status)

	_, err = service.JoinGame(ctx, *session.JoinCode, carol)
	assert.ErrorIs(t, err, game.ErrGameAlreadyFull)
}

func TestJoinGame_OwnerRejectedRegardlessOfKind(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := createFriendGame(t, service, alice)

	for _, kind := range []game.Kind{game.KindUser, game.KindGuest} {
		_, err := service.JoinGame(ctx, *session.JoinCode, game.Participant{ID: alice.ID, Kind: kind})
		assert.ErrorIs(t, err, game.ErrCannotJoinOwnGame)
	}

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, state.Session.HasOpponent())
}

func TestJoinGame_ConcurrentJoinersSeatExactlyOne(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := createFriendGame(t, service, alice)

	const joiners = 12
	var (
		seated atomic.Int32
		full   atomic.Int32
	)

	var group errgroup.Group
	for index := range joiners {
		player := game.Participant{ID: uuidv7.New(), Kind: game.KindGuest}
		group.Go(func() error {
			_, err := service.JoinGame(ctx, *session.JoinCode, player)
			switch {
			case err == nil:
				seated.Add(1)
			case errors.Is(err, game.ErrGameAlreadyFull):
				full.Add(1)
			default:
				return fmt.Errorf("joiner %d: %w", index, err)
			}
			return nil
		})
	}
	require.NoError(t, group.Wait())

	assert.EqualValues(t, 1, seated.Load())
	assert.EqualValues(t, joiners-1, full.Load())
}

func TestMakeMove_FriendScenario(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := startFriendGame(t, service)

	first, err := service.MakeMove(ctx, session.ID, alice.ID, move("e2", "e4"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Move.Number)
	assert.Equal(t, rules.White, first.Move.PlayerColor)
	assert.False(t, first.IsGameOver)

	// Resubmitting before the reply is rejected on turn order
	_, err = service.MakeMove(ctx, session.ID, alice.ID, move("e2", "e4"))
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	second, err := service.MakeMove(ctx, session.ID, bob.ID, move("e7", "e5"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Move.Number)
	assert.Equal(t, rules.Black, second.Move.PlayerColor)

	_, err = service.MakeMove(ctx, session.ID, bob.ID, move("d7", "d5"))
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	// Alice is to move again, but her pawn has left e2
	_, err = service.MakeMove(ctx, session.ID, alice.ID, move("e2", "e4"))
	assert.ErrorIs(t, err, game.ErrInvalidMove)

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.MoveCount)
	assert.Equal(t, game.StatusInProgress, state.Status)
	assert.Equal(t, second.Position, state.Position)
}

func TestMakeMove_NotYourTurnWritesNothing(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := startFriendGame(t, service)

	_, err := service.MakeMove(ctx, session.ID, alice.ID, move("e2", "e4"))
	require.NoError(t, err)

	_, err = service.MakeMove(ctx, session.ID, alice.ID, move("d2", "d4"))
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	_, err = service.MakeMove(ctx, session.ID, bob.ID, move("e7", "e4"))
	assert.ErrorIs(t, err, game.ErrInvalidMove)

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.MoveCount)
}

func TestMakeMove_PlayerNotInGame(t *testing.T) {
	service, _ := newService(t)
	session := startFriendGame(t, service)

	_, err := service.MakeMove(context.Background(), session.ID, carol.ID, move("e2", "e4"))
	assert.ErrorIs(t, err, game.ErrPlayerNotInGame)
}

func TestMakeMove_OrderingAlternationAndReplay(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := startFriendGame(t, service)

	opening := []struct {
		player game.Participant
		move   rules.Move
	}{
		{alice, move("e2", "e4")},
		{bob, move("c7", "c5")},
		{alice, move("g1", "f3")},
		{bob, move("d7", "d6")},
		{alice, move("d2", "d4")},
		{bob, move("c5", "d4")},
		{alice, move("f3", "d4")},
		{bob, move("g8", "f6")},
	}
	for _, ply := range opening {
		_, err := service.MakeMove(ctx, session.ID, ply.player.ID, ply.move)
		require.NoError(t, err, ply.move.UCI())
	}

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, state.Moves, len(opening))

	for index, recorded := range state.Moves {
		assert.Equal(t, index+1, recorded.Number)
		expected := rules.White
		if index%2 == 1 {
			expected = rules.Black
		}
		assert.Equal(t, expected, recorded.PlayerColor)
	}

	final, err := game.Replay(rules.NewOracle(), state.Moves)
	require.NoError(t, err)
	assert.Equal(t, state.Position, final)
}

func TestMakeMove_FoolsMateFinishesGame(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := startFriendGame(t, service)

	_, err := service.MakeMove(ctx, session.ID, alice.ID, move("f2", "f3"))
	require.NoError(t, err)
	_, err = service.MakeMove(ctx, session.ID, bob.ID, move("e7", "e5"))
	require.NoError(t, err)
	_, err = service.MakeMove(ctx, session.ID, alice.ID, move("g2", "g4"))
	require.NoError(t, err)

	mate, err := service.MakeMove(ctx, session.ID, bob.ID, move("d8", "h4"))
	require.NoError(t, err)
	assert.True(t, mate.IsGameOver)
	assert.Equal(t, "0-1", mate.Outcome)

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, state.Status)

	// White is mated: any move is illegal, and black is still out of turn
	_, err = service.MakeMove(ctx, session.ID, alice.ID, move("a2", "a3"))
	assert.ErrorIs(t, err, game.ErrInvalidMove)

	_, err = service.MakeMove(ctx, session.ID, bob.ID, move("a7", "a6"))
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	state, err = service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, state.MoveCount)
}

// racingRepository lets a rival writer claim the next move number first.
type racingRepository struct {
	*game.SQLiteRepository
	once sync.Once
}

func (repository *racingRepository) CreateMove(ctx context.Context, candidate *game.Move) error {
	var rivalErr error
	repository.once.Do(func() {
		rival := *candidate
		rival.ID = uuidv7.New()
		rivalErr = repository.SQLiteRepository.CreateMove(ctx, &rival)
	})
	if rivalErr != nil {
		return rivalErr
	}
	return repository.SQLiteRepository.CreateMove(ctx, candidate)
}

func TestMakeMove_LostRaceIsDuplicateMove(t *testing.T) {
	ctx := context.Background()
	repository := &racingRepository{SQLiteRepository: newRepository(t)}
	service := game.NewService(repository, rules.NewOracle(), discardLogger())
	session := startFriendGame(t, service)

	_, err := service.MakeMove(ctx, session.ID, alice.ID, move("e2", "e4"))
	assert.ErrorIs(t, err, game.ErrDuplicateMove)

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.MoveCount)
}

func TestPlayComputerMove(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	session, err := service.CreateSession(ctx, game.ModeComputer, alice, rules.White, game.CreateOptions{})
	require.NoError(t, err)

	// Not the computer's turn yet
	_, err = service.PlayComputerMove(ctx, session.ID)
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	_, err = service.MakeMove(ctx, session.ID, alice.ID, move("e2", "e4"))
	require.NoError(t, err)

	reply, err := service.PlayComputerMove(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reply.Move.Number)
	assert.Equal(t, rules.Black, reply.Move.PlayerColor)

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, rules.White, state.Turn)

	_, err = game.Replay(rules.NewOracle(), state.Moves)
	assert.NoError(t, err)
}

func TestPlayComputerMove_FriendGame(t *testing.T) {
	service, _ := newService(t)
	session := startFriendGame(t, service)

	_, err := service.PlayComputerMove(context.Background(), session.ID)
	assert.ErrorIs(t, err, game.ErrPlayerNotInGame)
}

func TestComputerPlaysWhiteWhenOwnerIsBlack(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	session, err := service.CreateSession(ctx, game.ModeComputer, bob, rules.Black, game.CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, rules.White, *session.OpponentColor)

	_, err = service.MakeMove(ctx, session.ID, bob.ID, move("e7", "e5"))
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	opening, err := service.PlayComputerMove(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, rules.White, opening.Move.PlayerColor)
}

func TestGetTurn(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := startFriendGame(t, service)

	turn, err := service.GetTurn(ctx, session.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, rules.White, turn.Turn)
	assert.Equal(t, rules.Black, turn.YourColor)
	assert.False(t, turn.YourTurn)

	_, err = service.GetTurn(ctx, session.ID, carol.ID)
	assert.ErrorIs(t, err, game.ErrPlayerNotInGame)
}

func TestDeleteGame(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := startFriendGame(t, service)

	_, err := service.MakeMove(ctx, session.ID, alice.ID, move("e2", "e4"))
	require.NoError(t, err)

	affected, err := service.DeleteGame(ctx, session.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	affected, err = service.DeleteGame(ctx, session.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)

	_, err = service.GetGame(ctx, session.ID)
	assert.ErrorIs(t, err, game.ErrGameNotFound)

	_, err = service.GetGameByJoinCode(ctx, *session.JoinCode)
	assert.ErrorIs(t, err, game.ErrGameNotFound)

	_, err = service.MakeMove(ctx, session.ID, bob.ID, move("e7", "e5"))
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestDeletedSessionCannotBeJoined(t *testing.T) {
	ctx := context.Background()
	service, repository := newService(t)
	session := createFriendGame(t, service, alice)

	_, err := service.DeleteGame(ctx, session.ID)
	require.NoError(t, err)

	// Even a caller holding a stale snapshot cannot seat itself
	_, err = repository.AttachOpponent(ctx, session.ID, bob, rules.Black, session.CreatedAt)
	assert.ErrorIs(t, err, game.ErrGameAlreadyFull)

	stored, err := repository.FindSessionByID(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
	assert.Equal(t, game.StatusDeleted, game.DeriveStatus(stored, 0, false))
}

func TestListGames(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	owned := startFriendGame(t, service)
	createFriendGame(t, service, carol)
	computer, err := service.CreateSession(ctx, game.ModeComputer, bob, rules.Black, game.CreateOptions{})
	require.NoError(t, err)

	games, total, err := service.ListGames(ctx, bob.ID, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, games, 2)
	assert.Equal(t, computer.ID, games[0].ID)
	assert.Equal(t, owned.ID, games[1].ID)

	page, total, err := service.ListGames(ctx, bob.ID, pagination.Params{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, owned.ID, page[0].ID)
}

func TestEventsArePublished(t *testing.T) {
	publisher := &recordingPublisher{}
	service, _ := newService(t, game.WithPublisher(publisher))
	ctx := context.Background()

	session := startFriendGame(t, service)
	_, err := service.MakeMove(ctx, session.ID, alice.ID, move("e2", "e4"))
	require.NoError(t, err)
	_, err = service.DeleteGame(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, []game.EventType{game.EventJoined, game.EventMove, game.EventDeleted}, publisher.types())
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, game.Event) error { return errors.New("redis down") }

func TestPublishFailureDoesNotFailMove(t *testing.T) {
	service, _ := newService(t, game.WithPublisher(failingPublisher{}))
	session := startFriendGame(t, service)

	_, err := service.MakeMove(context.Background(), session.ID, alice.ID, move("e2", "e4"))
	assert.NoError(t, err)
}

// playAll records plies alternately for alice (white) and bob (black).
func playAll(t *testing.T, service *game.Service, sessionID string, plies ...rules.Move) {
	t.Helper()

	players := []game.Participant{alice, bob}
	for index, ply := range plies {
		_, err := service.MakeMove(context.Background(), sessionID, players[index%2].ID, ply)
		require.NoError(t, err, "ply %d %s", index+1, ply.UCI())
	}
}

func TestMakeMove_IllegalMovesWriteNothing(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := startFriendGame(t, service)

	// Well formed, but a pawn cannot jump three squares
	_, err := service.MakeMove(ctx, session.ID, alice.ID, move("e2", "e5"))
	assert.ErrorIs(t, err, game.ErrInvalidMove)

	playAll(t, service, session.ID, move("e2", "e4"))

	// Black on turn, trying to move the white queen
	_, err = service.MakeMove(ctx, session.ID, bob.ID, move("d1", "d8"))
	assert.ErrorIs(t, err, game.ErrInvalidMove)

	// Black's own queen is blocked by its pawns
	_, err = service.MakeMove(ctx, session.ID, bob.ID, move("d8", "d5"))
	assert.ErrorIs(t, err, game.ErrInvalidMove)

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.MoveCount)
	assert.Equal(t, rules.Black, state.Turn)
}

func TestMakeMove_BarePromotionBecomesQueen(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := startFriendGame(t, service)

	playAll(t, service, session.ID,
		move("e2", "e4"), move("d7", "d5"),
		move("e4", "d5"), move("c7", "c6"),
		move("d5", "c6"), move("g8", "f6"),
		move("c6", "b7"), move("b8", "d7"),
	)

	promoted, err := service.MakeMove(ctx, session.ID, alice.ID, move("b7", "a8"))
	require.NoError(t, err)
	require.NotNil(t, promoted.Move.Promotion)
	assert.Equal(t, "q", *promoted.Move.Promotion)
	assert.Contains(t, promoted.Position, "Q1bqkb1r/")

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)

	final, err := game.Replay(rules.NewOracle(), state.Moves)
	require.NoError(t, err)
	assert.Equal(t, state.Position, final)
}

func TestReplay_CastlingAndEnPassant(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	session := startFriendGame(t, service)

	playAll(t, service, session.ID,
		move("e2", "e4"), move("a7", "a6"),
		move("e4", "e5"), move("d7", "d5"),
		move("e5", "d6"), move("a6", "a5"),
		move("g1", "f3"), move("a5", "a4"),
		move("f1", "e2"), move("a4", "a3"),
		move("e1", "g1"),
	)

	state, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, state.Moves, 11)

	// En passant removed the d5 pawn; castling moved king and rook
	assert.Contains(t, state.Moves[4].FenAfter, "/p2P4/8/")
	assert.Contains(t, state.Position, "RNBQ1RK1")

	final, err := game.Replay(rules.NewOracle(), state.Moves)
	require.NoError(t, err)
	assert.Equal(t, state.Position, final)
}

func TestResumeComputer(t *testing.T) {
	service := newStallingService(t)
	ctx := context.Background()

	session, err := service.CreateSession(ctx, game.ModeComputer, alice, rules.White, game.CreateOptions{})
	require.NoError(t, err)

	_, err = service.MakeMove(ctx, session.ID, alice.ID, move("e2", "e4"))
	require.NoError(t, err)

	// The first reply is lost
	_, err = service.PlayComputerMove(ctx, session.ID)
	require.Error(t, err)

	stalled, err := service.GetGame(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, stalled.AwaitsComputer())

	resumed, err := service.ResumeComputer(ctx, stalled)
	require.NoError(t, err)
	assert.Equal(t, 2, resumed.MoveCount)
	assert.False(t, resumed.AwaitsComputer())

	// Nothing pending: the state comes back as is
	same, err := service.ResumeComputer(ctx, resumed)
	require.NoError(t, err)
	assert.Same(t, resumed, same)
}
