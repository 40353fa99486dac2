// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/checkmate/internal/platform/apperr"
	"github.com/taibuivan/checkmate/internal/platform/constants"
	"github.com/taibuivan/checkmate/internal/platform/validate"
	"github.com/taibuivan/checkmate/internal/rules"
	"github.com/taibuivan/checkmate/pkg/pagination"
	"github.com/taibuivan/checkmate/pkg/pointer"
	"github.com/taibuivan/checkmate/pkg/uuidv7"
)

// Difficulty bounds for computer games, on an Elo-like scale.
const (
	MinDifficulty = 100
	MaxDifficulty = 3000
)

// Oracle is the rules engine the service consults. [*rules.Oracle] implements it.
type Oracle interface {
	Apply(position string, move rules.Move) (rules.Result, error)
	Turn(position string) (rules.Color, error)
	Evaluate(position string) (rules.Result, error)
	RandomMove(position string) (rules.Move, error)
}

// CreateOptions carries the optional settings of a new session.
type CreateOptions struct {
	// Difficulty is recorded in metadata for computer games. It does not
	// change how the computer picks moves.
	Difficulty *int
}

// Service owns the session lifecycle: creation, joining, moves and deletion.
//
// It holds no game state. Every call reloads what it needs from the store, and
// concurrent writers are ordered by the store's constraints.
type Service struct {
	repo    Repository
	oracle  Oracle
	events  Publisher
	newCode CodeGenerator
	now     func() time.Time
	logger  *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithCodeGenerator replaces the join code source.
func WithCodeGenerator(generator CodeGenerator) Option {
	return func(service *Service) { service.newCode = generator }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// WithPublisher sends lifecycle events to publisher.
func WithPublisher(publisher Publisher) Option {
	return func(service *Service) { service.events = publisher }
}

// NewService builds a Service over repo and oracle.
func NewService(repo Repository, oracle Oracle, logger *slog.Logger, options ...Option) *Service {
	service := &Service{
		repo:    repo,
		oracle:  oracle,
		events:  noopPublisher{},
		newCode: NewJoinCode,
		now:     time.Now,
		logger:  logger,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// # Creation

// CreateSession opens a new game owned by owner.
//
// Computer games get their opponent immediately. Friend games get a join code
// and wait for a second player.
func (service *Service) CreateSession(context context.Context, mode Mode, owner Participant, ownerColor rules.Color, options CreateOptions) (*Session, error) {

	// ── 1. Validate before touching the store ──
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}

	validator := &validate.Validator{}
	validator.
		Required("owner_id", owner.ID).
		OneOf("owner_kind", string(owner.Kind), string(KindUser), string(KindGuest)).
		OneOf("color", string(ownerColor), string(rules.White), string(rules.Black))
	if options.Difficulty != nil {
		validator.Custom("difficulty", *options.Difficulty < MinDifficulty || *options.Difficulty > MaxDifficulty,
			fmt.Sprintf("Must be between %d and %d", MinDifficulty, MaxDifficulty))
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Build the record ──
	createdAt := service.now().UTC()
	session := &Session{
		ID:         uuidv7.New(),
		Mode:       mode,
		OwnerID:    owner.ID,
		OwnerKind:  owner.Kind,
		OwnerColor: ownerColor,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}

	switch mode {
	case ModeComputer:
		session.OpponentID = pointer.To(constants.ComputerPlayerID)
		session.OpponentKind = pointer.To(KindComputer)
		session.OpponentColor = pointer.To(ownerColor.Opposite())
		if options.Difficulty != nil {
			session.Metadata = map[string]any{"difficulty": *options.Difficulty}
		}
		if err := service.repo.CreateSession(context, session); err != nil {
			return nil, err
		}

	case ModeFriend:
		if err := service.insertWithJoinCode(context, session); err != nil {
			return nil, err
		}
	}

	service.logger.InfoContext(context, "game_created",
		slog.String("game_id", session.ID),
		slog.String("mode", string(session.Mode)),
		slog.String("owner_id", session.OwnerID),
	)
	return session, nil
}

// insertWithJoinCode inserts a friend session, drawing a fresh code once if
// the first one collides with a live session.
func (service *Service) insertWithJoinCode(context context.Context, session *Session) error {
	for attempt := 1; ; attempt++ {
		code, err := service.newCode()
		if err != nil {
			return apperr.Internal(fmt.Errorf("game_join_code_failed: %w", err))
		}
		session.JoinCode = pointer.To(NormalizeJoinCode(code))

		err = service.repo.CreateSession(context, session)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrJoinCodeTaken) || attempt == 2 {
			return err
		}

		service.logger.WarnContext(context, "join_code_collision_retry", slog.String("game_id", session.ID))
	}
}

// # Reads

// GetGame loads a session with its full move history and derived state.
func (service *Service) GetGame(context context.Context, sessionID string) (*State, error) {
	if !uuidv7.Valid(sessionID) {
		return nil, ErrGameNotFound
	}

	session, err := service.repo.FindSessionByID(context, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsDeleted {
		return nil, ErrGameNotFound
	}

	moves, err := service.repo.ListMoves(context, session.ID)
	if err != nil {
		return nil, err
	}

	position := rules.StartingFEN
	if len(moves) > 0 {
		position = moves[len(moves)-1].FenAfter
	}

	evaluation, err := service.oracle.Evaluate(position)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("game_evaluate_failed: %w", err))
	}
	turn, err := service.oracle.Turn(position)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("game_turn_failed: %w", err))
	}

	return &State{
		Session:   session,
		Moves:     moves,
		Position:  position,
		MoveCount: len(moves),
		Turn:      turn,
		Status:    DeriveStatus(session, len(moves), evaluation.GameOver),
	}, nil
}

// GetGameByJoinCode finds a live session by its join code, ignoring case.
func (service *Service) GetGameByJoinCode(context context.Context, joinCode string) (*Session, error) {
	code := NormalizeJoinCode(joinCode)
	if code == "" {
		return nil, ErrGameNotFound
	}
	return service.repo.FindSessionByJoinCode(context, code)
}

// GetTurn reports the side to move for a participant.
func (service *Service) GetTurn(context context.Context, sessionID, playerID string) (*TurnInfo, error) {
	state, err := service.GetGame(context, sessionID)
	if err != nil {
		return nil, err
	}

	color, seated := state.Session.ColorOf(playerID)
	if !seated {
		return nil, ErrPlayerNotInGame
	}

	return &TurnInfo{
		GameID:    state.Session.ID,
		Turn:      state.Turn,
		MoveCount: state.MoveCount,
		Status:    state.Status,
		YourColor: color,
		YourTurn:  color == state.Turn && state.Status != StatusFinished,
	}, nil
}

// ListGames returns the live sessions playerID takes part in, newest first.
func (service *Service) ListGames(context context.Context, playerID string, page pagination.Params) ([]*Session, int, error) {
	return service.repo.ListSessionsByParticipant(context, playerID, page.Normalize())
}

// # Joining

// JoinGame seats player as the opponent of the session behind joinCode.
func (service *Service) JoinGame(context context.Context, joinCode string, player Participant) (*Session, error) {
	session, err := service.GetGameByJoinCode(context, joinCode)
	if err != nil {
		return nil, err
	}

	// ── 1. Fast rejections on the loaded snapshot ──
	if session.HasOpponent() {
		return nil, ErrGameAlreadyFull
	}
	if session.OwnerID == player.ID {
		return nil, ErrCannotJoinOwnGame
	}

	validator := &validate.Validator{}
	validator.
		Required("player_id", player.ID).
		OneOf("player_kind", string(player.Kind), string(KindUser), string(KindGuest))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Conditional attach; a racing joiner leaves zero rows to update ──
	updated, err := service.repo.AttachOpponent(context, session.ID, player, session.OwnerColor.Opposite(), service.now())
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "game_joined",
		slog.String("game_id", updated.ID),
		slog.String("opponent_id", player.ID),
	)
	service.publish(context, Event{
		Type:     EventJoined,
		GameID:   updated.ID,
		Status:   StatusFull,
		Opponent: &player,
	})
	return updated, nil
}

// # Moves

// MakeMove validates and records a move by playerID.
func (service *Service) MakeMove(context context.Context, sessionID, playerID string, move rules.Move) (*MoveResult, error) {
	state, err := service.GetGame(context, sessionID)
	if err != nil {
		return nil, err
	}

	color, seated := state.Session.ColorOf(playerID)
	if !seated {
		return nil, ErrPlayerNotInGame
	}

	return service.play(context, state, color, move)
}

// PlayComputerMove records a random legal move for the computer side of a
// computer-mode session.
func (service *Service) PlayComputerMove(context context.Context, sessionID string) (*MoveResult, error) {
	state, err := service.GetGame(context, sessionID)
	if err != nil {
		return nil, err
	}

	color, seated := state.Session.ColorOf(constants.ComputerPlayerID)
	if state.Session.Mode != ModeComputer || !seated {
		return nil, ErrPlayerNotInGame
	}
	if state.Turn != color {
		return nil, ErrNotYourTurn
	}

	move, err := service.oracle.RandomMove(state.Position)
	if err != nil {
		if errors.Is(err, rules.ErrNoLegalMoves) {
			return nil, ErrInvalidMove.WithCause(err)
		}
		return nil, apperr.Internal(fmt.Errorf("game_computer_move_failed: %w", err))
	}

	return service.play(context, state, color, move)
}

// ResumeComputer plays the computer's pending reply on a loaded state and
// returns the reloaded state. States that await no reply come back unchanged.
//
// A reply that failed after the human's move is made up here, so a computer
// game never stays blocked on the computer's turn.
func (service *Service) ResumeComputer(context context.Context, state *State) (*State, error) {
	if !state.AwaitsComputer() {
		return state, nil
	}

	_, err := service.PlayComputerMove(context, state.Session.ID)
	switch {
	case err == nil:
		service.logger.InfoContext(context, "computer_move_resumed", slog.String("game_id", state.Session.ID))
	case errors.Is(err, ErrDuplicateMove), errors.Is(err, ErrNotYourTurn):
		// A concurrent resume recorded the reply first
	default:
		return nil, err
	}
	return service.GetGame(context, state.Session.ID)
}

// play applies move for color on the loaded state and appends it to the log.
func (service *Service) play(context context.Context, state *State, color rules.Color, move rules.Move) (*MoveResult, error) {

	// ── 1. Turn order ──
	if state.Turn != color {
		return nil, ErrNotYourTurn
	}

	// ── 2. Legality; a finished position has no legal moves ──
	result, err := service.oracle.Apply(state.Position, move)
	if err != nil {
		if errors.Is(err, rules.ErrIllegalMove) {
			return nil, ErrInvalidMove.WithCause(err)
		}
		return nil, apperr.Internal(fmt.Errorf("game_apply_move_failed: %w", err))
	}

	// ── 3. Append; the (session, number) constraint settles races ──
	record := &Move{
		ID:          uuidv7.New(),
		SessionID:   state.Session.ID,
		Number:      state.MoveCount + 1,
		PlayerColor: color,
		From:        result.Move.From,
		To:          result.Move.To,
		Promotion:   pointer.NilIfZero(result.Move.Promotion),
		FenAfter:    result.Position,
		CreatedAt:   service.now().UTC(),
	}
	if err := service.repo.CreateMove(context, record); err != nil {
		if errors.Is(err, ErrDuplicateMove) {
			service.logger.WarnContext(context, "move_race_lost",
				slog.String("game_id", record.SessionID),
				slog.Int("move_number", record.Number),
			)
		}
		return nil, err
	}

	outcome := &MoveResult{
		Move:       record,
		Position:   result.Position,
		IsGameOver: result.GameOver,
	}
	status := StatusInProgress
	if result.GameOver {
		outcome.Outcome = result.Outcome
		outcome.Method = result.Method
		status = StatusFinished
	} else {
		outcome.awaitsComputer = state.Session.Mode == ModeComputer && color == state.Session.OwnerColor
	}

	service.logger.InfoContext(context, "move_recorded",
		slog.String("game_id", record.SessionID),
		slog.Int("move_number", record.Number),
		slog.String("color", string(color)),
		slog.String("uci", result.Move.UCI()),
		slog.Bool("game_over", result.GameOver),
	)
	service.publish(context, Event{
		Type:     EventMove,
		GameID:   record.SessionID,
		Move:     record,
		Position: result.Position,
		Status:   status,
	})
	return outcome, nil
}

// # Deletion

// DeleteGame soft-deletes a session and reports how many rows changed.
// Moves stay in place.
func (service *Service) DeleteGame(context context.Context, sessionID string) (int64, error) {
	if !uuidv7.Valid(sessionID) {
		return 0, nil
	}

	affected, err := service.repo.SoftDeleteSession(context, sessionID, service.now())
	if err != nil {
		return 0, err
	}

	if affected > 0 {
		service.logger.InfoContext(context, "game_deleted", slog.String("game_id", sessionID))
		service.publish(context, Event{Type: EventDeleted, GameID: sessionID, Status: StatusDeleted})
	}
	return affected, nil
}

// publish delivers an event on a best-effort basis; the write it reports has
// already been committed.
func (service *Service) publish(context context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = service.now().UTC()
	}
	if err := service.events.Publish(context, event); err != nil {
		service.logger.WarnContext(context, "game_event_publish_failed",
			slog.String("game_id", event.GameID),
			slog.String("type", string(event.Type)),
			slog.Any("error", err),
		)
	}
}
