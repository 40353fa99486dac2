// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/checkmate/internal/platform/ctxutil"
	"github.com/taibuivan/checkmate/internal/platform/middleware"
	requestutil "github.com/taibuivan/checkmate/internal/platform/request"
	"github.com/taibuivan/checkmate/internal/platform/respond"
	"github.com/taibuivan/checkmate/internal/platform/sec"
	"github.com/taibuivan/checkmate/internal/platform/validate"
	"github.com/taibuivan/checkmate/internal/rules"
	"github.com/taibuivan/checkmate/pkg/pagination"
)

// Handler exposes the game service over HTTP. Every route requires a token;
// the caller's identity is the player.
type Handler struct {
	service *Service
	feed    Subscriber
}

// NewHandler returns a Handler. feed may be nil, in which case the events
// route answers 503.
func NewHandler(service *Service, feed Subscriber) *Handler {
	return &Handler{service: service, feed: feed}
}

// RegisterRoutes mounts the request/response routes.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.createGame)
	router.Get("/", handler.listGames)
	router.Post("/join", handler.joinGame)
	router.Get("/code/{joinCode}", handler.getGameByCode)

	router.Route("/{gameID}", func(router chi.Router) {
		router.Get("/", handler.getGame)
		router.Delete("/", handler.deleteGame)
		router.Get("/turn", handler.getTurn)
		router.Post("/moves", handler.makeMove)
	})
}

// RegisterStreamRoutes mounts long-lived routes. They must not sit behind a
// request timeout.
func (handler *Handler) RegisterStreamRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)
	router.Get("/{gameID}/events", handler.streamEvents)
}

// # Payloads

type createGameRequest struct {
	Mode       Mode        `json:"mode"`
	Color      rules.Color `json:"color"`
	Difficulty *int        `json:"difficulty"`
}

type joinGameRequest struct {
	JoinCode string `json:"join_code"`
}

type makeMoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion"`
}

type makeMoveResponse struct {
	*MoveResult
	ComputerMove *MoveResult `json:"computer_move,omitempty"`
}

// # Handlers

func (handler *Handler) createGame(writer http.ResponseWriter, request *http.Request) {
	var input createGameRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Color == "" {
		input.Color = rules.White
	}

	owner := participantOf(requestutil.Identity(request))
	session, err := handler.service.CreateSession(request.Context(), input.Mode, owner, input.Color,
		CreateOptions{Difficulty: input.Difficulty})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The computer opens when the owner takes black
	if session.Mode == ModeComputer && session.OwnerColor == rules.Black {
		ctx := request.Context()
		if _, err := handler.service.PlayComputerMove(ctx, session.ID); err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "computer_move_failed",
				slog.String("game_id", session.ID),
				slog.Any("error", err),
			)
		}
	}

	respond.Created(writer, session)
}

func (handler *Handler) listGames(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Identity(request)
	page := pagination.FromRequest(request)

	sessions, total, err := handler.service.ListGames(request.Context(), claims.PlayerID, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, sessions, pagination.NewMeta(page, total))
}

func (handler *Handler) getGameByCode(writer http.ResponseWriter, request *http.Request) {
	session, err := handler.service.GetGameByJoinCode(request.Context(), requestutil.Param(request, "joinCode"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, session)
}

func (handler *Handler) joinGame(writer http.ResponseWriter, request *http.Request) {
	var input joinGameRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Required("join_code", input.JoinCode).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	player := participantOf(requestutil.Identity(request))
	session, err := handler.service.JoinGame(request.Context(), input.JoinCode, player)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, session)
}

func (handler *Handler) getGame(writer http.ResponseWriter, request *http.Request) {
	state, err := handler.participantState(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.resumeComputer(request.Context(), state))
}

func (handler *Handler) getTurn(writer http.ResponseWriter, request *http.Request) {
	state, err := handler.participantState(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.resumeComputer(request.Context(), state)

	claims := requestutil.Identity(request)
	turn, err := handler.service.GetTurn(request.Context(), requestutil.Param(request, "gameID"), claims.PlayerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, turn)
}

func (handler *Handler) makeMove(writer http.ResponseWriter, request *http.Request) {
	var input makeMoveRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Square("from", input.From).Square("to", input.To)
	if input.Promotion != "" {
		validator.OneOf("promotion", strings.ToLower(input.Promotion), "q", "r", "b", "n")
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	ctx := request.Context()
	gameID := requestutil.Param(request, "gameID")
	claims := requestutil.Identity(request)

	move := rules.Move{
		From:      strings.ToLower(input.From),
		To:        strings.ToLower(input.To),
		Promotion: strings.ToLower(input.Promotion),
	}
	result, err := handler.service.MakeMove(ctx, gameID, claims.PlayerID, move)
	if err != nil {
		// The computer may still owe a reply from an earlier request
		if errors.Is(err, ErrNotYourTurn) {
			if state, loadErr := handler.service.GetGame(ctx, gameID); loadErr == nil {
				handler.resumeComputer(ctx, state)
			}
		}
		respond.Error(writer, request, err)
		return
	}

	response := makeMoveResponse{MoveResult: result}

	// Computer games answer in the same request
	if result.awaitsComputer {
		reply, err := handler.service.PlayComputerMove(ctx, gameID)
		if err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "computer_move_failed",
				slog.String("game_id", gameID),
				slog.Any("error", err),
			)
		}
		response.ComputerMove = reply
	}

	respond.Created(writer, response)
}

func (handler *Handler) deleteGame(writer http.ResponseWriter, request *http.Request) {
	state, err := handler.participantState(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims := requestutil.Identity(request)
	if state.Session.OwnerID != claims.PlayerID {
		respond.Error(writer, request, ErrNotOwner)
		return
	}

	if _, err := handler.service.DeleteGame(request.Context(), state.Session.ID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Helpers

// participantState loads the game in the URL and checks the caller holds a seat.
func (handler *Handler) participantState(request *http.Request) (*State, error) {
	claims, err := requestutil.RequiredIdentity(request)
	if err != nil {
		return nil, err
	}

	state, err := handler.service.GetGame(request.Context(), requestutil.Param(request, "gameID"))
	if err != nil {
		return nil, err
	}
	if !state.Session.IsParticipant(claims.PlayerID) {
		return nil, ErrPlayerNotInGame
	}
	return state, nil
}

// resumeComputer plays a pending computer reply. On failure the caller keeps
// the state it loaded; the next read tries again.
func (handler *Handler) resumeComputer(ctx context.Context, state *State) *State {
	resumed, err := handler.service.ResumeComputer(ctx, state)
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "computer_move_failed",
			slog.String("game_id", state.Session.ID),
			slog.Any("error", err),
		)
		return state
	}
	return resumed
}

func participantOf(claims *sec.AuthClaims) Participant {
	return Participant{ID: claims.PlayerID, Kind: Kind(claims.Kind)}
}
