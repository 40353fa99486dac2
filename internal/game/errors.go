// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"net/http"

	"github.com/taibuivan/checkmate/internal/platform/apperr"
)

// Failure kinds returned by [Service]. Match them with errors.Is.
var (
	ErrInvalidMode       = apperr.New("INVALID_MODE", http.StatusBadRequest, "Mode must be 'computer' or 'friend'")
	ErrGameNotFound      = apperr.New("GAME_NOT_FOUND", http.StatusNotFound, "Game not found")
	ErrGameAlreadyFull   = apperr.New("GAME_ALREADY_FULL", http.StatusConflict, "Game already has an opponent")
	ErrCannotJoinOwnGame = apperr.New("CANNOT_JOIN_OWN_GAME", http.StatusConflict, "You cannot join your own game")
	ErrPlayerNotInGame   = apperr.New("PLAYER_NOT_IN_GAME", http.StatusForbidden, "You are not a player in this game")
	ErrNotYourTurn       = apperr.New("NOT_YOUR_TURN", http.StatusConflict, "It is not your turn")
	ErrInvalidMove       = apperr.New("INVALID_MOVE", http.StatusUnprocessableEntity, "Illegal move")
	ErrDuplicateMove     = apperr.New("DUPLICATE_MOVE", http.StatusConflict, "Another move was recorded first; reload the game")
	ErrJoinCodeTaken     = apperr.New("JOIN_CODE_TAKEN", http.StatusConflict, "Could not allocate a join code, try again")
	ErrNotOwner          = apperr.New("NOT_GAME_OWNER", http.StatusForbidden, "Only the game owner can do that")
)
