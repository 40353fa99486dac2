// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/checkmate/internal/platform/apperr"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	sentinel := apperr.New("NOT_YOUR_TURN", http.StatusConflict, "It is not your turn")

	// 1. A copy with a cause still matches the sentinel
	withCause := sentinel.WithCause(errors.New("boom"))
	assert.ErrorIs(t, withCause, sentinel)

	// 2. Wrapping keeps the match
	wrapped := fmt.Errorf("game_service_make_move_failed: %w", withCause)
	assert.ErrorIs(t, wrapped, sentinel)

	// 3. Different codes never match
	other := apperr.New("INVALID_MOVE", http.StatusUnprocessableEntity, "Illegal move")
	assert.NotErrorIs(t, other, sentinel)
}

func TestAppError_WithCauseDoesNotMutateSentinel(t *testing.T) {
	sentinel := apperr.New("GAME_NOT_FOUND", http.StatusNotFound, "Game not found")
	_ = sentinel.WithCause(errors.New("sql: no rows"))

	assert.Nil(t, sentinel.Cause)
}

func TestAs(t *testing.T) {
	internal := apperr.Internal(errors.New("db down"))
	wrapped := fmt.Errorf("outer: %w", internal)

	extracted := apperr.As(wrapped)
	require.NotNil(t, extracted)
	assert.Equal(t, "INTERNAL_ERROR", extracted.Code)
	assert.Equal(t, http.StatusInternalServerError, extracted.HTTPStatus)

	assert.Nil(t, apperr.As(errors.New("plain")))
}

func TestValidationError_CarriesDetails(t *testing.T) {
	err := apperr.ValidationError("bad input", apperr.FieldError{Field: "mode", Message: "required"})

	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "mode", err.Details[0].Field)
}
