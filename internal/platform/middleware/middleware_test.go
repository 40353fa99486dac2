// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/checkmate/internal/platform/ctxutil"
	"github.com/taibuivan/checkmate/internal/platform/middleware"
	"github.com/taibuivan/checkmate/internal/platform/sec"
)

type stubVerifier struct {
	claims *sec.AuthClaims
}

func (verifier stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "good-token" {
		return nil, errors.New("bad token")
	}
	return verifier.claims, nil
}

func identityEcho() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if claims := ctxutil.GetIdentity(request.Context()); claims != nil {
			_, _ = writer.Write([]byte(claims.PlayerID))
			return
		}
		_, _ = writer.Write([]byte("anonymous"))
	})
}

func TestAuthenticate(t *testing.T) {
	verifier := stubVerifier{claims: &sec.AuthClaims{PlayerID: "player-1", Kind: sec.KindGuest}}
	handler := middleware.Authenticate(verifier)(identityEcho())

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"anonymous", "", "", http.StatusOK, "anonymous"},
		{"valid bearer", "Bearer good-token", "", http.StatusOK, "player-1"},
		{"lowercase scheme", "bearer good-token", "", http.StatusOK, "player-1"},
		{"query token", "", "?access_token=good-token", http.StatusOK, "player-1"},
		{"bad token", "Bearer nope", "", http.StatusUnauthorized, ""},
		{"malformed header", "Token good-token", "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/games"+tt.query, nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, recorder.Body.String())
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(identityEcho())

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithIdentity(request.Context(), &sec.AuthClaims{PlayerID: "p"}))
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRateLimiter_RejectsBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiter(ctx, 1, 2)
	handler := limiter.Handler(identityEcho())

	statuses := make([]int, 0, 3)
	for range 3 {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "203.0.113.9:5555"
		handler.ServeHTTP(recorder, request)
		statuses = append(statuses, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "fixed-id")
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "fixed-id", seen)
	assert.Equal(t, "fixed-id", recorder.Header().Get("X-Request-ID"))
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	assert.Equal(t, "198.51.100.1", middleware.RealIP(request))
}
