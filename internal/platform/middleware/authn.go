// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/checkmate/internal/platform/apperr"
	"github.com/taibuivan/checkmate/internal/platform/constants"
	"github.com/taibuivan/checkmate/internal/platform/ctxutil"
	"github.com/taibuivan/checkmate/internal/platform/respond"
	"github.com/taibuivan/checkmate/internal/platform/sec"
)

// TokenVerifier verifies access tokens. [*sec.TokenService] satisfies it.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate verifies the bearer token, if any, and stores the caller's
// identity in the request context.
//
// # Flow
//  1. Read 'Authorization: Bearer <token>'; websocket upgrades may pass the
//     token in the access_token query parameter instead.
//  2. No token: the request proceeds anonymously.
//  3. Invalid token: 401.
//  4. Valid token: claims and a player-scoped logger go into the context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Token Extraction ───────────────────────────────────────────
			token, ok := bearerToken(request)
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 2. Anonymous Access ───────────────────────────────────────────
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), claims)
			logger := ctxutil.GetLogger(ctx).With(
				slog.String("player_id", claims.PlayerID),
				slog.String("player_kind", string(claims.Kind)),
			)
			ctx = ctxutil.WithLogger(ctx, logger)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that carry no verified identity.
//
// Must be registered AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// bearerToken returns the raw token, "" when absent, and false when the
// Authorization header is malformed.
func bearerToken(request *http.Request) (string, bool) {
	header := request.Header.Get(constants.HeaderAuthorization)
	if header == "" {
		return request.URL.Query().Get(constants.AccessTokenQueryParam), true
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
