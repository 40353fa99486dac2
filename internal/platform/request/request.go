// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It hides chi's parameter extraction and the JSON decoding rules behind a few
helpers so that handlers stay short and fail the same way.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/checkmate/internal/platform/apperr"
	"github.com/taibuivan/checkmate/internal/platform/ctxutil"
	"github.com/taibuivan/checkmate/internal/platform/sec"
	"github.com/taibuivan/checkmate/internal/platform/validate"
)

// maxBodyBytes caps request bodies; every payload here is a handful of fields.
const maxBodyBytes = 64 << 10

/*
DecodeJSON reads the request body into target, rejecting unknown fields.

An empty body decodes to the zero value, so endpoints with only optional
fields accept bare POSTs.
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Identity returns the caller's verified claims, or nil for anonymous requests.
func Identity(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetIdentity(request.Context())
}

/*
RequiredIdentity ensures the request is authenticated and returns its claims.

Returns apperr.Unauthorized if the request carries no verified token.
*/
func RequiredIdentity(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetIdentity(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}
