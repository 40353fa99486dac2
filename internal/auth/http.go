// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/checkmate/internal/platform/apperr"
	"github.com/taibuivan/checkmate/internal/platform/middleware"
	requestutil "github.com/taibuivan/checkmate/internal/platform/request"
	"github.com/taibuivan/checkmate/internal/platform/respond"
	"github.com/taibuivan/checkmate/internal/platform/sec"
	"github.com/taibuivan/checkmate/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the identity entry points.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// RegisterRoutes mounts the authentication routes.
//
// # Endpoints
//   - POST   /register : Creates an account.
//   - POST   /login    : Exchanges credentials for an access token.
//   - POST   /guest    : Issues a guest identity and its token.
//   - GET    /me       : Returns the caller's identity.
//   - DELETE /me       : Soft-deletes the caller's account.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/guest", handler.startGuest)

	// Protected endpoints
	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireAuth)
		router.Get("/me", handler.me)
		router.Delete("/me", handler.deleteMe)
	})
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/*
register handles the creation of a new account.

POST /api/v1/auth/register

Response:
  - 201: Account
  - 400: VALIDATION_ERROR
  - 409: USERNAME_TAKEN / EMAIL_TAKEN
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, account)
}

/*
login authenticates an account and returns an access token.

POST /api/v1/auth/login

Response:
  - 200: TokenGrant
  - 401: INVALID_CREDENTIALS
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.Login(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	grant, err := handler.authService.IssueToken(account.IdentityOf())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, grant)
}

/*
startGuest issues a guest identity.

POST /api/v1/auth/guest

Response:
  - 201: TokenGrant
*/
func (handler *Handler) startGuest(writer http.ResponseWriter, request *http.Request) {
	guest, err := handler.authService.StartGuest(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	grant, err := handler.authService.IssueToken(guest.IdentityOf())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, grant)
}

func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	identity, err := handler.authService.Resolve(request.Context(), requestutil.Identity(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, identity)
}

func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Identity(request)
	if claims.Kind != sec.KindUser {
		respond.Error(writer, request, apperr.Forbidden("Guests have no account to delete"))
		return
	}

	if err := handler.authService.DeleteAccount(request.Context(), claims.PlayerID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
