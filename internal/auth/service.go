// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/checkmate/internal/platform/constants"
	"github.com/taibuivan/checkmate/internal/platform/sec"
	"github.com/taibuivan/checkmate/internal/platform/validate"
	"github.com/taibuivan/checkmate/pkg/uuidv7"
)

// # Contracts & Types

// TokenIssuer signs access tokens. [*sec.TokenService] satisfies it.
type TokenIssuer interface {
	GenerateAccessToken(playerID, username string, kind sec.IdentityKind, timeToLive time.Duration) (string, error)
}

// Service implements registration, login and guest issuance.
//
// # Review Process
//
// Any change to hashing or to the login failure path must keep the unknown-user
// and wrong-password cases indistinguishable to the caller.
type Service struct {
	accounts AccountRepository
	guests   GuestRepository
	tokens   TokenIssuer
	tokenTTL time.Duration
	guestTTL time.Duration
	hashCost int
	now      func() time.Time
	logger   *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithTokenTTL sets the lifetime of issued access tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(service *Service) { service.tokenTTL = ttl }
}

// WithGuestTTL sets how long a guest identity lives.
func WithGuestTTL(ttl time.Duration) Option {
	return func(service *Service) { service.guestTTL = ttl }
}

// WithHashCost overrides the bcrypt work factor.
func WithHashCost(cost int) Option {
	return func(service *Service) { service.hashCost = cost }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// NewService constructs a new [Service] with its dependencies.
func NewService(accounts AccountRepository, guests GuestRepository, tokens TokenIssuer, logger *slog.Logger, options ...Option) *Service {
	service := &Service{
		accounts: accounts,
		guests:   guests,
		tokens:   tokens,
		tokenTTL: DefaultTokenTTL,
		guestTTL: DefaultGuestTTL,
		hashCost: constants.BcryptCost,
		now:      time.Now,
		logger:   logger,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new player.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

/*
Register validates, hashes and persists a new account.

Description: Username and email conflicts come from the store's unique
constraints, so two concurrent registrations cannot both succeed.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Account: Created account without its password hash
  - error: VALIDATION_ERROR, USERNAME_TAKEN, EMAIL_TAKEN or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Account, error) {

	// ── 1. Normalise ──
	username := NormalizeUsername(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// ── 2. Validate ──
	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).
		MinLen(FieldUsername, username, UsernameMinLength).
		MaxLen(FieldUsername, username, UsernameMaxLength).
		Username(FieldUsername, username).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		Custom(FieldPassword, len(input.Password) > PasswordMaxLength,
			fmt.Sprintf("Maximum %d bytes", PasswordMaxLength))
	if email != "" {
		validator.Email(FieldEmail, email).MaxLen(FieldEmail, email, EmailMaxLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 3. Hash ──
	hashedPassword, err := sec.HashPassword(input.Password, service.hashCost)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 4. Persist ──
	currentTime := service.now().UTC()
	account := &Account{
		ID:           uuidv7.New(),
		Username:     username,
		PasswordHash: hashedPassword,
		CreatedAt:    currentTime,
		UpdatedAt:    currentTime,
	}
	if email != "" {
		account.Email = &email
	}

	if err := service.accounts.CreateAccount(context, account); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "account_registered",
		slog.String("account_id", account.ID),
		slog.String("username", account.Username),
	)
	return account.withoutSecrets(), nil
}

// # Authentication Flow

/*
Login verifies a username and password.

Description: An unknown username, a wrong password and a deleted account all
return the same ErrInvalidCredentials after the same bcrypt work.

Parameters:
  - context: context.Context
  - username: string
  - password: string

Returns:
  - *Account: Authenticated account without its password hash
  - error: INVALID_CREDENTIALS or storage errors
*/
func (service *Service) Login(context context.Context, username, password string) (*Account, error) {
	account, err := service.accounts.FindAccountByUsername(context, NormalizeUsername(username))
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		sec.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}

	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	service.logger.InfoContext(context, "account_logged_in", slog.String("account_id", account.ID))
	return account.withoutSecrets(), nil
}

// StartGuest issues a new guest identity and stores it with the guest TTL.
func (service *Service) StartGuest(context context.Context) (*Guest, error) {
	currentTime := service.now().UTC()
	guest := &Guest{
		ID:        uuidv7.New(),
		CreatedAt: currentTime,
		ExpiresAt: currentTime.Add(service.guestTTL),
	}

	if err := service.guests.SaveGuest(context, guest, service.guestTTL); err != nil {
		return nil, fmt.Errorf("auth_service_start_guest_failed: %w", err)
	}

	service.logger.InfoContext(context, "guest_started", slog.String("guest_id", guest.ID))
	return guest, nil
}

// IssueToken signs an access token for identity. Guest tokens never outlive the guest.
func (service *Service) IssueToken(identity Identity) (*TokenGrant, error) {
	ttl := service.tokenTTL
	if identity.Kind == sec.KindGuest {
		ttl = min(ttl, service.guestTTL)
	}

	token, err := service.tokens.GenerateAccessToken(identity.ID, identity.Username, identity.Kind, ttl)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_token_failed: %w", err)
	}

	return &TokenGrant{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   service.now().UTC().Add(ttl),
		Identity:    identity,
	}, nil
}

// Resolve confirms that the identity behind a token still exists.
func (service *Service) Resolve(context context.Context, claims *sec.AuthClaims) (*Identity, error) {
	switch claims.Kind {
	case sec.KindUser:
		account, err := service.accounts.FindAccountByID(context, claims.PlayerID)
		if err != nil {
			return nil, err
		}
		identity := account.IdentityOf()
		return &identity, nil

	case sec.KindGuest:
		guest, err := service.guests.FindGuest(context, claims.PlayerID)
		if err != nil {
			return nil, err
		}
		identity := guest.IdentityOf()
		return &identity, nil
	}
	return nil, ErrInvalidCredentials
}

// DeleteAccount soft-deletes an account. Sessions the account played keep its ID.
func (service *Service) DeleteAccount(context context.Context, id string) error {
	affected, err := service.accounts.SoftDeleteAccount(context, id, service.now().UTC())
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAccountNotFound
	}

	service.logger.InfoContext(context, "account_deleted", slog.String("account_id", id))
	return nil
}

// # Helpers

// NormalizeUsername trims, NFC-normalises and lower-cases a username so that
// visually identical names collide.
func NormalizeUsername(username string) string {
	// A Caser is stateful; one per call
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(username)))
}
