// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/checkmate/internal/auth"
	"github.com/taibuivan/checkmate/internal/platform/apperr"
	"github.com/taibuivan/checkmate/internal/platform/constants"
	"github.com/taibuivan/checkmate/internal/platform/sec"
	"github.com/taibuivan/checkmate/internal/platform/sqlite"
)

// memoryGuests is an in-process GuestRepository that honours the TTL against
// the service clock.
type memoryGuests struct {
	mu     sync.Mutex
	now    func() time.Time
	guests map[string]time.Time
}

func newMemoryGuests(now func() time.Time) *memoryGuests {
	return &memoryGuests{now: now, guests: make(map[string]time.Time)}
}

func (repository *memoryGuests) SaveGuest(_ context.Context, guest *auth.Guest, ttl time.Duration) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.guests[guest.ID] = repository.now().Add(ttl)
	return nil
}

func (repository *memoryGuests) FindGuest(_ context.Context, id string) (*auth.Guest, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	expiresAt, ok := repository.guests[id]
	if !ok || !repository.now().Before(expiresAt) {
		return nil, auth.ErrGuestNotFound
	}
	return &auth.Guest{ID: id, ExpiresAt: expiresAt}, nil
}

type fixture struct {
	service *auth.Service
	tokens  *sec.TokenService
	guests  *memoryGuests
	clock   *time.Time
}

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return sec.NewTokenServiceFromKeys(key, &key.PublicKey, constants.AuthIssuer)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := time.Now()
	now := func() time.Time { return clock }
	guests := newMemoryGuests(now)
	tokens := newTokenService(t)

	service := auth.NewService(auth.NewSQLiteAccountRepository(db), guests, tokens,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		auth.WithHashCost(bcrypt.MinCost),
		auth.WithClock(now),
		auth.WithGuestTTL(time.Hour),
	)
	return &fixture{service: service, tokens: tokens, guests: guests, clock: &clock}
}

func errorCode(err error) string {
	if appErr := apperr.As(err); appErr != nil {
		return appErr.Code
	}
	return ""
}

func TestRegister_NormalizesAndStripsHash(t *testing.T) {
	f := newFixture(t)

	account, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "  Magnus.C ",
		Email:    "Magnus@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "magnus.c", account.Username)
	require.NotNil(t, account.Email)
	assert.Equal(t, "magnus@example.com", *account.Email)
	assert.Empty(t, account.PasswordHash)
	assert.NotEmpty(t, account.ID)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		input auth.RegisterInput
	}{
		{"short username", auth.RegisterInput{Username: "ab", Password: "long enough"}},
		{"bad characters", auth.RegisterInput{Username: "bad name!", Password: "long enough"}},
		{"short password", auth.RegisterInput{Username: "hikaru", Password: "short"}},
		{"password over bcrypt limit", auth.RegisterInput{Username: "hikaru", Password: string(make([]byte, 73))}},
		{"bad email", auth.RegisterInput{Username: "hikaru", Email: "not-an-email", Password: "long enough"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Register(context.Background(), tt.input)
			assert.Equal(t, "VALIDATION_ERROR", errorCode(err))
		})
	}
}

func TestRegister_ConflictsComeFromConstraints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, auth.RegisterInput{Username: "judit", Email: "judit@example.com", Password: "polgar1976"})
	require.NoError(t, err)

	// Case and normalization do not dodge the unique constraint
	_, err = f.service.Register(ctx, auth.RegisterInput{Username: "JUDIT", Password: "polgar1976"})
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)

	_, err = f.service.Register(ctx, auth.RegisterInput{Username: "susan", Email: "JUDIT@example.com", Password: "polgar1976"})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	f := newFixture(t)

	var (
		mu      sync.Mutex
		created int
		taken   int
	)

	group, ctx := errgroup.WithContext(context.Background())
	for range 4 {
		group.Go(func() error {
			_, err := f.service.Register(ctx, auth.RegisterInput{Username: "vishy", Password: "anand1969"})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errorCode(err) == "USERNAME_TAKEN":
				taken++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, group.Wait())

	assert.Equal(t, 1, created)
	assert.Equal(t, 3, taken)
}

func TestLogin_UniformFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, auth.RegisterInput{Username: "bobby", Password: "fischer1972"})
	require.NoError(t, err)

	account, err := f.service.Login(ctx, "Bobby", "fischer1972")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, account.ID)
	assert.Empty(t, account.PasswordHash)

	_, wrongPassword := f.service.Login(ctx, "bobby", "spassky1972")
	_, unknownUser := f.service.Login(ctx, "boris", "fischer1972")

	require.NoError(t, f.service.DeleteAccount(ctx, registered.ID))
	_, deletedAccount := f.service.Login(ctx, "bobby", "fischer1972")

	for _, err := range []error{wrongPassword, unknownUser, deletedAccount} {
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		assert.Equal(t, auth.ErrInvalidCredentials.Message, err.Error())
	}
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.service.Register(ctx, auth.RegisterInput{Username: "garry", Password: "kasparov85"})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteAccount(ctx, account.ID))
	assert.ErrorIs(t, f.service.DeleteAccount(ctx, account.ID), auth.ErrAccountNotFound)

	_, err = f.service.Resolve(ctx, &sec.AuthClaims{PlayerID: account.ID, Kind: sec.KindUser})
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
}

func TestIssueToken_RoundTripsThroughVerifier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.service.Register(ctx, auth.RegisterInput{Username: "wesley", Password: "so19931009"})
	require.NoError(t, err)

	grant, err := f.service.IssueToken(account.IdentityOf())
	require.NoError(t, err)
	assert.Equal(t, "Bearer", grant.TokenType)

	claims, err := f.tokens.VerifyToken(grant.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.PlayerID)
	assert.Equal(t, sec.KindUser, claims.Kind)
	assert.Equal(t, "wesley", claims.Username)

	identity, err := f.service.Resolve(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, account.IdentityOf(), *identity)
}

func TestStartGuest_ExpiresWithTTL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	guest, err := f.service.StartGuest(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, guest.ExpiresAt.Sub(guest.CreatedAt))

	grant, err := f.service.IssueToken(guest.IdentityOf())
	require.NoError(t, err)

	// The token never outlives the guest
	assert.WithinDuration(t, guest.ExpiresAt, grant.ExpiresAt, time.Second)

	claims, err := f.tokens.VerifyToken(grant.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sec.KindGuest, claims.Kind)

	identity, err := f.service.Resolve(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, guest.ID, identity.ID)

	*f.clock = f.clock.Add(2 * time.Hour)
	_, err = f.service.Resolve(ctx, claims)
	assert.ErrorIs(t, err, auth.ErrGuestNotFound)
}
