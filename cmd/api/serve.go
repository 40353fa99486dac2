// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/checkmate/internal/api"
	"github.com/taibuivan/checkmate/internal/auth"
	"github.com/taibuivan/checkmate/internal/game"
	"github.com/taibuivan/checkmate/internal/platform/config"
	"github.com/taibuivan/checkmate/internal/platform/constants"
	"github.com/taibuivan/checkmate/internal/platform/migration"
	pgstore "github.com/taibuivan/checkmate/internal/platform/postgres"
	redisstore "github.com/taibuivan/checkmate/internal/platform/redis"
	"github.com/taibuivan/checkmate/internal/platform/sec"
	"github.com/taibuivan/checkmate/internal/platform/sqlite"
	"github.com/taibuivan/checkmate/internal/rules"
)

// startupTimeout bounds connecting to the stores, so misconfiguration is
// caught quickly rather than hanging indefinitely.
const startupTimeout = 30 * time.Second

// stores holds the repositories for the configured driver.
type stores struct {
	games    game.Repository
	accounts auth.AccountRepository
	check    api.HealthCheck
	close    func()
}

// # Startup Sequence
//
//  1. Load configuration.
//  2. Open the relational store (PostgreSQL or SQLite) and migrate it.
//  3. Connect to Redis.
//  4. Wire services and handlers.
//  5. Serve until SIGINT/SIGTERM, then drain in-flight requests.
func serve(ctx context.Context, log *slog.Logger) error {

	// ── 1. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Debug {
		log = newLogger(true)
		log.Debug("debug_logging_enabled")
	}
	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
	)

	startupCtx, startupCancel := context.WithTimeout(ctx, startupTimeout)
	defer startupCancel()

	// ── 2. Relational store ───────────────────────────────────────────────
	store, err := openStores(startupCtx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	// ── 3. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		log.Info("closing_redis_client")
		if closeErr := rdb.Close(); closeErr != nil {
			log.Error("redis_close_failed", slog.Any("error", closeErr))
		}
	}()

	// ── 4. Domain wiring ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return fmt.Errorf("initialize jwt service: %w", err)
	}

	authService := auth.NewService(store.accounts, auth.NewRedisGuestRepository(rdb), tokens, log,
		auth.WithTokenTTL(cfg.AccessTokenTTL),
		auth.WithGuestTTL(cfg.GuestTTL),
	)

	feed := game.NewRedisFeed(rdb, log)
	gameService := game.NewService(store.games, rules.NewOracle(), log, game.WithPublisher(feed))

	liveness, readiness := api.NewHealthHandlers([]api.HealthCheck{
		store.check,
		{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	}, log)

	// ── 5. HTTP server with graceful shutdown ─────────────────────────────
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(signalCtx, cfg, log, tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Game:      game.NewHandler(gameService, feed),
	})

	group, groupCtx := errgroup.WithContext(signalCtx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
		return server.Shutdown(constants.ShutdownTimeout)
	})

	if err := group.Wait(); err != nil {
		return err
	}

	log.Info("server_stopped_cleanly")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		log.Info("sqlite_opened", slog.String("path", cfg.SQLitePath))

		return &stores{
			games:    game.NewSQLiteRepository(db),
			accounts: auth.NewSQLiteAccountRepository(db),
			check:    api.HealthCheck{Name: "sqlite", Check: func(ctx context.Context) error { return db.PingContext(ctx) }},
			close:    closeSQLite(db, log),
		}, nil

	default:
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		return &stores{
			games:    game.NewPostgresRepository(pool),
			accounts: auth.NewPostgresAccountRepository(pool),
			check:    api.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
			close: func() {
				log.Info("closing_postgres_pool")
				pool.Close()
			},
		}, nil
	}
}

func closeSQLite(db *sql.DB, log *slog.Logger) func() {
	return func() {
		log.Info("closing_sqlite")
		if err := db.Close(); err != nil {
			log.Error("sqlite_close_failed", slog.Any("error", err))
		}
	}
}
