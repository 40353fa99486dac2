// Copyright (c) 2026 Checkmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Checkmate HTTP API server.
//
// # Commands
//
//	checkmate serve              start the API (default)
//	checkmate migrate up         apply pending PostgreSQL migrations
//	checkmate migrate down -n 1  roll back the last migration
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/taibuivan/checkmate/internal/platform/config"
	"github.com/taibuivan/checkmate/internal/platform/constants"
	"github.com/taibuivan/checkmate/internal/platform/migration"
	"github.com/taibuivan/checkmate/internal/platform/sqlite"
)

func main() {
	// Initialize first so that startup errors are structured JSON.
	log := newLogger(false)

	command := &cli.Command{
		Name:           "checkmate",
		Usage:          "multiplayer chess session coordinator",
		Version:        constants.AppVersion,
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the HTTP API server",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return serve(ctx, log)
				},
			},
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Commands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply all pending migrations",
						Action: func(ctx context.Context, _ *cli.Command) error {
							return migrateUp(ctx, log)
						},
					},
					{
						Name:  "down",
						Usage: "roll back migrations (PostgreSQL only)",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Aliases: []string{"n"}, Value: 1, Usage: "number of migrations to roll back"},
						},
						Action: func(_ context.Context, command *cli.Command) error {
							return migrateDown(int(command.Int("steps")), log)
						},
					},
				},
			},
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.Error("startup_failure", slog.Any("error", err))
		os.Exit(1)
	}
}

// newLogger builds the process-wide JSON logger and sets it as the default.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String(constants.FieldApp, constants.AppName))
	slog.SetDefault(log)
	return log
}

func migrateUp(ctx context.Context, log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.StoreDriver == config.DriverSQLite {
		// Opening the embedded store applies its migrations
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		log.Info("migrations_applied", slog.String("driver", cfg.StoreDriver))
		return db.Close()
	}

	return migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
}

func migrateDown(steps int, log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.DriverPostgres {
		return errors.New("migrate down is only supported for STORE_DRIVER=postgres")
	}
	return migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, steps, log)
}
