// Package main is the entry point for the study partner server.
//
// main only assembles dependencies:
//  1. load configuration (.env + environment)
//  2. build the logger
//  3. open the document store (MongoDB, or SQLite for local work)
//  4. start the HTTP server, which owns the store from then on
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tamy417/study-partner-server/internal/apperror"
	"github.com/tamy417/study-partner-server/internal/config"
	"github.com/tamy417/study-partner-server/internal/repository"
	mongoRepo "github.com/tamy417/study-partner-server/internal/repository/mongo"
	sqliteRepo "github.com/tamy417/study-partner-server/internal/repository/sqlite"
	"github.com/tamy417/study-partner-server/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	store, err := openStore(cfg.Store, logger)
	if err != nil {
		if errors.Is(err, apperror.ErrStoreUnavailable) {
			logger.Error("document store unavailable",
				slog.String("driver", cfg.Store.Driver),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Error("failed to open store", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}

	srv := server.New(server.Config{
		Port:               cfg.Server.Port,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimitRPM:       cfg.Server.RateLimitRPM,
		TrustProxy:         cfg.Server.TrustProxy,
		Version:            cfg.App.Version,
	}, logger, store)

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func openStore(cfg config.StoreConfig, logger *slog.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		client, err := mongoRepo.New(ctx, cfg.MongoURI, cfg.DBName)
		if err != nil {
			return nil, err
		}
		if err := client.CreateIndexes(ctx); err != nil {
			// The service works without indexes, only slower.
			logger.Warn("failed to create indexes", slog.String("error", err.Error()))
		}
		logger.Info("connected to MongoDB", slog.String("database", cfg.DBName))
		return client, nil

	case config.DriverSQLite:
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("opened SQLite store", slog.String("path", cfg.SQLitePath))
		return db, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
