// Package main is the entry point of the interactive institute manager.
//
// The manager keeps one institute (courses, faculties, departments, groups,
// students) in the storage backend chosen by STORAGE_BACKEND and serves a
// numbered menu on stdin/stdout. Logs go to stderr.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alem-hub/institute-hub/config"
	"github.com/alem-hub/institute-hub/internal/application/registry"
	"github.com/alem-hub/institute-hub/internal/interface/console"
	"github.com/alem-hub/institute-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	// SIGINT keeps its default behaviour so Ctrl+C leaves a blocked prompt.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("starting institute manager",
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version),
		logger.String("env", string(cfg.App.Environment)),
		logger.Backend(string(cfg.Storage.Backend)),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	storage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer storage.close()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. CONSOLE
	// ─────────────────────────────────────────────────────────────────────────
	svc := registry.NewService(storage.repo,
		registry.WithLogger(log),
		registry.WithDefaultName(cfg.App.DefaultInstitute),
	)
	menu := console.New(svc, os.Stdin, os.Stdout,
		console.WithLogger(log),
		console.WithLocation(storage.location),
	)

	if err := menu.Run(ctx); err != nil {
		return err
	}

	log.Info("institute manager stopped")
	return nil
}

func setupLogger(cfg *config.Config) (*logger.Logger, error) {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	opts.Format = cfg.Observability.LogFormat
	opts.AddCaller = cfg.IsDevelopment()

	log, err := logger.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return log, nil
}
