// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/arcadelabs/arcade/internal/auth"
	authpg "github.com/arcadelabs/arcade/internal/auth/postgres"
	"github.com/arcadelabs/arcade/internal/catalog"
	catalogpg "github.com/arcadelabs/arcade/internal/catalog/postgres"
	"github.com/arcadelabs/arcade/internal/config"
	"github.com/arcadelabs/arcade/internal/logging"
	"github.com/arcadelabs/arcade/internal/observability"
	"github.com/arcadelabs/arcade/internal/space"
	spacepg "github.com/arcadelabs/arcade/internal/space/postgres"
	"github.com/arcadelabs/arcade/internal/store"
	"github.com/arcadelabs/arcade/internal/web"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Arcade API server",
		Long: `Start the Arcade API server together with the observability
sidecar for metrics and health probes.`,
		RunE: runServe,
	}
	defaults := config.Default()
	cmd.Flags().String("listen_addr", defaults.ListenAddr, "API server bind address")
	cmd.Flags().String("database_url", defaults.DatabaseURL, "PostgreSQL connection string")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger := logging.Setup("arcade", version, cfg.LogFormat, nil)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer pool.Close()

	catalogSvc, err := catalog.NewService(catalogpg.NewRepository(pool))
	if err != nil {
		return err
	}

	authSvc, err := auth.NewService(auth.ServiceConfig{
		Users:      authpg.NewUserRepository(pool),
		Sessions:   authpg.NewSessionRepository(pool),
		Hasher:     auth.NewArgon2idHasher(),
		Avatars:    catalogSvc,
		Tx:         authpg.NewTransactor(pool),
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	spaceSvc, err := space.NewService(space.ServiceConfig{
		Repo:    spacepg.NewRepository(pool),
		Catalog: catalogSvc,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	// Readiness flips once the API listener is up and flips back on shutdown.
	var ready atomic.Bool
	obs := observability.NewServer(cfg.ObservabilityAddr, ready.Load)
	obsErrCh, err := obs.Start()
	if err != nil {
		return err
	}

	server, err := web.NewServer(web.Config{
		Auth:    authSvc,
		Catalog: catalogSvc,
		Spaces:  spaceSvc,
		Metrics: obs.Metrics(),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	serveErrCh := make(chan error, 1)
	go func() {
		ready.Store(true)
		serveErrCh <- server.Start(cfg.ListenAddr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-serveErrCh:
		if err != nil {
			return err
		}
	case err = <-obsErrCh:
		if err != nil {
			return oops.Code("OBSERVABILITY_FAILED").Wrap(err)
		}
	}

	ready.Store(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return obs.Stop(shutdownCtx)
}
