package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/CPSG-31/kbti-backend/docs"
	"github.com/CPSG-31/kbti-backend/internal/config"
	"github.com/CPSG-31/kbti-backend/internal/database"
	"github.com/CPSG-31/kbti-backend/internal/logger"
	"github.com/CPSG-31/kbti-backend/internal/metrics"
	"github.com/CPSG-31/kbti-backend/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func serveCommand(cfg *config.Config) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, skipMigrations bool) error {
	log := logger.Logger
	log.Info("Starting KBTI service", zap.String("version", version))

	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if !skipMigrations {
		if err := database.Migrate(db, cfg.MigrationsPath); err != nil {
			return err
		}
	}

	registry, err := metrics.NewRegistry()
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	srv := server.NewHTTPServer(fmt.Sprintf(":%d", cfg.Server.Port), server.NewRouter(cfg, db, log, registry))

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("Server exited")
	return nil
}
