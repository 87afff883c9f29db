package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emenda-labs/warden/core/driver"
	"github.com/emenda-labs/warden/core/evidence"
	"github.com/emenda-labs/warden/core/finops"
	"github.com/emenda-labs/warden/core/mission"
	"github.com/emenda-labs/warden/core/redact"
	"github.com/emenda-labs/warden/core/transform"
	"github.com/emenda-labs/warden/drivers/javapack"
	"github.com/emenda-labs/warden/drivers/jspack"
	"github.com/emenda-labs/warden/drivers/pypack"
	"github.com/emenda-labs/warden/internal/config"
	"github.com/emenda-labs/warden/internal/server"
	"github.com/emenda-labs/warden/pkg/clock"
)

// newServeCmd runs the same daemon as cmd/wardend, in the foreground,
// for local development.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the warden daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	registry := driver.NewRegistry()
	registry.Register(jspack.New("javascript"))
	registry.Register(jspack.New("typescript"))
	registry.Register(pypack.New())
	registry.Register(javapack.New())

	now := clock.Real()
	redactor := redact.NewDefaultEngine()
	evidenceLog := evidence.New(cfg.StorePath, now)
	ledger := finops.New(nil, now, evidenceLog)
	transformEngine := transform.New(registry, cfg.MutationRunnerTimeout)
	coordinator := mission.New(redactor, transformEngine, evidenceLog, logger, now)

	srv := &server.Server{
		Redactor:                 redactor,
		Ledger:                   ledger,
		Evidence:                 evidenceLog,
		Coordinator:              coordinator,
		Transform:                transformEngine,
		Logger:                   logger,
		DefaultMutationThreshold: cfg.DefaultMutationThreshold,
		MaxRequestBodyBytes:      cfg.MaxRequestBodyBytes,
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("warden serve listening", "port", cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
