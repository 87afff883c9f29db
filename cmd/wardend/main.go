// Command wardend runs the governance daemon: the HTTP surface over the
// Redactor, Cost Ledger, Evidence Log, Mission Coordinator, and Transform
// Engine.
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

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("WARDEN_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		logger.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Info("wardend starting", "version", version, "port", cfg.Port)

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

	logger.Info("wardend shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}

	logger.Info("wardend stopped")
	return nil
}
