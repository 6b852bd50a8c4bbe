package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/janisto/devsecops-backend/internal/config"
	"github.com/janisto/devsecops-backend/internal/http/health"
	applog "github.com/janisto/devsecops-backend/internal/platform/logging"
	"github.com/janisto/devsecops-backend/internal/platform/metrics"
	"github.com/janisto/devsecops-backend/internal/server"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

// metricsNamespace prefixes every application metric.
const metricsNamespace = "devsecops_backend"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		applog.LogError(context.Background(), "server exited with error", err)
	}
	if syncErr := applog.Sync(); syncErr != nil {
		fmt.Fprintf(os.Stderr, "logger sync error: %v\n", syncErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := applog.Err(); err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	applog.LogInfo(ctx, "starting",
		zap.String("version", Version),
		zap.String("env", cfg.Env),
		zap.String("addr", cfg.Addr()),
		zap.String("adminAddr", cfg.AdminAddr()),
		zap.Stringer("logLevel", applog.Level()),
	)

	return newServer(cfg).Run(ctx)
}

func newServer(cfg *config.Config) *server.Server {
	m := metrics.New(metricsNamespace)
	checker := health.NewChecker()
	public, api := server.NewPublic(cfg, m, Version)
	admin := server.NewAdmin(api, m, checker)
	return server.New(cfg, public, admin, checker)
}
