package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	configloader "github.com/oakmontlabs/timepunch/external/config"
	"github.com/oakmontlabs/timepunch/external/httpapi"
	mailerimpl "github.com/oakmontlabs/timepunch/external/mailer"
	repositoryimpl "github.com/oakmontlabs/timepunch/external/repository"
	"github.com/oakmontlabs/timepunch/internal/admin"
	"github.com/oakmontlabs/timepunch/internal/approval"
	"github.com/oakmontlabs/timepunch/internal/auth"
	"github.com/oakmontlabs/timepunch/internal/clock"
	"github.com/oakmontlabs/timepunch/internal/config"
	"github.com/oakmontlabs/timepunch/internal/project"
	"github.com/oakmontlabs/timepunch/internal/reports"
	"github.com/oakmontlabs/timepunch/internal/settings"
	"github.com/oakmontlabs/timepunch/internal/share"
	"github.com/samber/do/v2"
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching http server")
	runServer(injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	mailerimpl.RegisterDI(injector)
	auth.RegisterDI(injector)
	clock.RegisterDI(injector)
	reports.RegisterDI(injector)
	project.RegisterDI(injector)
	settings.RegisterDI(injector)
	admin.RegisterDI(injector)
	approval.RegisterDI(injector)
	share.RegisterDI(injector)
	httpapi.RegisterDI(injector)

	return injector
}

func runServer(injector do.Injector) {
	server, err := do.Invoke[*httpapi.Server](injector)
	if err != nil {
		slog.Error("failed to resolve http server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}
