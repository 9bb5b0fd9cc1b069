package main

import (
	"log/slog"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	configloader "github.com/oakmontlabs/timepunch/external/config"
	mailerimpl "github.com/oakmontlabs/timepunch/external/mailer"
	repositoryimpl "github.com/oakmontlabs/timepunch/external/repository"
	"github.com/oakmontlabs/timepunch/internal/auth"
	"github.com/oakmontlabs/timepunch/internal/reports"
)

var rootCmd = &cobra.Command{
	Use:   "timepunchctl",
	Short: "Maintenance commands for the timepunch backend",
	Long: `timepunchctl runs one-shot maintenance tasks against the same
database the backend uses: purging expired tokens, backfilling
employee codes, and generating weekly report snapshots.`,
}

// setupDI builds the same dependency graph as the backend, minus the
// HTTP surface.
func setupDI() do.Injector {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	injector := do.New()
	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	mailerimpl.RegisterDI(injector)
	auth.RegisterDI(injector)
	reports.RegisterDI(injector)
	return injector
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(codesCmd)
	rootCmd.AddCommand(reportsCmd)
}
