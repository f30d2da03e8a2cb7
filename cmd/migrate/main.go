// Command migrate applies the goose migrations to AUCTION_DB_URL.
//
//	migrate [up|down|status|version|redo|reset] [args...]
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/floroz/ride-auction/internal/config"
	"github.com/floroz/ride-auction/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	command := "up"
	var args []string
	if len(os.Args) > 1 {
		command = os.Args[1]
		args = os.Args[2:]
	}

	logger.Info("Running migrations", "command", command, "dir", cfg.MigrationsDir)
	if err := database.Migrate(context.Background(), cfg.DatabaseURL, cfg.MigrationsDir, command, args...); err != nil {
		logger.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Migrations complete")
}
