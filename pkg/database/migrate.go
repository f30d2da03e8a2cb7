package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
)

// Migrate runs a goose command ("up", "down", "status", "version", ...) against the
// migrations in dir. goose needs database/sql, so a short-lived pgx stdlib handle is opened.
func Migrate(ctx context.Context, connStr, dir, command string, args ...string) error {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open sql db for migrations: %w", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for migrations: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, absPath, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
