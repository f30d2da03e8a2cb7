package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

// PostgresReferenceGenerator hands out monthly PREFIX-YYYYMM-NNNN references from a counter row.
// The counter bump belongs to the caller's transaction and rolls back with it.
type PostgresReferenceGenerator struct{}

func NewPostgresReferenceGenerator() *PostgresReferenceGenerator {
	return &PostgresReferenceGenerator{}
}

// Next increments the (prefix, period) counter and formats the new value
func (g *PostgresReferenceGenerator) Next(ctx context.Context, tx pgx.Tx, prefix string, at time.Time) (string, error) {
	query := `
		INSERT INTO reference_counters (prefix, period, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, period) DO UPDATE SET value = reference_counters.value + 1
		RETURNING value
	`
	period := lifecycle.ReferencePeriod(at)

	var value int64
	if err := tx.QueryRow(ctx, query, prefix, period).Scan(&value); err != nil {
		return "", fmt.Errorf("failed to bump reference counter: %w", err)
	}
	return lifecycle.FormatReference(prefix, period, value), nil
}
