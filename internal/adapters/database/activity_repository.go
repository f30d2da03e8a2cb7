package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

// PostgresActivityRepository appends to and reads the auction audit trail
type PostgresActivityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresActivityRepository creates a new PostgreSQL activity repository
func NewPostgresActivityRepository(pool *pgxpool.Pool) *PostgresActivityRepository {
	return &PostgresActivityRepository{pool: pool}
}

// SaveActivity appends an activity within a transaction
func (r *PostgresActivityRepository) SaveActivity(ctx context.Context, tx pgx.Tx, a *lifecycle.Activity) error {
	query := `
		INSERT INTO auction_activities (
			id, auction_id, activity_type, user_id, company_id, bid_id,
			previous_value, new_value, notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.Exec(ctx, query,
		a.ID,
		a.AuctionID,
		a.Type,
		a.UserID,
		a.CompanyID,
		a.BidID,
		a.PreviousValue,
		a.NewValue,
		a.Notes,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListActivitiesByAuctionID returns the trail of an auction, oldest first
func (r *PostgresActivityRepository) ListActivitiesByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*lifecycle.Activity, error) {
	query := `
		SELECT id, auction_id, activity_type, user_id, company_id, bid_id,
			previous_value, new_value, notes, created_at
		FROM auction_activities
		WHERE auction_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	result := make([]*lifecycle.Activity, 0)
	for rows.Next() {
		var a lifecycle.Activity
		if err := rows.Scan(
			&a.ID,
			&a.AuctionID,
			&a.Type,
			&a.UserID,
			&a.CompanyID,
			&a.BidID,
			&a.PreviousValue,
			&a.NewValue,
			&a.Notes,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		utc(&a.CreatedAt)
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return result, nil
}
