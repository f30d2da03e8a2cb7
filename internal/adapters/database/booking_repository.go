package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

// PostgresBookingRepository is the booking gateway over the shared bookings table.
// Reads and writes join the caller's transaction.
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgreSQL booking repository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

// GetBookingForUpdate reads the booking and locks its row
func (r *PostgresBookingRepository) GetBookingForUpdate(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*lifecycle.Booking, error) {
	query := `
		SELECT id, reference, status, base_amount, total_amount, assigned_driver_id, assigned_car_id
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`
	var b lifecycle.Booking
	err := tx.QueryRow(ctx, query, bookingID).Scan(
		&b.ID,
		&b.Reference,
		&b.Status,
		&b.BaseAmount,
		&b.TotalAmount,
		&b.AssignedDriverID,
		&b.AssignedCarID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, lifecycle.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// UpdateBookingStatus writes the booking status. Driver and car are only overwritten when set.
func (r *PostgresBookingRepository) UpdateBookingStatus(ctx context.Context, tx pgx.Tx, update lifecycle.BookingUpdate) error {
	query := `
		UPDATE bookings
		SET status = $1,
			assigned_driver_id = COALESCE($2, assigned_driver_id),
			assigned_car_id = COALESCE($3, assigned_car_id),
			updated_at = NOW()
		WHERE id = $4
	`
	result, err := tx.Exec(ctx, query, update.Status, update.AssignedDriverID, update.AssignedCarID, update.BookingID)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return lifecycle.ErrBookingNotFound
	}
	return nil
}

// GetBookingByID reads a booking outside any transaction
func (r *PostgresBookingRepository) GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*lifecycle.Booking, error) {
	query := `
		SELECT id, reference, status, base_amount, total_amount, assigned_driver_id, assigned_car_id
		FROM bookings
		WHERE id = $1
	`
	var b lifecycle.Booking
	err := r.pool.QueryRow(ctx, query, bookingID).Scan(
		&b.ID,
		&b.Reference,
		&b.Status,
		&b.BaseAmount,
		&b.TotalAmount,
		&b.AssignedDriverID,
		&b.AssignedCarID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, lifecycle.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}
