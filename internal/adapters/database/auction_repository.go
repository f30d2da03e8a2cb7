package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floroz/ride-auction/internal/domain/auctions"
	"github.com/floroz/ride-auction/internal/domain/lifecycle"
	pkgdb "github.com/floroz/ride-auction/pkg/database"
)

const auctionColumns = `
	a.id, a.reference, a.booking_id, a.title, a.description, a.start_time, a.end_time,
	a.minimum_bid_amount, a.reserve_price, a.status, a.winning_bid_id, a.winner_company_id,
	a.awarded_at, a.awarded_by, a.created_by, a.created_at, a.updated_at`

// PostgresAuctionRepository implements auctions.AuctionRepository using pgx
type PostgresAuctionRepository struct {
	pool *pgxpool.Pool // Keep pool for non-transactional reads
}

// NewPostgresAuctionRepository creates a new PostgreSQL auction repository
func NewPostgresAuctionRepository(pool *pgxpool.Pool) *PostgresAuctionRepository {
	return &PostgresAuctionRepository{pool: pool}
}

// SaveAuction inserts a new auction within a transaction
func (r *PostgresAuctionRepository) SaveAuction(ctx context.Context, tx pgx.Tx, a *lifecycle.Auction) error {
	query := `
		INSERT INTO auctions (
			id, reference, booking_id, title, description, start_time, end_time,
			minimum_bid_amount, reserve_price, status, created_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.Exec(ctx, query,
		a.ID,
		a.Reference,
		a.BookingID,
		a.Title,
		a.Description,
		a.StartTime,
		a.EndTime,
		a.MinimumBidAmount,
		a.ReservePrice,
		a.Status,
		a.CreatedBy,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "auctions_booking_id_key") {
			return lifecycle.ErrAuctionExists
		}
		return fmt.Errorf("failed to insert auction: %w", err)
	}
	return nil
}

// GetAuctionByID retrieves an auction by its ID (non-transactional read)
func (r *PostgresAuctionRepository) GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*lifecycle.Auction, error) {
	return r.getAuctionByID(ctx, r.pool, auctionID, false)
}

// GetAuctionByIDForUpdate retrieves an auction and locks its row until the transaction ends
func (r *PostgresAuctionRepository) GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*lifecycle.Auction, error) {
	return r.getAuctionByID(ctx, tx, auctionID, true)
}

func (r *PostgresAuctionRepository) getAuctionByID(ctx context.Context, db pkgdb.DBTX, auctionID uuid.UUID, forUpdate bool) (*lifecycle.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions a WHERE a.id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	auction, err := scanAuction(db.QueryRow(ctx, query, auctionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, lifecycle.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

// ExistsForBooking reports whether the booking already has an auction
func (r *PostgresAuctionRepository) ExistsForBooking(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM auctions WHERE booking_id = $1)`, bookingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check auction for booking: %w", err)
	}
	return exists, nil
}

// UpdateDraft rewrites the editable fields of an auction still in DRAFT
func (r *PostgresAuctionRepository) UpdateDraft(ctx context.Context, tx pgx.Tx, a *lifecycle.Auction) error {
	query := `
		UPDATE auctions
		SET title = $1, description = $2, start_time = $3, end_time = $4,
			minimum_bid_amount = $5, reserve_price = $6, updated_at = $7
		WHERE id = $8 AND status = 'DRAFT'
	`
	result, err := tx.Exec(ctx, query,
		a.Title,
		a.Description,
		a.StartTime,
		a.EndTime,
		a.MinimumBidAmount,
		a.ReservePrice,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update auction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return lifecycle.ErrConcurrentChange
	}
	return nil
}

// ApplyTransition moves the auction between statuses, guarded by the expected current status
func (r *PostgresAuctionRepository) ApplyTransition(ctx context.Context, tx pgx.Tx, plan *lifecycle.TransitionPlan) error {
	query := `
		UPDATE auctions
		SET status = $1, start_time = $2, end_time = $3, updated_at = $4
		WHERE id = $5 AND status = $6
	`
	result, err := tx.Exec(ctx, query,
		plan.To,
		plan.StartTime,
		plan.EndTime,
		plan.Activity.CreatedAt,
		plan.AuctionID,
		plan.From,
	)
	if err != nil {
		return fmt.Errorf("failed to update auction status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return lifecycle.ErrConcurrentChange
	}
	return nil
}

// MarkCancelled sets status CANCELLED if the auction is still in status from
func (r *PostgresAuctionRepository) MarkCancelled(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, from lifecycle.AuctionStatus) error {
	query := `
		UPDATE auctions
		SET status = 'CANCELLED', updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	result, err := tx.Exec(ctx, query, auctionID, from)
	if err != nil {
		return fmt.Errorf("failed to cancel auction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return lifecycle.ErrConcurrentChange
	}
	return nil
}

// MarkAwarded records the winner if the auction is still in plan.From
func (r *PostgresAuctionRepository) MarkAwarded(ctx context.Context, tx pgx.Tx, plan *lifecycle.AwardPlan) error {
	query := `
		UPDATE auctions
		SET status = 'AWARDED', winning_bid_id = $1, winner_company_id = $2,
			awarded_at = $3, awarded_by = $4, updated_at = $3
		WHERE id = $5 AND status = $6
	`
	result, err := tx.Exec(ctx, query,
		plan.WinningBidID,
		plan.WinnerCompanyID,
		plan.AwardedAt,
		plan.AwardedBy,
		plan.AuctionID,
		plan.From,
	)
	if err != nil {
		return fmt.Errorf("failed to award auction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return lifecycle.ErrConcurrentChange
	}
	return nil
}

// DeleteAuction removes the auction row
func (r *PostgresAuctionRepository) DeleteAuction(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) error {
	result, err := tx.Exec(ctx, `DELETE FROM auctions WHERE id = $1`, auctionID)
	if err != nil {
		return fmt.Errorf("failed to delete auction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return lifecycle.ErrAuctionNotFound
	}
	return nil
}

// ListAuctions returns one page of a normalized query and the total match count
func (r *PostgresAuctionRepository) ListAuctions(ctx context.Context, q auctions.ListAuctionsQuery) ([]*lifecycle.Auction, int64, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Status != nil {
		where = append(where, "a.status = "+arg(*q.Status))
	}
	if q.CreatedFrom != nil {
		where = append(where, "a.created_at >= "+arg(*q.CreatedFrom))
	}
	if q.CreatedTo != nil {
		where = append(where, "a.created_at <= "+arg(*q.CreatedTo))
	}
	if q.CreatedBy != nil {
		where = append(where, "a.created_by = "+arg(*q.CreatedBy))
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		p := arg("%" + escapeLike(search) + "%")
		where = append(where, fmt.Sprintf("(a.title ILIKE %s OR a.reference ILIKE %s OR b.reference ILIKE %s)", p, p, p))
	}

	from := ` FROM auctions a JOIN bookings b ON b.id = a.booking_id`
	if len(where) > 0 {
		from += " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count auctions: %w", err)
	}

	// SortBy has been checked against the whitelist by Normalize. Unset values sort last in
	// both directions.
	direction := "DESC"
	if q.SortAsc {
		direction = "ASC"
	}
	order := fmt.Sprintf(" ORDER BY a.%s %s NULLS LAST, a.id %s", auctions.SortableColumns[q.SortBy], direction, direction)
	limit := fmt.Sprintf(" LIMIT %s OFFSET %s", arg(q.Page.Limit), arg(q.Page.Offset()))

	list, err := r.queryAuctions(ctx, `SELECT `+auctionColumns+from+order+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListAuctionsByCompany returns the auctions a company has bid on, newest first
func (r *PostgresAuctionRepository) ListAuctionsByCompany(ctx context.Context, companyID uuid.UUID, page lifecycle.PageRequest) ([]*lifecycle.Auction, int64, error) {
	filter := ` FROM auctions a WHERE EXISTS (SELECT 1 FROM bids WHERE bids.auction_id = a.id AND bids.company_id = $1)`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+filter, companyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count company auctions: %w", err)
	}

	query := `SELECT ` + auctionColumns + filter + ` ORDER BY a.created_at DESC, a.id DESC LIMIT $2 OFFSET $3`
	list, err := r.queryAuctions(ctx, query, companyID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// CountByStatus returns the number of auctions per status
func (r *PostgresAuctionRepository) CountByStatus(ctx context.Context) (map[lifecycle.AuctionStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM auctions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count auctions: %w", err)
	}
	defer rows.Close()

	counts := make(map[lifecycle.AuctionStatus]int64)
	for rows.Next() {
		var (
			status lifecycle.AuctionStatus
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan auction count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auction counts: %w", err)
	}
	return counts, nil
}

func (r *PostgresAuctionRepository) queryAuctions(ctx context.Context, query string, args ...any) ([]*lifecycle.Auction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query auctions: %w", err)
	}
	defer rows.Close()

	result := make([]*lifecycle.Auction, 0)
	for rows.Next() {
		auction, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		result = append(result, auction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auctions: %w", err)
	}
	return result, nil
}

func scanAuction(row pgx.Row) (*lifecycle.Auction, error) {
	var a lifecycle.Auction
	err := row.Scan(
		&a.ID,
		&a.Reference,
		&a.BookingID,
		&a.Title,
		&a.Description,
		&a.StartTime,
		&a.EndTime,
		&a.MinimumBidAmount,
		&a.ReservePrice,
		&a.Status,
		&a.WinningBidID,
		&a.WinnerCompanyID,
		&a.AwardedAt,
		&a.AwardedBy,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	normalizeAuctionTimes(&a)
	return &a, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
