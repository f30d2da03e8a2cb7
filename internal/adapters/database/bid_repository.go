package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
	pkgdb "github.com/floroz/ride-auction/pkg/database"
)

const bidColumns = `
	id, seq, reference, auction_id, company_id, bidder_user_id, bid_amount,
	estimated_completion_time, additional_services, notes, proposed_driver_id,
	proposed_car_id, status, created_at, updated_at`

// Bids are ranked by amount and then by insertion order
const bidRankOrder = ` ORDER BY bid_amount DESC, seq ASC`

// PostgresBidRepository implements the bid ports of both the auctions and bids services
type PostgresBidRepository struct {
	pool *pgxpool.Pool // Keep pool for read-only operations
}

// NewPostgresBidRepository creates a new PostgreSQL bid repository
func NewPostgresBidRepository(pool *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{pool: pool}
}

// SaveBid inserts a bid and reads back its insertion sequence
func (r *PostgresBidRepository) SaveBid(ctx context.Context, tx pgx.Tx, bid *lifecycle.Bid) error {
	query := `
		INSERT INTO bids (
			id, reference, auction_id, company_id, bidder_user_id, bid_amount,
			estimated_completion_time, additional_services, notes, proposed_driver_id,
			proposed_car_id, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING seq
	`
	err := tx.QueryRow(ctx, query,
		bid.ID,
		bid.Reference,
		bid.AuctionID,
		bid.CompanyID,
		bid.BidderUserID,
		bid.Amount,
		bid.EstimatedCompletionTime,
		bid.AdditionalServices,
		bid.Notes,
		bid.ProposedDriverID,
		bid.ProposedCarID,
		bid.Status,
		bid.CreatedAt,
		bid.UpdatedAt,
	).Scan(&bid.Sequence)
	if err != nil {
		if isUniqueViolation(err, "bids_auction_company_key") {
			return lifecycle.ErrBidExists
		}
		return fmt.Errorf("failed to insert bid: %w", err)
	}
	return nil
}

// GetBidByID retrieves a bid by its ID
func (r *PostgresBidRepository) GetBidByID(ctx context.Context, bidID uuid.UUID) (*lifecycle.Bid, error) {
	return r.getBidByID(ctx, r.pool, bidID, false)
}

// GetBidByIDForUpdate retrieves a bid and locks its row
func (r *PostgresBidRepository) GetBidByIDForUpdate(ctx context.Context, tx pgx.Tx, bidID uuid.UUID) (*lifecycle.Bid, error) {
	return r.getBidByID(ctx, tx, bidID, true)
}

func (r *PostgresBidRepository) getBidByID(ctx context.Context, db pkgdb.DBTX, bidID uuid.UUID, forUpdate bool) (*lifecycle.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	bid, err := scanBid(db.QueryRow(ctx, query, bidID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, lifecycle.ErrBidNotFound
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return bid, nil
}

// GetCompanyBid returns the company's bid on the auction, or nil when it has none
func (r *PostgresBidRepository) GetCompanyBid(ctx context.Context, tx pgx.Tx, auctionID, companyID uuid.UUID) (*lifecycle.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE auction_id = $1 AND company_id = $2`

	bid, err := scanBid(tx.QueryRow(ctx, query, auctionID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company bid: %w", err)
	}
	return bid, nil
}

// UpdateActiveBid rewrites the editable fields of a bid that is still ACTIVE
func (r *PostgresBidRepository) UpdateActiveBid(ctx context.Context, tx pgx.Tx, bid *lifecycle.Bid) error {
	query := `
		UPDATE bids
		SET bid_amount = $1, estimated_completion_time = $2, additional_services = $3,
			notes = $4, proposed_driver_id = $5, proposed_car_id = $6, updated_at = $7
		WHERE id = $8 AND status = 'ACTIVE'
	`
	result, err := tx.Exec(ctx, query,
		bid.Amount,
		bid.EstimatedCompletionTime,
		bid.AdditionalServices,
		bid.Notes,
		bid.ProposedDriverID,
		bid.ProposedCarID,
		bid.UpdatedAt,
		bid.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bid: %w", err)
	}
	if result.RowsAffected() == 0 {
		return lifecycle.ErrBidNotActive
	}
	return nil
}

// UpdateBidStatus moves a bid from one status to another
func (r *PostgresBidRepository) UpdateBidStatus(ctx context.Context, tx pgx.Tx, bidID uuid.UUID, from, to lifecycle.BidStatus) error {
	query := `
		UPDATE bids
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	result, err := tx.Exec(ctx, query, to, bidID, from)
	if err != nil {
		return fmt.Errorf("failed to update bid status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return lifecycle.ErrBidNotActive
	}
	return nil
}

// AcceptBid sets the bid ACCEPTED if it is still ACTIVE
func (r *PostgresBidRepository) AcceptBid(ctx context.Context, tx pgx.Tx, bidID uuid.UUID) error {
	err := r.UpdateBidStatus(ctx, tx, bidID, lifecycle.BidStatusActive, lifecycle.BidStatusAccepted)
	if isUniqueViolation(err, "bids_one_accepted_per_auction") {
		return lifecycle.ErrConcurrentChange
	}
	return err
}

// WithdrawActiveBids sets every ACTIVE bid of the auction to WITHDRAWN in one statement
func (r *PostgresBidRepository) WithdrawActiveBids(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (int64, error) {
	query := `
		UPDATE bids
		SET status = 'WITHDRAWN', updated_at = NOW()
		WHERE auction_id = $1 AND status = 'ACTIVE'
	`
	result, err := tx.Exec(ctx, query, auctionID)
	if err != nil {
		return 0, fmt.Errorf("failed to withdraw bids: %w", err)
	}
	return result.RowsAffected(), nil
}

// RejectOtherActiveBids sets every other ACTIVE bid of the auction to REJECTED
func (r *PostgresBidRepository) RejectOtherActiveBids(ctx context.Context, tx pgx.Tx, auctionID, winningBidID uuid.UUID) (int64, error) {
	query := `
		UPDATE bids
		SET status = 'REJECTED', updated_at = NOW()
		WHERE auction_id = $1 AND id <> $2 AND status = 'ACTIVE'
	`
	result, err := tx.Exec(ctx, query, auctionID, winningBidID)
	if err != nil {
		return 0, fmt.Errorf("failed to reject bids: %w", err)
	}
	return result.RowsAffected(), nil
}

// CountBidsByAuctionID counts every bid of the auction, whatever its status
func (r *PostgresBidRepository) CountBidsByAuctionID(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (int64, error) {
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM bids WHERE auction_id = $1`, auctionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bids: %w", err)
	}
	return count, nil
}

// SummarizeBids returns bid count and highest non-withdrawn amount per auction.
// Auctions without bids are absent from the result.
func (r *PostgresBidRepository) SummarizeBids(ctx context.Context, auctionIDs []uuid.UUID) (map[uuid.UUID]lifecycle.BidSummary, error) {
	summaries := make(map[uuid.UUID]lifecycle.BidSummary, len(auctionIDs))
	if len(auctionIDs) == 0 {
		return summaries, nil
	}

	query := `
		SELECT auction_id, COUNT(*), MAX(bid_amount) FILTER (WHERE status <> 'WITHDRAWN')
		FROM bids
		WHERE auction_id = ANY($1::uuid[])
		GROUP BY auction_id
	`
	rows, err := r.pool.Query(ctx, query, auctionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize bids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			auctionID uuid.UUID
			summary   lifecycle.BidSummary
		)
		if err := rows.Scan(&auctionID, &summary.Count, &summary.HighestBidAmount); err != nil {
			return nil, fmt.Errorf("failed to scan bid summary: %w", err)
		}
		summaries[auctionID] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bid summaries: %w", err)
	}
	return summaries, nil
}

// BidVolume aggregates all bids for the statistics projection
func (r *PostgresBidRepository) BidVolume(ctx context.Context) (lifecycle.BidVolume, error) {
	query := `
		SELECT COUNT(*), COALESCE(AVG(bid_amount), 0), COALESCE(MAX(bid_amount), 0), COALESCE(SUM(bid_amount), 0)
		FROM bids
	`
	var volume lifecycle.BidVolume
	err := r.pool.QueryRow(ctx, query).Scan(&volume.Count, &volume.Average, &volume.Max, &volume.Sum)
	if err != nil {
		return volume, fmt.Errorf("failed to aggregate bids: %w", err)
	}
	return volume, nil
}

// ListBidsByAuctionID returns every bid of the auction in rank order, inactive bids last
func (r *PostgresBidRepository) ListBidsByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*lifecycle.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE auction_id = $1
		ORDER BY (status = 'ACTIVE') DESC, bid_amount DESC, seq ASC`
	return r.queryBids(ctx, query, auctionID)
}

// ListBidsByCompanyID returns one page of a company's bids, newest first
func (r *PostgresBidRepository) ListBidsByCompanyID(ctx context.Context, companyID uuid.UUID, page lifecycle.PageRequest) ([]*lifecycle.Bid, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bids WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count company bids: %w", err)
	}

	query := `SELECT ` + bidColumns + ` FROM bids WHERE company_id = $1
		ORDER BY created_at DESC, seq DESC LIMIT $2 OFFSET $3`
	list, err := r.queryBids(ctx, query, companyID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListActiveBidsByAuctionIDs returns the ACTIVE bids of the given auctions
func (r *PostgresBidRepository) ListActiveBidsByAuctionIDs(ctx context.Context, auctionIDs []uuid.UUID) ([]*lifecycle.Bid, error) {
	if len(auctionIDs) == 0 {
		return []*lifecycle.Bid{}, nil
	}
	query := `SELECT ` + bidColumns + ` FROM bids WHERE auction_id = ANY($1::uuid[]) AND status = 'ACTIVE'` + bidRankOrder
	return r.queryBids(ctx, query, auctionIDs)
}

func (r *PostgresBidRepository) queryBids(ctx context.Context, query string, args ...any) ([]*lifecycle.Bid, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids: %w", err)
	}
	defer rows.Close()

	result := make([]*lifecycle.Bid, 0)
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		result = append(result, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}
	return result, nil
}

func scanBid(row pgx.Row) (*lifecycle.Bid, error) {
	var b lifecycle.Bid
	err := row.Scan(
		&b.ID,
		&b.Sequence,
		&b.Reference,
		&b.AuctionID,
		&b.CompanyID,
		&b.BidderUserID,
		&b.Amount,
		&b.EstimatedCompletionTime,
		&b.AdditionalServices,
		&b.Notes,
		&b.ProposedDriverID,
		&b.ProposedCarID,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	normalizeBidTimes(&b)
	return &b, nil
}
