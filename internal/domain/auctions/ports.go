package auctions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

// AuctionRepository defines the interface for auction persistence
type AuctionRepository interface {
	// SaveAuction inserts a new auction within a transaction
	SaveAuction(ctx context.Context, tx pgx.Tx, auction *lifecycle.Auction) error

	// GetAuctionByID retrieves an auction by its ID
	GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*lifecycle.Auction, error)

	// GetAuctionByIDForUpdate retrieves an auction and locks its row.
	// Every mutation of an auction or of its bids takes this lock first.
	GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*lifecycle.Auction, error)

	// ExistsForBooking reports whether the booking already has an auction
	ExistsForBooking(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (bool, error)

	// UpdateDraft rewrites the editable fields of a DRAFT auction
	UpdateDraft(ctx context.Context, tx pgx.Tx, auction *lifecycle.Auction) error

	// ApplyTransition moves the auction from plan.From to plan.To and rewrites its schedule
	ApplyTransition(ctx context.Context, tx pgx.Tx, plan *lifecycle.TransitionPlan) error

	// MarkCancelled sets status CANCELLED if the auction is still in status from
	MarkCancelled(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, from lifecycle.AuctionStatus) error

	// MarkAwarded records the winner if the auction is still in plan.From
	MarkAwarded(ctx context.Context, tx pgx.Tx, plan *lifecycle.AwardPlan) error

	// DeleteAuction removes the auction row
	DeleteAuction(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) error

	// ListAuctions returns one page of a normalized query and the total match count
	ListAuctions(ctx context.Context, query ListAuctionsQuery) ([]*lifecycle.Auction, int64, error)

	// ListAuctionsByCompany returns the auctions a company has bid on, newest first
	ListAuctionsByCompany(ctx context.Context, companyID uuid.UUID, page lifecycle.PageRequest) ([]*lifecycle.Auction, int64, error)

	// CountByStatus returns the number of auctions per status
	CountByStatus(ctx context.Context) (map[lifecycle.AuctionStatus]int64, error)
}

// BidRepository is the part of bid persistence the auction lifecycle drives
type BidRepository interface {
	// GetBidByID retrieves a bid without locking it
	GetBidByID(ctx context.Context, bidID uuid.UUID) (*lifecycle.Bid, error)

	// GetBidByIDForUpdate retrieves a bid and locks its row
	GetBidByIDForUpdate(ctx context.Context, tx pgx.Tx, bidID uuid.UUID) (*lifecycle.Bid, error)

	// CountBidsByAuctionID counts every bid of the auction, whatever its status
	CountBidsByAuctionID(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (int64, error)

	// SummarizeBids returns bid count and highest non-withdrawn amount per auction
	SummarizeBids(ctx context.Context, auctionIDs []uuid.UUID) (map[uuid.UUID]lifecycle.BidSummary, error)

	// BidVolume aggregates all bids for the statistics projection
	BidVolume(ctx context.Context) (lifecycle.BidVolume, error)

	// WithdrawActiveBids sets every ACTIVE bid of the auction to WITHDRAWN in one statement
	WithdrawActiveBids(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (int64, error)

	// AcceptBid sets the bid ACCEPTED if it is still ACTIVE
	AcceptBid(ctx context.Context, tx pgx.Tx, bidID uuid.UUID) error

	// RejectOtherActiveBids sets every other ACTIVE bid of the auction to REJECTED
	RejectOtherActiveBids(ctx context.Context, tx pgx.Tx, auctionID, winningBidID uuid.UUID) (int64, error)
}

// BookingGateway reads and writes the booking an auction is attached to.
// Writes join the caller's transaction.
type BookingGateway interface {
	GetBookingForUpdate(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*lifecycle.Booking, error)
	UpdateBookingStatus(ctx context.Context, tx pgx.Tx, update lifecycle.BookingUpdate) error
}

// ReferenceGenerator issues PREFIX-YYYYMM-NNNN references inside the caller's transaction
type ReferenceGenerator interface {
	Next(ctx context.Context, tx pgx.Tx, prefix string, at time.Time) (string, error)
}

// ActivityRecorder appends an activity (and its domain event) inside the caller's transaction
type ActivityRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, activity *lifecycle.Activity) error
}

// ActivityReader reads the audit trail
type ActivityReader interface {
	ListActivitiesByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*lifecycle.Activity, error)
}

// StatsCache caches the statistics projection. version is read with Get and passed back to
// Set so that a value computed before an invalidation is never served after it.
type StatsCache interface {
	Get(ctx context.Context) (stats *lifecycle.AuctionStats, version int64, err error)
	Set(ctx context.Context, version int64, stats *lifecycle.AuctionStats) error
	Invalidate(ctx context.Context) error
}
