package bids

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

// BidRepository defines the interface for bid persistence
type BidRepository interface {
	// SaveBid inserts the bid and fills in its store-assigned Sequence
	SaveBid(ctx context.Context, tx pgx.Tx, bid *lifecycle.Bid) error

	// GetBidByID retrieves a bid by its ID
	GetBidByID(ctx context.Context, bidID uuid.UUID) (*lifecycle.Bid, error)

	// GetBidByIDForUpdate retrieves a bid and locks its row.
	// The auction row must already be locked by the same transaction.
	GetBidByIDForUpdate(ctx context.Context, tx pgx.Tx, bidID uuid.UUID) (*lifecycle.Bid, error)

	// GetCompanyBid returns the company's bid on the auction, or nil when it has none
	GetCompanyBid(ctx context.Context, tx pgx.Tx, auctionID, companyID uuid.UUID) (*lifecycle.Bid, error)

	// UpdateActiveBid rewrites the editable fields of a bid that is still ACTIVE
	UpdateActiveBid(ctx context.Context, tx pgx.Tx, bid *lifecycle.Bid) error

	// UpdateBidStatus moves a bid from one status to another
	UpdateBidStatus(ctx context.Context, tx pgx.Tx, bidID uuid.UUID, from, to lifecycle.BidStatus) error

	// ListBidsByAuctionID returns every bid of the auction in rank order
	ListBidsByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*lifecycle.Bid, error)

	// ListBidsByCompanyID returns one page of a company's bids, newest first
	ListBidsByCompanyID(ctx context.Context, companyID uuid.UUID, page lifecycle.PageRequest) ([]*lifecycle.Bid, int64, error)

	// ListActiveBidsByAuctionIDs returns the ACTIVE bids of the given auctions, used for ranking
	ListActiveBidsByAuctionIDs(ctx context.Context, auctionIDs []uuid.UUID) ([]*lifecycle.Bid, error)
}

// AuctionReader is the part of auction persistence bidding needs
type AuctionReader interface {
	GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*lifecycle.Auction, error)
	GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*lifecycle.Auction, error)
}

// CompanyResolver maps a user to the transport company they bid for
type CompanyResolver interface {
	// GetCompanyIDForUser returns lifecycle.ErrNoCompany when the user has no company
	GetCompanyIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// ReferenceGenerator issues PREFIX-YYYYMM-NNNN references inside the caller's transaction
type ReferenceGenerator interface {
	Next(ctx context.Context, tx pgx.Tx, prefix string, at time.Time) (string, error)
}

// ActivityRecorder appends an activity (and its domain event) inside the caller's transaction
type ActivityRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, activity *lifecycle.Activity) error
}

// StatsInvalidator drops cached statistics after bid volume changes
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}
