package bids

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
	"github.com/floroz/ride-auction/pkg/database"
)

// Service places and maintains bids. Writes lock the auction row before any bid row.
type Service struct {
	txManager  database.TransactionManager
	bids       BidRepository
	auctions   AuctionReader
	companies  CompanyResolver
	references ReferenceGenerator
	recorder   ActivityRecorder
	stats      StatsInvalidator
	logger     *slog.Logger
}

// NewService creates a new bid service
func NewService(
	txManager database.TransactionManager,
	bids BidRepository,
	auctions AuctionReader,
	companies CompanyResolver,
	references ReferenceGenerator,
	recorder ActivityRecorder,
	stats StatsInvalidator,
	logger *slog.Logger,
) *Service {
	return &Service{
		txManager:  txManager,
		bids:       bids,
		auctions:   auctions,
		companies:  companies,
		references: references,
		recorder:   recorder,
		stats:      stats,
		logger:     logger,
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// ResolveCompany returns the company the user bids for
func (s *Service) ResolveCompany(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return s.companies.GetCompanyIDForUser(ctx, userID)
}

// PlaceBid places the first bid of the caller's company on an ACTIVE auction.
// A company that already holds a bid must update it instead.
func (s *Service) PlaceBid(ctx context.Context, cmd PlaceBidCommand) (*lifecycle.RankedBid, error) {
	companyID, err := s.companies.GetCompanyIDForUser(ctx, cmd.BidderUserID)
	if err != nil {
		return nil, err
	}
	cmd.CompanyID = companyID

	var placed *lifecycle.Bid
	err = s.withAuctionLock(ctx, cmd.AuctionID, func(tx pgx.Tx, auction *lifecycle.Auction, at time.Time) error {
		existing, err := s.bids.GetCompanyBid(ctx, tx, auction.ID, companyID)
		if err != nil {
			return fmt.Errorf("failed to check existing bid: %w", err)
		}

		plan, err := lifecycle.PlanPlaceBid(auction, existing, cmd, at)
		if err != nil {
			return err
		}

		reference, err := s.references.Next(ctx, tx, lifecycle.BidReferencePrefix, at)
		if err != nil {
			return fmt.Errorf("failed to generate reference: %w", err)
		}
		plan.Bid.Reference = reference

		// The unique (auction_id, company_id) constraint reports a lost race as ErrBidExists
		if err := s.bids.SaveBid(ctx, tx, plan.Bid); err != nil {
			return err
		}
		if err := s.recorder.Record(ctx, tx, plan.Activity); err != nil {
			return fmt.Errorf("failed to record activity: %w", err)
		}

		placed = plan.Bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bid placed",
		"bid_id", placed.ID,
		"auction_id", placed.AuctionID,
		"company_id", placed.CompanyID,
		"amount", placed.Amount.StringFixed(lifecycle.MoneyPlaces),
	)
	return s.ranked(ctx, placed)
}

// UpdateBid changes the caller's own ACTIVE bid while its auction is open
func (s *Service) UpdateBid(ctx context.Context, cmd UpdateBidCommand) (*lifecycle.RankedBid, error) {
	var updated *lifecycle.Bid
	err := s.withBidLock(ctx, cmd.BidID, func(tx pgx.Tx, auction *lifecycle.Auction, bid *lifecycle.Bid, at time.Time) error {
		plan, err := lifecycle.PlanUpdateBid(auction, bid, cmd.Patch, cmd.UserID, at)
		if err != nil {
			return err
		}

		if err := s.bids.UpdateActiveBid(ctx, tx, plan.Bid); err != nil {
			return err
		}
		if plan.Activity != nil {
			if err := s.recorder.Record(ctx, tx, plan.Activity); err != nil {
				return fmt.Errorf("failed to record activity: %w", err)
			}
		}

		updated = plan.Bid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ranked(ctx, updated)
}

// WithdrawBid revokes the caller's own ACTIVE bid, whatever the auction status
func (s *Service) WithdrawBid(ctx context.Context, cmd WithdrawBidCommand) (*lifecycle.RankedBid, error) {
	var withdrawn *lifecycle.Bid
	err := s.withBidLock(ctx, cmd.BidID, func(tx pgx.Tx, _ *lifecycle.Auction, bid *lifecycle.Bid, at time.Time) error {
		plan, err := lifecycle.PlanWithdrawBid(bid, cmd.UserID, at)
		if err != nil {
			return err
		}

		if err := s.bids.UpdateBidStatus(ctx, tx, bid.ID, lifecycle.BidStatusActive, lifecycle.BidStatusWithdrawn); err != nil {
			return err
		}
		if err := s.recorder.Record(ctx, tx, plan.Activity); err != nil {
			return fmt.Errorf("failed to record activity: %w", err)
		}

		withdrawn = plan.Bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bid withdrawn", "bid_id", withdrawn.ID, "auction_id", withdrawn.AuctionID)
	return &lifecycle.RankedBid{Bid: *withdrawn}, nil
}

// GetBid returns a bid with its current rank
func (s *Service) GetBid(ctx context.Context, bidID uuid.UUID) (*lifecycle.RankedBid, error) {
	bid, err := s.bids.GetBidByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	return s.ranked(ctx, bid)
}

// ListAuctionBids returns every bid of an auction, best active bid first
func (s *Service) ListAuctionBids(ctx context.Context, auctionID uuid.UUID) ([]lifecycle.RankedBid, error) {
	if _, err := s.auctions.GetAuctionByID(ctx, auctionID); err != nil {
		return nil, err
	}

	list, err := s.bids.ListBidsByAuctionID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return lifecycle.WithRanks(list, list), nil
}

// ListCompanyBids returns one page of the bids a company has placed, newest first
func (s *Service) ListCompanyBids(ctx context.Context, companyID uuid.UUID, page lifecycle.PageRequest) (*BidPage, error) {
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}

	list, total, err := s.bids.ListBidsByCompanyID(ctx, companyID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list company bids: %w", err)
	}

	seen := make(map[uuid.UUID]bool, len(list))
	auctionIDs := make([]uuid.UUID, 0, len(list))
	for _, bid := range list {
		if !seen[bid.AuctionID] {
			seen[bid.AuctionID] = true
			auctionIDs = append(auctionIDs, bid.AuctionID)
		}
	}

	active, err := s.bids.ListActiveBidsByAuctionIDs(ctx, auctionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to rank bids: %w", err)
	}

	return &BidPage{
		Bids:  lifecycle.WithRanks(list, active),
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	}, nil
}

// withAuctionLock runs fn in a transaction holding the auction row lock
func (s *Service) withAuctionLock(
	ctx context.Context,
	auctionID uuid.UUID,
	fn func(tx pgx.Tx, auction *lifecycle.Auction, at time.Time) error,
) error {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	auction, err := s.auctions.GetAuctionByIDForUpdate(ctx, tx, auctionID)
	if err != nil {
		return err
	}

	if err := fn(tx, auction, now()); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	if err := s.stats.Invalidate(ctx); err != nil {
		s.logger.Warn("Stats cache invalidation failed", "error", err)
	}
	return nil
}

// withBidLock locks the bid's auction and then the bid itself. A bid never moves between
// auctions, so reading its auction id before taking the locks is safe.
func (s *Service) withBidLock(
	ctx context.Context,
	bidID uuid.UUID,
	fn func(tx pgx.Tx, auction *lifecycle.Auction, bid *lifecycle.Bid, at time.Time) error,
) error {
	current, err := s.bids.GetBidByID(ctx, bidID)
	if err != nil {
		return err
	}

	return s.withAuctionLock(ctx, current.AuctionID, func(tx pgx.Tx, auction *lifecycle.Auction, at time.Time) error {
		bid, err := s.bids.GetBidByIDForUpdate(ctx, tx, bidID)
		if err != nil {
			return err
		}
		return fn(tx, auction, bid, at)
	})
}

func (s *Service) ranked(ctx context.Context, bid *lifecycle.Bid) (*lifecycle.RankedBid, error) {
	if bid.Status != lifecycle.BidStatusActive {
		return &lifecycle.RankedBid{Bid: *bid}, nil
	}

	active, err := s.bids.ListActiveBidsByAuctionIDs(ctx, []uuid.UUID{bid.AuctionID})
	if err != nil {
		return nil, fmt.Errorf("failed to rank bid: %w", err)
	}
	ranked := lifecycle.WithRanks([]*lifecycle.Bid{bid}, active)
	return &ranked[0], nil
}
