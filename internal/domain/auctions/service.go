package auctions

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

// Service runs the auction lifecycle. Every mutation is one transaction: the pure plan from
// the lifecycle package is computed under the auction row lock and then written out.
type Service struct {
	txManager  database.TransactionManager
	auctions   AuctionRepository
	bids       BidRepository
	bookings   BookingGateway
	references ReferenceGenerator
	recorder   ActivityRecorder
	activities ActivityReader
	cache      StatsCache
	logger     *slog.Logger
}

// NewService creates a new auction service
func NewService(
	txManager database.TransactionManager,
	auctions AuctionRepository,
	bids BidRepository,
	bookings BookingGateway,
	references ReferenceGenerator,
	recorder ActivityRecorder,
	activities ActivityReader,
	cache StatsCache,
	logger *slog.Logger,
) *Service {
	return &Service{
		txManager:  txManager,
		auctions:   auctions,
		bids:       bids,
		bookings:   bookings,
		references: references,
		recorder:   recorder,
		activities: activities,
		cache:      cache,
		logger:     logger,
	}
}

// now is truncated to what Postgres stores so returned values match reloaded ones
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// CreateAuction opens a DRAFT auction for a CONFIRMED booking and moves the booking to
// IN_AUCTION. An unknown booking reports NotFound and a booking that already has an auction
// reports Conflict before the input itself is checked.
func (s *Service) CreateAuction(ctx context.Context, cmd CreateAuctionCommand) (*lifecycle.AuctionView, error) {
	at := now()

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Locking the booking serializes concurrent creates for the same booking
	booking, err := s.bookings.GetBookingForUpdate(ctx, tx, cmd.BookingID)
	if err != nil {
		return nil, err
	}

	exists, err := s.auctions.ExistsForBooking(ctx, tx, cmd.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing auction: %w", err)
	}

	plan, err := lifecycle.PlanCreate(cmd, booking, exists, at)
	if err != nil {
		return nil, err
	}

	reference, err := s.references.Next(ctx, tx, lifecycle.AuctionReferencePrefix, at)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reference: %w", err)
	}
	plan.Auction.Reference = reference

	if err := s.auctions.SaveAuction(ctx, tx, plan.Auction); err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateBookingStatus(ctx, tx, plan.Booking); err != nil {
		return nil, err
	}
	if err := s.recorder.Record(ctx, tx, plan.Activity); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.invalidateStats(ctx)

	view := lifecycle.NewAuctionView(*plan.Auction, lifecycle.BidSummary{}, at)
	return &view, nil
}

// GetAuction returns an auction with its derived fields
func (s *Service) GetAuction(ctx context.Context, auctionID uuid.UUID) (*lifecycle.AuctionView, error) {
	auction, err := s.auctions.GetAuctionByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, auction)
}

// ListAuctions filters, sorts and pages auctions
func (s *Service) ListAuctions(ctx context.Context, query ListAuctionsQuery) (*AuctionPage, error) {
	query, err := query.Normalize()
	if err != nil {
		return nil, err
	}

	list, total, err := s.auctions.ListAuctions(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	return s.page(ctx, list, total, query.Page)
}

// ListCompanyAuctions lists the auctions a company has placed a bid on
func (s *Service) ListCompanyAuctions(ctx context.Context, companyID uuid.UUID, page lifecycle.PageRequest) (*AuctionPage, error) {
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}

	list, total, err := s.auctions.ListAuctionsByCompany(ctx, companyID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list company auctions: %w", err)
	}
	return s.page(ctx, list, total, page)
}

// UpdateAuction patches a DRAFT auction. Updates are not audited.
func (s *Service) UpdateAuction(ctx context.Context, cmd UpdateAuctionCommand) (*lifecycle.AuctionView, error) {
	var updated *lifecycle.Auction
	err := s.withAuctionLock(ctx, cmd.AuctionID, func(tx pgx.Tx, auction *lifecycle.Auction, at time.Time) error {
		var err error
		updated, err = lifecycle.ApplyPatch(auction, cmd.Patch, at)
		if err != nil {
			return err
		}
		return s.auctions.UpdateDraft(ctx, tx, updated)
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, updated)
}

// DeleteAuction removes a non-active auction without bids and releases its booking.
// The activity trail is kept.
func (s *Service) DeleteAuction(ctx context.Context, auctionID uuid.UUID) error {
	return s.withAuctionLock(ctx, auctionID, func(tx pgx.Tx, auction *lifecycle.Auction, _ time.Time) error {
		bidCount, err := s.bids.CountBidsByAuctionID(ctx, tx, auction.ID)
		if err != nil {
			return fmt.Errorf("failed to count bids: %w", err)
		}

		booking, err := s.bookings.GetBookingForUpdate(ctx, tx, auction.BookingID)
		if err != nil {
			return err
		}

		plan, err := lifecycle.PlanDelete(auction, bidCount, booking)
		if err != nil {
			return err
		}

		if err := s.auctions.DeleteAuction(ctx, tx, plan.AuctionID); err != nil {
			return err
		}
		if plan.Booking != nil {
			return s.bookings.UpdateBookingStatus(ctx, tx, *plan.Booking)
		}
		return nil
	})
}

// StartAuction opens a DRAFT auction for bids right away
func (s *Service) StartAuction(ctx context.Context, auctionID, userID uuid.UUID) (*lifecycle.AuctionView, error) {
	return s.transition(ctx, auctionID, func(a *lifecycle.Auction, at time.Time) (*lifecycle.TransitionPlan, error) {
		return lifecycle.PlanStart(a, userID, at)
	})
}

// CloseAuction stops bidding on an ACTIVE auction right away
func (s *Service) CloseAuction(ctx context.Context, auctionID, userID uuid.UUID) (*lifecycle.AuctionView, error) {
	return s.transition(ctx, auctionID, func(a *lifecycle.Auction, at time.Time) (*lifecycle.TransitionPlan, error) {
		return lifecycle.PlanClose(a, userID, at)
	})
}

func (s *Service) transition(
	ctx context.Context,
	auctionID uuid.UUID,
	planFn func(*lifecycle.Auction, time.Time) (*lifecycle.TransitionPlan, error),
) (*lifecycle.AuctionView, error) {
	var result lifecycle.Auction
	err := s.withAuctionLock(ctx, auctionID, func(tx pgx.Tx, auction *lifecycle.Auction, at time.Time) error {
		plan, err := planFn(auction, at)
		if err != nil {
			return err
		}
		if err := s.auctions.ApplyTransition(ctx, tx, plan); err != nil {
			return err
		}
		if err := s.recorder.Record(ctx, tx, plan.Activity); err != nil {
			return fmt.Errorf("failed to record activity: %w", err)
		}

		result = *auction
		result.Status = plan.To
		result.StartTime = plan.StartTime
		result.EndTime = plan.EndTime
		result.UpdatedAt = at
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, &result)
}

// CancelAuction withdraws every active bid, releases the booking and marks the auction
// CANCELLED.
func (s *Service) CancelAuction(ctx context.Context, cmd CancelAuctionCommand) (*lifecycle.AuctionView, error) {
	var result lifecycle.Auction
	err := s.withAuctionLock(ctx, cmd.AuctionID, func(tx pgx.Tx, auction *lifecycle.Auction, at time.Time) error {
		plan, err := lifecycle.PlanCancel(auction, cmd.UserID, cmd.Reason, at)
		if err != nil {
			return err
		}

		withdrawn, err := s.bids.WithdrawActiveBids(ctx, tx, plan.AuctionID)
		if err != nil {
			return fmt.Errorf("failed to withdraw bids: %w", err)
		}
		if err := s.auctions.MarkCancelled(ctx, tx, plan.AuctionID, plan.From); err != nil {
			return err
		}
		if err := s.bookings.UpdateBookingStatus(ctx, tx, plan.Booking); err != nil {
			return err
		}
		if err := s.recorder.Record(ctx, tx, plan.Activity); err != nil {
			return fmt.Errorf("failed to record activity: %w", err)
		}

		s.logger.Info("Auction cancelled", "auction_id", plan.AuctionID, "withdrawn_bids", withdrawn)
		result = *auction
		result.Status = lifecycle.AuctionStatusCancelled
		result.UpdatedAt = at
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, &result)
}

// AwardAuction accepts the winning bid, rejects every other active bid, records the winner
// on the auction and assigns the booking. All five writes commit together or not at all.
func (s *Service) AwardAuction(ctx context.Context, cmd AwardAuctionCommand) (*lifecycle.AuctionView, error) {
	var result lifecycle.Auction
	err := s.withAuctionLock(ctx, cmd.AuctionID, func(tx pgx.Tx, auction *lifecycle.Auction, at time.Time) error {
		// The auction status decides first, so a repeated award fails the same way whatever
		// bid it names
		if !lifecycle.CanTransition(auction.Status, lifecycle.AuctionStatusAwarded) {
			return lifecycle.ErrCannotAward
		}

		// A bid never moves between auctions, so only a bid of this auction is locked
		candidate, err := s.bids.GetBidByID(ctx, cmd.WinningBidID)
		if err != nil {
			return err
		}
		if candidate.AuctionID != auction.ID {
			return lifecycle.ErrBidAuctionMismatch
		}

		bid, err := s.bids.GetBidByIDForUpdate(ctx, tx, candidate.ID)
		if err != nil {
			return err
		}

		plan, err := lifecycle.PlanAward(auction, bid, cmd.UserID, cmd.Notes, at)
		if err != nil {
			return err
		}

		if err := s.bids.AcceptBid(ctx, tx, plan.WinningBidID); err != nil {
			return err
		}
		rejected, err := s.bids.RejectOtherActiveBids(ctx, tx, plan.AuctionID, plan.WinningBidID)
		if err != nil {
			return fmt.Errorf("failed to reject losing bids: %w", err)
		}
		if err := s.auctions.MarkAwarded(ctx, tx, plan); err != nil {
			return err
		}
		if err := s.bookings.UpdateBookingStatus(ctx, tx, plan.Booking); err != nil {
			return err
		}
		if err := s.recorder.Record(ctx, tx, plan.Activity); err != nil {
			return fmt.Errorf("failed to record activity: %w", err)
		}

		s.logger.Info("Auction awarded",
			"auction_id", plan.AuctionID,
			"winning_bid_id", plan.WinningBidID,
			"rejected_bids", rejected,
		)
		result = *auction
		result.Status = lifecycle.AuctionStatusAwarded
		result.WinningBidID = &plan.WinningBidID
		result.WinnerCompanyID = &plan.WinnerCompanyID
		result.AwardedAt = &plan.AwardedAt
		result.AwardedBy = &plan.AwardedBy
		result.UpdatedAt = at
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, &result)
}

// GetStats returns the statistics projection, served from cache when possible
func (s *Service) GetStats(ctx context.Context) (*lifecycle.AuctionStats, error) {
	cached, version, cacheErr := s.cache.Get(ctx)
	if cacheErr != nil {
		s.logger.Warn("Stats cache read failed", "error", cacheErr)
	} else if cached != nil {
		return cached, nil
	}

	byStatus, err := s.auctions.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count auctions: %w", err)
	}
	volume, err := s.bids.BidVolume(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bids: %w", err)
	}

	stats := lifecycle.NewAuctionStats(byStatus, volume)
	if cacheErr == nil {
		if setErr := s.cache.Set(ctx, version, stats); setErr != nil {
			s.logger.Warn("Stats cache write failed", "error", setErr)
		}
	}
	return stats, nil
}

// ListActivities returns the audit trail of an auction, oldest first. The trail outlives the
// auction, so a deleted auction still returns its history.
func (s *Service) ListActivities(ctx context.Context, auctionID uuid.UUID) ([]*lifecycle.Activity, error) {
	list, err := s.activities.ListActivitiesByAuctionID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return list, nil
}

// withAuctionLock runs fn in a transaction holding the auction row lock and commits when fn
// succeeds. Stats are invalidated after every successful commit.
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
	s.invalidateStats(ctx)
	return nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Stats cache invalidation failed", "error", err)
	}
}

func (s *Service) view(ctx context.Context, auction *lifecycle.Auction) (*lifecycle.AuctionView, error) {
	summaries, err := s.bids.SummarizeBids(ctx, []uuid.UUID{auction.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to summarize bids: %w", err)
	}
	view := lifecycle.NewAuctionView(*auction, summaries[auction.ID], now())
	return &view, nil
}

func (s *Service) page(ctx context.Context, list []*lifecycle.Auction, total int64, page lifecycle.PageRequest) (*AuctionPage, error) {
	ids := make([]uuid.UUID, len(list))
	for i, auction := range list {
		ids[i] = auction.ID
	}

	summaries, err := s.bids.SummarizeBids(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize bids: %w", err)
	}

	at := now()
	views := make([]lifecycle.AuctionView, len(list))
	for i, auction := range list {
		views[i] = lifecycle.NewAuctionView(*auction, summaries[auction.ID], at)
	}

	return &AuctionPage{
		Auctions: views,
		Total:    total,
		Page:     page.Page,
		Limit:    page.Limit,
	}, nil
}
