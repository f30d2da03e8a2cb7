//go:build integration

package bids_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floroz/ride-auction/internal/adapters/cache"
	"github.com/floroz/ride-auction/internal/domain/bids"
	"github.com/floroz/ride-auction/internal/domain/lifecycle"
	fixtures "github.com/floroz/ride-auction/internal/testhelpers"
	"github.com/floroz/ride-auction/pkg/testhelpers"
)

func TestBidService_Integration(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../../migrations")
	defer testDB.Close()

	stack := fixtures.NewStack(testDB.Pool, cache.NoopStatsCache{})
	ctx := context.Background()
	creator := uuid.New()

	t.Run("place stores the bid with a reference and an audit entry", func(t *testing.T) {
		testDB.Truncate(t)
		auction := stack.ActiveAuction(t, "100", "", creator)
		bidder := fixtures.SeedBidder(t, stack.Pool)
		driverID := uuid.New()
		eta := time.Now().Add(90 * time.Minute).UTC().Truncate(time.Second)

		bid, err := stack.Bids.PlaceBid(ctx, bids.PlaceBidCommand{
			AuctionID:               auction.ID,
			BidderUserID:            bidder.UserID,
			Amount:                  decimal.RequireFromString("150"),
			EstimatedCompletionTime: &eta,
			AdditionalServices:      []string{"wifi", "water"},
			ProposedDriverID:        &driverID,
		})
		require.NoError(t, err)

		assert.Equal(t, "BID-"+lifecycle.ReferencePeriod(time.Now())+"-0001", bid.Reference)
		assert.Equal(t, bidder.CompanyID, bid.CompanyID)
		assert.Equal(t, "150.00", bid.Amount.StringFixed(2))
		assert.Equal(t, 1, bid.Rank)

		stored, err := stack.Bids.GetBid(ctx, bid.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"wifi", "water"}, stored.AdditionalServices)
		require.NotNil(t, stored.EstimatedCompletionTime)
		assert.True(t, eta.Equal(*stored.EstimatedCompletionTime))
		require.NotNil(t, stored.ProposedDriverID)
		assert.Equal(t, driverID, *stored.ProposedDriverID)
		assert.Equal(t, 1, stored.Rank)

		activities, err := stack.Auctions.ListActivities(ctx, auction.ID)
		require.NoError(t, err)
		last := activities[len(activities)-1]
		assert.Equal(t, lifecycle.ActivityBidPlaced, last.Type)
		require.NotNil(t, last.BidID)
		assert.Equal(t, bid.ID, *last.BidID)
		require.NotNil(t, last.NewValue)
		assert.Equal(t, "150.00", *last.NewValue)
	})

	t.Run("a company places one bid per auction", func(t *testing.T) {
		testDB.Truncate(t)
		auction := stack.ActiveAuction(t, "100", "", creator)
		bidder := fixtures.SeedBidder(t, stack.Pool)
		stack.PlaceBid(t, auction.ID, bidder, "120")

		colleague := fixtures.Bidder{
			UserID:    fixtures.SeedCompanyUser(t, stack.Pool, bidder.CompanyID),
			CompanyID: bidder.CompanyID,
		}
		_, err := stack.Bids.PlaceBid(ctx, bids.PlaceBidCommand{
			AuctionID:    auction.ID,
			BidderUserID: colleague.UserID,
			Amount:       decimal.RequireFromString("130"),
		})
		require.ErrorIs(t, err, lifecycle.ErrBidExists)
		assert.ErrorIs(t, err, lifecycle.ErrConflict)
	})

	t.Run("concurrent bids from one company leave a single bid", func(t *testing.T) {
		testDB.Truncate(t)
		auction := stack.ActiveAuction(t, "100", "", creator)
		companyID := uuid.New()
		users := []uuid.UUID{
			fixtures.SeedCompanyUser(t, stack.Pool, companyID),
			fixtures.SeedCompanyUser(t, stack.Pool, companyID),
			fixtures.SeedCompanyUser(t, stack.Pool, companyID),
		}

		var wg sync.WaitGroup
		errs := make([]error, len(users))
		for i, userID := range users {
			wg.Add(1)
			go func(i int, userID uuid.UUID) {
				defer wg.Done()
				_, errs[i] = stack.Bids.PlaceBid(ctx, bids.PlaceBidCommand{
					AuctionID:    auction.ID,
					BidderUserID: userID,
					Amount:       decimal.RequireFromString("140"),
				})
			}(i, userID)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, lifecycle.ErrBidExists)
		}
		assert.Equal(t, 1, succeeded)

		list, err := stack.Bids.ListAuctionBids(ctx, auction.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("place is rejected outside the rules", func(t *testing.T) {
		testDB.Truncate(t)
		active := stack.ActiveAuction(t, "100", "", creator)
		draft := stack.CreateAuction(t, "100", "", creator)
		bidder := fixtures.SeedBidder(t, stack.Pool)

		tests := []struct {
			name      string
			auctionID uuid.UUID
			userID    uuid.UUID
			amount    string
			wantErr   error
		}{
			{"below minimum", active.ID, bidder.UserID, "99.99", lifecycle.ErrBelowMinimum},
			{"non-positive", active.ID, bidder.UserID, "0", lifecycle.ErrInvalidAmount},
			{"sub-cent rounding up to the minimum", active.ID, bidder.UserID, "99.995", lifecycle.ErrInvalidAmount},
			{"draft auction", draft.ID, bidder.UserID, "150", lifecycle.ErrAuctionNotActive},
			{"unknown auction", uuid.New(), bidder.UserID, "150", lifecycle.ErrAuctionNotFound},
			{"user without company", active.ID, uuid.New(), "150", lifecycle.ErrNoCompany},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := stack.Bids.PlaceBid(ctx, bids.PlaceBidCommand{
					AuctionID:    tt.auctionID,
					BidderUserID: tt.userID,
					Amount:       decimal.RequireFromString(tt.amount),
				})
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}

		list, err := stack.Bids.ListAuctionBids(ctx, active.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("a failed activity append rolls the bid back", func(t *testing.T) {
		testDB.Truncate(t)
		failing := fixtures.NewStackWithRecorder(testDB.Pool, cache.NoopStatsCache{}, fixtures.FailingRecorder{})
		auction := stack.ActiveAuction(t, "100", "", creator)
		bidder := fixtures.SeedBidder(t, stack.Pool)

		_, err := failing.Bids.PlaceBid(ctx, bids.PlaceBidCommand{
			AuctionID:    auction.ID,
			BidderUserID: bidder.UserID,
			Amount:       decimal.RequireFromString("150"),
		})
		require.ErrorIs(t, err, fixtures.ErrRecorderDown)

		list, err := stack.Bids.ListAuctionBids(ctx, auction.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.Equal(t, int64(0), stack.ReferenceCount(t, lifecycle.BidReferencePrefix))

		placed := stack.PlaceBid(t, auction.ID, bidder, "150")
		assert.Equal(t, "BID-"+lifecycle.ReferencePeriod(time.Now())+"-0001", placed.Reference)

		amount := decimal.RequireFromString("140")
		_, err = failing.Bids.UpdateBid(ctx, bids.UpdateBidCommand{
			BidID:  placed.ID,
			UserID: bidder.UserID,
			Patch:  lifecycle.BidPatch{Amount: &amount},
		})
		require.ErrorIs(t, err, fixtures.ErrRecorderDown)

		_, err = failing.Bids.WithdrawBid(ctx, bids.WithdrawBidCommand{BidID: placed.ID, UserID: bidder.UserID})
		require.ErrorIs(t, err, fixtures.ErrRecorderDown)

		stored, err := stack.Bids.GetBid(ctx, placed.ID)
		require.NoError(t, err)
		assert.Equal(t, lifecycle.BidStatusActive, stored.Status)
		assert.Equal(t, "150.00", stored.Amount.StringFixed(2))
	})

	t.Run("auction bids are ranked by amount then arrival", func(t *testing.T) {
		testDB.Truncate(t)
		auction := stack.ActiveAuction(t, "100", "", creator)
		low := stack.PlaceBid(t, auction.ID, fixtures.SeedBidder(t, stack.Pool), "200")
		early := stack.PlaceBid(t, auction.ID, fixtures.SeedBidder(t, stack.Pool), "250")
		late := stack.PlaceBid(t, auction.ID, fixtures.SeedBidder(t, stack.Pool), "250")
		gone := fixtures.SeedBidder(t, stack.Pool)
		withdrawn := stack.PlaceBid(t, auction.ID, gone, "300")
		_, err := stack.Bids.WithdrawBid(ctx, bids.WithdrawBidCommand{BidID: withdrawn.ID, UserID: gone.UserID})
		require.NoError(t, err)

		list, err := stack.Bids.ListAuctionBids(ctx, auction.ID)
		require.NoError(t, err)
		require.Len(t, list, 4)

		assert.Equal(t, early.ID, list[0].ID)
		assert.Equal(t, 1, list[0].Rank)
		assert.Equal(t, late.ID, list[1].ID)
		assert.Equal(t, 2, list[1].Rank)
		assert.Equal(t, low.ID, list[2].ID)
		assert.Equal(t, 3, list[2].Rank)
		assert.Equal(t, withdrawn.ID, list[3].ID)
		assert.Equal(t, 0, list[3].Rank)

		view, err := stack.Auctions.GetAuction(ctx, auction.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4), view.BidCount)
		require.True(t, view.HighestBidAmount.Valid)
		assert.Equal(t, "250.00", view.HighestBidAmount.Decimal.StringFixed(2))

		_, err = stack.Bids.ListAuctionBids(ctx, uuid.New())
		assert.ErrorIs(t, err, lifecycle.ErrAuctionNotFound)
	})

	t.Run("update changes the owner's bid and audits amount changes", func(t *testing.T) {
		testDB.Truncate(t)
		auction := stack.ActiveAuction(t, "100", "", creator)
		bidder := fixtures.SeedBidder(t, stack.Pool)
		bid := stack.PlaceBid(t, auction.ID, bidder, "180")

		notes := "includes tolls"
		updated, err := stack.Bids.UpdateBid(ctx, bids.UpdateBidCommand{
			BidID:  bid.ID,
			UserID: bidder.UserID,
			Patch:  lifecycle.BidPatch{Notes: &notes},
		})
		require.NoError(t, err)
		assert.Equal(t, "includes tolls", updated.Notes)

		amount := decimal.RequireFromString("165")
		updated, err = stack.Bids.UpdateBid(ctx, bids.UpdateBidCommand{
			BidID:  bid.ID,
			UserID: bidder.UserID,
			Patch:  lifecycle.BidPatch{Amount: &amount},
		})
		require.NoError(t, err)
		assert.Equal(t, "165.00", updated.Amount.StringFixed(2))
		assert.Equal(t, "includes tolls", updated.Notes)

		stored, err := stack.Bids.GetBid(ctx, bid.ID)
		require.NoError(t, err)
		assert.Equal(t, "165.00", stored.Amount.StringFixed(2))

		activities, err := stack.Auctions.ListActivities(ctx, auction.ID)
		require.NoError(t, err)
		var updates []*lifecycle.Activity
		for _, a := range activities {
			if a.Type == lifecycle.ActivityBidUpdated {
				updates = append(updates, a)
			}
		}
		require.Len(t, updates, 1)
		assert.Equal(t, "180.00", *updates[0].PreviousValue)
		assert.Equal(t, "165.00", *updates[0].NewValue)

		stranger := fixtures.SeedBidder(t, stack.Pool)
		_, err = stack.Bids.UpdateBid(ctx, bids.UpdateBidCommand{
			BidID:  bid.ID,
			UserID: stranger.UserID,
			Patch:  lifecycle.BidPatch{Amount: &amount},
		})
		assert.ErrorIs(t, err, lifecycle.ErrNotBidOwner)

		tooLow := decimal.RequireFromString("50")
		_, err = stack.Bids.UpdateBid(ctx, bids.UpdateBidCommand{
			BidID:  bid.ID,
			UserID: bidder.UserID,
			Patch:  lifecycle.BidPatch{Amount: &tooLow},
		})
		assert.ErrorIs(t, err, lifecycle.ErrBelowMinimum)

		_, err = stack.Auctions.CloseAuction(ctx, auction.ID, creator)
		require.NoError(t, err)
		_, err = stack.Bids.UpdateBid(ctx, bids.UpdateBidCommand{
			BidID:  bid.ID,
			UserID: bidder.UserID,
			Patch:  lifecycle.BidPatch{Notes: &notes},
		})
		assert.ErrorIs(t, err, lifecycle.ErrAuctionNotActive)
	})

	t.Run("withdraw is allowed once", func(t *testing.T) {
		testDB.Truncate(t)
		auction := stack.ActiveAuction(t, "100", "", creator)
		bidder := fixtures.SeedBidder(t, stack.Pool)
		bid := stack.PlaceBid(t, auction.ID, bidder, "150")

		withdrawn, err := stack.Bids.WithdrawBid(ctx, bids.WithdrawBidCommand{BidID: bid.ID, UserID: bidder.UserID})
		require.NoError(t, err)
		assert.Equal(t, lifecycle.BidStatusWithdrawn, withdrawn.Status)
		assert.Equal(t, 0, withdrawn.Rank)

		_, err = stack.Bids.WithdrawBid(ctx, bids.WithdrawBidCommand{BidID: bid.ID, UserID: bidder.UserID})
		require.ErrorIs(t, err, lifecycle.ErrBidNotActive)
		assert.ErrorIs(t, err, lifecycle.ErrInvalidState)

		_, err = stack.Bids.WithdrawBid(ctx, bids.WithdrawBidCommand{BidID: uuid.New(), UserID: bidder.UserID})
		assert.ErrorIs(t, err, lifecycle.ErrBidNotFound)
	})

	t.Run("withdraw works on a closed auction", func(t *testing.T) {
		testDB.Truncate(t)
		auction := stack.ActiveAuction(t, "100", "", creator)
		bidder := fixtures.SeedBidder(t, stack.Pool)
		bid := stack.PlaceBid(t, auction.ID, bidder, "150")
		_, err := stack.Auctions.CloseAuction(ctx, auction.ID, creator)
		require.NoError(t, err)

		withdrawn, err := stack.Bids.WithdrawBid(ctx, bids.WithdrawBidCommand{BidID: bid.ID, UserID: bidder.UserID})
		require.NoError(t, err)
		assert.Equal(t, lifecycle.BidStatusWithdrawn, withdrawn.Status)
	})

	t.Run("company bids are paged newest first with live ranks", func(t *testing.T) {
		testDB.Truncate(t)
		bidder := fixtures.SeedBidder(t, stack.Pool)
		first := stack.ActiveAuction(t, "100", "", creator)
		second := stack.ActiveAuction(t, "100", "", creator)
		stack.PlaceBid(t, first.ID, fixtures.SeedBidder(t, stack.Pool), "500")
		older := stack.PlaceBid(t, first.ID, bidder, "300")
		newer := stack.PlaceBid(t, second.ID, bidder, "200")

		page, err := stack.Bids.ListCompanyBids(ctx, bidder.CompanyID, lifecycle.PageRequest{Page: 1, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		require.Len(t, page.Bids, 1)
		assert.Equal(t, newer.ID, page.Bids[0].ID)
		assert.Equal(t, 1, page.Bids[0].Rank)

		page, err = stack.Bids.ListCompanyBids(ctx, bidder.CompanyID, lifecycle.PageRequest{Page: 2, Limit: 1})
		require.NoError(t, err)
		require.Len(t, page.Bids, 1)
		assert.Equal(t, older.ID, page.Bids[0].ID)
		assert.Equal(t, 2, page.Bids[0].Rank)

		_, err = stack.Bids.ListCompanyBids(ctx, bidder.CompanyID, lifecycle.PageRequest{Page: -1})
		assert.ErrorIs(t, err, lifecycle.ErrInvalidPage)
	})
}
