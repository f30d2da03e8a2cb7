package lifecycle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPlaceBid(t *testing.T) {
	now := time.Now()

	input := func(a *Auction, amount string) PlaceBidInput {
		return PlaceBidInput{
			AuctionID:    a.ID,
			CompanyID:    uuid.New(),
			BidderUserID: uuid.New(),
			Amount:       decimal.RequireFromString(amount),
		}
	}

	t.Run("valid bid at the minimum", func(t *testing.T) {
		a := testAuction(AuctionStatusActive, now)
		in := input(a, "100")
		plan, err := PlanPlaceBid(a, nil, in, now)
		require.NoError(t, err)
		assert.Equal(t, BidStatusActive, plan.Bid.Status)
		assert.Equal(t, in.CompanyID, plan.Bid.CompanyID)
		assert.Equal(t, []string{}, plan.Bid.AdditionalServices)
		assert.Equal(t, ActivityBidPlaced, plan.Activity.Type)
		assert.Equal(t, "100.00", *plan.Activity.NewValue)
		assert.Equal(t, &plan.Bid.ID, plan.Activity.BidID)
	})

	tests := []struct {
		name     string
		status   AuctionStatus
		endTime  time.Duration
		existing bool
		amount   string
		noComp   bool
		wantErr  error
	}{
		{"no company", AuctionStatusActive, time.Hour, false, "120", true, ErrNoCompany},
		{"draft auction", AuctionStatusDraft, time.Hour, false, "120", false, ErrAuctionNotActive},
		{"closed auction", AuctionStatusClosed, time.Hour, false, "120", false, ErrAuctionNotActive},
		{"expired auction", AuctionStatusActive, -time.Second, false, "120", false, ErrAuctionExpired},
		{"duplicate company bid", AuctionStatusActive, time.Hour, true, "120", false, ErrBidExists},
		{"below minimum", AuctionStatusActive, time.Hour, false, "99.99", false, ErrBelowMinimum},
		{"sub-cent amount", AuctionStatusActive, time.Hour, false, "99.995", false, ErrInvalidAmount},
		{"zero amount", AuctionStatusActive, time.Hour, false, "0", false, ErrInvalidAmount},
		{"negative amount", AuctionStatusActive, time.Hour, false, "-5", false, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAuction(tt.status, now)
			a.EndTime = now.Add(tt.endTime)
			in := input(a, tt.amount)
			if tt.noComp {
				in.CompanyID = uuid.Nil
			}
			var existing *Bid
			if tt.existing {
				existing = testBid(a, "110")
			}

			plan, err := PlanPlaceBid(a, existing, in, now)
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPlanUpdateBid(t *testing.T) {
	now := time.Now()

	t.Run("amount change is audited", func(t *testing.T) {
		a := testAuction(AuctionStatusActive, now)
		bid := testBid(a, "120")
		amount := decimal.RequireFromString("130.46")
		plan, err := PlanUpdateBid(a, bid, BidPatch{Amount: &amount}, bid.BidderUserID, now)
		require.NoError(t, err)
		assert.Equal(t, "130.46", plan.Bid.Amount.StringFixed(2))
		require.NotNil(t, plan.Activity)
		assert.Equal(t, ActivityBidUpdated, plan.Activity.Type)
		assert.Equal(t, "120.00", *plan.Activity.PreviousValue)
		assert.Equal(t, "130.46", *plan.Activity.NewValue)
	})

	t.Run("other changes are not audited", func(t *testing.T) {
		a := testAuction(AuctionStatusActive, now)
		bid := testBid(a, "120")
		notes := "child seat available"
		services := []string{"child_seat"}
		plan, err := PlanUpdateBid(a, bid, BidPatch{Notes: &notes, AdditionalServices: &services}, bid.BidderUserID, now)
		require.NoError(t, err)
		assert.Nil(t, plan.Activity)
		assert.Equal(t, notes, plan.Bid.Notes)
		assert.Equal(t, services, plan.Bid.AdditionalServices)
	})

	t.Run("same amount is not audited", func(t *testing.T) {
		a := testAuction(AuctionStatusActive, now)
		bid := testBid(a, "120")
		amount := decimal.RequireFromString("120.00")
		plan, err := PlanUpdateBid(a, bid, BidPatch{Amount: &amount}, bid.BidderUserID, now)
		require.NoError(t, err)
		assert.Nil(t, plan.Activity)
	})

	t.Run("only the bidder may update", func(t *testing.T) {
		a := testAuction(AuctionStatusActive, now)
		bid := testBid(a, "120")
		_, err := PlanUpdateBid(a, bid, BidPatch{}, uuid.New(), now)
		assert.ErrorIs(t, err, ErrNotBidOwner)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("bid must be active", func(t *testing.T) {
		a := testAuction(AuctionStatusActive, now)
		bid := testBid(a, "120")
		bid.Status = BidStatusRejected
		_, err := PlanUpdateBid(a, bid, BidPatch{}, bid.BidderUserID, now)
		assert.ErrorIs(t, err, ErrBidNotActive)
	})

	t.Run("auction must still be open", func(t *testing.T) {
		a := testAuction(AuctionStatusActive, now)
		a.EndTime = now.Add(-time.Minute)
		bid := testBid(a, "120")
		_, err := PlanUpdateBid(a, bid, BidPatch{}, bid.BidderUserID, now)
		assert.ErrorIs(t, err, ErrAuctionExpired)
	})

	t.Run("new amount is checked against minimum", func(t *testing.T) {
		a := testAuction(AuctionStatusActive, now)
		bid := testBid(a, "120")
		amount := decimal.RequireFromString("50")
		_, err := PlanUpdateBid(a, bid, BidPatch{Amount: &amount}, bid.BidderUserID, now)
		assert.ErrorIs(t, err, ErrBelowMinimum)
	})
}

func TestPlanWithdrawBid(t *testing.T) {
	now := time.Now()

	t.Run("bidder withdraws own bid on a closed auction", func(t *testing.T) {
		a := testAuction(AuctionStatusClosed, now)
		bid := testBid(a, "120")
		plan, err := PlanWithdrawBid(bid, bid.BidderUserID, now)
		require.NoError(t, err)
		assert.Equal(t, BidStatusWithdrawn, plan.Bid.Status)
		assert.Equal(t, BidStatusActive, bid.Status, "original must not change")
		assert.Equal(t, ActivityBidWithdrawn, plan.Activity.Type)
	})

	t.Run("second withdraw fails", func(t *testing.T) {
		a := testAuction(AuctionStatusActive, now)
		bid := testBid(a, "120")
		bid.Status = BidStatusWithdrawn
		_, err := PlanWithdrawBid(bid, bid.BidderUserID, now)
		assert.ErrorIs(t, err, ErrBidNotActive)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("stranger cannot withdraw", func(t *testing.T) {
		a := testAuction(AuctionStatusActive, now)
		bid := testBid(a, "120")
		_, err := PlanWithdrawBid(bid, uuid.New(), now)
		assert.ErrorIs(t, err, ErrNotBidOwner)
	})
}
