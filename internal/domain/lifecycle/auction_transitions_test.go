package lifecycle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuction(status AuctionStatus, now time.Time) *Auction {
	return &Auction{
		ID:               uuid.New(),
		Reference:        "AUC-202610-0001",
		BookingID:        uuid.New(),
		Title:            "Airport transfer",
		StartTime:        now.Add(-time.Hour),
		EndTime:          now.Add(2 * time.Hour),
		MinimumBidAmount: decimal.RequireFromString("100.00"),
		ReservePrice:     decimal.NewNullDecimal(decimal.RequireFromString("150.00")),
		Status:           status,
		CreatedBy:        uuid.New(),
	}
}

func testBid(a *Auction, amount string) *Bid {
	driver := uuid.New()
	car := uuid.New()
	return &Bid{
		ID:               uuid.New(),
		AuctionID:        a.ID,
		CompanyID:        uuid.New(),
		BidderUserID:     uuid.New(),
		Amount:           decimal.RequireFromString(amount),
		ProposedDriverID: &driver,
		ProposedCarID:    &car,
		Status:           BidStatusActive,
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from AuctionStatus
		to   AuctionStatus
		want bool
	}{
		{AuctionStatusDraft, AuctionStatusActive, true},
		{AuctionStatusDraft, AuctionStatusCancelled, true},
		{AuctionStatusDraft, AuctionStatusClosed, false},
		{AuctionStatusDraft, AuctionStatusAwarded, false},
		{AuctionStatusActive, AuctionStatusClosed, true},
		{AuctionStatusActive, AuctionStatusAwarded, true},
		{AuctionStatusActive, AuctionStatusCancelled, true},
		{AuctionStatusActive, AuctionStatusDraft, false},
		{AuctionStatusClosed, AuctionStatusAwarded, true},
		{AuctionStatusClosed, AuctionStatusCancelled, true},
		{AuctionStatusClosed, AuctionStatusActive, false},
		{AuctionStatusAwarded, AuctionStatusCancelled, false},
		{AuctionStatusAwarded, AuctionStatusAwarded, false},
		{AuctionStatusCancelled, AuctionStatusCancelled, false},
		{AuctionStatusCancelled, AuctionStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{"valid schedule", now.Add(time.Hour), now.Add(3 * time.Hour), nil},
		{"start equal to now", now, now.Add(time.Hour), ErrStartNotInFuture},
		{"start in the past", now.Add(-time.Minute), now.Add(time.Hour), ErrStartNotInFuture},
		{"end equal to start", now.Add(time.Hour), now.Add(time.Hour), ErrEndBeforeStart},
		{"end before start", now.Add(2 * time.Hour), now.Add(time.Hour), ErrEndBeforeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(tt.start, tt.end, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlanCreate(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	creator := uuid.New()
	booking := &Booking{
		ID:          uuid.New(),
		Reference:   "BK-1001",
		Status:      BookingStatusConfirmed,
		BaseAmount:  decimal.RequireFromString("100"),
		TotalAmount: decimal.NewNullDecimal(decimal.RequireFromString("150.005")),
	}
	input := CreateAuctionInput{
		BookingID: booking.ID,
		Title:     "  Airport transfer ",
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(5 * time.Hour),
		CreatedBy: creator,
	}

	t.Run("snapshots booking amounts", func(t *testing.T) {
		plan, err := PlanCreate(input, booking, false, now)
		require.NoError(t, err)

		assert.Equal(t, AuctionStatusDraft, plan.Auction.Status)
		assert.Equal(t, "Airport transfer", plan.Auction.Title)
		assert.Equal(t, "100.00", plan.Auction.MinimumBidAmount.StringFixed(2))
		require.True(t, plan.Auction.ReservePrice.Valid)
		assert.Equal(t, "150.01", plan.Auction.ReservePrice.Decimal.StringFixed(2))
		assert.Equal(t, BookingUpdate{BookingID: booking.ID, Status: BookingStatusInAuction}, plan.Booking)
		assert.Equal(t, ActivityCreated, plan.Activity.Type)
		assert.Equal(t, plan.Auction.ID, plan.Activity.AuctionID)
		assert.Equal(t, &creator, plan.Activity.UserID)
	})

	t.Run("booking without total has no reserve", func(t *testing.T) {
		noTotal := *booking
		noTotal.TotalAmount = decimal.NullDecimal{}
		plan, err := PlanCreate(input, &noTotal, false, now)
		require.NoError(t, err)
		assert.False(t, plan.Auction.ReservePrice.Valid)
	})

	t.Run("zero total has no reserve", func(t *testing.T) {
		zeroTotal := *booking
		zeroTotal.TotalAmount = decimal.NewNullDecimal(decimal.Zero)
		plan, err := PlanCreate(input, &zeroTotal, false, now)
		require.NoError(t, err)
		assert.False(t, plan.Auction.ReservePrice.Valid)
	})

	t.Run("booking without a base amount is rejected", func(t *testing.T) {
		noBase := *booking
		noBase.BaseAmount = decimal.Zero
		_, err := PlanCreate(input, &noBase, false, now)
		assert.ErrorIs(t, err, ErrBookingNoBase)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("existing auction conflicts", func(t *testing.T) {
		_, err := PlanCreate(input, booking, true, now)
		assert.ErrorIs(t, err, ErrAuctionExists)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("existing auction conflicts even with a stale schedule", func(t *testing.T) {
		stale := input
		stale.StartTime = now.Add(-time.Hour)
		stale.EndTime = now.Add(-2 * time.Hour)
		_, err := PlanCreate(stale, booking, true, now)
		assert.ErrorIs(t, err, ErrAuctionExists)
		assert.NotErrorIs(t, err, ErrValidation)
	})

	t.Run("booking must be confirmed", func(t *testing.T) {
		inAuction := *booking
		inAuction.Status = BookingStatusInAuction
		_, err := PlanCreate(input, &inAuction, false, now)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("schedule is validated", func(t *testing.T) {
		bad := input
		bad.StartTime = now.Add(-time.Hour)
		_, err := PlanCreate(bad, booking, false, now)
		assert.ErrorIs(t, err, ErrStartNotInFuture)
	})

	t.Run("title is required", func(t *testing.T) {
		bad := input
		bad.Title = "   "
		_, err := PlanCreate(bad, booking, false, now)
		assert.ErrorIs(t, err, ErrMissingTitle)
	})
}

func TestApplyPatch(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	t.Run("draft fields are patched", func(t *testing.T) {
		a := testAuction(AuctionStatusDraft, now)
		a.StartTime = now.Add(time.Hour)
		title := "Night ride"
		minimum := decimal.RequireFromString("80.13")
		end := now.Add(10 * time.Hour)

		updated, err := ApplyPatch(a, AuctionPatch{Title: &title, MinimumBidAmount: &minimum, EndTime: &end, ClearReserve: true}, now)
		require.NoError(t, err)
		assert.Equal(t, "Night ride", updated.Title)
		assert.Equal(t, "80.13", updated.MinimumBidAmount.StringFixed(2))
		assert.Equal(t, end, updated.EndTime)
		assert.False(t, updated.ReservePrice.Valid)
		assert.Equal(t, "Airport transfer", a.Title, "original must not change")
	})

	t.Run("non-draft is rejected", func(t *testing.T) {
		for _, status := range []AuctionStatus{AuctionStatusActive, AuctionStatusClosed, AuctionStatusAwarded, AuctionStatusCancelled} {
			title := "x"
			_, err := ApplyPatch(testAuction(status, now), AuctionPatch{Title: &title}, now)
			assert.ErrorIs(t, err, ErrInvalidState, "status %s", status)
		}
	})

	t.Run("schedule is re-validated", func(t *testing.T) {
		a := testAuction(AuctionStatusDraft, now)
		a.StartTime = now.Add(time.Hour)
		end := now.Add(30 * time.Minute)
		_, err := ApplyPatch(a, AuctionPatch{EndTime: &end}, now)
		assert.ErrorIs(t, err, ErrEndBeforeStart)
	})

	t.Run("non-positive minimum is rejected", func(t *testing.T) {
		zero := decimal.Zero
		_, err := ApplyPatch(testAuction(AuctionStatusDraft, now), AuctionPatch{MinimumBidAmount: &zero}, now)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("sub-cent amounts are rejected", func(t *testing.T) {
		minimum := decimal.RequireFromString("80.126")
		_, err := ApplyPatch(testAuction(AuctionStatusDraft, now), AuctionPatch{MinimumBidAmount: &minimum}, now)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		reserve := decimal.RequireFromString("150.005")
		_, err = ApplyPatch(testAuction(AuctionStatusDraft, now), AuctionPatch{ReservePrice: &reserve}, now)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestPlanDelete(t *testing.T) {
	now := time.Now()
	booking := &Booking{ID: uuid.New(), Status: BookingStatusInAuction}

	tests := []struct {
		name        string
		status      AuctionStatus
		bidCount    int64
		booking     *Booking
		wantErr     error
		wantBooking bool
	}{
		{"draft without bids", AuctionStatusDraft, 0, booking, nil, true},
		{"closed without bids", AuctionStatusClosed, 0, booking, nil, true},
		{"cancelled booking already confirmed", AuctionStatusCancelled, 0, &Booking{ID: booking.ID, Status: BookingStatusConfirmed}, nil, false},
		{"missing booking", AuctionStatusDraft, 0, nil, nil, false},
		{"active auction", AuctionStatusActive, 0, booking, ErrCannotDelete, false},
		{"closed with bids", AuctionStatusClosed, 2, booking, ErrAuctionHasBids, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanDelete(testAuction(tt.status, now), tt.bidCount, tt.booking)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrInvalidState)
				return
			}
			require.NoError(t, err)
			if tt.wantBooking {
				require.NotNil(t, plan.Booking)
				assert.Equal(t, BookingStatusConfirmed, plan.Booking.Status)
			} else {
				assert.Nil(t, plan.Booking)
			}
		})
	}
}

func TestPlanStartAndClose(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	actor := uuid.New()

	t.Run("start sets start time to now", func(t *testing.T) {
		a := testAuction(AuctionStatusDraft, now)
		a.StartTime = now.Add(time.Hour)
		plan, err := PlanStart(a, actor, now)
		require.NoError(t, err)
		assert.Equal(t, AuctionStatusActive, plan.To)
		assert.Equal(t, now, plan.StartTime)
		assert.Equal(t, a.EndTime, plan.EndTime)
		assert.Equal(t, ActivityStarted, plan.Activity.Type)
	})

	t.Run("start requires draft", func(t *testing.T) {
		_, err := PlanStart(testAuction(AuctionStatusActive, now), actor, now)
		assert.ErrorIs(t, err, ErrAuctionNotDraft)
	})

	t.Run("start rejects a schedule that already ended", func(t *testing.T) {
		a := testAuction(AuctionStatusDraft, now)
		a.EndTime = now.Add(-time.Minute)
		_, err := PlanStart(a, actor, now)
		assert.ErrorIs(t, err, ErrEndInPast)
	})

	t.Run("close sets end time to now", func(t *testing.T) {
		a := testAuction(AuctionStatusActive, now)
		plan, err := PlanClose(a, actor, now)
		require.NoError(t, err)
		assert.Equal(t, AuctionStatusClosed, plan.To)
		assert.Equal(t, now, plan.EndTime)
		assert.Equal(t, a.StartTime, plan.StartTime)
		assert.Equal(t, ActivityClosed, plan.Activity.Type)
	})

	t.Run("close requires active", func(t *testing.T) {
		for _, status := range []AuctionStatus{AuctionStatusDraft, AuctionStatusClosed, AuctionStatusAwarded, AuctionStatusCancelled} {
			_, err := PlanClose(testAuction(status, now), actor, now)
			assert.ErrorIs(t, err, ErrAuctionNotActive, "status %s", status)
		}
	})
}

func TestPlanCancel(t *testing.T) {
	now := time.Now()
	actor := uuid.New()

	for _, status := range []AuctionStatus{AuctionStatusDraft, AuctionStatusActive, AuctionStatusClosed} {
		t.Run("allowed from "+string(status), func(t *testing.T) {
			a := testAuction(status, now)
			plan, err := PlanCancel(a, actor, "  driver strike ", now)
			require.NoError(t, err)
			assert.Equal(t, status, plan.From)
			assert.Equal(t, BookingUpdate{BookingID: a.BookingID, Status: BookingStatusConfirmed}, plan.Booking)
			require.NotNil(t, plan.Activity.Notes)
			assert.Equal(t, "driver strike", *plan.Activity.Notes)
		})
	}

	for _, status := range []AuctionStatus{AuctionStatusAwarded, AuctionStatusCancelled} {
		t.Run("rejected from "+string(status), func(t *testing.T) {
			_, err := PlanCancel(testAuction(status, now), actor, "", now)
			assert.ErrorIs(t, err, ErrCannotCancel)
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}

	t.Run("blank reason is not recorded", func(t *testing.T) {
		plan, err := PlanCancel(testAuction(AuctionStatusDraft, now), actor, " ", now)
		require.NoError(t, err)
		assert.Nil(t, plan.Activity.Notes)
	})
}

func TestPlanAward(t *testing.T) {
	now := time.Now()
	actor := uuid.New()

	t.Run("winning bid is copied onto the booking", func(t *testing.T) {
		a := testAuction(AuctionStatusClosed, now)
		bid := testBid(a, "175.50")
		plan, err := PlanAward(a, bid, actor, "best offer", now)
		require.NoError(t, err)

		assert.Equal(t, bid.ID, plan.WinningBidID)
		assert.Equal(t, bid.CompanyID, plan.WinnerCompanyID)
		assert.Equal(t, actor, plan.AwardedBy)
		assert.Equal(t, BookingStatusAuctionAwarded, plan.Booking.Status)
		assert.Equal(t, bid.ProposedDriverID, plan.Booking.AssignedDriverID)
		assert.Equal(t, bid.ProposedCarID, plan.Booking.AssignedCarID)
		assert.Equal(t, ActivityAwarded, plan.Activity.Type)
		assert.Equal(t, "175.50", *plan.Activity.NewValue)
	})

	t.Run("award from active is allowed even when expired", func(t *testing.T) {
		a := testAuction(AuctionStatusActive, now)
		a.EndTime = now.Add(-time.Hour)
		_, err := PlanAward(a, testBid(a, "200"), actor, "", now)
		assert.NoError(t, err)
	})

	t.Run("below reserve fails", func(t *testing.T) {
		a := testAuction(AuctionStatusClosed, now)
		_, err := PlanAward(a, testBid(a, "120"), actor, "", now)
		assert.ErrorIs(t, err, ErrBelowReserve)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("reserve is optional", func(t *testing.T) {
		a := testAuction(AuctionStatusClosed, now)
		a.ReservePrice = decimal.NullDecimal{}
		_, err := PlanAward(a, testBid(a, "100"), actor, "", now)
		assert.NoError(t, err)
	})

	t.Run("amount equal to reserve is enough", func(t *testing.T) {
		a := testAuction(AuctionStatusClosed, now)
		_, err := PlanAward(a, testBid(a, "150.00"), actor, "", now)
		assert.NoError(t, err)
	})

	t.Run("terminal auctions cannot be awarded", func(t *testing.T) {
		for _, status := range []AuctionStatus{AuctionStatusDraft, AuctionStatusAwarded, AuctionStatusCancelled} {
			a := testAuction(status, now)
			_, err := PlanAward(a, testBid(a, "200"), actor, "", now)
			assert.ErrorIs(t, err, ErrCannotAward, "status %s", status)
		}
	})

	t.Run("bid from another auction", func(t *testing.T) {
		a := testAuction(AuctionStatusClosed, now)
		other := testAuction(AuctionStatusClosed, now)
		_, err := PlanAward(a, testBid(other, "200"), actor, "", now)
		assert.ErrorIs(t, err, ErrBidAuctionMismatch)
	})

	t.Run("bid must be active", func(t *testing.T) {
		a := testAuction(AuctionStatusClosed, now)
		bid := testBid(a, "200")
		bid.Status = BidStatusWithdrawn
		_, err := PlanAward(a, bid, actor, "", now)
		assert.ErrorIs(t, err, ErrBidNotActive)
	})
}
