package lifecycle

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// auctionTransitions is the auction state machine. AWARDED and CANCELLED have no exits.
var auctionTransitions = map[AuctionStatus][]AuctionStatus{
	AuctionStatusDraft:  {AuctionStatusActive, AuctionStatusCancelled},
	AuctionStatusActive: {AuctionStatusClosed, AuctionStatusAwarded, AuctionStatusCancelled},
	AuctionStatusClosed: {AuctionStatusAwarded, AuctionStatusCancelled},
}

// CanTransition reports whether an auction may move from one status to another
func CanTransition(from, to AuctionStatus) bool {
	for _, next := range auctionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateSchedule checks that start is strictly in the future and end strictly after start
func ValidateSchedule(start, end, now time.Time) error {
	if !start.After(now) {
		return ErrStartNotInFuture
	}
	if !end.After(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// CreateAuctionInput carries the caller-supplied fields of a new auction
type CreateAuctionInput struct {
	BookingID   uuid.UUID
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	CreatedBy   uuid.UUID
}

// Validate runs the checks that need no stored state
func (in CreateAuctionInput) Validate(now time.Time) error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrMissingTitle
	}
	return ValidateSchedule(in.StartTime, in.EndTime, now)
}

// CreatePlan holds the writes of a successful create
type CreatePlan struct {
	Auction  *Auction
	Booking  BookingUpdate
	Activity *Activity
}

// PlanCreate builds a DRAFT auction for the booking. Booking checks come before input checks,
// so a booking that already has an auction always reports ErrAuctionExists. The reference is
// assigned by the caller once the plan is accepted.
func PlanCreate(in CreateAuctionInput, booking *Booking, hasAuction bool, now time.Time) (*CreatePlan, error) {
	if hasAuction {
		return nil, ErrAuctionExists
	}
	if booking.Status != BookingStatusConfirmed {
		return nil, ErrBookingNotConfirmed
	}
	if !RoundMoney(booking.BaseAmount).IsPositive() {
		return nil, ErrBookingNoBase
	}
	if err := in.Validate(now); err != nil {
		return nil, err
	}

	// A booking without a positive total carries no reserve
	reserve := decimal.NullDecimal{}
	if booking.TotalAmount.Valid && RoundMoney(booking.TotalAmount.Decimal).IsPositive() {
		reserve = decimal.NewNullDecimal(RoundMoney(booking.TotalAmount.Decimal))
	}

	auction := &Auction{
		ID:               uuid.New(),
		BookingID:        booking.ID,
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		StartTime:        in.StartTime.UTC(),
		EndTime:          in.EndTime.UTC(),
		MinimumBidAmount: RoundMoney(booking.BaseAmount),
		ReservePrice:     reserve,
		Status:           AuctionStatusDraft,
		CreatedBy:        in.CreatedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	activity := newActivity(auction.ID, ActivityCreated, now)
	activity.UserID = uuidPtr(in.CreatedBy)
	activity.NewValue = strPtr(string(AuctionStatusDraft))

	return &CreatePlan{
		Auction: auction,
		Booking: BookingUpdate{
			BookingID: booking.ID,
			Status:    BookingStatusInAuction,
		},
		Activity: activity,
	}, nil
}

// AuctionPatch lists the fields that may change while an auction is in DRAFT.
// Nil fields are left untouched.
type AuctionPatch struct {
	Title            *string
	Description      *string
	StartTime        *time.Time
	EndTime          *time.Time
	MinimumBidAmount *decimal.Decimal
	ReservePrice     *decimal.Decimal
	ClearReserve     bool
}

// ApplyPatch returns the patched copy of a DRAFT auction
func ApplyPatch(a *Auction, patch AuctionPatch, now time.Time) (*Auction, error) {
	if a.Status != AuctionStatusDraft {
		return nil, ErrAuctionNotDraft
	}

	updated := *a
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, ErrMissingTitle
		}
		updated.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.StartTime != nil {
		updated.StartTime = patch.StartTime.UTC()
	}
	if patch.EndTime != nil {
		updated.EndTime = patch.EndTime.UTC()
	}
	if patch.StartTime != nil || patch.EndTime != nil {
		if err := ValidateSchedule(updated.StartTime, updated.EndTime, now); err != nil {
			return nil, err
		}
	}
	if patch.MinimumBidAmount != nil {
		if !IsMoney(*patch.MinimumBidAmount) {
			return nil, ErrInvalidAmount
		}
		updated.MinimumBidAmount = *patch.MinimumBidAmount
	}
	switch {
	case patch.ClearReserve:
		updated.ReservePrice = decimal.NullDecimal{}
	case patch.ReservePrice != nil:
		if !IsMoney(*patch.ReservePrice) {
			return nil, ErrInvalidAmount
		}
		updated.ReservePrice = decimal.NewNullDecimal(*patch.ReservePrice)
	}
	updated.UpdatedAt = now
	return &updated, nil
}

// DeletePlan holds the writes of a successful delete
type DeletePlan struct {
	AuctionID uuid.UUID
	Booking   *BookingUpdate // nil when the booking needs no revert
}

// PlanDelete allows deleting a non-active auction that never received a bid
func PlanDelete(a *Auction, bidCount int64, booking *Booking) (*DeletePlan, error) {
	if a.Status == AuctionStatusActive {
		return nil, ErrCannotDelete
	}
	if bidCount > 0 {
		return nil, ErrAuctionHasBids
	}

	plan := &DeletePlan{AuctionID: a.ID}
	if booking != nil && booking.Status == BookingStatusInAuction {
		plan.Booking = &BookingUpdate{
			BookingID: booking.ID,
			Status:    BookingStatusConfirmed,
		}
	}
	return plan, nil
}

// TransitionPlan moves an auction between two statuses and rewrites its schedule
type TransitionPlan struct {
	AuctionID uuid.UUID
	From      AuctionStatus
	To        AuctionStatus
	StartTime time.Time
	EndTime   time.Time
	Activity  *Activity
}

// PlanStart opens a DRAFT auction for bidding immediately
func PlanStart(a *Auction, actor uuid.UUID, now time.Time) (*TransitionPlan, error) {
	if a.Status != AuctionStatusDraft {
		return nil, ErrAuctionNotDraft
	}
	if !a.EndTime.After(now) {
		return nil, ErrEndInPast
	}

	activity := newActivity(a.ID, ActivityStarted, now)
	activity.UserID = uuidPtr(actor)
	activity.PreviousValue = strPtr(string(a.Status))
	activity.NewValue = strPtr(string(AuctionStatusActive))

	return &TransitionPlan{
		AuctionID: a.ID,
		From:      a.Status,
		To:        AuctionStatusActive,
		StartTime: now,
		EndTime:   a.EndTime,
		Activity:  activity,
	}, nil
}

// PlanClose stops bidding on an ACTIVE auction immediately
func PlanClose(a *Auction, actor uuid.UUID, now time.Time) (*TransitionPlan, error) {
	if a.Status != AuctionStatusActive {
		return nil, ErrAuctionNotActive
	}

	activity := newActivity(a.ID, ActivityClosed, now)
	activity.UserID = uuidPtr(actor)
	activity.PreviousValue = strPtr(string(a.Status))
	activity.NewValue = strPtr(string(AuctionStatusClosed))

	return &TransitionPlan{
		AuctionID: a.ID,
		From:      a.Status,
		To:        AuctionStatusClosed,
		StartTime: a.StartTime,
		EndTime:   now,
		Activity:  activity,
	}, nil
}

// CancelPlan holds the writes of a successful cancel. Every ACTIVE bid of the auction is
// withdrawn in the same unit.
type CancelPlan struct {
	AuctionID uuid.UUID
	From      AuctionStatus
	Booking   BookingUpdate
	Activity  *Activity
}

// PlanCancel cancels an auction that is neither AWARDED nor already CANCELLED
func PlanCancel(a *Auction, actor uuid.UUID, reason string, now time.Time) (*CancelPlan, error) {
	if !CanTransition(a.Status, AuctionStatusCancelled) {
		return nil, ErrCannotCancel
	}

	activity := newActivity(a.ID, ActivityCancelled, now)
	activity.UserID = uuidPtr(actor)
	activity.PreviousValue = strPtr(string(a.Status))
	activity.NewValue = strPtr(string(AuctionStatusCancelled))
	if reason = strings.TrimSpace(reason); reason != "" {
		activity.Notes = strPtr(reason)
	}

	return &CancelPlan{
		AuctionID: a.ID,
		From:      a.Status,
		Booking: BookingUpdate{
			BookingID: a.BookingID,
			Status:    BookingStatusConfirmed,
		},
		Activity: activity,
	}, nil
}

// AwardPlan holds the writes of a successful award: accept the winner, reject the remaining
// active bids, mark the auction AWARDED, assign the booking and log the activity.
type AwardPlan struct {
	AuctionID       uuid.UUID
	From            AuctionStatus
	WinningBidID    uuid.UUID
	WinnerCompanyID uuid.UUID
	AwardedAt       time.Time
	AwardedBy       uuid.UUID
	Booking         BookingUpdate
	Activity        *Activity
}

// PlanAward selects the winning bid. Awarding is allowed from ACTIVE as well as CLOSED, and
// expiry does not matter at this point.
func PlanAward(a *Auction, bid *Bid, actor uuid.UUID, notes string, now time.Time) (*AwardPlan, error) {
	if !CanTransition(a.Status, AuctionStatusAwarded) {
		return nil, ErrCannotAward
	}
	if bid.AuctionID != a.ID {
		return nil, ErrBidAuctionMismatch
	}
	if bid.Status != BidStatusActive {
		return nil, ErrBidNotActive
	}
	if a.ReservePrice.Valid && !MeetsFloor(bid.Amount, a.ReservePrice.Decimal) {
		return nil, ErrBelowReserve
	}

	activity := newActivity(a.ID, ActivityAwarded, now)
	activity.UserID = uuidPtr(actor)
	activity.CompanyID = uuidPtr(bid.CompanyID)
	activity.BidID = uuidPtr(bid.ID)
	activity.PreviousValue = strPtr(string(a.Status))
	activity.NewValue = strPtr(bid.Amount.StringFixed(MoneyPlaces))
	if notes = strings.TrimSpace(notes); notes != "" {
		activity.Notes = strPtr(notes)
	}

	return &AwardPlan{
		AuctionID:       a.ID,
		From:            a.Status,
		WinningBidID:    bid.ID,
		WinnerCompanyID: bid.CompanyID,
		AwardedAt:       now,
		AwardedBy:       actor,
		Booking: BookingUpdate{
			BookingID:        a.BookingID,
			Status:           BookingStatusAuctionAwarded,
			AssignedDriverID: bid.ProposedDriverID,
			AssignedCarID:    bid.ProposedCarID,
		},
		Activity: activity,
	}, nil
}

func newActivity(auctionID uuid.UUID, activityType ActivityType, now time.Time) *Activity {
	return &Activity{
		ID:        uuid.New(),
		AuctionID: auctionID,
		Type:      activityType,
		CreatedAt: now,
	}
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func strPtr(s string) *string {
	return &s
}
