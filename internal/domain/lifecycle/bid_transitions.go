package lifecycle

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceBidInput carries a new bid for an auction
type PlaceBidInput struct {
	AuctionID               uuid.UUID
	CompanyID               uuid.UUID
	BidderUserID            uuid.UUID
	Amount                  decimal.Decimal
	EstimatedCompletionTime *time.Time
	AdditionalServices      []string
	Notes                   string
	ProposedDriverID        *uuid.UUID
	ProposedCarID           *uuid.UUID
}

// BidPlan holds the bid row to write and the activity describing the change.
// Activity is nil when the change is not audited.
type BidPlan struct {
	Bid      *Bid
	Activity *Activity
}

// CheckOpenForBids verifies an auction accepts new or changed bids at now
func CheckOpenForBids(a *Auction, now time.Time) error {
	if a.Status != AuctionStatusActive {
		return ErrAuctionNotActive
	}
	if IsExpired(a.EndTime, now) {
		return ErrAuctionExpired
	}
	return nil
}

// ValidateBidAmount checks a bid amount against the auction floor
func ValidateBidAmount(amount decimal.Decimal, a *Auction) error {
	if !IsMoney(amount) {
		return ErrInvalidAmount
	}
	if !MeetsFloor(amount, a.MinimumBidAmount) {
		return ErrBelowMinimum
	}
	return nil
}

// PlanPlaceBid builds a new ACTIVE bid. existing is the company's current bid on the auction,
// if any. The reference is assigned by the caller.
func PlanPlaceBid(a *Auction, existing *Bid, in PlaceBidInput, now time.Time) (*BidPlan, error) {
	if in.CompanyID == uuid.Nil {
		return nil, ErrNoCompany
	}
	if err := CheckOpenForBids(a, now); err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBidExists
	}
	if err := ValidateBidAmount(in.Amount, a); err != nil {
		return nil, err
	}

	services := in.AdditionalServices
	if services == nil {
		services = []string{}
	}

	bid := &Bid{
		ID:                      uuid.New(),
		AuctionID:               a.ID,
		CompanyID:               in.CompanyID,
		BidderUserID:            in.BidderUserID,
		Amount:                  RoundMoney(in.Amount),
		EstimatedCompletionTime: utcPtr(in.EstimatedCompletionTime),
		AdditionalServices:      services,
		Notes:                   in.Notes,
		ProposedDriverID:        in.ProposedDriverID,
		ProposedCarID:           in.ProposedCarID,
		Status:                  BidStatusActive,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	activity := newActivity(a.ID, ActivityBidPlaced, now)
	activity.UserID = uuidPtr(in.BidderUserID)
	activity.CompanyID = uuidPtr(in.CompanyID)
	activity.BidID = uuidPtr(bid.ID)
	activity.NewValue = strPtr(bid.Amount.StringFixed(MoneyPlaces))

	return &BidPlan{Bid: bid, Activity: activity}, nil
}

// BidPatch lists the fields a bidder may change. Nil fields are left untouched.
type BidPatch struct {
	Amount                  *decimal.Decimal
	EstimatedCompletionTime *time.Time
	AdditionalServices      *[]string
	Notes                   *string
	ProposedDriverID        *uuid.UUID
	ProposedCarID           *uuid.UUID
}

// PlanUpdateBid applies a patch to an ACTIVE bid on an open auction. Only amount changes
// are audited.
func PlanUpdateBid(a *Auction, b *Bid, patch BidPatch, caller uuid.UUID, now time.Time) (*BidPlan, error) {
	if !b.IsOwnedBy(caller) {
		return nil, ErrNotBidOwner
	}
	if b.Status != BidStatusActive {
		return nil, ErrBidNotActive
	}
	if b.AuctionID != a.ID {
		return nil, ErrBidAuctionMismatch
	}
	if err := CheckOpenForBids(a, now); err != nil {
		return nil, err
	}

	updated := *b
	if patch.Amount != nil {
		if err := ValidateBidAmount(*patch.Amount, a); err != nil {
			return nil, err
		}
		updated.Amount = RoundMoney(*patch.Amount)
	}
	if patch.EstimatedCompletionTime != nil {
		updated.EstimatedCompletionTime = utcPtr(patch.EstimatedCompletionTime)
	}
	if patch.AdditionalServices != nil {
		updated.AdditionalServices = append([]string{}, (*patch.AdditionalServices)...)
	}
	if patch.Notes != nil {
		updated.Notes = *patch.Notes
	}
	if patch.ProposedDriverID != nil {
		updated.ProposedDriverID = patch.ProposedDriverID
	}
	if patch.ProposedCarID != nil {
		updated.ProposedCarID = patch.ProposedCarID
	}
	updated.UpdatedAt = now

	plan := &BidPlan{Bid: &updated}
	if !updated.Amount.Equal(b.Amount) {
		activity := newActivity(a.ID, ActivityBidUpdated, now)
		activity.UserID = uuidPtr(caller)
		activity.CompanyID = uuidPtr(b.CompanyID)
		activity.BidID = uuidPtr(b.ID)
		activity.PreviousValue = strPtr(b.Amount.StringFixed(MoneyPlaces))
		activity.NewValue = strPtr(updated.Amount.StringFixed(MoneyPlaces))
		plan.Activity = activity
	}
	return plan, nil
}

// PlanWithdrawBid revokes the caller's own ACTIVE bid. The auction status is irrelevant.
func PlanWithdrawBid(b *Bid, caller uuid.UUID, now time.Time) (*BidPlan, error) {
	if !b.IsOwnedBy(caller) {
		return nil, ErrNotBidOwner
	}
	if b.Status != BidStatusActive {
		return nil, ErrBidNotActive
	}

	updated := *b
	updated.Status = BidStatusWithdrawn
	updated.UpdatedAt = now

	activity := newActivity(b.AuctionID, ActivityBidWithdrawn, now)
	activity.UserID = uuidPtr(caller)
	activity.CompanyID = uuidPtr(b.CompanyID)
	activity.BidID = uuidPtr(b.ID)
	activity.PreviousValue = strPtr(string(BidStatusActive))
	activity.NewValue = strPtr(string(BidStatusWithdrawn))

	return &BidPlan{Bid: &updated, Activity: activity}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
