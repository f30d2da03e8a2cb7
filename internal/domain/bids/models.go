package bids

import (
	"github.com/google/uuid"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

// PlaceBidCommand places the caller's company bid. The company is resolved from the user.
type PlaceBidCommand = lifecycle.PlaceBidInput

type UpdateBidCommand struct {
	BidID  uuid.UUID
	UserID uuid.UUID
	Patch  lifecycle.BidPatch
}

type WithdrawBidCommand struct {
	BidID  uuid.UUID
	UserID uuid.UUID
}

// BidPage is one page of ranked bids
type BidPage struct {
	Bids  []lifecycle.RankedBid
	Total int64
	Page  int
	Limit int
}
