package auctions

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

// SortableColumns maps the sort keys callers may use to auction columns.
// Every column of the auctions table is sortable.
var SortableColumns = map[string]string{
	"id":                 "id",
	"reference":          "reference",
	"booking_id":         "booking_id",
	"title":              "title",
	"description":        "description",
	"start_time":         "start_time",
	"end_time":           "end_time",
	"minimum_bid_amount": "minimum_bid_amount",
	"reserve_price":      "reserve_price",
	"status":             "status",
	"winning_bid_id":     "winning_bid_id",
	"winner_company_id":  "winner_company_id",
	"awarded_at":         "awarded_at",
	"awarded_by":         "awarded_by",
	"created_by":         "created_by",
	"created_at":         "created_at",
	"updated_at":         "updated_at",
}

var ErrInvalidSort = fmt.Errorf("%w: unknown sort column", lifecycle.ErrValidation)

// ListAuctionsQuery filters, orders and pages the auction listing
type ListAuctionsQuery struct {
	Status      *lifecycle.AuctionStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	CreatedBy   *uuid.UUID
	Search      string // case-insensitive match on title, reference and booking reference
	SortBy      string // key of SortableColumns, default created_at
	SortAsc     bool   // default descending
	Page        lifecycle.PageRequest
}

// Normalize validates the query and applies defaults
func (q ListAuctionsQuery) Normalize() (ListAuctionsQuery, error) {
	if q.Status != nil && !q.Status.IsValid() {
		return q, fmt.Errorf("%w: unknown status %q", lifecycle.ErrValidation, *q.Status)
	}
	if q.CreatedFrom != nil && q.CreatedTo != nil && q.CreatedTo.Before(*q.CreatedFrom) {
		return q, fmt.Errorf("%w: created_to is before created_from", lifecycle.ErrValidation)
	}
	if q.SortBy == "" {
		q.SortBy = "created_at"
	}
	if _, ok := SortableColumns[q.SortBy]; !ok {
		return q, ErrInvalidSort
	}

	page, err := q.Page.Normalize()
	if err != nil {
		return q, err
	}
	q.Page = page
	return q, nil
}

// AuctionPage is one page of auction views
type AuctionPage struct {
	Auctions []lifecycle.AuctionView
	Total    int64
	Page     int
	Limit    int
}

// CreateAuctionCommand is the input of CreateAuction
type CreateAuctionCommand = lifecycle.CreateAuctionInput

// UpdateAuctionCommand patches a DRAFT auction
type UpdateAuctionCommand struct {
	AuctionID uuid.UUID
	Patch     lifecycle.AuctionPatch
}

// CancelAuctionCommand cancels an auction
type CancelAuctionCommand struct {
	AuctionID uuid.UUID
	UserID    uuid.UUID
	Reason    string
}

// AwardAuctionCommand picks the winning bid
type AwardAuctionCommand struct {
	AuctionID    uuid.UUID
	WinningBidID uuid.UUID
	UserID       uuid.UUID
	Notes        string
}
