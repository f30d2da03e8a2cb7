package lifecycle

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionStatus represents the lifecycle state of an auction
type AuctionStatus string

const (
	AuctionStatusDraft     AuctionStatus = "DRAFT"
	AuctionStatusActive    AuctionStatus = "ACTIVE"
	AuctionStatusClosed    AuctionStatus = "CLOSED"
	AuctionStatusAwarded   AuctionStatus = "AWARDED"
	AuctionStatusCancelled AuctionStatus = "CANCELLED"
)

// AuctionStatuses lists every auction status in lifecycle order
var AuctionStatuses = []AuctionStatus{
	AuctionStatusDraft,
	AuctionStatusActive,
	AuctionStatusClosed,
	AuctionStatusAwarded,
	AuctionStatusCancelled,
}

// IsValid checks if the auction status is known
func (s AuctionStatus) IsValid() bool {
	switch s {
	case AuctionStatusDraft, AuctionStatusActive, AuctionStatusClosed, AuctionStatusAwarded, AuctionStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further control operation is possible
func (s AuctionStatus) IsTerminal() bool {
	return s == AuctionStatusAwarded || s == AuctionStatusCancelled
}

// BidStatus represents the lifecycle state of a bid
type BidStatus string

const (
	BidStatusActive    BidStatus = "ACTIVE"
	BidStatusWithdrawn BidStatus = "WITHDRAWN"
	BidStatusAccepted  BidStatus = "ACCEPTED"
	BidStatusRejected  BidStatus = "REJECTED"
)

// IsValid checks if the bid status is known
func (s BidStatus) IsValid() bool {
	switch s {
	case BidStatusActive, BidStatusWithdrawn, BidStatusAccepted, BidStatusRejected:
		return true
	default:
		return false
	}
}

// BookingStatus is the subset of booking states the auction engine reads or writes
type BookingStatus string

const (
	BookingStatusConfirmed      BookingStatus = "CONFIRMED"
	BookingStatusInAuction      BookingStatus = "IN_AUCTION"
	BookingStatusAuctionAwarded BookingStatus = "AUCTION_AWARDED"
)

// ActivityType identifies the audited action
type ActivityType string

const (
	ActivityCreated      ActivityType = "CREATED"
	ActivityStarted      ActivityType = "STARTED"
	ActivityClosed       ActivityType = "CLOSED"
	ActivityCancelled    ActivityType = "CANCELLED"
	ActivityBidPlaced    ActivityType = "BID_PLACED"
	ActivityBidUpdated   ActivityType = "BID_UPDATED"
	ActivityBidWithdrawn ActivityType = "BID_WITHDRAWN"
	ActivityAwarded      ActivityType = "AWARDED"
)

// EventType returns the routing key used when the activity is published
func (t ActivityType) EventType() string {
	switch t {
	case ActivityCreated:
		return "auction.created"
	case ActivityStarted:
		return "auction.started"
	case ActivityClosed:
		return "auction.closed"
	case ActivityCancelled:
		return "auction.cancelled"
	case ActivityAwarded:
		return "auction.awarded"
	case ActivityBidPlaced:
		return "bid.placed"
	case ActivityBidUpdated:
		return "bid.updated"
	case ActivityBidWithdrawn:
		return "bid.withdrawn"
	default:
		return ""
	}
}

// IsValid checks if the activity type is known
func (t ActivityType) IsValid() bool {
	return t.EventType() != ""
}

// Auction is a time-boxed reverse auction attached to exactly one booking
type Auction struct {
	ID               uuid.UUID
	Reference        string
	BookingID        uuid.UUID
	Title            string
	Description      string
	StartTime        time.Time
	EndTime          time.Time
	MinimumBidAmount decimal.Decimal
	ReservePrice     decimal.NullDecimal
	Status           AuctionStatus
	WinningBidID     *uuid.UUID
	WinnerCompanyID  *uuid.UUID
	AwardedAt        *time.Time
	AwardedBy        *uuid.UUID
	CreatedBy        uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Bid is a company's offer against an auction
type Bid struct {
	ID                      uuid.UUID
	Reference               string
	AuctionID               uuid.UUID
	CompanyID               uuid.UUID
	BidderUserID            uuid.UUID
	Amount                  decimal.Decimal
	EstimatedCompletionTime *time.Time
	AdditionalServices      []string
	Notes                   string
	ProposedDriverID        *uuid.UUID
	ProposedCarID           *uuid.UUID
	Status                  BidStatus
	Sequence                int64 // insertion order, assigned by the store
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// IsOwnedBy checks whether the user placed the bid
func (b *Bid) IsOwnedBy(userID uuid.UUID) bool {
	return b.BidderUserID == userID
}

// Activity is an immutable audit record of a state change
type Activity struct {
	ID            uuid.UUID
	AuctionID     uuid.UUID
	Type          ActivityType
	UserID        *uuid.UUID
	CompanyID     *uuid.UUID
	BidID         *uuid.UUID
	PreviousValue *string
	NewValue      *string
	Notes         *string
	CreatedAt     time.Time
}

// Booking is the slice of an external booking the engine needs
type Booking struct {
	ID               uuid.UUID
	Reference        string
	Status           BookingStatus
	BaseAmount       decimal.Decimal
	TotalAmount      decimal.NullDecimal
	AssignedDriverID *uuid.UUID
	AssignedCarID    *uuid.UUID
}

// BookingUpdate is a status write sent back to the booking gateway
type BookingUpdate struct {
	BookingID        uuid.UUID
	Status           BookingStatus
	AssignedDriverID *uuid.UUID
	AssignedCarID    *uuid.UUID
}
