package lifecycle

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by the auction engine matches exactly one of these
// with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
)

// Lookup errors
var (
	ErrAuctionNotFound = fmt.Errorf("%w: auction not found", ErrNotFound)
	ErrBidNotFound     = fmt.Errorf("%w: bid not found", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("%w: booking not found", ErrNotFound)
)

// Conflict errors
var (
	ErrAuctionExists       = fmt.Errorf("%w: booking already has an auction", ErrConflict)
	ErrBookingNotConfirmed = fmt.Errorf("%w: booking is not confirmed", ErrConflict)
	ErrBidExists           = fmt.Errorf("%w: company already holds a bid on this auction, update it instead", ErrConflict)
)

// State errors
var (
	ErrAuctionNotDraft   = fmt.Errorf("%w: auction is not in draft", ErrInvalidState)
	ErrAuctionNotActive  = fmt.Errorf("%w: auction is not active", ErrInvalidState)
	ErrAuctionExpired    = fmt.Errorf("%w: auction has ended", ErrInvalidState)
	ErrAuctionHasBids    = fmt.Errorf("%w: auction has bids", ErrInvalidState)
	ErrCannotDelete      = fmt.Errorf("%w: active auctions cannot be deleted", ErrInvalidState)
	ErrCannotCancel      = fmt.Errorf("%w: auction can no longer be cancelled", ErrInvalidState)
	ErrCannotAward       = fmt.Errorf("%w: auction must be active or closed to award", ErrInvalidState)
	ErrBidNotActive      = fmt.Errorf("%w: bid is not active", ErrInvalidState)
	ErrConcurrentChange  = fmt.Errorf("%w: record was changed concurrently", ErrInvalidState)
	ErrInvalidTransition = fmt.Errorf("%w: transition not allowed", ErrInvalidState)
)

// Validation errors
var (
	ErrStartNotInFuture   = fmt.Errorf("%w: start time must be in the future", ErrValidation)
	ErrEndBeforeStart     = fmt.Errorf("%w: end time must be after start time", ErrValidation)
	ErrEndInPast          = fmt.Errorf("%w: end time has already passed", ErrValidation)
	ErrInvalidAmount      = fmt.Errorf("%w: amount must be positive with at most 2 decimal places", ErrValidation)
	ErrBelowMinimum       = fmt.Errorf("%w: bid amount is below the minimum bid amount", ErrValidation)
	ErrBelowReserve       = fmt.Errorf("%w: bid amount is below the reserve price", ErrValidation)
	ErrNoCompany          = fmt.Errorf("%w: user is not associated with a company", ErrValidation)
	ErrBidAuctionMismatch = fmt.Errorf("%w: bid does not belong to this auction", ErrValidation)
	ErrMissingTitle       = fmt.Errorf("%w: title is required", ErrValidation)
	ErrBookingNoBase      = fmt.Errorf("%w: booking has no positive base amount", ErrValidation)
)

// Permission errors
var (
	ErrNotBidOwner = fmt.Errorf("%w: only the original bidder can modify this bid", ErrForbidden)
)
