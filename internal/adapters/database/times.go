package database

import (
	"time"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

// pgx returns timestamptz values in the local zone; the domain works in UTC
func utc(t *time.Time) {
	*t = t.UTC()
}

func utcPtr(t *time.Time) {
	if t != nil {
		*t = t.UTC()
	}
}

func normalizeAuctionTimes(a *lifecycle.Auction) {
	utc(&a.StartTime)
	utc(&a.EndTime)
	utc(&a.CreatedAt)
	utc(&a.UpdatedAt)
	utcPtr(a.AwardedAt)
}

func normalizeBidTimes(b *lifecycle.Bid) {
	utc(&b.CreatedAt)
	utc(&b.UpdatedAt)
	utcPtr(b.EstimatedCompletionTime)
}
