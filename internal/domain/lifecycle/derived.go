package lifecycle

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the precision of every monetary amount (cents)
const MoneyPlaces int32 = 2

// RoundMoney rounds an amount to MoneyPlaces
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// IsMoney reports whether d is positive and carries no more than MoneyPlaces decimals
func IsMoney(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(RoundMoney(d))
}

// MeetsFloor reports whether amount is at or above floor
func MeetsFloor(amount, floor decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(floor)
}

// IsExpired reports whether now is strictly after the end time
func IsExpired(endTime, now time.Time) bool {
	return now.After(endTime)
}

// TimeRemainingHours returns the whole hours left until endTime, rounded up and never negative
func TimeRemainingHours(endTime, now time.Time) int64 {
	remaining := endTime.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int64(math.Ceil(remaining.Hours()))
}

// BidSummary aggregates the bids of one auction
type BidSummary struct {
	Count            int64
	HighestBidAmount decimal.NullDecimal
}

// AuctionView is an auction plus the fields recomputed on every read
type AuctionView struct {
	Auction
	IsExpired          bool
	TimeRemainingHours int64
	BidCount           int64
	HighestBidAmount   decimal.NullDecimal
}

// NewAuctionView derives the read-only fields for an auction. They are never persisted.
func NewAuctionView(a Auction, summary BidSummary, now time.Time) AuctionView {
	return AuctionView{
		Auction:            a,
		IsExpired:          IsExpired(a.EndTime, now),
		TimeRemainingHours: TimeRemainingHours(a.EndTime, now),
		BidCount:           summary.Count,
		HighestBidAmount:   summary.HighestBidAmount,
	}
}

// BidVolume aggregates bid amounts
type BidVolume struct {
	Count   int64           `json:"count"`
	Average decimal.Decimal `json:"average"`
	Max     decimal.Decimal `json:"max"`
	Sum     decimal.Decimal `json:"sum"`
}

// AuctionStats is the statistics projection
type AuctionStats struct {
	Total          int64                   `json:"total"`
	ByStatus       map[AuctionStatus]int64 `json:"by_status"`
	Bids           BidVolume               `json:"bids"`
	CompletionRate float64                 `json:"completion_rate"`
}

// NewAuctionStats fills in zero counts for missing statuses and derives the completion rate
func NewAuctionStats(byStatus map[AuctionStatus]int64, bids BidVolume) *AuctionStats {
	stats := &AuctionStats{
		ByStatus: make(map[AuctionStatus]int64, len(AuctionStatuses)),
		Bids: BidVolume{
			Count:   bids.Count,
			Average: RoundMoney(bids.Average),
			Max:     RoundMoney(bids.Max),
			Sum:     RoundMoney(bids.Sum),
		},
	}
	for _, status := range AuctionStatuses {
		count := byStatus[status]
		stats.ByStatus[status] = count
		stats.Total += count
	}
	stats.CompletionRate = CompletionRate(stats.ByStatus[AuctionStatusAwarded], stats.Total)
	return stats
}

// CompletionRate is awarded / total, rounded to four places; zero when there are no auctions
func CompletionRate(awarded, total int64) float64 {
	if total <= 0 {
		return 0
	}
	rate, _ := decimal.NewFromInt(awarded).DivRound(decimal.NewFromInt(total), 4).Float64()
	return rate
}
