package lifecycle

import (
	"sort"

	"github.com/google/uuid"
)

// RankedBid is a bid with its current position among the active bids of its auction.
// Rank is zero for bids that are not active.
type RankedBid struct {
	Bid
	Rank int
}

// RankBids returns the 1-based position of every active bid, keyed by bid ID.
// Bids of different auctions are ranked independently. Higher amounts rank first;
// equal amounts keep insertion order.
func RankBids(bids []*Bid) map[uuid.UUID]int {
	byAuction := make(map[uuid.UUID][]*Bid)
	auctionOrder := make([]uuid.UUID, 0)
	for _, bid := range bids {
		if bid.Status != BidStatusActive {
			continue
		}
		if _, seen := byAuction[bid.AuctionID]; !seen {
			auctionOrder = append(auctionOrder, bid.AuctionID)
		}
		byAuction[bid.AuctionID] = append(byAuction[bid.AuctionID], bid)
	}

	ranks := make(map[uuid.UUID]int, len(bids))
	for _, auctionID := range auctionOrder {
		group := byAuction[auctionID]
		sort.SliceStable(group, func(i, j int) bool {
			if cmp := group[i].Amount.Cmp(group[j].Amount); cmp != 0 {
				return cmp > 0
			}
			return group[i].Sequence < group[j].Sequence
		})
		for position, bid := range group {
			ranks[bid.ID] = position + 1
		}
	}
	return ranks
}

// WithRanks attaches ranks computed from the active bids to the given bids
func WithRanks(bids []*Bid, active []*Bid) []RankedBid {
	ranks := RankBids(active)
	result := make([]RankedBid, len(bids))
	for i, bid := range bids {
		result[i] = RankedBid{Bid: *bid, Rank: ranks[bid.ID]}
	}
	return result
}
