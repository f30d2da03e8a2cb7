package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floroz/ride-auction/internal/domain/auctions"
	"github.com/floroz/ride-auction/internal/domain/bids"
	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(lifecycle.MoneyPlaces)
}

func formatNullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := formatMoney(d.Decimal)
	return &s
}

func formatUUIDPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func mapAuction(v *lifecycle.AuctionView) *Auction {
	return &Auction{
		ID:                 v.ID.String(),
		Reference:          v.Reference,
		BookingID:          v.BookingID.String(),
		Title:              v.Title,
		Description:        v.Description,
		StartTime:          formatTime(v.StartTime),
		EndTime:            formatTime(v.EndTime),
		MinimumBidAmount:   formatMoney(v.MinimumBidAmount),
		ReservePrice:       formatNullMoney(v.ReservePrice),
		Status:             string(v.Status),
		WinningBidID:       formatUUIDPtr(v.WinningBidID),
		WinnerCompanyID:    formatUUIDPtr(v.WinnerCompanyID),
		AwardedAt:          formatTimePtr(v.AwardedAt),
		AwardedBy:          formatUUIDPtr(v.AwardedBy),
		CreatedBy:          v.CreatedBy.String(),
		CreatedAt:          formatTime(v.CreatedAt),
		UpdatedAt:          formatTime(v.UpdatedAt),
		IsExpired:          v.IsExpired,
		TimeRemainingHours: v.TimeRemainingHours,
		BidCount:           v.BidCount,
		HighestBidAmount:   formatNullMoney(v.HighestBidAmount),
	}
}

func mapAuctionPage(page *auctions.AuctionPage) *AuctionListResponse {
	list := make([]*Auction, len(page.Auctions))
	for i := range page.Auctions {
		list[i] = mapAuction(&page.Auctions[i])
	}
	return &AuctionListResponse{
		Auctions: list,
		Total:    page.Total,
		Page:     page.Page,
		Limit:    page.Limit,
	}
}

func mapBid(b *lifecycle.RankedBid) *Bid {
	var rank *int
	if b.Rank > 0 {
		r := b.Rank
		rank = &r
	}
	services := b.AdditionalServices
	if services == nil {
		services = []string{}
	}
	return &Bid{
		ID:                      b.ID.String(),
		Reference:               b.Reference,
		AuctionID:               b.AuctionID.String(),
		CompanyID:               b.CompanyID.String(),
		BidderUserID:            b.BidderUserID.String(),
		Amount:                  formatMoney(b.Amount),
		EstimatedCompletionTime: formatTimePtr(b.EstimatedCompletionTime),
		AdditionalServices:      services,
		Notes:                   b.Notes,
		ProposedDriverID:        formatUUIDPtr(b.ProposedDriverID),
		ProposedCarID:           formatUUIDPtr(b.ProposedCarID),
		Status:                  string(b.Status),
		Rank:                    rank,
		CreatedAt:               formatTime(b.CreatedAt),
		UpdatedAt:               formatTime(b.UpdatedAt),
	}
}

func mapBids(list []lifecycle.RankedBid) []*Bid {
	result := make([]*Bid, len(list))
	for i := range list {
		result[i] = mapBid(&list[i])
	}
	return result
}

func mapBidPage(page *bids.BidPage) *BidListResponse {
	return &BidListResponse{
		Bids:  mapBids(page.Bids),
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	}
}

func mapActivity(a *lifecycle.Activity) *Activity {
	return &Activity{
		ID:            a.ID.String(),
		AuctionID:     a.AuctionID.String(),
		ActivityType:  string(a.Type),
		UserID:        formatUUIDPtr(a.UserID),
		CompanyID:     formatUUIDPtr(a.CompanyID),
		BidID:         formatUUIDPtr(a.BidID),
		PreviousValue: a.PreviousValue,
		NewValue:      a.NewValue,
		Notes:         a.Notes,
		CreatedAt:     formatTime(a.CreatedAt),
	}
}

func mapStats(s *lifecycle.AuctionStats) *AuctionStats {
	byStatus := make(map[string]int64, len(s.ByStatus))
	for status, count := range s.ByStatus {
		byStatus[string(status)] = count
	}
	return &AuctionStats{
		Total:            s.Total,
		ByStatus:         byStatus,
		BidCount:         s.Bids.Count,
		AverageBidAmount: formatMoney(s.Bids.Average),
		MaxBidAmount:     formatMoney(s.Bids.Max),
		TotalBidAmount:   formatMoney(s.Bids.Sum),
		CompletionRate:   s.CompletionRate,
	}
}

// Parsing helpers report failures as InvalidArgument

func parseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, invalidArgument("invalid " + field)
	}
	return id, nil
}

func parseOptionalUUID(field, value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := parseUUID(field, value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, invalidArgument("invalid " + field + " format")
	}
	return t.UTC(), nil
}

func parseOptionalTime(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseTime(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseMoney(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, invalidArgument("invalid " + field)
	}
	return d, nil
}
