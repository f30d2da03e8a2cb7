package api_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/floroz/ride-auction/internal/domain/auctions"
	"github.com/floroz/ride-auction/internal/domain/bids"
	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

type MockAuctionService struct {
	mock.Mock
}

func (m *MockAuctionService) view(args mock.Arguments) (*lifecycle.AuctionView, error) {
	if v := args.Get(0); v != nil {
		return v.(*lifecycle.AuctionView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuctionService) page(args mock.Arguments) (*auctions.AuctionPage, error) {
	if v := args.Get(0); v != nil {
		return v.(*auctions.AuctionPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuctionService) CreateAuction(ctx context.Context, cmd auctions.CreateAuctionCommand) (*lifecycle.AuctionView, error) {
	return m.view(m.Called(ctx, cmd))
}

func (m *MockAuctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*lifecycle.AuctionView, error) {
	return m.view(m.Called(ctx, auctionID))
}

func (m *MockAuctionService) ListAuctions(ctx context.Context, query auctions.ListAuctionsQuery) (*auctions.AuctionPage, error) {
	return m.page(m.Called(ctx, query))
}

func (m *MockAuctionService) ListCompanyAuctions(ctx context.Context, companyID uuid.UUID, page lifecycle.PageRequest) (*auctions.AuctionPage, error) {
	return m.page(m.Called(ctx, companyID, page))
}

func (m *MockAuctionService) UpdateAuction(ctx context.Context, cmd auctions.UpdateAuctionCommand) (*lifecycle.AuctionView, error) {
	return m.view(m.Called(ctx, cmd))
}

func (m *MockAuctionService) DeleteAuction(ctx context.Context, auctionID uuid.UUID) error {
	return m.Called(ctx, auctionID).Error(0)
}

func (m *MockAuctionService) StartAuction(ctx context.Context, auctionID, userID uuid.UUID) (*lifecycle.AuctionView, error) {
	return m.view(m.Called(ctx, auctionID, userID))
}

func (m *MockAuctionService) CloseAuction(ctx context.Context, auctionID, userID uuid.UUID) (*lifecycle.AuctionView, error) {
	return m.view(m.Called(ctx, auctionID, userID))
}

func (m *MockAuctionService) CancelAuction(ctx context.Context, cmd auctions.CancelAuctionCommand) (*lifecycle.AuctionView, error) {
	return m.view(m.Called(ctx, cmd))
}

func (m *MockAuctionService) AwardAuction(ctx context.Context, cmd auctions.AwardAuctionCommand) (*lifecycle.AuctionView, error) {
	return m.view(m.Called(ctx, cmd))
}

func (m *MockAuctionService) GetStats(ctx context.Context) (*lifecycle.AuctionStats, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*lifecycle.AuctionStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuctionService) ListActivities(ctx context.Context, auctionID uuid.UUID) ([]*lifecycle.Activity, error) {
	args := m.Called(ctx, auctionID)
	if v := args.Get(0); v != nil {
		return v.([]*lifecycle.Activity), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockBidService struct {
	mock.Mock
}

func (m *MockBidService) bid(args mock.Arguments) (*lifecycle.RankedBid, error) {
	if v := args.Get(0); v != nil {
		return v.(*lifecycle.RankedBid), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBidService) ResolveCompany(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockBidService) PlaceBid(ctx context.Context, cmd bids.PlaceBidCommand) (*lifecycle.RankedBid, error) {
	return m.bid(m.Called(ctx, cmd))
}

func (m *MockBidService) GetBid(ctx context.Context, bidID uuid.UUID) (*lifecycle.RankedBid, error) {
	return m.bid(m.Called(ctx, bidID))
}

func (m *MockBidService) UpdateBid(ctx context.Context, cmd bids.UpdateBidCommand) (*lifecycle.RankedBid, error) {
	return m.bid(m.Called(ctx, cmd))
}

func (m *MockBidService) WithdrawBid(ctx context.Context, cmd bids.WithdrawBidCommand) (*lifecycle.RankedBid, error) {
	return m.bid(m.Called(ctx, cmd))
}

func (m *MockBidService) ListAuctionBids(ctx context.Context, auctionID uuid.UUID) ([]lifecycle.RankedBid, error) {
	args := m.Called(ctx, auctionID)
	if v := args.Get(0); v != nil {
		return v.([]lifecycle.RankedBid), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBidService) ListCompanyBids(ctx context.Context, companyID uuid.UUID, page lifecycle.PageRequest) (*bids.BidPage, error) {
	args := m.Called(ctx, companyID, page)
	if v := args.Get(0); v != nil {
		return v.(*bids.BidPage), args.Error(1)
	}
	return nil, args.Error(1)
}
