package api

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/floroz/ride-auction/internal/domain/auctions"
	"github.com/floroz/ride-auction/internal/domain/bids"
	"github.com/floroz/ride-auction/internal/domain/lifecycle"
	"github.com/floroz/ride-auction/pkg/auth"
)

// AuctionService is the auction lifecycle the handler drives
type AuctionService interface {
	CreateAuction(ctx context.Context, cmd auctions.CreateAuctionCommand) (*lifecycle.AuctionView, error)
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*lifecycle.AuctionView, error)
	ListAuctions(ctx context.Context, query auctions.ListAuctionsQuery) (*auctions.AuctionPage, error)
	ListCompanyAuctions(ctx context.Context, companyID uuid.UUID, page lifecycle.PageRequest) (*auctions.AuctionPage, error)
	UpdateAuction(ctx context.Context, cmd auctions.UpdateAuctionCommand) (*lifecycle.AuctionView, error)
	DeleteAuction(ctx context.Context, auctionID uuid.UUID) error
	StartAuction(ctx context.Context, auctionID, userID uuid.UUID) (*lifecycle.AuctionView, error)
	CloseAuction(ctx context.Context, auctionID, userID uuid.UUID) (*lifecycle.AuctionView, error)
	CancelAuction(ctx context.Context, cmd auctions.CancelAuctionCommand) (*lifecycle.AuctionView, error)
	AwardAuction(ctx context.Context, cmd auctions.AwardAuctionCommand) (*lifecycle.AuctionView, error)
	GetStats(ctx context.Context) (*lifecycle.AuctionStats, error)
	ListActivities(ctx context.Context, auctionID uuid.UUID) ([]*lifecycle.Activity, error)
}

// BidService is the bidding side the handler drives
type BidService interface {
	ResolveCompany(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	PlaceBid(ctx context.Context, cmd bids.PlaceBidCommand) (*lifecycle.RankedBid, error)
	GetBid(ctx context.Context, bidID uuid.UUID) (*lifecycle.RankedBid, error)
	UpdateBid(ctx context.Context, cmd bids.UpdateBidCommand) (*lifecycle.RankedBid, error)
	WithdrawBid(ctx context.Context, cmd bids.WithdrawBidCommand) (*lifecycle.RankedBid, error)
	ListAuctionBids(ctx context.Context, auctionID uuid.UUID) ([]lifecycle.RankedBid, error)
	ListCompanyBids(ctx context.Context, companyID uuid.UUID, page lifecycle.PageRequest) (*bids.BidPage, error)
}

// Handler implements AuctionServiceHandler. Every procedure is mounted behind the auth
// interceptor, so the caller's user id is always in the context.
type Handler struct {
	auctions AuctionService
	bids     BidService
	logger   *slog.Logger
}

var _ AuctionServiceHandler = (*Handler)(nil)

func NewHandler(auctionService AuctionService, bidService BidService, logger *slog.Logger) *Handler {
	return &Handler{
		auctions: auctionService,
		bids:     bidService,
		logger:   logger,
	}
}

func callerID(ctx context.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(auth.MustGetUserID(ctx))
	if err != nil {
		return uuid.Nil, connect.NewError(connect.CodeInternal, errors.New("invalid user_id in token"))
	}
	return userID, nil
}

func (h *Handler) fail(ctx context.Context, procedure string, err error) error {
	return toConnectError(ctx, h.logger, procedure, err)
}

func (h *Handler) CreateAuction(
	ctx context.Context,
	req *connect.Request[CreateAuctionRequest],
) (*connect.Response[AuctionResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	bookingID, err := parseUUID("booking_id", req.Msg.BookingID)
	if err != nil {
		return nil, err
	}
	startTime, err := parseTime("start_time", req.Msg.StartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := parseTime("end_time", req.Msg.EndTime)
	if err != nil {
		return nil, err
	}

	view, err := h.auctions.CreateAuction(ctx, auctions.CreateAuctionCommand{
		BookingID:   bookingID,
		Title:       req.Msg.Title,
		Description: req.Msg.Description,
		StartTime:   startTime,
		EndTime:     endTime,
		CreatedBy:   userID,
	})
	if err != nil {
		return nil, h.fail(ctx, CreateAuctionProcedure, err)
	}
	return connect.NewResponse(&AuctionResponse{Auction: mapAuction(view)}), nil
}

func (h *Handler) GetAuction(
	ctx context.Context,
	req *connect.Request[GetAuctionRequest],
) (*connect.Response[AuctionResponse], error) {
	auctionID, err := h.auctionID(req.Msg)
	if err != nil {
		return nil, err
	}

	view, err := h.auctions.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, h.fail(ctx, GetAuctionProcedure, err)
	}
	return connect.NewResponse(&AuctionResponse{Auction: mapAuction(view)}), nil
}

func (h *Handler) ListAuctions(
	ctx context.Context,
	req *connect.Request[ListAuctionsRequest],
) (*connect.Response[AuctionListResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	msg := req.Msg

	query := auctions.ListAuctionsQuery{
		Search:  msg.Search,
		SortBy:  msg.SortBy,
		SortAsc: msg.SortOrder == "asc",
		Page:    lifecycle.PageRequest{Page: msg.Page, Limit: msg.Limit},
	}
	if msg.Status != "" {
		status := lifecycle.AuctionStatus(msg.Status)
		query.Status = &status
	}
	var err error
	if query.CreatedFrom, err = parseOptionalTime("created_from", msg.CreatedFrom); err != nil {
		return nil, err
	}
	if query.CreatedTo, err = parseOptionalTime("created_to", msg.CreatedTo); err != nil {
		return nil, err
	}
	if query.CreatedBy, err = parseOptionalUUID("created_by", msg.CreatedBy); err != nil {
		return nil, err
	}

	page, err := h.auctions.ListAuctions(ctx, query)
	if err != nil {
		return nil, h.fail(ctx, ListAuctionsProcedure, err)
	}
	return connect.NewResponse(mapAuctionPage(page)), nil
}

func (h *Handler) UpdateAuction(
	ctx context.Context,
	req *connect.Request[UpdateAuctionRequest],
) (*connect.Response[AuctionResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	msg := req.Msg

	auctionID, err := parseUUID("auction_id", msg.AuctionID)
	if err != nil {
		return nil, err
	}

	patch := lifecycle.AuctionPatch{
		Title:        msg.Title,
		Description:  msg.Description,
		ClearReserve: msg.ClearReserve,
	}
	if msg.StartTime != nil {
		t, err := parseTime("start_time", *msg.StartTime)
		if err != nil {
			return nil, err
		}
		patch.StartTime = &t
	}
	if msg.EndTime != nil {
		t, err := parseTime("end_time", *msg.EndTime)
		if err != nil {
			return nil, err
		}
		patch.EndTime = &t
	}
	if msg.MinimumBidAmount != nil {
		d, err := parseMoney("minimum_bid_amount", *msg.MinimumBidAmount)
		if err != nil {
			return nil, err
		}
		patch.MinimumBidAmount = &d
	}
	if msg.ReservePrice != nil {
		d, err := parseMoney("reserve_price", *msg.ReservePrice)
		if err != nil {
			return nil, err
		}
		patch.ReservePrice = &d
	}

	view, err := h.auctions.UpdateAuction(ctx, auctions.UpdateAuctionCommand{AuctionID: auctionID, Patch: patch})
	if err != nil {
		return nil, h.fail(ctx, UpdateAuctionProcedure, err)
	}
	return connect.NewResponse(&AuctionResponse{Auction: mapAuction(view)}), nil
}

func (h *Handler) DeleteAuction(
	ctx context.Context,
	req *connect.Request[DeleteAuctionRequest],
) (*connect.Response[DeleteAuctionResponse], error) {
	auctionID, err := h.auctionID(req.Msg)
	if err != nil {
		return nil, err
	}

	if err := h.auctions.DeleteAuction(ctx, auctionID); err != nil {
		return nil, h.fail(ctx, DeleteAuctionProcedure, err)
	}
	return connect.NewResponse(&DeleteAuctionResponse{}), nil
}

func (h *Handler) StartAuction(
	ctx context.Context,
	req *connect.Request[StartAuctionRequest],
) (*connect.Response[AuctionResponse], error) {
	return h.control(ctx, StartAuctionProcedure, req.Msg, h.auctions.StartAuction)
}

func (h *Handler) CloseAuction(
	ctx context.Context,
	req *connect.Request[CloseAuctionRequest],
) (*connect.Response[AuctionResponse], error) {
	return h.control(ctx, CloseAuctionProcedure, req.Msg, h.auctions.CloseAuction)
}

func (h *Handler) control(
	ctx context.Context,
	procedure string,
	msg *AuctionIDRequest,
	op func(ctx context.Context, auctionID, userID uuid.UUID) (*lifecycle.AuctionView, error),
) (*connect.Response[AuctionResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	auctionID, err := h.auctionID(msg)
	if err != nil {
		return nil, err
	}

	view, err := op(ctx, auctionID, userID)
	if err != nil {
		return nil, h.fail(ctx, procedure, err)
	}
	return connect.NewResponse(&AuctionResponse{Auction: mapAuction(view)}), nil
}

func (h *Handler) CancelAuction(
	ctx context.Context,
	req *connect.Request[CancelAuctionRequest],
) (*connect.Response[AuctionResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	auctionID, err := parseUUID("auction_id", req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}

	view, err := h.auctions.CancelAuction(ctx, auctions.CancelAuctionCommand{
		AuctionID: auctionID,
		UserID:    userID,
		Reason:    req.Msg.Reason,
	})
	if err != nil {
		return nil, h.fail(ctx, CancelAuctionProcedure, err)
	}
	return connect.NewResponse(&AuctionResponse{Auction: mapAuction(view)}), nil
}

func (h *Handler) AwardAuction(
	ctx context.Context,
	req *connect.Request[AwardAuctionRequest],
) (*connect.Response[AuctionResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	auctionID, err := parseUUID("auction_id", req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}
	bidID, err := parseUUID("winning_bid_id", req.Msg.WinningBidID)
	if err != nil {
		return nil, err
	}

	view, err := h.auctions.AwardAuction(ctx, auctions.AwardAuctionCommand{
		AuctionID:    auctionID,
		WinningBidID: bidID,
		UserID:       userID,
		Notes:        req.Msg.Notes,
	})
	if err != nil {
		return nil, h.fail(ctx, AwardAuctionProcedure, err)
	}
	return connect.NewResponse(&AuctionResponse{Auction: mapAuction(view)}), nil
}

func (h *Handler) GetAuctionStats(
	ctx context.Context,
	_ *connect.Request[GetAuctionStatsRequest],
) (*connect.Response[AuctionStatsResponse], error) {
	stats, err := h.auctions.GetStats(ctx)
	if err != nil {
		return nil, h.fail(ctx, GetAuctionStatsProcedure, err)
	}
	return connect.NewResponse(&AuctionStatsResponse{Stats: mapStats(stats)}), nil
}

func (h *Handler) ListAuctionActivities(
	ctx context.Context,
	req *connect.Request[ListAuctionActivitiesRequest],
) (*connect.Response[ActivityListResponse], error) {
	auctionID, err := h.auctionID(req.Msg)
	if err != nil {
		return nil, err
	}

	list, err := h.auctions.ListActivities(ctx, auctionID)
	if err != nil {
		return nil, h.fail(ctx, ListAuctionActivitiesProcedure, err)
	}

	activities := make([]*Activity, len(list))
	for i, activity := range list {
		activities[i] = mapActivity(activity)
	}
	return connect.NewResponse(&ActivityListResponse{Activities: activities}), nil
}

func (h *Handler) PlaceBid(
	ctx context.Context,
	req *connect.Request[PlaceBidRequest],
) (*connect.Response[BidResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	msg := req.Msg

	cmd := bids.PlaceBidCommand{
		BidderUserID:       userID,
		AdditionalServices: msg.AdditionalServices,
		Notes:              msg.Notes,
	}
	if cmd.AuctionID, err = parseUUID("auction_id", msg.AuctionID); err != nil {
		return nil, err
	}
	if cmd.Amount, err = parseMoney("amount", msg.Amount); err != nil {
		return nil, err
	}
	if cmd.EstimatedCompletionTime, err = parseOptionalTime("estimated_completion_time", msg.EstimatedCompletionTime); err != nil {
		return nil, err
	}
	if cmd.ProposedDriverID, err = parseOptionalUUID("proposed_driver_id", msg.ProposedDriverID); err != nil {
		return nil, err
	}
	if cmd.ProposedCarID, err = parseOptionalUUID("proposed_car_id", msg.ProposedCarID); err != nil {
		return nil, err
	}

	bid, err := h.bids.PlaceBid(ctx, cmd)
	if err != nil {
		return nil, h.fail(ctx, PlaceBidProcedure, err)
	}
	return connect.NewResponse(&BidResponse{Bid: mapBid(bid)}), nil
}

func (h *Handler) GetBid(
	ctx context.Context,
	req *connect.Request[GetBidRequest],
) (*connect.Response[BidResponse], error) {
	bidID, err := h.bidID(req.Msg)
	if err != nil {
		return nil, err
	}

	bid, err := h.bids.GetBid(ctx, bidID)
	if err != nil {
		return nil, h.fail(ctx, GetBidProcedure, err)
	}
	return connect.NewResponse(&BidResponse{Bid: mapBid(bid)}), nil
}

func (h *Handler) UpdateBid(
	ctx context.Context,
	req *connect.Request[UpdateBidRequest],
) (*connect.Response[BidResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	msg := req.Msg

	bidID, err := parseUUID("bid_id", msg.BidID)
	if err != nil {
		return nil, err
	}

	patch := lifecycle.BidPatch{
		AdditionalServices: msg.AdditionalServices,
		Notes:              msg.Notes,
	}
	if msg.Amount != nil {
		amount, err := parseMoney("amount", *msg.Amount)
		if err != nil {
			return nil, err
		}
		patch.Amount = &amount
	}
	if msg.EstimatedCompletionTime != nil {
		t, err := parseTime("estimated_completion_time", *msg.EstimatedCompletionTime)
		if err != nil {
			return nil, err
		}
		patch.EstimatedCompletionTime = &t
	}
	if msg.ProposedDriverID != nil {
		id, err := parseUUID("proposed_driver_id", *msg.ProposedDriverID)
		if err != nil {
			return nil, err
		}
		patch.ProposedDriverID = &id
	}
	if msg.ProposedCarID != nil {
		id, err := parseUUID("proposed_car_id", *msg.ProposedCarID)
		if err != nil {
			return nil, err
		}
		patch.ProposedCarID = &id
	}

	bid, err := h.bids.UpdateBid(ctx, bids.UpdateBidCommand{BidID: bidID, UserID: userID, Patch: patch})
	if err != nil {
		return nil, h.fail(ctx, UpdateBidProcedure, err)
	}
	return connect.NewResponse(&BidResponse{Bid: mapBid(bid)}), nil
}

func (h *Handler) WithdrawBid(
	ctx context.Context,
	req *connect.Request[WithdrawBidRequest],
) (*connect.Response[BidResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	bidID, err := h.bidID(req.Msg)
	if err != nil {
		return nil, err
	}

	bid, err := h.bids.WithdrawBid(ctx, bids.WithdrawBidCommand{BidID: bidID, UserID: userID})
	if err != nil {
		return nil, h.fail(ctx, WithdrawBidProcedure, err)
	}
	return connect.NewResponse(&BidResponse{Bid: mapBid(bid)}), nil
}

func (h *Handler) ListAuctionBids(
	ctx context.Context,
	req *connect.Request[ListAuctionBidsRequest],
) (*connect.Response[BidListResponse], error) {
	auctionID, err := h.auctionID(req.Msg)
	if err != nil {
		return nil, err
	}

	list, err := h.bids.ListAuctionBids(ctx, auctionID)
	if err != nil {
		return nil, h.fail(ctx, ListAuctionBidsProcedure, err)
	}
	return connect.NewResponse(&BidListResponse{Bids: mapBids(list), Total: int64(len(list))}), nil
}

func (h *Handler) ListCompanyBids(
	ctx context.Context,
	req *connect.Request[ListCompanyBidsRequest],
) (*connect.Response[BidListResponse], error) {
	companyID, page, err := h.companyPage(ctx, ListCompanyBidsProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	result, err := h.bids.ListCompanyBids(ctx, companyID, page)
	if err != nil {
		return nil, h.fail(ctx, ListCompanyBidsProcedure, err)
	}
	return connect.NewResponse(mapBidPage(result)), nil
}

func (h *Handler) ListCompanyAuctions(
	ctx context.Context,
	req *connect.Request[ListCompanyAuctionsRequest],
) (*connect.Response[AuctionListResponse], error) {
	companyID, page, err := h.companyPage(ctx, ListCompanyAuctionsProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	result, err := h.auctions.ListCompanyAuctions(ctx, companyID, page)
	if err != nil {
		return nil, h.fail(ctx, ListCompanyAuctionsProcedure, err)
	}
	return connect.NewResponse(mapAuctionPage(result)), nil
}

// companyPage resolves the company to list for, defaulting to the caller's own company
func (h *Handler) companyPage(ctx context.Context, procedure string, msg *CompanyPageRequest) (uuid.UUID, lifecycle.PageRequest, error) {
	page := lifecycle.PageRequest{Page: msg.Page, Limit: msg.Limit}
	if err := validateRequest(msg); err != nil {
		return uuid.Nil, page, err
	}

	if msg.CompanyID != "" {
		companyID, err := parseUUID("company_id", msg.CompanyID)
		return companyID, page, err
	}

	userID, err := callerID(ctx)
	if err != nil {
		return uuid.Nil, page, err
	}
	companyID, err := h.bids.ResolveCompany(ctx, userID)
	if err != nil {
		return uuid.Nil, page, h.fail(ctx, procedure, err)
	}
	return companyID, page, nil
}

func (h *Handler) auctionID(msg *AuctionIDRequest) (uuid.UUID, error) {
	if err := validateRequest(msg); err != nil {
		return uuid.Nil, err
	}
	return parseUUID("auction_id", msg.AuctionID)
}

func (h *Handler) bidID(msg *BidIDRequest) (uuid.UUID, error) {
	if err := validateRequest(msg); err != nil {
		return uuid.Nil, err
	}
	return parseUUID("bid_id", msg.BidID)
}
