package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// AuctionServiceName is the fully-qualified name of the auction service
const AuctionServiceName = "rideauction.v1.AuctionService"

// Procedure paths of AuctionService
const (
	CreateAuctionProcedure         = "/" + AuctionServiceName + "/CreateAuction"
	GetAuctionProcedure            = "/" + AuctionServiceName + "/GetAuction"
	ListAuctionsProcedure          = "/" + AuctionServiceName + "/ListAuctions"
	UpdateAuctionProcedure         = "/" + AuctionServiceName + "/UpdateAuction"
	DeleteAuctionProcedure         = "/" + AuctionServiceName + "/DeleteAuction"
	StartAuctionProcedure          = "/" + AuctionServiceName + "/StartAuction"
	CloseAuctionProcedure          = "/" + AuctionServiceName + "/CloseAuction"
	CancelAuctionProcedure         = "/" + AuctionServiceName + "/CancelAuction"
	AwardAuctionProcedure          = "/" + AuctionServiceName + "/AwardAuction"
	GetAuctionStatsProcedure       = "/" + AuctionServiceName + "/GetAuctionStats"
	ListAuctionActivitiesProcedure = "/" + AuctionServiceName + "/ListAuctionActivities"
	PlaceBidProcedure              = "/" + AuctionServiceName + "/PlaceBid"
	GetBidProcedure                = "/" + AuctionServiceName + "/GetBid"
	UpdateBidProcedure             = "/" + AuctionServiceName + "/UpdateBid"
	WithdrawBidProcedure           = "/" + AuctionServiceName + "/WithdrawBid"
	ListAuctionBidsProcedure       = "/" + AuctionServiceName + "/ListAuctionBids"
	ListCompanyBidsProcedure       = "/" + AuctionServiceName + "/ListCompanyBids"
	ListCompanyAuctionsProcedure   = "/" + AuctionServiceName + "/ListCompanyAuctions"
)

// AuctionServiceHandler is implemented by the server side of AuctionService
type AuctionServiceHandler interface {
	CreateAuction(context.Context, *connect.Request[CreateAuctionRequest]) (*connect.Response[AuctionResponse], error)
	GetAuction(context.Context, *connect.Request[GetAuctionRequest]) (*connect.Response[AuctionResponse], error)
	ListAuctions(context.Context, *connect.Request[ListAuctionsRequest]) (*connect.Response[AuctionListResponse], error)
	UpdateAuction(context.Context, *connect.Request[UpdateAuctionRequest]) (*connect.Response[AuctionResponse], error)
	DeleteAuction(context.Context, *connect.Request[DeleteAuctionRequest]) (*connect.Response[DeleteAuctionResponse], error)
	StartAuction(context.Context, *connect.Request[StartAuctionRequest]) (*connect.Response[AuctionResponse], error)
	CloseAuction(context.Context, *connect.Request[CloseAuctionRequest]) (*connect.Response[AuctionResponse], error)
	CancelAuction(context.Context, *connect.Request[CancelAuctionRequest]) (*connect.Response[AuctionResponse], error)
	AwardAuction(context.Context, *connect.Request[AwardAuctionRequest]) (*connect.Response[AuctionResponse], error)
	GetAuctionStats(context.Context, *connect.Request[GetAuctionStatsRequest]) (*connect.Response[AuctionStatsResponse], error)
	ListAuctionActivities(context.Context, *connect.Request[ListAuctionActivitiesRequest]) (*connect.Response[ActivityListResponse], error)
	PlaceBid(context.Context, *connect.Request[PlaceBidRequest]) (*connect.Response[BidResponse], error)
	GetBid(context.Context, *connect.Request[GetBidRequest]) (*connect.Response[BidResponse], error)
	UpdateBid(context.Context, *connect.Request[UpdateBidRequest]) (*connect.Response[BidResponse], error)
	WithdrawBid(context.Context, *connect.Request[WithdrawBidRequest]) (*connect.Response[BidResponse], error)
	ListAuctionBids(context.Context, *connect.Request[ListAuctionBidsRequest]) (*connect.Response[BidListResponse], error)
	ListCompanyBids(context.Context, *connect.Request[ListCompanyBidsRequest]) (*connect.Response[BidListResponse], error)
	ListCompanyAuctions(context.Context, *connect.Request[ListCompanyAuctionsRequest]) (*connect.Response[AuctionListResponse], error)
}

// NewAuctionServiceHandler builds an HTTP handler serving every procedure of svc with the JSON
// codec. It returns the path to mount the handler on.
func NewAuctionServiceHandler(svc AuctionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CreateAuctionProcedure, connect.NewUnaryHandler(CreateAuctionProcedure, svc.CreateAuction, opts...))
	mux.Handle(GetAuctionProcedure, connect.NewUnaryHandler(GetAuctionProcedure, svc.GetAuction, opts...))
	mux.Handle(ListAuctionsProcedure, connect.NewUnaryHandler(ListAuctionsProcedure, svc.ListAuctions, opts...))
	mux.Handle(UpdateAuctionProcedure, connect.NewUnaryHandler(UpdateAuctionProcedure, svc.UpdateAuction, opts...))
	mux.Handle(DeleteAuctionProcedure, connect.NewUnaryHandler(DeleteAuctionProcedure, svc.DeleteAuction, opts...))
	mux.Handle(StartAuctionProcedure, connect.NewUnaryHandler(StartAuctionProcedure, svc.StartAuction, opts...))
	mux.Handle(CloseAuctionProcedure, connect.NewUnaryHandler(CloseAuctionProcedure, svc.CloseAuction, opts...))
	mux.Handle(CancelAuctionProcedure, connect.NewUnaryHandler(CancelAuctionProcedure, svc.CancelAuction, opts...))
	mux.Handle(AwardAuctionProcedure, connect.NewUnaryHandler(AwardAuctionProcedure, svc.AwardAuction, opts...))
	mux.Handle(GetAuctionStatsProcedure, connect.NewUnaryHandler(GetAuctionStatsProcedure, svc.GetAuctionStats, opts...))
	mux.Handle(ListAuctionActivitiesProcedure, connect.NewUnaryHandler(ListAuctionActivitiesProcedure, svc.ListAuctionActivities, opts...))
	mux.Handle(PlaceBidProcedure, connect.NewUnaryHandler(PlaceBidProcedure, svc.PlaceBid, opts...))
	mux.Handle(GetBidProcedure, connect.NewUnaryHandler(GetBidProcedure, svc.GetBid, opts...))
	mux.Handle(UpdateBidProcedure, connect.NewUnaryHandler(UpdateBidProcedure, svc.UpdateBid, opts...))
	mux.Handle(WithdrawBidProcedure, connect.NewUnaryHandler(WithdrawBidProcedure, svc.WithdrawBid, opts...))
	mux.Handle(ListAuctionBidsProcedure, connect.NewUnaryHandler(ListAuctionBidsProcedure, svc.ListAuctionBids, opts...))
	mux.Handle(ListCompanyBidsProcedure, connect.NewUnaryHandler(ListCompanyBidsProcedure, svc.ListCompanyBids, opts...))
	mux.Handle(ListCompanyAuctionsProcedure, connect.NewUnaryHandler(ListCompanyAuctionsProcedure, svc.ListCompanyAuctions, opts...))
	return "/" + AuctionServiceName + "/", mux
}

// AuctionServiceClient calls AuctionService over the JSON codec
type AuctionServiceClient struct {
	createAuction         *connect.Client[CreateAuctionRequest, AuctionResponse]
	getAuction            *connect.Client[GetAuctionRequest, AuctionResponse]
	listAuctions          *connect.Client[ListAuctionsRequest, AuctionListResponse]
	updateAuction         *connect.Client[UpdateAuctionRequest, AuctionResponse]
	deleteAuction         *connect.Client[DeleteAuctionRequest, DeleteAuctionResponse]
	startAuction          *connect.Client[StartAuctionRequest, AuctionResponse]
	closeAuction          *connect.Client[CloseAuctionRequest, AuctionResponse]
	cancelAuction         *connect.Client[CancelAuctionRequest, AuctionResponse]
	awardAuction          *connect.Client[AwardAuctionRequest, AuctionResponse]
	getAuctionStats       *connect.Client[GetAuctionStatsRequest, AuctionStatsResponse]
	listAuctionActivities *connect.Client[ListAuctionActivitiesRequest, ActivityListResponse]
	placeBid              *connect.Client[PlaceBidRequest, BidResponse]
	getBid                *connect.Client[GetBidRequest, BidResponse]
	updateBid             *connect.Client[UpdateBidRequest, BidResponse]
	withdrawBid           *connect.Client[WithdrawBidRequest, BidResponse]
	listAuctionBids       *connect.Client[ListAuctionBidsRequest, BidListResponse]
	listCompanyBids       *connect.Client[ListCompanyBidsRequest, BidListResponse]
	listCompanyAuctions   *connect.Client[ListCompanyAuctionsRequest, AuctionListResponse]
}

// NewAuctionServiceClient creates a client for the service mounted at baseURL
func NewAuctionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuctionServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &AuctionServiceClient{
		createAuction:         connect.NewClient[CreateAuctionRequest, AuctionResponse](httpClient, baseURL+CreateAuctionProcedure, opts...),
		getAuction:            connect.NewClient[GetAuctionRequest, AuctionResponse](httpClient, baseURL+GetAuctionProcedure, opts...),
		listAuctions:          connect.NewClient[ListAuctionsRequest, AuctionListResponse](httpClient, baseURL+ListAuctionsProcedure, opts...),
		updateAuction:         connect.NewClient[UpdateAuctionRequest, AuctionResponse](httpClient, baseURL+UpdateAuctionProcedure, opts...),
		deleteAuction:         connect.NewClient[DeleteAuctionRequest, DeleteAuctionResponse](httpClient, baseURL+DeleteAuctionProcedure, opts...),
		startAuction:          connect.NewClient[StartAuctionRequest, AuctionResponse](httpClient, baseURL+StartAuctionProcedure, opts...),
		closeAuction:          connect.NewClient[CloseAuctionRequest, AuctionResponse](httpClient, baseURL+CloseAuctionProcedure, opts...),
		cancelAuction:         connect.NewClient[CancelAuctionRequest, AuctionResponse](httpClient, baseURL+CancelAuctionProcedure, opts...),
		awardAuction:          connect.NewClient[AwardAuctionRequest, AuctionResponse](httpClient, baseURL+AwardAuctionProcedure, opts...),
		getAuctionStats:       connect.NewClient[GetAuctionStatsRequest, AuctionStatsResponse](httpClient, baseURL+GetAuctionStatsProcedure, opts...),
		listAuctionActivities: connect.NewClient[ListAuctionActivitiesRequest, ActivityListResponse](httpClient, baseURL+ListAuctionActivitiesProcedure, opts...),
		placeBid:              connect.NewClient[PlaceBidRequest, BidResponse](httpClient, baseURL+PlaceBidProcedure, opts...),
		getBid:                connect.NewClient[GetBidRequest, BidResponse](httpClient, baseURL+GetBidProcedure, opts...),
		updateBid:             connect.NewClient[UpdateBidRequest, BidResponse](httpClient, baseURL+UpdateBidProcedure, opts...),
		withdrawBid:           connect.NewClient[WithdrawBidRequest, BidResponse](httpClient, baseURL+WithdrawBidProcedure, opts...),
		listAuctionBids:       connect.NewClient[ListAuctionBidsRequest, BidListResponse](httpClient, baseURL+ListAuctionBidsProcedure, opts...),
		listCompanyBids:       connect.NewClient[ListCompanyBidsRequest, BidListResponse](httpClient, baseURL+ListCompanyBidsProcedure, opts...),
		listCompanyAuctions:   connect.NewClient[ListCompanyAuctionsRequest, AuctionListResponse](httpClient, baseURL+ListCompanyAuctionsProcedure, opts...),
	}
}

func (c *AuctionServiceClient) CreateAuction(ctx context.Context, req *connect.Request[CreateAuctionRequest]) (*connect.Response[AuctionResponse], error) {
	return c.createAuction.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) GetAuction(ctx context.Context, req *connect.Request[GetAuctionRequest]) (*connect.Response[AuctionResponse], error) {
	return c.getAuction.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) ListAuctions(ctx context.Context, req *connect.Request[ListAuctionsRequest]) (*connect.Response[AuctionListResponse], error) {
	return c.listAuctions.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) UpdateAuction(ctx context.Context, req *connect.Request[UpdateAuctionRequest]) (*connect.Response[AuctionResponse], error) {
	return c.updateAuction.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) DeleteAuction(ctx context.Context, req *connect.Request[DeleteAuctionRequest]) (*connect.Response[DeleteAuctionResponse], error) {
	return c.deleteAuction.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) StartAuction(ctx context.Context, req *connect.Request[StartAuctionRequest]) (*connect.Response[AuctionResponse], error) {
	return c.startAuction.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) CloseAuction(ctx context.Context, req *connect.Request[CloseAuctionRequest]) (*connect.Response[AuctionResponse], error) {
	return c.closeAuction.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) CancelAuction(ctx context.Context, req *connect.Request[CancelAuctionRequest]) (*connect.Response[AuctionResponse], error) {
	return c.cancelAuction.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) AwardAuction(ctx context.Context, req *connect.Request[AwardAuctionRequest]) (*connect.Response[AuctionResponse], error) {
	return c.awardAuction.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) GetAuctionStats(ctx context.Context, req *connect.Request[GetAuctionStatsRequest]) (*connect.Response[AuctionStatsResponse], error) {
	return c.getAuctionStats.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) ListAuctionActivities(ctx context.Context, req *connect.Request[ListAuctionActivitiesRequest]) (*connect.Response[ActivityListResponse], error) {
	return c.listAuctionActivities.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) PlaceBid(ctx context.Context, req *connect.Request[PlaceBidRequest]) (*connect.Response[BidResponse], error) {
	return c.placeBid.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) GetBid(ctx context.Context, req *connect.Request[GetBidRequest]) (*connect.Response[BidResponse], error) {
	return c.getBid.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) UpdateBid(ctx context.Context, req *connect.Request[UpdateBidRequest]) (*connect.Response[BidResponse], error) {
	return c.updateBid.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) WithdrawBid(ctx context.Context, req *connect.Request[WithdrawBidRequest]) (*connect.Response[BidResponse], error) {
	return c.withdrawBid.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) ListAuctionBids(ctx context.Context, req *connect.Request[ListAuctionBidsRequest]) (*connect.Response[BidListResponse], error) {
	return c.listAuctionBids.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) ListCompanyBids(ctx context.Context, req *connect.Request[ListCompanyBidsRequest]) (*connect.Response[BidListResponse], error) {
	return c.listCompanyBids.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) ListCompanyAuctions(ctx context.Context, req *connect.Request[ListCompanyAuctionsRequest]) (*connect.Response[AuctionListResponse], error) {
	return c.listCompanyAuctions.CallUnary(ctx, req)
}
