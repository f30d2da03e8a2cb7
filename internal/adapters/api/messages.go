package api

// Requests carry validate tags checked before the domain is called. Monetary values are
// decimal strings, timestamps RFC 3339.

type CreateAuctionRequest struct {
	BookingID   string `json:"booking_id" validate:"required,uuid"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	StartTime   string `json:"start_time" validate:"required,rfc3339"`
	EndTime     string `json:"end_time" validate:"required,rfc3339"`
}

type AuctionIDRequest struct {
	AuctionID string `json:"auction_id" validate:"required,uuid"`
}

type GetAuctionRequest = AuctionIDRequest
type DeleteAuctionRequest = AuctionIDRequest
type StartAuctionRequest = AuctionIDRequest
type CloseAuctionRequest = AuctionIDRequest
type ListAuctionActivitiesRequest = AuctionIDRequest
type ListAuctionBidsRequest = AuctionIDRequest

type ListAuctionsRequest struct {
	Status      string `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE CLOSED AWARDED CANCELLED"`
	CreatedFrom string `json:"created_from" validate:"omitempty,rfc3339"`
	CreatedTo   string `json:"created_to" validate:"omitempty,rfc3339"`
	CreatedBy   string `json:"created_by" validate:"omitempty,uuid"`
	Search      string `json:"search" validate:"max=200"`
	SortBy      string `json:"sort_by"`
	SortOrder   string `json:"sort_order" validate:"omitempty,oneof=asc desc"`
	Page        int    `json:"page" validate:"min=0"`
	Limit       int    `json:"limit" validate:"min=0"`
}

type UpdateAuctionRequest struct {
	AuctionID        string  `json:"auction_id" validate:"required,uuid"`
	Title            *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description      *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	StartTime        *string `json:"start_time,omitempty" validate:"omitempty,rfc3339"`
	EndTime          *string `json:"end_time,omitempty" validate:"omitempty,rfc3339"`
	MinimumBidAmount *string `json:"minimum_bid_amount,omitempty" validate:"omitempty,money"`
	ReservePrice     *string `json:"reserve_price,omitempty" validate:"omitempty,money"`
	ClearReserve     bool    `json:"clear_reserve,omitempty"`
}

type CancelAuctionRequest struct {
	AuctionID string `json:"auction_id" validate:"required,uuid"`
	Reason    string `json:"reason" validate:"max=1000"`
}

type AwardAuctionRequest struct {
	AuctionID    string `json:"auction_id" validate:"required,uuid"`
	WinningBidID string `json:"winning_bid_id" validate:"required,uuid"`
	Notes        string `json:"notes" validate:"max=1000"`
}

type GetAuctionStatsRequest struct{}

type PlaceBidRequest struct {
	AuctionID               string   `json:"auction_id" validate:"required,uuid"`
	Amount                  string   `json:"amount" validate:"required,money"`
	EstimatedCompletionTime string   `json:"estimated_completion_time" validate:"omitempty,rfc3339"`
	AdditionalServices      []string `json:"additional_services" validate:"max=20,dive,required,max=100"`
	Notes                   string   `json:"notes" validate:"max=1000"`
	ProposedDriverID        string   `json:"proposed_driver_id" validate:"omitempty,uuid"`
	ProposedCarID           string   `json:"proposed_car_id" validate:"omitempty,uuid"`
}

type BidIDRequest struct {
	BidID string `json:"bid_id" validate:"required,uuid"`
}

type GetBidRequest = BidIDRequest
type WithdrawBidRequest = BidIDRequest

type UpdateBidRequest struct {
	BidID                   string    `json:"bid_id" validate:"required,uuid"`
	Amount                  *string   `json:"amount,omitempty" validate:"omitempty,money"`
	EstimatedCompletionTime *string   `json:"estimated_completion_time,omitempty" validate:"omitempty,rfc3339"`
	AdditionalServices      *[]string `json:"additional_services,omitempty" validate:"omitempty,max=20,dive,required,max=100"`
	Notes                   *string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
	ProposedDriverID        *string   `json:"proposed_driver_id,omitempty" validate:"omitempty,uuid"`
	ProposedCarID           *string   `json:"proposed_car_id,omitempty" validate:"omitempty,uuid"`
}

// CompanyPageRequest lists by company. An empty company_id means the caller's own company.
type CompanyPageRequest struct {
	CompanyID string `json:"company_id" validate:"omitempty,uuid"`
	Page      int    `json:"page" validate:"min=0"`
	Limit     int    `json:"limit" validate:"min=0"`
}

type ListCompanyBidsRequest = CompanyPageRequest
type ListCompanyAuctionsRequest = CompanyPageRequest

// Responses

type Auction struct {
	ID                 string  `json:"id"`
	Reference          string  `json:"reference"`
	BookingID          string  `json:"booking_id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	MinimumBidAmount   string  `json:"minimum_bid_amount"`
	ReservePrice       *string `json:"reserve_price"`
	Status             string  `json:"status"`
	WinningBidID       *string `json:"winning_bid_id"`
	WinnerCompanyID    *string `json:"winner_company_id"`
	AwardedAt          *string `json:"awarded_at"`
	AwardedBy          *string `json:"awarded_by"`
	CreatedBy          string  `json:"created_by"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
	IsExpired          bool    `json:"is_expired"`
	TimeRemainingHours int64   `json:"time_remaining_hours"`
	BidCount           int64   `json:"bid_count"`
	HighestBidAmount   *string `json:"highest_bid_amount"`
}

type AuctionResponse struct {
	Auction *Auction `json:"auction"`
}

type AuctionListResponse struct {
	Auctions []*Auction `json:"auctions"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
}

type Bid struct {
	ID                      string   `json:"id"`
	Reference               string   `json:"reference"`
	AuctionID               string   `json:"auction_id"`
	CompanyID               string   `json:"company_id"`
	BidderUserID            string   `json:"bidder_user_id"`
	Amount                  string   `json:"amount"`
	EstimatedCompletionTime *string  `json:"estimated_completion_time"`
	AdditionalServices      []string `json:"additional_services"`
	Notes                   string   `json:"notes"`
	ProposedDriverID        *string  `json:"proposed_driver_id"`
	ProposedCarID           *string  `json:"proposed_car_id"`
	Status                  string   `json:"status"`
	Rank                    *int     `json:"rank"` // null unless the bid is ACTIVE
	CreatedAt               string   `json:"created_at"`
	UpdatedAt               string   `json:"updated_at"`
}

type BidResponse struct {
	Bid *Bid `json:"bid"`
}

type BidListResponse struct {
	Bids  []*Bid `json:"bids"`
	Total int64  `json:"total"`
	Page  int    `json:"page,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type Activity struct {
	ID            string  `json:"id"`
	AuctionID     string  `json:"auction_id"`
	ActivityType  string  `json:"activity_type"`
	UserID        *string `json:"user_id"`
	CompanyID     *string `json:"company_id"`
	BidID         *string `json:"bid_id"`
	PreviousValue *string `json:"previous_value"`
	NewValue      *string `json:"new_value"`
	Notes         *string `json:"notes"`
	CreatedAt     string  `json:"created_at"`
}

type ActivityListResponse struct {
	Activities []*Activity `json:"activities"`
}

type AuctionStats struct {
	Total            int64            `json:"total"`
	ByStatus         map[string]int64 `json:"by_status"`
	BidCount         int64            `json:"bid_count"`
	AverageBidAmount string           `json:"average_bid_amount"`
	MaxBidAmount     string           `json:"max_bid_amount"`
	TotalBidAmount   string           `json:"total_bid_amount"`
	CompletionRate   float64          `json:"completion_rate"`
}

type AuctionStatsResponse struct {
	Stats *AuctionStats `json:"stats"`
}

type DeleteAuctionResponse struct{}
