// Package testhelpers wires the auction engine against a real database for integration tests
// and seeds the booking platform rows the engine reads.
package testhelpers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	infradb "github.com/floroz/ride-auction/internal/adapters/database"
	"github.com/floroz/ride-auction/internal/adapters/events"
	"github.com/floroz/ride-auction/internal/domain/auctions"
	"github.com/floroz/ride-auction/internal/domain/bids"
	"github.com/floroz/ride-auction/internal/domain/lifecycle"
	"github.com/floroz/ride-auction/pkg/database"
)

// Stack holds both services and the repositories behind them
type Stack struct {
	Pool        *pgxpool.Pool
	TxManager   database.TransactionManager
	Auctions    *auctions.Service
	Bids        *bids.Service
	AuctionRepo *infradb.PostgresAuctionRepository
	BidRepo     *infradb.PostgresBidRepository
	BookingRepo *infradb.PostgresBookingRepository
	Activities  *infradb.PostgresActivityRepository
	OutboxRepo  *infradb.PostgresOutboxRepository
}

// Recorder appends activities for both services
type Recorder interface {
	auctions.ActivityRecorder
	bids.ActivityRecorder
}

// ErrRecorderDown is returned by FailingRecorder
var ErrRecorderDown = errors.New("activity store unavailable")

// FailingRecorder rejects every activity, failing the surrounding transaction
type FailingRecorder struct{}

func (FailingRecorder) Record(context.Context, pgx.Tx, *lifecycle.Activity) error {
	return ErrRecorderDown
}

// NewStack wires the services the same way cmd/api does
func NewStack(pool *pgxpool.Pool, cache auctions.StatsCache) *Stack {
	return NewStackWithRecorder(pool, cache, nil)
}

// NewStackWithRecorder wires the services around recorder. A nil recorder selects the
// outbox-backed one used in production.
func NewStackWithRecorder(pool *pgxpool.Pool, cache auctions.StatsCache, recorder Recorder) *Stack {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	txManager := database.NewPostgresTransactionManager(pool, 5*time.Second)

	auctionRepo := infradb.NewPostgresAuctionRepository(pool)
	bidRepo := infradb.NewPostgresBidRepository(pool)
	bookingRepo := infradb.NewPostgresBookingRepository(pool)
	companyRepo := infradb.NewPostgresCompanyRepository(pool)
	activityRepo := infradb.NewPostgresActivityRepository(pool)
	outboxRepo := infradb.NewPostgresOutboxRepository(pool)
	references := infradb.NewPostgresReferenceGenerator()
	if recorder == nil {
		recorder = events.NewActivityRecorder(activityRepo, outboxRepo)
	}

	return &Stack{
		Pool:      pool,
		TxManager: txManager,
		Auctions: auctions.NewService(
			txManager, auctionRepo, bidRepo, bookingRepo, references, recorder, activityRepo, cache, logger,
		),
		Bids: bids.NewService(
			txManager, bidRepo, auctionRepo, companyRepo, references, recorder, cache, logger,
		),
		AuctionRepo: auctionRepo,
		BidRepo:     bidRepo,
		BookingRepo: bookingRepo,
		Activities:  activityRepo,
		OutboxRepo:  outboxRepo,
	}
}

// SeedBooking inserts a CONFIRMED booking. An empty total leaves the reserve unset.
func SeedBooking(t *testing.T, pool *pgxpool.Pool, base, total string) uuid.UUID {
	t.Helper()
	id := uuid.New()

	var totalAmount decimal.NullDecimal
	if total != "" {
		totalAmount = decimal.NewNullDecimal(decimal.RequireFromString(total))
	}

	_, err := pool.Exec(context.Background(), `
		INSERT INTO bookings (id, reference, status, base_amount, total_amount)
		VALUES ($1, $2, $3, $4, $5)
	`, id, "BK-"+id.String()[:8], lifecycle.BookingStatusConfirmed, decimal.RequireFromString(base), totalAmount)
	require.NoError(t, err, "Failed to seed booking")
	return id
}

// SeedCompanyUser attaches a new user to the company and returns the user id
func SeedCompanyUser(t *testing.T, pool *pgxpool.Pool, companyID uuid.UUID) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO company_users (user_id, company_id) VALUES ($1, $2)`, userID, companyID)
	require.NoError(t, err, "Failed to seed company user")
	return userID
}

// Bidder is a user bidding for a company
type Bidder struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
}

// SeedBidder creates a company with one user
func SeedBidder(t *testing.T, pool *pgxpool.Pool) Bidder {
	t.Helper()
	companyID := uuid.New()
	return Bidder{UserID: SeedCompanyUser(t, pool, companyID), CompanyID: companyID}
}

// CreateAuction creates a DRAFT auction for a fresh booking
func (s *Stack) CreateAuction(t *testing.T, base, total string, creator uuid.UUID) *lifecycle.AuctionView {
	t.Helper()
	bookingID := SeedBooking(t, s.Pool, base, total)
	now := time.Now().UTC()

	view, err := s.Auctions.CreateAuction(context.Background(), auctions.CreateAuctionCommand{
		BookingID: bookingID,
		Title:     "Airport transfer",
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(3 * time.Hour),
		CreatedBy: creator,
	})
	require.NoError(t, err, "Failed to create auction")
	return view
}

// ActiveAuction creates an auction and starts it
func (s *Stack) ActiveAuction(t *testing.T, base, total string, creator uuid.UUID) *lifecycle.AuctionView {
	t.Helper()
	created := s.CreateAuction(t, base, total, creator)

	view, err := s.Auctions.StartAuction(context.Background(), created.ID, creator)
	require.NoError(t, err, "Failed to start auction")
	return view
}

// PlaceBid places a bid that must succeed
func (s *Stack) PlaceBid(t *testing.T, auctionID uuid.UUID, bidder Bidder, amount string) *lifecycle.RankedBid {
	t.Helper()
	bid, err := s.Bids.PlaceBid(context.Background(), bids.PlaceBidCommand{
		AuctionID:    auctionID,
		BidderUserID: bidder.UserID,
		Amount:       decimal.RequireFromString(amount),
	})
	require.NoError(t, err, "Failed to place bid")
	return bid
}

// ReferenceCount returns how many references were issued for prefix
func (s *Stack) ReferenceCount(t *testing.T, prefix string) int64 {
	t.Helper()
	var issued int64
	err := s.Pool.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(value), 0) FROM reference_counters WHERE prefix = $1`, prefix).Scan(&issued)
	require.NoError(t, err)
	return issued
}

// BookingStatus reads the booking status straight from the table
func (s *Stack) BookingStatus(t *testing.T, bookingID uuid.UUID) lifecycle.BookingStatus {
	t.Helper()
	booking, err := s.BookingRepo.GetBookingByID(context.Background(), bookingID)
	require.NoError(t, err)
	return booking.Status
}
