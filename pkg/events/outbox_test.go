package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeTx only tracks commit and rollback; the relay never runs SQL on the tx itself
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeTxManager struct {
	tx *fakeTx
}

func (m *fakeTxManager) BeginTx(context.Context) (pgx.Tx, error) {
	return m.tx, nil
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) GetPendingEvents(ctx context.Context, tx pgx.Tx, limit int) ([]*OutboxEvent, error) {
	args := m.Called(ctx, tx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) UpdateEventStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status OutboxStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	args := m.Called(ctx, exchange, routingKey, body)
	return args.Error(0)
}

func newTestRelay(repo *MockOutboxRepository, pub *MockPublisher, tx *fakeTx) *OutboxRelay {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOutboxRelay(repo, pub, &fakeTxManager{tx: tx}, 10, 10*time.Millisecond, AuctionEventsExchange, logger)
}

func TestOutboxRelay_ProcessBatch(t *testing.T) {
	placed := NewOutboxEvent("bid.placed", []byte("placed"), time.Now())
	awarded := NewOutboxEvent("auction.awarded", []byte("awarded"), time.Now())

	tests := []struct {
		name         string
		setupMocks   func(*MockOutboxRepository, *MockPublisher, *fakeTx)
		wantCount    int
		wantErr      bool
		wantCommit   bool
		wantRollback bool
	}{
		{
			name: "publishes every pending event and commits",
			setupMocks: func(repo *MockOutboxRepository, pub *MockPublisher, tx *fakeTx) {
				repo.On("GetPendingEvents", mock.Anything, tx, 10).Return([]*OutboxEvent{placed, awarded}, nil)
				pub.On("Publish", mock.Anything, AuctionEventsExchange, "bid.placed", []byte("placed")).Return(nil)
				pub.On("Publish", mock.Anything, AuctionEventsExchange, "auction.awarded", []byte("awarded")).Return(nil)
				repo.On("UpdateEventStatus", mock.Anything, tx, placed.ID, OutboxStatusPublished).Return(nil)
				repo.On("UpdateEventStatus", mock.Anything, tx, awarded.ID, OutboxStatusPublished).Return(nil)
			},
			wantCount:  2,
			wantCommit: true,
		},
		{
			name: "nothing pending",
			setupMocks: func(repo *MockOutboxRepository, pub *MockPublisher, tx *fakeTx) {
				repo.On("GetPendingEvents", mock.Anything, tx, 10).Return([]*OutboxEvent{}, nil)
			},
			wantRollback: true,
		},
		{
			name: "publish failure rolls back the batch",
			setupMocks: func(repo *MockOutboxRepository, pub *MockPublisher, tx *fakeTx) {
				repo.On("GetPendingEvents", mock.Anything, tx, 10).Return([]*OutboxEvent{placed, awarded}, nil)
				pub.On("Publish", mock.Anything, AuctionEventsExchange, "bid.placed", []byte("placed")).Return(nil)
				repo.On("UpdateEventStatus", mock.Anything, tx, placed.ID, OutboxStatusPublished).Return(nil)
				pub.On("Publish", mock.Anything, AuctionEventsExchange, "auction.awarded", []byte("awarded")).Return(errors.New("channel closed"))
			},
			wantErr:      true,
			wantRollback: true,
		},
		{
			name: "fetch failure",
			setupMocks: func(repo *MockOutboxRepository, pub *MockPublisher, tx *fakeTx) {
				repo.On("GetPendingEvents", mock.Anything, tx, 10).Return(nil, errors.New("connection reset"))
			},
			wantErr:      true,
			wantRollback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockOutboxRepository)
			pub := new(MockPublisher)
			tx := &fakeTx{}
			tt.setupMocks(repo, pub, tx)

			count, err := newTestRelay(repo, pub, tx).ProcessBatch(context.Background())

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCount, count)
			assert.Equal(t, tt.wantCommit, tx.committed)
			assert.Equal(t, tt.wantRollback, tx.rolledBack)
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestOutboxRelay_RunStopsOnCancel(t *testing.T) {
	repo := new(MockOutboxRepository)
	pub := new(MockPublisher)
	tx := &fakeTx{}
	repo.On("GetPendingEvents", mock.Anything, tx, 10).Return([]*OutboxEvent{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- newTestRelay(repo, pub, tx).Run(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}
