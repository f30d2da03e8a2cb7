//go:build integration

package events_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"

	"github.com/floroz/ride-auction/internal/adapters/database"
	"github.com/floroz/ride-auction/internal/adapters/events"
	pkgdb "github.com/floroz/ride-auction/pkg/database"
	pkgevents "github.com/floroz/ride-auction/pkg/events"
	"github.com/floroz/ride-auction/pkg/testhelpers"
)

func TestAuctionEventsProducerIntegration(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	rabbitmqContainer, err := rabbitmq.Run(ctx,
		"rabbitmq:3.12-management-alpine",
		rabbitmq.WithAdminPassword("password"),
	)
	require.NoError(t, err)
	defer func() {
		if termErr := rabbitmqContainer.Terminate(ctx); termErr != nil {
			t.Fatalf("failed to terminate container: %s", termErr)
		}
	}()

	amqpURL, err := rabbitmqContainer.AmqpURL(ctx)
	require.NoError(t, err)

	testDB := testhelpers.NewTestDatabase(t, "../../../migrations")
	defer testDB.Close()
	pool := testDB.Pool

	conn, err := amqp.Dial(amqpURL)
	require.NoError(t, err)
	defer conn.Close()

	producer, err := events.NewAuctionEventsProducer(pool, conn, events.ProducerConfig{
		BatchSize:   10,
		Interval:    100 * time.Millisecond,
		LockTimeout: 3 * time.Second,
	}, logger)
	require.NoError(t, err)
	defer producer.Close()

	// The exchange is declared by the producer, so the consumer can bind before anything is published
	consumerConn, err := amqp.Dial(amqpURL)
	require.NoError(t, err)
	defer consumerConn.Close()

	ch, err := consumerConn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	q, err := ch.QueueDeclare("", false, false, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "bid.*", pkgevents.AuctionEventsExchange, false, nil))

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	require.NoError(t, err)

	// Record an activity the same way the services do
	activity := bidPlacedActivity()
	recorder := events.NewActivityRecorder(
		database.NewPostgresActivityRepository(pool),
		database.NewPostgresOutboxRepository(pool),
	)
	txManager := pkgdb.NewPostgresTransactionManager(pool, 3*time.Second)
	tx, err := txManager.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, recorder.Record(ctx, tx, activity))
	require.NoError(t, tx.Commit(ctx))

	ctxProducer, cancelProducer := context.WithCancel(ctx)
	defer cancelProducer()
	go func() {
		_ = producer.Run(ctxProducer)
	}()

	select {
	case msg := <-msgs:
		assert.Equal(t, "bid.placed", msg.RoutingKey)
		assert.Equal(t, "application/x-protobuf", msg.ContentType)

		fields, err := events.UnmarshalActivity(msg.Body)
		require.NoError(t, err)
		assert.Equal(t, activity.AuctionID.String(), fields["auction_id"])
		assert.Equal(t, "120.00", fields["new_value"])
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for message from RabbitMQ")
	}

	outboxRepo := database.NewPostgresOutboxRepository(pool)
	require.Eventually(t, func() bool {
		published, err := outboxRepo.CountByStatus(ctx, pkgevents.OutboxStatusPublished)
		return err == nil && published == 1
	}, 5*time.Second, 100*time.Millisecond, "event status should be updated to 'published'")
}
