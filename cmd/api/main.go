package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/floroz/ride-auction/internal/adapters/api"
	"github.com/floroz/ride-auction/internal/adapters/cache"
	"github.com/floroz/ride-auction/internal/adapters/database"
	"github.com/floroz/ride-auction/internal/adapters/events"
	"github.com/floroz/ride-auction/internal/config"
	"github.com/floroz/ride-auction/internal/domain/auctions"
	"github.com/floroz/ride-auction/internal/domain/bids"
	"github.com/floroz/ride-auction/pkg/auth"
	pkgdb "github.com/floroz/ride-auction/pkg/database"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Postgres
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Unable to parse database config", "error", err)
		os.Exit(1)
	}
	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		logger.Error("Unable to create connection pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if pingErr := pool.Ping(ctx); pingErr != nil {
		logger.Error("Unable to ping database", "error", pingErr)
		os.Exit(1)
	}
	logger.Info("Postgres Connected")

	// 2. Redis stats cache (optional)
	var statsCache auctions.StatsCache = cache.NoopStatsCache{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis connection failed, serving stats uncached", "error", err)
		} else {
			logger.Info("Redis Connected")
			statsCache = cache.NewRedisStatsCache(rdb, cfg.StatsCacheTTL)
		}
	}

	// 3. Token verification
	if cfg.JWTPublicKeyPath == "" {
		logger.Error("JWT_PUBLIC_KEY_PATH is not set")
		os.Exit(1)
	}
	publicKey, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		logger.Error("Failed to read JWT public key", "error", err)
		os.Exit(1)
	}
	signer, err := auth.NewSignerFromPublicKey(publicKey, cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to load JWT public key", "error", err)
		os.Exit(1)
	}

	// 4. Repositories and services
	txManager := pkgdb.NewPostgresTransactionManager(pool, cfg.LockTimeout)
	auctionRepo := database.NewPostgresAuctionRepository(pool)
	bidRepo := database.NewPostgresBidRepository(pool)
	bookingRepo := database.NewPostgresBookingRepository(pool)
	companyRepo := database.NewPostgresCompanyRepository(pool)
	activityRepo := database.NewPostgresActivityRepository(pool)
	outboxRepo := database.NewPostgresOutboxRepository(pool)
	references := database.NewPostgresReferenceGenerator()
	recorder := events.NewActivityRecorder(activityRepo, outboxRepo)

	auctionService := auctions.NewService(
		txManager, auctionRepo, bidRepo, bookingRepo, references, recorder, activityRepo, statsCache, logger,
	)
	bidService := bids.NewService(
		txManager, bidRepo, auctionRepo, companyRepo, references, recorder, statsCache, logger,
	)

	// 5. ConnectRPC handler
	handler := api.NewHandler(auctionService, bidService, logger)
	path, rpcHandler := api.NewAuctionServiceHandler(handler,
		connect.WithInterceptors(
			api.NewLoggingInterceptor(logger),
			auth.NewAuthInterceptor(signer),
		),
	)

	mux := http.NewServeMux()
	mux.Handle(path, rpcHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// 6. Outbox relay in-process when RabbitMQ is configured; otherwise run cmd/worker
	if cfg.RabbitMQURL != "" {
		amqpConn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("Failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer amqpConn.Close()
		logger.Info("RabbitMQ Connected")

		producer, err := events.NewAuctionEventsProducer(pool, amqpConn, events.ProducerConfig{
			BatchSize:   cfg.OutboxBatchSize,
			Interval:    cfg.OutboxInterval,
			LockTimeout: cfg.LockTimeout,
		}, logger)
		if err != nil {
			logger.Error("Failed to create producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		g.Go(func() error {
			logger.Info("Starting Outbox Relay...")
			return producer.Run(gctx)
		})
	} else {
		logger.Warn("RABBITMQ_URL is not set, outbox events stay pending until a worker runs")
	}

	g.Go(func() error {
		logger.Info("Starting Auction API", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
