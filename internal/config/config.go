package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process configuration read from the environment
type Config struct {
	DatabaseURL      string
	RabbitMQURL      string
	RedisURL         string
	HTTPAddr         string
	LockTimeout      time.Duration
	JWTPublicKeyPath string
	JWTIssuer        string
	OutboxBatchSize  int
	OutboxInterval   time.Duration
	StatsCacheTTL    time.Duration
	MigrationsDir    string
}

// Load reads .env.local then .env (local overrides .env, missing files are fine) and
// builds the config from the resulting environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function, applying defaults
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getenv("AUCTION_DB_URL"),
		RabbitMQURL:      getenv("RABBITMQ_URL"),
		RedisURL:         getenv("REDIS_URL"),
		HTTPAddr:         withDefault(getenv("HTTP_ADDR"), ":8080"),
		JWTPublicKeyPath: getenv("JWT_PUBLIC_KEY_PATH"),
		JWTIssuer:        getenv("JWT_ISSUER"),
		MigrationsDir:    withDefault(getenv("MIGRATIONS_DIR"), "migrations"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("AUCTION_DB_URL is not set")
	}

	var err error
	if cfg.LockTimeout, err = durationVar(getenv, "DB_LOCK_TIMEOUT", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.OutboxInterval, err = durationVar(getenv, "OUTBOX_INTERVAL", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.StatsCacheTTL, err = durationVar(getenv, "STATS_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.OutboxBatchSize, err = intVar(getenv, "OUTBOX_BATCH_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.OutboxBatchSize <= 0 {
		return nil, fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", cfg.OutboxBatchSize)
	}

	return cfg, nil
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func durationVar(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func intVar(getenv func(string) string, key string, fallback int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}
