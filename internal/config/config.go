package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the price ingestion service.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HTTPAddr        string
	ShutdownTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	CatalogBaseURL string
	FetchLimit     int
	FetchTimeout   time.Duration
	FetchInterval  time.Duration

	PricesKey string
	PricesCap int64

	BidsKey string
	BidsCap int64
}

// envOrDefault returns the value of an env var or a default.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) (int, error) {
	if raw := os.Getenv(key); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return val, nil
	}

	return def, nil
}

func envDurationOrDefault(key string, def time.Duration) (time.Duration, error) {
	if raw := os.Getenv(key); raw != "" {
		val, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return val, nil
	}

	return def, nil
}

func envCSVOrDefault(key, def string) []string {
	raw := envOrDefault(key, def)
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Load loads configuration from environment variables.
func Load() (Config, error) {
	redisDB, err := envIntOrDefault("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	fetchLimit, err := envIntOrDefault("FETCH_LIMIT", 30)
	if err != nil {
		return Config{}, err
	}
	fetchTimeout, err := envDurationOrDefault("FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	fetchInterval, err := envDurationOrDefault("FETCH_INTERVAL", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	shutdownTimeout, err := envDurationOrDefault("SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	pricesCap, err := envIntOrDefault("PRICES_CAP", 1000)
	if err != nil {
		return Config{}, err
	}
	bidsCap, err := envIntOrDefault("BIDS_CAP", 10000)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RedisAddr:     envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: envCSVOrDefault("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC_COMPETITOR_PRICES", "competitor_prices"),

		CatalogBaseURL: envOrDefault("CATALOG_BASE_URL", "https://dummyjson.com"),
		FetchLimit:     fetchLimit,
		FetchTimeout:   fetchTimeout,
		FetchInterval:  fetchInterval,

		PricesKey: envOrDefault("PRICES_KEY", "competitor_prices"),
		PricesCap: int64(pricesCap),

		BidsKey: envOrDefault("BIDS_KEY", "product_bids"),
		BidsCap: int64(bidsCap),
	}

	return cfg, nil
}
