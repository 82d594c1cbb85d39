package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"REDIS_ADDR", "CATALOG_BASE_URL", "FETCH_LIMIT", "FETCH_TIMEOUT",
		"FETCH_INTERVAL", "PRICES_KEY", "PRICES_CAP", "HTTP_ADDR",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.CatalogBaseURL != "https://dummyjson.com" {
		t.Errorf("CatalogBaseURL = %q", cfg.CatalogBaseURL)
	}
	if cfg.FetchLimit != 30 {
		t.Errorf("FetchLimit = %d, want 30", cfg.FetchLimit)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", cfg.FetchTimeout)
	}
	if cfg.FetchInterval != 5*time.Minute {
		t.Errorf("FetchInterval = %v, want 5m", cfg.FetchInterval)
	}
	if cfg.PricesKey != "competitor_prices" || cfg.PricesCap != 1000 {
		t.Errorf("prices config = %q/%d", cfg.PricesKey, cfg.PricesCap)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("FETCH_INTERVAL", "30s")
	t.Setenv("FETCH_LIMIT", "10")
	t.Setenv("PRICES_CAP", "200")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.RedisAddr != "redis.internal:6380" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.FetchInterval != 30*time.Second {
		t.Errorf("FetchInterval = %v, want 30s", cfg.FetchInterval)
	}
	if cfg.FetchLimit != 10 {
		t.Errorf("FetchLimit = %d, want 10", cfg.FetchLimit)
	}
	if cfg.PricesCap != 200 {
		t.Errorf("PricesCap = %d, want 200", cfg.PricesCap)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	if _, err := Load(); err == nil {
		t.Error("Load with invalid REDIS_DB succeeded")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("FETCH_INTERVAL", "five minutes")
	if _, err := Load(); err == nil {
		t.Error("Load with invalid FETCH_INTERVAL succeeded")
	}
}
