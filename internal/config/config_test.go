package config

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "user_sync_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("WEBHOOK_SECRET", "whsec_dGVzdA==")
	t.Setenv("WEBHOOK_TOLERANCE_SECONDS", "60")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if got := cfg.Redis.Addr(); got != "localhost:6379" {
		t.Fatalf("Redis.Addr() = %q, want localhost:6379", got)
	}
	if cfg.Webhook.Secret != "whsec_dGVzdA==" {
		t.Fatalf("unexpected webhook secret: %q", cfg.Webhook.Secret)
	}
	if cfg.Webhook.Tolerance != time.Minute {
		t.Fatalf("unexpected tolerance: %v", cfg.Webhook.Tolerance)
	}
	if cfg.Webhook.DedupeTTL != 24*time.Hour {
		t.Fatalf("unexpected dedupe ttl: %v", cfg.Webhook.DedupeTTL)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.Topic != "user-sync.events" {
		t.Fatalf("unexpected topic: %q", cfg.Kafka.Topic)
	}
}

func TestLoadConfig_MissingSecretIsNotFatal(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("REDIS_HOST", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Webhook.Secret != "" {
		t.Fatalf("expected empty secret")
	}
	if cfg.Redis.Addr() != "" {
		t.Fatalf("expected empty redis addr, got %q", cfg.Redis.Addr())
	}
}
