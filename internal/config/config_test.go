package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8082" {
		t.Errorf("expected default port 8082, got %q", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("expected default backend memory, got %q", cfg.DataBackend)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected default session TTL 24h, got %v", cfg.SessionTTL)
	}
	if cfg.SyncBatchSize != 10 {
		t.Errorf("expected default sync batch size 10, got %d", cfg.SyncBatchSize)
	}
	if !cfg.SeedDemo {
		t.Error("demo seed should default to on")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SYNC_INTERVAL", "30s")
	t.Setenv("SEED_DEMO", "false")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Errorf("expected sqlite backend, got %q", cfg.DataBackend)
	}
	if cfg.SyncInterval != 30*time.Second {
		t.Errorf("expected sync interval 30s, got %v", cfg.SyncInterval)
	}
	if cfg.SeedDemo {
		t.Error("SEED_DEMO=false should disable seeding")
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration should validate: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Port = "abc" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"bad backend", func(c *Config) { c.DataBackend = "postgres" }, "invalid data backend"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://broker" }, "invalid AMQP URL scheme"},
		{"empty amqp queue", func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPQueue = "" }, "queue name cannot be empty"},
		{"short session ttl", func(c *Config) { c.SessionTTL = time.Second }, "invalid session TTL"},
		{"zero batch size", func(c *Config) { c.SyncBatchSize = 0 }, "invalid sync batch size"},
		{"short sync interval", func(c *Config) { c.SyncInterval = time.Millisecond }, "invalid sync interval"},
		{"negative sync delay", func(c *Config) { c.SyncDelay = -time.Second }, "invalid sync delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Load()
	cfg.Port = "abc"
	cfg.DataBackend = "postgres"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected a validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "invalid port") || !strings.Contains(msg, "invalid data backend") {
		t.Errorf("all problems should be reported together, got %q", msg)
	}
}
