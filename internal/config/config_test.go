package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("STORE", "")

	cfg := Load()

	if cfg.Addr() != ":8080" {
		t.Fatalf("Addr() = %q, want :8080", cfg.Addr())
	}
	if cfg.Store != StorePostgres {
		t.Fatalf("Store = %q, want postgres", cfg.Store)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
	if cfg.BookingRateWindow != time.Minute {
		t.Fatalf("BookingRateWindow = %v, want 1m", cfg.BookingRateWindow)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE", "MEMORY")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("BOOKING_RATE_LIMIT", "3")
	t.Setenv("JWT_TTL", "2h")

	cfg := Load()

	if cfg.Addr() != ":9090" {
		t.Fatalf("Addr() = %q", cfg.Addr())
	}
	if cfg.Store != StoreMemory {
		t.Fatalf("Store = %q, want memory", cfg.Store)
	}
	if !cfg.RateLimitEnabled() || cfg.BookingRateLimit != 3 {
		t.Fatalf("expected rate limit 3 enabled, got %d", cfg.BookingRateLimit)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Fatalf("JWTTTL = %v", cfg.JWTTTL)
	}
	if cfg.ImageUploadEnabled() {
		t.Fatal("image upload must be disabled without a bucket")
	}
}

func TestCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "")
	if cfg := Load(); !cfg.AllowAllOrigins() {
		t.Fatalf("default origins %v should allow all", cfg.CORSOrigins)
	}

	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
	cfg := Load()
	if cfg.AllowAllOrigins() || len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
}
