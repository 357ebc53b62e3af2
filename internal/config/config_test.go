package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("unexpected default port: %s", cfg.Port)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("unexpected default token ttl: %v", cfg.TokenTTL)
	}
	if cfg.DedupeTTL != 24*time.Hour {
		t.Fatalf("unexpected default dedupe ttl: %v", cfg.DedupeTTL)
	}
	if cfg.DBMaxOpenConns != 10 {
		t.Fatalf("unexpected default pool size: %d", cfg.DBMaxOpenConns)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("DEBUG", "true")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected token ttl: %v", cfg.TokenTTL)
	}
	if cfg.DBMaxOpenConns != 3 {
		t.Fatalf("unexpected pool size: %d", cfg.DBMaxOpenConns)
	}
	if !cfg.Debug {
		t.Fatalf("expected debug to be enabled")
	}
}

func TestLoadIgnoresInvalidDurations(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("DB_CONN_LIFETIME", "-5m")

	cfg := Load()

	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected fallback token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.DBConnLifetime != 30*time.Minute {
		t.Fatalf("expected fallback conn lifetime, got %v", cfg.DBConnLifetime)
	}
}

func TestRequireHelpers(t *testing.T) {
	var cfg Config
	if err := cfg.RequireDB(); err == nil {
		t.Fatalf("expected missing DSN error")
	}
	if err := cfg.RequireAuth(); err == nil {
		t.Fatalf("expected missing auth config error")
	}
	if err := cfg.RequireUserService(); err == nil {
		t.Fatalf("expected missing user service error")
	}

	cfg.DatabaseDSN = "postgres://localhost/app"
	cfg.JWTSecret = "s"
	cfg.UserServiceURL = "http://user-service"
	if err := cfg.RequireDB(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.RequireAuth(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.RequireUserService(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
