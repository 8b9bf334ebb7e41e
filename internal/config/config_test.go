package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("LOGIN_USERNAME", "admin")
	t.Setenv("LOGIN_PASSWORD", "pw")
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("CATALOG_SEED_FILE", "testdata/catalog.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "Asia/Colombo" {
		t.Fatalf("expected default timezone, got %s", cfg.Timezone)
	}
	if cfg.JWTExpiresIn != 24*time.Hour {
		t.Fatalf("expected 24h expiry, got %s", cfg.JWTExpiresIn)
	}
	if cfg.DayCloseSpec != "0 0 * * *" || cfg.MonthlySpec != "1 0 1 * *" {
		t.Fatalf("unexpected schedules %q %q", cfg.DayCloseSpec, cfg.MonthlySpec)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.SeedFile != "testdata/catalog.json" {
		t.Fatalf("unexpected seed file %q", cfg.SeedFile)
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LOGIN_USERNAME", "admin")
	t.Setenv("LOGIN_PASSWORD", "pw")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "s")
	t.Setenv("LOGIN_PASSWORD", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error without LOGIN_PASSWORD")
	}
}

func TestLoadRejectsBadExpiry(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("LOGIN_USERNAME", "admin")
	t.Setenv("LOGIN_PASSWORD", "pw")
	t.Setenv("JWT_EXPIRES_IN", "1 day")
	if _, err := Load(); err == nil {
		t.Fatalf("expected a parse error")
	}
}
