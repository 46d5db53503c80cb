package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://localhost/mely")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("expected default port 8081, got %s", cfg.Port)
	}
	if cfg.SyncTimeout != 5*time.Second {
		t.Errorf("expected default sync timeout 5s, got %s", cfg.SyncTimeout)
	}
	if cfg.TenantSlug != "mely-ehpad" {
		t.Errorf("unexpected tenant slug: %s", cfg.TenantSlug)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@h/db")
	t.Setenv("PORT", "9000")
	t.Setenv("SYNC_TIMEOUT", "2s")
	t.Setenv("CORS_ORIGINS", "https://a.fr,https://b.fr")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.Port)
	}
	if cfg.SyncTimeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %s", cfg.SyncTimeout)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected 2 CORS origins, got %v", cfg.CORSOrigins)
	}
}

func TestValidateServe(t *testing.T) {
	cfg := &Config{Env: "development"}
	if err := cfg.ValidateServe(); err == nil {
		t.Error("expected error without DATABASE_URL")
	}

	cfg.DatabaseURL = "postgresql://localhost/mely"
	if err := cfg.ValidateServe(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Env = "production"
	if err := cfg.ValidateServe(); err == nil {
		t.Error("expected error without JWT_SECRET in production")
	}
	cfg.JWTSecret = "s3cret"
	if err := cfg.ValidateServe(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateSync(t *testing.T) {
	cfg := &Config{LocalDBPath: "./mely.db", RemoteAPIURL: "https://api.example.com", SyncTimeout: time.Second}
	if err := cfg.ValidateSync(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.RemoteAPIURL = ""
	if err := cfg.ValidateSync(); err == nil {
		t.Error("expected error without REMOTE_API_URL")
	}
}
