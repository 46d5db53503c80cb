package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	LocalDBPath     string        `mapstructure:"LOCAL_DB_PATH"`
	RemoteAPIURL    string        `mapstructure:"REMOTE_API_URL"`
	SyncTimeout     time.Duration `mapstructure:"SYNC_TIMEOUT"`
	RefreshInterval time.Duration `mapstructure:"REFRESH_INTERVAL"`
	VideoBaseURL    string        `mapstructure:"VIDEO_BASE_URL"`
	TenantSlug      string        `mapstructure:"TENANT_SLUG"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	SMTPHost        string        `mapstructure:"SMTP_HOST"`
	SMTPPort        string        `mapstructure:"SMTP_PORT"`
	SMTPFrom        string        `mapstructure:"SMTP_FROM"`
	SMTPUser        string        `mapstructure:"SMTP_USER"`
	SMTPPassword    string        `mapstructure:"SMTP_PASSWORD"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("LOCAL_DB_PATH", "./mely.db")
	v.SetDefault("SYNC_TIMEOUT", "5s")
	v.SetDefault("REFRESH_INTERVAL", "30s")
	v.SetDefault("VIDEO_BASE_URL", "https://meet.jit.si")
	v.SetDefault("TENANT_SLUG", "mely-ehpad")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("LOCAL_DB_PATH")
	v.BindEnv("REMOTE_API_URL")
	v.BindEnv("SYNC_TIMEOUT")
	v.BindEnv("REFRESH_INTERVAL")
	v.BindEnv("VIDEO_BASE_URL")
	v.BindEnv("TENANT_SLUG")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("SMTP_HOST")
	v.BindEnv("SMTP_PORT")
	v.BindEnv("SMTP_FROM")
	v.BindEnv("SMTP_USER")
	v.BindEnv("SMTP_PASSWORD")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ValidateServe checks that the configuration can run the portal API.
func (c *Config) ValidateServe() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required to serve the portal API")
	}
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	return nil
}

// ValidateSync checks that the configuration can run the reconciler.
func (c *Config) ValidateSync() error {
	if c.LocalDBPath == "" {
		return fmt.Errorf("LOCAL_DB_PATH is required for sync")
	}
	if c.RemoteAPIURL == "" {
		return fmt.Errorf("REMOTE_API_URL is required for sync")
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("SYNC_TIMEOUT must be positive")
	}
	return nil
}
