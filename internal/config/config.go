// Package config loads service configuration from a YAML file with
// environment variable overrides layered on top. Secrets can live in a
// local .env file during development and in real env vars in deployment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Blob      BlobConfig      `yaml:"blob"`
	PostGrid  PostGridConfig  `yaml:"postgrid"`
	Email     EmailConfig     `yaml:"email"`
	Auth      AuthConfig      `yaml:"auth"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	CORSOrigins    []string `yaml:"cors_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// BlobConfig holds document content storage settings. With an S3 bucket
// configured, content goes to S3; otherwise it falls back to a local
// directory for development.
type BlobConfig struct {
	S3Bucket  string `yaml:"s3_bucket"`
	S3Region  string `yaml:"s3_region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	LocalDir  string `yaml:"local_dir"`
}

// PostGridConfig holds postal provider settings. Without an API key and
// URL the client runs in simulation mode.
type PostGridConfig struct {
	APIKey         string `yaml:"api_key"`
	APIURL         string `yaml:"api_url"`
	SendMode       string `yaml:"send_mode"` // pdf | raw | auto
	SupportsRaw    bool   `yaml:"supports_raw"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured request timeout as a duration.
func (c PostGridConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EmailConfig holds SES email provider settings. Without credentials the
// sender runs in simulation mode.
type EmailConfig struct {
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Region        string `yaml:"region"`
	SenderAddress string `yaml:"sender_address"`
}

// AuthConfig holds OIDC bearer-token verification settings. Both fields
// empty means auth is not configured and requests proceed anonymously.
type AuthConfig struct {
	IssuerURL string `yaml:"issuer_url"`
	Audience  string `yaml:"audience"`
}

// Configured reports whether token verification is enabled.
func (c AuthConfig) Configured() bool {
	return c.IssuerURL != "" && c.Audience != ""
}

// WebhookConfig holds provider callback settings. An empty secret
// disables signature verification (dev default, fail-open).
type WebhookConfig struct {
	Secret string `yaml:"secret"`
}

// RateLimitConfig holds Redis-backed webhook rate limiting. An empty
// Redis URL disables limiting.
type RateLimitConfig struct {
	RedisURL          string `yaml:"redis_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// Load reads the YAML config at path and applies defaults. A missing
// file is not an error: the service can run entirely from env vars.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 10 * 1024 * 1024
	}
	if cfg.PostGrid.SendMode == "" {
		cfg.PostGrid.SendMode = "auto"
	}
	if cfg.PostGrid.TimeoutSeconds == 0 {
		cfg.PostGrid.TimeoutSeconds = 20
	}
	if cfg.Email.Region == "" {
		cfg.Email.Region = "us-east-1"
	}
	if cfg.Blob.S3Region == "" {
		cfg.Blob.S3Region = "us-east-1"
	}
	if cfg.Blob.LocalDir == "" {
		cfg.Blob.LocalDir = "data/uploads"
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 120
	}

	cfg.PostGrid.SendMode = strings.ToLower(cfg.PostGrid.SendMode)

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env
// vars, so secrets can live in .env locally and in real env vars in
// deployment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("FILE_MAX_SIZE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Server.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}

	// PostGrid overrides
	if v := os.Getenv("POSTGRID_API_KEY"); v != "" {
		cfg.PostGrid.APIKey = v
	}
	if v := os.Getenv("POSTGRID_API_URL"); v != "" {
		cfg.PostGrid.APIURL = v
	}
	if v := os.Getenv("POSTGRID_SEND_MODE"); v != "" {
		cfg.PostGrid.SendMode = strings.ToLower(v)
	}
	if v := os.Getenv("POSTGRID_API_SUPPORTS_RAW"); v != "" {
		cfg.PostGrid.SupportsRaw = v == "true"
	}
	if v := os.Getenv("POSTGRID_WEBHOOK_SECRET"); v != "" {
		cfg.Webhook.Secret = v
	}

	// Email overrides
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.Email.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.Email.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.Email.Region = v
	}
	if v := os.Getenv("SES_SENDER_ADDRESS"); v != "" {
		cfg.Email.SenderAddress = v
	}

	// Blob storage overrides
	if v := os.Getenv("BLOB_S3_BUCKET"); v != "" {
		cfg.Blob.S3Bucket = v
	}
	if v := os.Getenv("BLOB_S3_REGION"); v != "" {
		cfg.Blob.S3Region = v
	}
	if v := os.Getenv("BLOB_ACCESS_KEY"); v != "" {
		cfg.Blob.AccessKey = v
	}
	if v := os.Getenv("BLOB_SECRET_KEY"); v != "" {
		cfg.Blob.SecretKey = v
	}
	if v := os.Getenv("BLOB_LOCAL_DIR"); v != "" {
		cfg.Blob.LocalDir = v
	}

	// Auth overrides
	if v := os.Getenv("OIDC_ISSUER_URL"); v != "" {
		cfg.Auth.IssuerURL = v
	}
	if v := os.Getenv("OIDC_AUDIENCE"); v != "" {
		cfg.Auth.Audience = v
	}

	// Rate limit overrides
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RateLimit.RedisURL = v
	}
	if v := os.Getenv("WEBHOOK_REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimit.RequestsPerMinute = n
		}
	}

	return cfg, nil
}
