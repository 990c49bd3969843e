// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultListenAddr   = "127.0.0.1:8080"
	defaultDBPath       = "guardian.db"
	defaultWebhookPath  = "/webhooks/github"
	defaultEnvFile      = ".env"
	defaultHTTPTimeout  = 10 * time.Second
	defaultMaxBodyBytes = 25 << 20
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr   string
	DBPath       string
	WebhookPath  string
	HTTPTimeout  time.Duration
	MaxBodyBytes int64
	LogLevel     slog.Level

	// Secrets. All optional at load time; a delivery that needs a missing one
	// is refused per request.
	WebhookSecret    string
	GitHubAppID      string
	GitHubPrivateKey []byte
	GitHubAPIURL     string
	SecretKey        []byte
}

// HasAppCredentials returns true when both the GitHub App id and its private
// key are configured. Without them no installation token can be minted.
func (c *Config) HasAppCredentials() bool {
	return c.GitHubAppID != "" && len(c.GitHubPrivateKey) > 0
}

// Load reads configuration from environment variables and returns a validated Config.
// A .env file (GUARDIAN_ENV_FILE, default .env) is loaded first if present; it
// never overrides variables already set in the environment.
//
// Optional variables with defaults: GUARDIAN_LISTEN_ADDR (127.0.0.1:8080),
// GUARDIAN_DB_PATH (guardian.db), GUARDIAN_WEBHOOK_PATH (/webhooks/github),
// GUARDIAN_HTTP_TIMEOUT (10s), GUARDIAN_MAX_BODY_BYTES (25 MiB),
// GUARDIAN_LOG_LEVEL (info).
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{
		ListenAddr:    getEnvOrDefault("GUARDIAN_LISTEN_ADDR", defaultListenAddr),
		DBPath:        getEnvOrDefault("GUARDIAN_DB_PATH", defaultDBPath),
		WebhookPath:   getEnvOrDefault("GUARDIAN_WEBHOOK_PATH", defaultWebhookPath),
		HTTPTimeout:   defaultHTTPTimeout,
		MaxBodyBytes:  defaultMaxBodyBytes,
		LogLevel:      slog.LevelInfo,
		WebhookSecret: os.Getenv("GUARDIAN_WEBHOOK_SECRET"),
		GitHubAppID:   strings.TrimSpace(os.Getenv("GUARDIAN_GITHUB_APP_ID")),
		GitHubAPIURL:  os.Getenv("GUARDIAN_GITHUB_API_URL"),
	}

	if !strings.HasPrefix(cfg.WebhookPath, "/") {
		return nil, fmt.Errorf("GUARDIAN_WEBHOOK_PATH must start with /, got %q", cfg.WebhookPath)
	}

	if v, ok := os.LookupEnv("GUARDIAN_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("GUARDIAN_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("GUARDIAN_HTTP_TIMEOUT must be positive, got %s", parsed)
		}
		cfg.HTTPTimeout = parsed
	}

	if v, ok := os.LookupEnv("GUARDIAN_MAX_BODY_BYTES"); ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("GUARDIAN_MAX_BODY_BYTES must be a positive integer, got %q", v)
		}
		cfg.MaxBodyBytes = parsed
	}

	if v, ok := os.LookupEnv("GUARDIAN_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("GUARDIAN_LOG_LEVEL: %w", err)
		}
	}

	key, err := loadPrivateKey()
	if err != nil {
		return nil, err
	}
	cfg.GitHubPrivateKey = key

	if v := os.Getenv("GUARDIAN_SECRET_KEY"); v != "" {
		decoded, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("GUARDIAN_SECRET_KEY is not valid hex: %w", err)
		}
		if len(decoded) != 32 {
			return nil, fmt.Errorf("GUARDIAN_SECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", len(decoded))
		}
		cfg.SecretKey = decoded
	}

	return cfg, nil
}

func loadEnvFile() error {
	path := getEnvOrDefault("GUARDIAN_ENV_FILE", defaultEnvFile)
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// loadPrivateKey returns the app's PEM key from GUARDIAN_GITHUB_PRIVATE_KEY,
// falling back to the file named by GUARDIAN_GITHUB_PRIVATE_KEY_PATH. Inline
// keys may be quoted and may use literal \n for line breaks.
func loadPrivateKey() ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv("GUARDIAN_GITHUB_PRIVATE_KEY")); v != "" {
		v = strings.Trim(v, `"'`)
		v = strings.ReplaceAll(v, `\n`, "\n")
		return []byte(v), nil
	}

	path := os.Getenv("GUARDIAN_GITHUB_PRIVATE_KEY_PATH")
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("GUARDIAN_GITHUB_PRIVATE_KEY_PATH: %w", err)
	}
	return data, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
