// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Public URL of the app; the OAuth redirect URI is derived from it.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Database (PostgreSQL)
	DatabaseURL       string        `env:"DATABASE_URL,required"`
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`

	// Session and OAuth state store (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Session signing
	SecretKey  string        `env:"SECRET_KEY,required"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// Google OAuth
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required"`

	// Summarizer (Gemini). Empty key disables summarization.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash-latest"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Page fetching
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	FetchUserAgent string        `env:"FETCH_USER_AGENT" envDefault:"Mozilla/5.0 (compatible; Pagescribe/1.0)"`
	FetchMaxBytes  int64         `env:"FETCH_MAX_BYTES" envDefault:"5242880"`

	// Refuse to fetch loopback, private and link-local addresses
	FetchBlockPrivate bool `env:"FETCH_BLOCK_PRIVATE_NETWORKS" envDefault:"true"`

	// Per-user rate limiting on scrape and summarize endpoints
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPM     int  `env:"RATE_LIMIT_RPM" envDefault:"30"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"5"`

	// Per-IP rate limiting on the login endpoint
	LoginRateLimitRPM int `env:"LOGIN_RATE_LIMIT_RPM" envDefault:"20"`

	// Origins allowed to call the app cross-origin with credentials
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// OAuthRedirectURL is the callback registered with Google.
func (c *Config) OAuthRedirectURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/google"
}

// SummarizerEnabled reports whether a Gemini API key is configured.
func (c *Config) SummarizerEnabled() bool {
	return c.GeminiAPIKey != ""
}

// Load reads an optional .env file, then parses environment variables.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
