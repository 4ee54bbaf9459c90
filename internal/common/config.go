// Package common provides shared utilities for InvestBadge
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/investbadge/internal/models"
)

// Config holds all configuration for InvestBadge
type Config struct {
	Environment string            `toml:"environment"`
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Reputation  ReputationConfig  `toml:"reputation"`
	Profile     ProfileConfig     `toml:"profile"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
	Auth        AuthConfig        `toml:"auth"`
	Logging     LoggingConfig     `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	PublicURL string `toml:"public_url"` // Base URL used in NFT metadata image links
}

// GetPublicURL returns the configured public URL, or one built from host and port.
func (c *ServerConfig) GetPublicURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}
	host := c.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Port)
}

// StorageConfig selects the profile store backend.
type StorageConfig struct {
	Backend string `toml:"backend"` // "memory" (session memory) or "leveldb"
	Path    string `toml:"path"`    // LevelDB directory
}

// ReputationConfig holds scoring and refresh configuration.
type ReputationConfig struct {
	Allocation          models.PortfolioAllocation `toml:"allocation"`
	RefreshDelay        string                     `toml:"refresh_delay"`         // simulated confirmation delay
	FailurePercent      int                        `toml:"failure_percent"`       // 0-100 chance a simulated confirmation fails
	Seed                uint64                     `toml:"seed"`                  // 0 = seed from clock
	RefreshRatePerMin   int                        `toml:"refresh_rate_per_min"`  // new refreshes allowed per minute, 0 = unlimited
	RefreshBurst        int                        `toml:"refresh_burst"`
	RefreshWorkers      int                        `toml:"refresh_workers"`       // bound for bulk refreshes
	AutoRefreshInterval string                     `toml:"auto_refresh_interval"` // empty = disabled
}

// GetRefreshDelay parses and returns the simulated confirmation delay.
func (c *ReputationConfig) GetRefreshDelay() time.Duration {
	d, err := time.ParseDuration(c.RefreshDelay)
	if err != nil || d < 0 {
		return 3 * time.Second
	}
	return d
}

// GetAutoRefreshInterval returns the scheduled refresh interval, or 0 when disabled.
func (c *ReputationConfig) GetAutoRefreshInterval() time.Duration {
	if c.AutoRefreshInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.AutoRefreshInterval)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// GetRefreshWorkers returns the bulk refresh concurrency bound.
func (c *ReputationConfig) GetRefreshWorkers() int {
	if c.RefreshWorkers <= 0 {
		return 4
	}
	return c.RefreshWorkers
}

// ProfileConfig holds the mock portfolio figures attached to connected wallets.
type ProfileConfig struct {
	PortfolioValue       float64 `toml:"portfolio_value"`
	DiversificationScore int     `toml:"diversification_score"`
}

// LeaderboardConfig holds leaderboard configuration.
type LeaderboardConfig struct {
	SeedMockInvestors bool `toml:"seed_mock_investors"`
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`  // "console" or "json"
	Outputs  []string `toml:"outputs"` // "console", "file"
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: "memory",
			Path:    "data/profiles",
		},
		Reputation: ReputationConfig{
			Allocation:        models.DefaultAllocation(),
			RefreshDelay:      "3s",
			RefreshRatePerMin: 30,
			RefreshBurst:      5,
			RefreshWorkers:    4,
		},
		Profile: ProfileConfig{
			PortfolioValue:       185000,
			DiversificationScore: 78,
		},
		Leaderboard: LeaderboardConfig{
			SeedMockInvestors: true,
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/investbadge.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first when present.
func LoadConfig(paths ...string) (*Config, error) {
	// Missing .env is normal; variables may already be in the environment.
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("INVESTBADGE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("INVESTBADGE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("INVESTBADGE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if url := os.Getenv("INVESTBADGE_PUBLIC_URL"); url != "" {
		config.Server.PublicURL = url
	}

	if level := os.Getenv("INVESTBADGE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("INVESTBADGE_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if path := os.Getenv("INVESTBADGE_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Join(path, "profiles")
	}

	if d := os.Getenv("INVESTBADGE_REFRESH_DELAY"); d != "" {
		config.Reputation.RefreshDelay = d
	}

	if v := os.Getenv("INVESTBADGE_REFRESH_FAILURE_PERCENT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Reputation.FailurePercent = p
		}
	}

	if v := os.Getenv("INVESTBADGE_SEED"); v != "" {
		if s, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Reputation.Seed = s
		}
	}

	if v := os.Getenv("INVESTBADGE_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("INVESTBADGE_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if err := c.Reputation.Allocation.Validate(); err != nil {
		return fmt.Errorf("reputation.allocation: %w", err)
	}
	if c.Reputation.FailurePercent < 0 || c.Reputation.FailurePercent > 100 {
		return fmt.Errorf("reputation.failure_percent must be within [0, 100], got %d", c.Reputation.FailurePercent)
	}
	if c.Profile.DiversificationScore < 0 || c.Profile.DiversificationScore > 100 {
		return fmt.Errorf("profile.diversification_score must be within [0, 100], got %d", c.Profile.DiversificationScore)
	}
	if c.Profile.PortfolioValue < 0 {
		return fmt.Errorf("profile.portfolio_value must not be negative")
	}
	switch c.Storage.Backend {
	case "memory", "leveldb":
	default:
		return fmt.Errorf("storage.backend must be \"memory\" or \"leveldb\", got %q", c.Storage.Backend)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
