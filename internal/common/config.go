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

	"github.com/bobmcallan/finscreen/internal/models"
)

// Config holds all configuration for finscreen
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Clients     ClientsConfig   `toml:"clients"`
	Sentiment   SentimentConfig `toml:"sentiment"`
	Screening   ScreeningConfig `toml:"screening"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD  EODHDConfig  `toml:"eodhd"`
	Scrape ScrapeConfig `toml:"scrape"`
	Gemini GeminiConfig `toml:"gemini"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ScrapeConfig configures fetching of fallback ratio pages and transcripts
type ScrapeConfig struct {
	UserAgent string `toml:"user_agent"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"`
	MaxBytes  int64  `toml:"max_bytes"`
}

// GetTimeout parses and returns the timeout duration
func (c *ScrapeConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// SentimentConfig selects the transcript sentiment scorer
type SentimentConfig struct {
	Provider string `toml:"provider"` // "gemini", "vader" or "none"
}

// ScreeningConfig holds screening defaults
type ScreeningConfig struct {
	Criteria      map[string]float64 `toml:"criteria"`
	HistoryPeriod string             `toml:"history_period"`
	IncludeGrowth bool               `toml:"include_growth"`
}

// DefaultCriteria returns the configured criteria, or ROE >= 0.15 and
// Debt/Equity <= 1.0 when none are configured.
func (c *ScreeningConfig) DefaultCriteria() models.Criteria {
	if len(c.Criteria) == 0 {
		return models.DefaultCriteria()
	}
	return models.CriteriaFromMap(c.Criteria)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
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
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Scrape: ScrapeConfig{
				UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
				Timeout:   "10s",
				RateLimit: 2,
				MaxBytes:  20 << 20,
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Sentiment: SentimentConfig{
			Provider: "gemini",
		},
		Screening: ScreeningConfig{
			HistoryPeriod: "1y",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/finscreen.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file beside the first config path, or in the working directory, is
// loaded into the environment first; variables already set win.
func LoadConfig(paths ...string) (*Config, error) {
	loadDotEnv(paths...)

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

	return config, nil
}

func loadDotEnv(paths ...string) {
	candidates := []string{".env"}
	for _, p := range paths {
		if p != "" {
			candidates = append([]string{filepath.Join(filepath.Dir(p), ".env")}, candidates...)
			break
		}
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			_ = godotenv.Load(c)
			return
		}
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINSCREEN_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FINSCREEN_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FINSCREEN_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FINSCREEN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := firstEnv("EODHD_API_KEY", "FINSCREEN_EODHD_API_KEY"); v != "" {
		config.Clients.EODHD.APIKey = v
	}

	if v := os.Getenv("FINSCREEN_EODHD_BASE_URL"); v != "" {
		config.Clients.EODHD.BaseURL = v
	}

	if v := firstEnv("GEMINI_API_KEY", "FINSCREEN_GEMINI_API_KEY", "GOOGLE_API_KEY"); v != "" {
		config.Clients.Gemini.APIKey = v
	}

	if v := os.Getenv("FINSCREEN_SENTIMENT_PROVIDER"); v != "" {
		config.Sentiment.Provider = strings.ToLower(v)
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ValidateRequired returns the names of required settings that are missing
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Clients.EODHD.APIKey == "" {
		missing = append(missing, "clients.eodhd.api_key")
	}
	if strings.EqualFold(c.Sentiment.Provider, "gemini") && c.Clients.Gemini.APIKey == "" {
		missing = append(missing, "clients.gemini.api_key")
	}
	return missing
}
