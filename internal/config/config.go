package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration.
type Config struct {
	FinnhubAPIKey  string `env:"FINNHUB_API_KEY"`
	FinnhubBaseURL string `env:"FINNHUB_BASE_URL" envDefault:"https://finnhub.io/api/v1"`

	RequestsPerMin  int `env:"REQUESTS_PER_MIN" envDefault:"55"` // provider allows 60/min
	RequestTimeout  int `env:"REQUEST_TIMEOUT" envDefault:"30"`  // seconds
	MaxRetryElapsed int `env:"MAX_RETRY_ELAPSED" envDefault:"120"`
	WorkerCount     int `env:"WORKER_COUNT" envDefault:"8"`

	UniverseURL       string `env:"UNIVERSE_URL"`
	UniverseCachePath string `env:"UNIVERSE_CACHE_PATH" envDefault:"data/sp500.json"`
	CacheMaxAgeHours  int    `env:"CACHE_MAX_AGE_HOURS" envDefault:"24"`

	DataDir    string `env:"DATA_DIR" envDefault:"data/tickers"`
	StartEpoch int64  `env:"START_EPOCH" envDefault:"1262304000"` // 2010-01-01

	TZOffsetHours    int `env:"TZ_OFFSET_HOURS" envDefault:"6"`
	WeeklyShiftDays  int `env:"WEEKLY_SHIFT_DAYS" envDefault:"1"`
	MonthlyShiftDays int `env:"MONTHLY_SHIFT_DAYS" envDefault:"-2"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load initializes configuration from environment variables.
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		FinnhubAPIKey:     os.Getenv("FINNHUB_API_KEY"),
		FinnhubBaseURL:    getEnvWithDefault("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
		RequestsPerMin:    getEnvIntWithDefault("REQUESTS_PER_MIN", 55),
		RequestTimeout:    getEnvIntWithDefault("REQUEST_TIMEOUT", 30),
		MaxRetryElapsed:   getEnvIntWithDefault("MAX_RETRY_ELAPSED", 120),
		WorkerCount:       getEnvIntWithDefault("WORKER_COUNT", 8),
		UniverseURL:       os.Getenv("UNIVERSE_URL"),
		UniverseCachePath: getEnvWithDefault("UNIVERSE_CACHE_PATH", "data/sp500.json"),
		CacheMaxAgeHours:  getEnvIntWithDefault("CACHE_MAX_AGE_HOURS", 24),
		DataDir:           getEnvWithDefault("DATA_DIR", "data/tickers"),
		StartEpoch:        getEnvInt64WithDefault("START_EPOCH", 1262304000),
		TZOffsetHours:     getEnvIntWithDefault("TZ_OFFSET_HOURS", 6),
		WeeklyShiftDays:   getEnvIntWithDefault("WEEKLY_SHIFT_DAYS", 1),
		MonthlyShiftDays:  getEnvIntWithDefault("MONTHLY_SHIFT_DAYS", -2),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration once at startup.
func (c *Config) Validate() error {
	if c.FinnhubAPIKey == "" {
		return fmt.Errorf("FINNHUB_API_KEY is required")
	}
	if c.RequestsPerMin <= 0 {
		return fmt.Errorf("REQUESTS_PER_MIN must be positive, got %d", c.RequestsPerMin)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %d", c.RequestTimeout)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	if c.StartEpoch <= 0 {
		return fmt.Errorf("START_EPOCH must be positive, got %d", c.StartEpoch)
	}
	return nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
