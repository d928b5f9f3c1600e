// Package config reads the service configuration from the environment and an optional .env file
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/go-autoforecast/timedataset"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	Addr            string                `env:"ADDR" envDefault:":8000"`
	DatasetPath     string                `env:"DATASET_PATH"` // empty serves the embedded AirPassengers data
	Frequency       timedataset.Frequency `env:"FREQUENCY" envDefault:"MS"`
	SeasonLength    int                   `env:"SEASON_LENGTH" envDefault:"12"`
	LogLevel        string                `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string                `env:"LOG_FORMAT" envDefault:"json"`
	RateLimit       float64               `env:"FORECAST_RATE_LIMIT" envDefault:"0"` // forecasts per second, 0 is unlimited
	Burst           int                   `env:"FORECAST_BURST" envDefault:"4"`
	MaxPeriods      int                   `env:"MAX_PERIODS" envDefault:"1200"` // longest forecast horizon served
	ShutdownTimeout time.Duration         `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MetricsEnabled  bool                  `env:"METRICS_ENABLED" envDefault:"true"`
	Profile         string                `env:"PROFILE"` // cpu or mem
}

// Load initializes configuration from environment variables after loading the provided env files, or
// .env in the working directory when none are given
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Warn().Err(err).Msg("env file not found, relying on actual environment variables")
	}

	var cfg Config
	cfg.Addr = getEnvWithDefault("ADDR", ":8000")
	cfg.DatasetPath = os.Getenv("DATASET_PATH")
	cfg.Frequency = timedataset.Frequency(getEnvWithDefault("FREQUENCY", string(timedataset.MonthStart)))
	cfg.SeasonLength = getEnvIntWithDefault("SEASON_LENGTH", 12)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getEnvWithDefault("LOG_FORMAT", "json")
	cfg.RateLimit = getEnvFloatWithDefault("FORECAST_RATE_LIMIT", 0)
	cfg.Burst = getEnvIntWithDefault("FORECAST_BURST", 4)
	cfg.MaxPeriods = getEnvIntWithDefault("MAX_PERIODS", 1200)
	cfg.ShutdownTimeout = getEnvDurationWithDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	cfg.MetricsEnabled = getEnvBoolWithDefault("METRICS_ENABLED", true)
	cfg.Profile = strings.ToLower(os.Getenv("PROFILE"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes the frequency and rejects values the service cannot run with
func (c *Config) Validate() error {
	freq, err := timedataset.ParseFrequency(string(c.Frequency))
	if err != nil {
		return fmt.Errorf("%w, %w", ErrInvalidConfig, err)
	}
	c.Frequency = freq

	if c.SeasonLength < 1 {
		return fmt.Errorf("season length of %d, %w", c.SeasonLength, ErrInvalidConfig)
	}
	if c.RateLimit < 0 || c.Burst < 1 {
		return fmt.Errorf("rate limit %f with burst %d, %w", c.RateLimit, c.Burst, ErrInvalidConfig)
	}
	if c.MaxPeriods < 1 {
		return fmt.Errorf("max periods of %d, %w", c.MaxPeriods, ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log format %q, %w", c.LogFormat, ErrInvalidConfig)
	}
	switch c.Profile {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("profile %q, %w", c.Profile, ErrInvalidConfig)
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
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer, using default")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid float, using default")
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid duration, using default")
	}
	return defaultValue
}
