package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aouyang1/go-autoforecast/timedataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"ADDR", "DATASET_PATH", "FREQUENCY", "SEASON_LENGTH", "LOG_LEVEL", "LOG_FORMAT",
	"FORECAST_RATE_LIMIT", "FORECAST_BURST", "MAX_PERIODS", "SHUTDOWN_TIMEOUT", "METRICS_ENABLED", "PROFILE",
}

// clearEnv blanks every key for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Nil(t, err)

	expected := &Config{
		Addr:            ":8000",
		Frequency:       timedataset.MonthStart,
		SeasonLength:    12,
		LogLevel:        "info",
		LogFormat:       "json",
		Burst:           4,
		MaxPeriods:      1200,
		ShutdownTimeout: 10 * time.Second,
		MetricsEnabled:  true,
	}
	assert.Equal(t, expected, cfg)
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADDR", ":9000")
	t.Setenv("FREQUENCY", "qs")
	t.Setenv("SEASON_LENGTH", "4")
	t.Setenv("FORECAST_RATE_LIMIT", "2.5")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("PROFILE", "CPU")
	t.Setenv("FORECAST_BURST", "not a number")
	t.Setenv("MAX_PERIODS", "36")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Nil(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, timedataset.QuarterStart, cfg.Frequency)
	assert.Equal(t, 4, cfg.SeasonLength)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 4, cfg.Burst)
	assert.Equal(t, 36, cfg.MaxPeriods)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, "cpu", cfg.Profile)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even when empty
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("DATASET_PATH")

	path := filepath.Join(t.TempDir(), ".env")
	require.Nil(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nDATASET_PATH=data/air.csv\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("DATASET_PATH")
	})

	cfg, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "data/air.csv", cfg.DatasetPath)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Frequency:    timedataset.MonthStart,
			SeasonLength: 12,
			LogFormat:    "json",
			Burst:        1,
			MaxPeriods:   1,
		}
	}

	testData := map[string]struct {
		mutate func(c *Config)
		err    error
	}{
		"valid": {
			mutate: func(c *Config) {},
		},
		"unknown frequency": {
			mutate: func(c *Config) { c.Frequency = "fortnight" },
			err:    timedataset.ErrUnknownFrequency,
		},
		"zero season length": {
			mutate: func(c *Config) { c.SeasonLength = 0 },
			err:    ErrInvalidConfig,
		},
		"negative rate": {
			mutate: func(c *Config) { c.RateLimit = -1 },
			err:    ErrInvalidConfig,
		},
		"zero burst": {
			mutate: func(c *Config) { c.Burst = 0 },
			err:    ErrInvalidConfig,
		},
		"zero max periods": {
			mutate: func(c *Config) { c.MaxPeriods = 0 },
			err:    ErrInvalidConfig,
		},
		"bad log format": {
			mutate: func(c *Config) { c.LogFormat = "xml" },
			err:    ErrInvalidConfig,
		},
		"bad profile": {
			mutate: func(c *Config) { c.Profile = "block" },
			err:    ErrInvalidConfig,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			c := base()
			td.mutate(&c)
			err := c.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.Nil(t, err)
		})
	}
}
