package main

import (
	"errors"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/aouyang1/go-autoforecast/config"
	"github.com/aouyang1/go-autoforecast/timedataset"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Addr:            "127.0.0.1:0",
		Frequency:       timedataset.MonthStart,
		SeasonLength:    12,
		LogLevel:        "info",
		LogFormat:       "json",
		Burst:           4,
		MaxPeriods:      24,
		ShutdownTimeout: time.Second,
	}
}

func TestServeErrors(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	defer busy.Close()

	testData := map[string]struct {
		update func(cfg *config.Config)
		err    error
	}{
		"embedded dataset with mismatched frequency": {
			update: func(cfg *config.Config) { cfg.Frequency = timedataset.Daily },
			err:    timedataset.ErrIrregularSpacing,
		},
		"missing dataset file": {
			update: func(cfg *config.Config) { cfg.DatasetPath = filepath.Join(t.TempDir(), "missing.csv") },
			err:    os.ErrNotExist,
		},
		"address in use": {
			update: func(cfg *config.Config) { cfg.Addr = busy.Addr().String() },
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			td.update(cfg)

			err := serve(cfg, zerolog.Nop())
			require.NotNil(t, err)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
			}
		})
	}
}

// TestExitsNonZero re-runs the test binary as the service so the exit status of main can be observed
func TestExitsNonZero(t *testing.T) {
	if os.Getenv("FORECASTD_RUN_MAIN") == "1" {
		main()
		return
	}

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	defer busy.Close()

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitsNonZero$")
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(),
		"FORECASTD_RUN_MAIN=1",
		"ADDR="+busy.Addr().String(),
		"LOG_LEVEL=error",
	)
	err = cmd.Run()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected a non zero exit, got %v", err)
	assert.Equal(t, 1, exitErr.ExitCode())
}
