// forecastd serves AutoARIMA forecasts of a historical monthly series over HTTP
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aouyang1/go-autoforecast/api"
	"github.com/aouyang1/go-autoforecast/autoarima"
	"github.com/aouyang1/go-autoforecast/config"
	"github.com/aouyang1/go-autoforecast/datasets"
	"github.com/aouyang1/go-autoforecast/logging"

	"github.com/gin-gonic/gin"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger := logging.New("error", logging.FormatJSON, nil)
		logger.Fatal().Err(err).Msg("unable to load configuration")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if err := serve(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("server gracefully stopped")
}

// serve runs the server with profiling enabled when configured. Profiles are flushed before it
// returns.
func serve(cfg *config.Config, logger zerolog.Logger) error {
	switch cfg.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}
	return run(cfg, logger)
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	hist, err := datasets.Load(cfg.DatasetPath, cfg.Frequency)
	if err != nil {
		return fmt.Errorf("unable to load historical data, %w", err)
	}
	logger.Info().
		Int("points", hist.Len()).
		Str("frequency", cfg.Frequency.String()).
		Str("dataset", cfg.DatasetPath).
		Msg("loaded historical data")

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := api.New(hist, &api.Options{
		Frequency:      cfg.Frequency,
		SeasonLength:   cfg.SeasonLength,
		RateLimit:      cfg.RateLimit,
		Burst:          cfg.Burst,
		MaxPeriods:     cfg.MaxPeriods,
		MetricsEnabled: cfg.MetricsEnabled,
		AutoARIMA:      autoarima.NewDefaultConfig(),
	}, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
