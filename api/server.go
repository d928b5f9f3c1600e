// Package api serves forecasts of a fixed historical series over HTTP. Every forecast request fits a
// fresh model against the shared, read-only history.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	forecaster "github.com/aouyang1/go-autoforecast"
	"github.com/aouyang1/go-autoforecast/autoarima"
	"github.com/aouyang1/go-autoforecast/logging"
	"github.com/aouyang1/go-autoforecast/plot"
	"github.com/aouyang1/go-autoforecast/timedataset"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

var (
	ErrNoHistory      = errors.New("no historical data to serve")
	ErrHorizonTooLong = errors.New("forecast horizon exceeds the configured maximum")
)

const (
	// ServiceName identifies the server in traces
	ServiceName = "forecast-service"

	DefaultMaxPeriods = 1200
)

type Options struct {
	Frequency    timedataset.Frequency
	SeasonLength int

	// RateLimit bounds forecasts per second with bursts of Burst. Zero disables the limit.
	RateLimit float64
	Burst     int

	// MaxPeriods bounds the forecast horizon of a single request. Non-positive values use
	// DefaultMaxPeriods.
	MaxPeriods int

	MetricsEnabled bool

	// AutoARIMA is copied for every request, nil uses the default search
	AutoARIMA *autoarima.Config
}

func NewDefaultOptions() *Options {
	return &Options{
		Frequency:      timedataset.MonthStart,
		SeasonLength:   12,
		Burst:          4,
		MaxPeriods:     DefaultMaxPeriods,
		MetricsEnabled: true,
	}
}

type Server struct {
	opt    *Options
	logger zerolog.Logger

	hist       *timedataset.TimeDataset
	historical []HistoricalRecord
	landing    []byte

	maxPeriods int
	limiter    *rate.Limiter
	metrics    *Metrics
	engine     *gin.Engine
}

// New builds the server around the historical series. The series is never modified.
func New(hist *timedataset.TimeDataset, opt *Options, logger zerolog.Logger) (*Server, error) {
	if hist.Len() == 0 {
		return nil, ErrNoHistory
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}

	s := &Server{
		opt:        opt,
		logger:     logging.Component(logger, "api"),
		hist:       hist,
		historical: NewHistoricalRecords(hist),
		metrics:    NewMetrics(),
		maxPeriods: opt.MaxPeriods,
	}
	if s.maxPeriods <= 0 {
		s.maxPeriods = DefaultMaxPeriods
	}
	if opt.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opt.RateLimit), max(opt.Burst, 1))
	}

	landing, err := s.renderLanding()
	if err != nil {
		return nil, fmt.Errorf("unable to render landing page, %w", err)
	}
	s.landing = landing

	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(
		requestID(),
		s.accessLog(),
		gin.CustomRecovery(func(c *gin.Context, rec any) {
			s.writeError(c, fmt.Errorf("panic: %v", rec))
		}),
	)
	if s.opt.MetricsEnabled {
		r.Use(s.metrics.middleware())
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	r.GET("/", s.home)
	r.GET("/healthz", s.health)
	r.GET("/historical_data/", s.historicalData)
	r.POST("/forecast/", s.forecast)
	return r
}

// Handler returns the routes wrapped with tracing instrumentation
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, ServiceName)
}

func writeJSON(c *gin.Context, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		c.Data(http.StatusInternalServerError, "application/json; charset=utf-8", []byte(`{"detail":"internal server error"}`))
		return
	}
	c.Data(status, "application/json; charset=utf-8", b)
}

func (s *Server) renderLanding() ([]byte, error) {
	line, err := plot.LineTSeries("Historical Data", []string{"y"}, s.hist.T, [][]float64{s.hist.Y})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := plot.Render(&buf, "Forecast Service", line); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) home(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", s.landing)
}

func (s *Server) health(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) historicalData(c *gin.Context) {
	writeJSON(c, http.StatusOK, s.historical)
}

func (s *Server) forecast(c *gin.Context) {
	var req ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, &ValidationError{Err: err})
		return
	}
	if s.limiter != nil && !s.limiter.Allow() {
		s.writeError(c, ErrRateLimited)
		return
	}

	var level int
	if req.Level != nil {
		level = *req.Level
	}

	res, err := s.predict(c, req.Periods, level)
	if err != nil {
		s.writeError(c, &ServiceError{Err: err})
		return
	}
	writeJSON(c, http.StatusOK, NewForecastRecords(res, level))
}

func (s *Server) predict(c *gin.Context, periods, level int) (*forecaster.Results, error) {
	// every output slice is sized by the horizon
	if periods > s.maxPeriods {
		return nil, fmt.Errorf("got %d periods with a maximum of %d, %w", periods, s.maxPeriods, ErrHorizonTooLong)
	}

	opt := &forecaster.Options{
		Frequency:    s.opt.Frequency,
		SeasonLength: s.opt.SeasonLength,
	}
	if s.opt.AutoARIMA != nil {
		cfg := *s.opt.AutoARIMA
		opt.AutoARIMA = &cfg
	}

	f, err := forecaster.New(opt)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecaster, %w", err)
	}

	start := time.Now()
	err = f.FitDataset(c.Request.Context(), s.hist)
	s.metrics.observeFit(time.Since(start), f.ModelsEvaluated(), err)
	if err != nil {
		return nil, fmt.Errorf("unable to fit historical data, %w", err)
	}
	s.requestLogger(c).Debug().
		Str("model", f.ModelName()).
		Int("models_evaluated", f.ModelsEvaluated()).
		Dur("fit_duration", time.Since(start)).
		Msg("fit forecast model")

	res, err := f.Predict(periods, float64(level))
	s.metrics.observePredict(err)
	if err != nil {
		return nil, err
	}
	return res, nil
}
