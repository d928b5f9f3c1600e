package autoarima

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/aouyang1/go-autoforecast/arima"
)

var (
	ErrInvalidConfig = errors.New("invalid auto arima config")
	ErrNoData        = errors.New("no observations to fit")
	ErrNoModelFit    = errors.New("no candidate model could be fit")
)

// Criterion is the information criterion minimized by the order search
type Criterion string

const (
	AIC  Criterion = "aic"
	AICc Criterion = "aicc"
	BIC  Criterion = "bic"
)

// Score returns the value of the criterion for a fit model
func (c Criterion) Score(m *arima.Model) float64 {
	switch c {
	case AIC:
		return m.AIC()
	case BIC:
		return m.BIC()
	}
	return m.AICc()
}

// AutoDiff asks the search to pick a differencing order with unit root tests
const AutoDiff = -1

const (
	DefaultMaxP      = 5
	DefaultMaxQ      = 5
	DefaultMaxSP     = 2
	DefaultMaxSQ     = 2
	DefaultMaxOrder  = 5
	DefaultMaxD      = 2
	DefaultMaxSD     = 1
	DefaultMaxModels = 94
)

type Config struct {
	// SeasonLength is the number of observations per seasonal cycle. Values below 2 disable the
	// seasonal part of the search.
	SeasonLength int

	// D and SD fix the differencing orders. AutoDiff selects them with the KPSS and seasonal strength
	// tests, bounded by MaxD and MaxSD.
	D     int
	SD    int
	MaxD  int
	MaxSD int

	MaxP     int
	MaxQ     int
	MaxSP    int
	MaxSQ    int
	MaxOrder int // bound on p+q+P+Q

	StartP  int
	StartQ  int
	StartSP int
	StartSQ int

	// Stepwise walks neighbouring orders from a few starting models. Otherwise every order within the
	// bounds is fit.
	Stepwise bool

	// MaxModels caps the number of fits made by the stepwise search
	MaxModels int

	Criterion Criterion

	// AllowMean and AllowDrift permit a constant term for undifferenced and once differenced series
	AllowMean  bool
	AllowDrift bool

	// Parallelism bounds the number of candidate models fit concurrently
	Parallelism int

	// MaxFuncEvaluations and Tolerance are handed to every candidate fit
	MaxFuncEvaluations int
	Tolerance          float64
}

func NewDefaultConfig() *Config {
	return &Config{
		SeasonLength:       1,
		D:                  AutoDiff,
		SD:                 AutoDiff,
		MaxD:               DefaultMaxD,
		MaxSD:              DefaultMaxSD,
		MaxP:               DefaultMaxP,
		MaxQ:               DefaultMaxQ,
		MaxSP:              DefaultMaxSP,
		MaxSQ:              DefaultMaxSQ,
		MaxOrder:           DefaultMaxOrder,
		StartP:             2,
		StartQ:             2,
		StartSP:            1,
		StartSQ:            1,
		Stepwise:           true,
		MaxModels:          DefaultMaxModels,
		Criterion:          AICc,
		AllowMean:          true,
		AllowDrift:         true,
		Parallelism:        runtime.GOMAXPROCS(0),
		MaxFuncEvaluations: arima.DefaultMaxFuncEvaluations,
		Tolerance:          arima.DefaultTolerance,
	}
}

// Validate returns the default config when unset and rejects negative bounds or unknown criteria.
// Zero parallelism runs fits serially and zero max models uses DefaultMaxModels.
func (c *Config) Validate() (*Config, error) {
	if c == nil {
		c = NewDefaultConfig()
	}

	bounds := map[string]int{
		"max p":       c.MaxP,
		"max q":       c.MaxQ,
		"max P":       c.MaxSP,
		"max Q":       c.MaxSQ,
		"max order":   c.MaxOrder,
		"max d":       c.MaxD,
		"max D":       c.MaxSD,
		"start p":     c.StartP,
		"start q":     c.StartQ,
		"start P":     c.StartSP,
		"start Q":     c.StartSQ,
		"max models":  c.MaxModels,
		"parallelism": c.Parallelism,
	}
	for name, v := range bounds {
		if v < 0 {
			return nil, fmt.Errorf("%s of %d, %w", name, v, ErrInvalidConfig)
		}
	}
	if c.D < AutoDiff || c.SD < AutoDiff {
		return nil, fmt.Errorf("differencing orders d=%d D=%d, %w", c.D, c.SD, ErrInvalidConfig)
	}

	switch c.Criterion {
	case AIC, AICc, BIC:
	case "":
		c.Criterion = AICc
	default:
		return nil, fmt.Errorf("unknown criterion %q, %w", c.Criterion, ErrInvalidConfig)
	}

	if c.Parallelism == 0 {
		c.Parallelism = 1
	}
	if c.MaxModels == 0 {
		c.MaxModels = DefaultMaxModels
	}
	return c, nil
}
