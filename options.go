package forecaster

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-autoforecast/autoarima"
	"github.com/aouyang1/go-autoforecast/timedataset"
)

var ErrInvalidOptions = errors.New("invalid forecaster options")

// Options configures the forecaster. The zero value of Frequency infers the frequency from the
// training timestamps and a zero SeasonLength uses the natural season of the frequency.
type Options struct {
	Frequency    timedataset.Frequency `json:"frequency"`
	SeasonLength int                   `json:"season_length"`

	AutoARIMA *autoarima.Config `json:"auto_arima"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Frequency: timedataset.MonthStart,
		AutoARIMA: autoarima.NewDefaultConfig(),
	}
}

// Validate returns the default options when unset and fills in a default search config
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.SeasonLength < 0 {
		return nil, fmt.Errorf("season length of %d, %w", o.SeasonLength, ErrInvalidOptions)
	}
	if o.Frequency != "" {
		freq, err := timedataset.ParseFrequency(string(o.Frequency))
		if err != nil {
			return nil, fmt.Errorf("%w, %w", ErrInvalidOptions, err)
		}
		o.Frequency = freq
	}

	cfg, err := o.AutoARIMA.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w, %w", ErrInvalidOptions, err)
	}
	o.AutoARIMA = cfg
	return o, nil
}
