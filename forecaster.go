// Package forecaster fits an automatically selected seasonal ARIMA model to a regularly spaced time
// series and forecasts future values with optional prediction intervals.
package forecaster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-autoforecast/arima"
	"github.com/aouyang1/go-autoforecast/autoarima"
	"github.com/aouyang1/go-autoforecast/plot"
	"github.com/aouyang1/go-autoforecast/timedataset"
)

var (
	ErrEmptyTimeDataset = errors.New("no timedataset or uninitialized")
	ErrNotFit           = errors.New("forecaster has not been fit")
)

// Forecaster fits a forecast model and can be used to generate forecasts
type Forecaster struct {
	opt  *Options
	freq timedataset.Frequency

	search *autoarima.Result
	model  *arima.Model

	fitTrainingData *timedataset.TimeDataset
	fitResults      *Results
}

// New creates a new instance of a Forecaster using the provided options. If no options are provided
// a default is used.
func New(opt *Options) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Forecaster{opt: opt}, nil
}

// Fit searches for the best model order on the training data and fits it. The timestamps must be
// evenly spaced at the configured frequency, or at a frequency that can be inferred when none is set.
func (f *Forecaster) Fit(ctx context.Context, t []time.Time, y []float64) error {
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return fmt.Errorf("unable to create training dataset, %w", err)
	}

	freq := f.opt.Frequency
	if freq == "" {
		freq, err = timedataset.TimeSlice(td.T).InferFrequency()
		if err != nil {
			return fmt.Errorf("unable to infer frequency of training data, %w", err)
		}
	}
	if err := td.ValidateFrequency(freq); err != nil {
		return fmt.Errorf("training data does not match frequency %s, %w", freq, err)
	}

	cfg := *f.opt.AutoARIMA
	cfg.SeasonLength = f.opt.SeasonLength
	if cfg.SeasonLength == 0 {
		cfg.SeasonLength = freq.SeasonLength()
	}

	search, err := autoarima.Fit(ctx, td.Y, &cfg)
	if err != nil {
		return fmt.Errorf("unable to select model, %w", err)
	}

	f.freq = freq
	f.search = search
	f.model = search.Model
	f.fitTrainingData = td
	f.fitResults = &Results{
		T:        td.T,
		Forecast: search.Model.FittedValues(),
	}
	return nil
}

// FitDataset fits against a time dataset
func (f *Forecaster) FitDataset(ctx context.Context, td *timedataset.TimeDataset) error {
	if td == nil {
		return ErrEmptyTimeDataset
	}
	return f.Fit(ctx, td.T, td.Y)
}

// Predict forecasts h periods past the end of the training data. A level in (0, 100) adds the
// prediction interval at that percent and 0 skips it.
func (f *Forecaster) Predict(h int, level float64) (*Results, error) {
	if f.model == nil {
		return nil, ErrNotFit
	}
	fc, err := f.model.PredictInterval(h, level)
	if err != nil {
		return nil, fmt.Errorf("unable to predict %d periods, %w", h, err)
	}

	last := timedataset.TimeSlice(f.fitTrainingData.T).EndTime()
	return &Results{
		T:        f.freq.Range(last, h),
		Forecast: fc.Mean,
		Upper:    fc.Upper,
		Lower:    fc.Lower,
		Level:    fc.Level,
	}, nil
}

// Residuals returns the one step ahead errors against the training data. Points consumed by
// differencing are NaN.
func (f *Forecaster) Residuals() []float64 {
	if f.model == nil {
		return nil
	}
	return f.model.Residuals()
}

// Scores computes the in-sample fit scores of the one step ahead predictions
func (f *Forecaster) Scores() (*Scores, error) {
	if f.model == nil {
		return nil, ErrNotFit
	}
	return NewScores(f.fitResults.Forecast, f.fitTrainingData.Y)
}

// Frequency returns the frequency the forecaster was fit at
func (f *Forecaster) Frequency() timedataset.Frequency {
	return f.freq
}

// ModelName returns a description of the selected model such as ARIMA(2,1,1)(0,1,0)[12]
func (f *Forecaster) ModelName() string {
	if f.model == nil {
		return ""
	}
	return f.model.String()
}

// ModelsEvaluated returns the number of candidate models fit during the order search
func (f *Forecaster) ModelsEvaluated() int {
	if f.search == nil {
		return 0
	}
	return f.search.ModelsEvaluated
}

// Model generates a serializable summary of the options, the selected model and its fit statistics
func (f *Forecaster) Model() (Model, error) {
	if f.model == nil {
		return Model{}, ErrNotFit
	}
	scores, err := f.Scores()
	if err != nil {
		return Model{}, fmt.Errorf("unable to score fit, %w", err)
	}
	return Model{
		Options:         f.opt,
		Name:            f.model.String(),
		Order:           f.model.Order(),
		IncludeConstant: f.model.IncludeConstant(),
		Coefficients:    f.model.Coefficients(),
		Sigma2:          f.model.Sigma2(),
		LogLik:          f.model.LogLik(),
		AIC:             f.model.AIC(),
		AICc:            f.model.AICc(),
		BIC:             f.model.BIC(),
		ModelsEvaluated: f.search.ModelsEvaluated,
		Scores:          scores,
	}, nil
}

// TrainingData returns the training data used to fit the current forecaster model
func (f *Forecaster) TrainingData() *timedataset.TimeDataset {
	return f.fitTrainingData
}

// FitResults returns the in-sample one step ahead predictions
func (f *Forecaster) FitResults() *Results {
	return f.fitResults
}

// PlotFit uses the Apache Echarts library to generate an html file showing the training data, the
// in-sample fit, a forecast of h periods with bounds at level and the fit residual
func (f *Forecaster) PlotFit(path string, h int, level float64) error {
	if f.model == nil {
		return ErrNotFit
	}
	res, err := f.Predict(h, level)
	if err != nil {
		return err
	}

	td := f.fitTrainingData
	fitLine, err := plot.LineForecast(
		fmt.Sprintf("Forecast %s", f.model), td.T, td.Y, res.T, res.Forecast, res.Lower, res.Upper,
	)
	if err != nil {
		return fmt.Errorf("unable to plot forecast, %w", err)
	}
	inSample, err := plot.LineTSeries(
		"In-Sample Fit", []string{"Actual", "Fitted"}, td.T, [][]float64{td.Y, f.fitResults.Forecast},
	)
	if err != nil {
		return fmt.Errorf("unable to plot in-sample fit, %w", err)
	}
	residual, err := plot.LineTSeries("Forecast Residual", []string{"Residual"}, td.T, [][]float64{f.Residuals()})
	if err != nil {
		return fmt.Errorf("unable to plot residual, %w", err)
	}
	return plot.RenderFile(path, "Forecast Fit", fitLine, inSample, residual)
}
