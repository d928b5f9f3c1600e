package forecaster

import (
	"context"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aouyang1/go-autoforecast/arima"
	"github.com/aouyang1/go-autoforecast/autoarima"
	"github.com/aouyang1/go-autoforecast/datasets"
	"github.com/aouyang1/go-autoforecast/timedataset"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fitAirPassengers(t *testing.T) (*Forecaster, *timedataset.TimeDataset) {
	t.Helper()

	td, err := datasets.AirPassengers()
	require.Nil(t, err)

	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.FitDataset(context.Background(), td))
	return f, td
}

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt *Options
		err error
	}{
		"nil uses defaults": {},
		"lower case frequency": {
			opt: &Options{Frequency: "ms"},
		},
		"unknown frequency": {
			opt: &Options{Frequency: "fortnight"},
			err: timedataset.ErrUnknownFrequency,
		},
		"negative season length": {
			opt: &Options{SeasonLength: -1},
			err: ErrInvalidOptions,
		},
		"bad search config": {
			opt: &Options{AutoARIMA: &autoarima.Config{Criterion: "hqic"}},
			err: autoarima.ErrInvalidConfig,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, timedataset.MonthStart, opt.Frequency)
			assert.NotNil(t, opt.AutoARIMA)
		})
	}
}

func TestForecastAirPassengers(t *testing.T) {
	f, td := fitAirPassengers(t)
	assert.Equal(t, timedataset.MonthStart, f.Frequency())
	assert.Contains(t, f.ModelName(), "[12]")
	assert.Greater(t, f.ModelsEvaluated(), 1)

	res, err := f.Predict(12, 0)
	require.Nil(t, err)
	require.Equal(t, 12, res.Len())
	assert.False(t, res.HasInterval())

	assert.Equal(t, time.Date(1961, 1, 1, 0, 0, 0, 0, time.UTC), res.T[0])
	assert.Equal(t, time.Date(1961, 12, 1, 0, 0, 0, 0, time.UTC), res.T[11])
	for i := 1; i < res.Len(); i++ {
		assert.True(t, res.T[i].After(res.T[i-1]))
		assert.Equal(t, 1, res.T[i].Day())
	}
	assert.True(t, res.T[0].After(td.T[len(td.T)-1]))

	res, err = f.Predict(24, 95)
	require.Nil(t, err)
	require.True(t, res.HasInterval())
	assert.Equal(t, 95.0, res.Level)
	for i := range res.Forecast {
		assert.Less(t, res.Lower[i], res.Forecast[i])
		assert.Greater(t, res.Upper[i], res.Forecast[i])
	}

	_, err = f.Predict(0, 0)
	assert.ErrorIs(t, err, arima.ErrInvalidHorizon)
}

func TestForecasterNotFit(t *testing.T) {
	f, err := New(nil)
	require.Nil(t, err)

	_, err = f.Predict(3, 0)
	assert.ErrorIs(t, err, ErrNotFit)
	_, err = f.Scores()
	assert.ErrorIs(t, err, ErrNotFit)
	_, err = f.Model()
	assert.ErrorIs(t, err, ErrNotFit)
	assert.ErrorIs(t, f.PlotFit("unused.html", 3, 0), ErrNotFit)
	assert.ErrorIs(t, f.FitDataset(context.Background(), nil), ErrEmptyTimeDataset)
	assert.Nil(t, f.Residuals())
	assert.Equal(t, "", f.ModelName())
}

func TestFitErrors(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		t   []time.Time
		y   []float64
		opt *Options
		err error
	}{
		"empty": {
			err: timedataset.ErrNoTrainingData,
		},
		"wrong frequency": {
			t:   timedataset.GenerateFreqT(start, 30, timedataset.Daily),
			y:   []float64(timedataset.GenerateSineY(30, 1, 0.3)),
			err: timedataset.ErrIrregularSpacing,
		},
		"cannot infer frequency": {
			t:   []time.Time{start, start.Add(time.Minute), start.Add(3 * time.Minute)},
			y:   []float64{1, 2, 3},
			opt: &Options{},
			err: timedataset.ErrCannotInferFreq,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := New(td.opt)
			require.Nil(t, err)
			assert.ErrorIs(t, f.Fit(context.Background(), td.t, td.y), td.err)
		})
	}

	f, err := New(&Options{})
	require.Nil(t, err)
	err = f.Fit(context.Background(), []time.Time{start, start.Add(time.Minute), start.Add(3 * time.Minute)}, []float64{1, 2, 3})
	assert.ErrorContains(t, err, "most common step is 1m0s")
}

func TestFitInferredFrequency(t *testing.T) {
	n := 120
	tm := timedataset.GenerateFreqT(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), n, timedataset.Daily)
	y := timedataset.GenerateSeasonalY(n, 7, 2).
		Add(timedataset.GenerateTrendY(n, 10, 0.1)).
		Add(timedataset.GenerateNoise(n, 0.2, rand.New(rand.NewPCG(3, 4))))

	f, err := New(&Options{})
	require.Nil(t, err)
	require.Nil(t, f.Fit(context.Background(), tm, y))
	assert.Equal(t, timedataset.Daily, f.Frequency())

	res, err := f.Predict(7, 80)
	require.Nil(t, err)
	assert.Equal(t, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), res.T[0])
}

func TestScoresAndModel(t *testing.T) {
	f, td := fitAirPassengers(t)

	scores, err := f.Scores()
	require.Nil(t, err)
	assert.Greater(t, scores.MSE, 0.0)
	assert.Less(t, scores.MAPE, 0.1)

	resid := f.Residuals()
	require.Len(t, resid, td.Len())
	assert.True(t, math.IsNaN(resid[0]))

	m, err := f.Model()
	require.Nil(t, err)
	assert.Equal(t, f.ModelName(), m.Name)
	assert.Equal(t, 12, m.Order.M)

	b, err := json.Marshal(m)
	require.Nil(t, err)

	var decoded Model
	require.Nil(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, m.Order, decoded.Order)
	assert.Equal(t, m.ModelsEvaluated, decoded.ModelsEvaluated)
}

func TestPlotFit(t *testing.T) {
	f, _ := fitAirPassengers(t)

	path := filepath.Join(t.TempDir(), "forecast.html")
	require.Nil(t, f.PlotFit(path, 12, 80))

	b, err := os.ReadFile(path)
	require.Nil(t, err)
	assert.Contains(t, string(b), "1961-12-01")
}

func TestScores(t *testing.T) {
	testData := map[string]struct {
		predicted []float64
		actual    []float64
		mse       float64
		mape      float64
		err       error
	}{
		"exact": {
			predicted: []float64{1, 2, 3},
			actual:    []float64{1, 2, 3},
		},
		"skips nan": {
			predicted: []float64{math.NaN(), 2, 4},
			actual:    []float64{1, 4, 2},
			mse:       4,
			mape:      0.75,
		},
		"zero actual excluded from mape": {
			predicted: []float64{1, 3},
			actual:    []float64{0, 2},
			mse:       1,
			mape:      0.5,
		},
		"length mismatch": {
			predicted: []float64{1},
			actual:    []float64{1, 2},
			err:       ErrResLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			s, err := NewScores(td.predicted, td.actual)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.mse, s.MSE, 1e-12)
			assert.InDelta(t, td.mape, s.MAPE, 1e-12)
		})
	}

	mse, err := MSE([]float64{math.NaN()}, []float64{1})
	require.Nil(t, err)
	assert.True(t, math.IsNaN(mse))
}
