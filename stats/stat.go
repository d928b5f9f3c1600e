// Package stats provides the unit root and seasonality tests used to pick differencing orders along
// with the differencing and autocorrelation helpers they rely on.
package stats

import (
	"errors"
	"math"

	"github.com/aouyang1/go-autoforecast/floatsunrolled"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNotEnoughPoints = errors.New("not enough points for the statistic")
	ErrInvalidPeriod   = errors.New("seasonal period must be at least 2")
)

// Diff returns x_t - x_{t-lag}. The result is lag points shorter than the input and empty when the
// lag is not smaller than the series.
func Diff(x []float64, lag int) []float64 {
	if lag <= 0 {
		res := make([]float64, len(x))
		copy(res, x)
		return res
	}
	if lag >= len(x) {
		return []float64{}
	}
	res := make([]float64, len(x)-lag)
	floatsunrolled.SubTo(res, x[lag:], x[:len(x)-lag])
	return res
}

// Difference applies d first differences and sd seasonal differences at period m
func Difference(x []float64, d, sd, m int) []float64 {
	res := Diff(x, 0)
	for i := 0; i < sd; i++ {
		res = Diff(res, m)
	}
	for i := 0; i < d; i++ {
		res = Diff(res, 1)
	}
	return res
}

// IsConstant reports whether every value equals the first one
func IsConstant(x []float64) bool {
	if len(x) == 0 {
		return true
	}
	return floats.Max(x) == floats.Min(x)
}

// ACF returns the sample autocorrelation for lags 0 through maxLag. Returns nil when the series has
// no variance.
func ACF(x []float64, maxLag int) []float64 {
	n := len(x)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	z := floatsunrolled.SubConstTo(nil, stat.Mean(x, nil), x)
	denom := floatsunrolled.Dot(z, z)
	if denom == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		acf[k] = floatsunrolled.Dot(z[k:], z[:n-k]) / denom
	}
	return acf
}

// finiteVariance returns the sample variance of the non NaN values
func finiteVariance(x []float64) float64 {
	valid := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) < 2 {
		return 0
	}
	return stat.Variance(valid, nil)
}
