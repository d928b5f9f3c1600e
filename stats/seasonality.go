package stats

import (
	"fmt"
	"math"
)

// SeasonalStrengthThreshold is the strength at or above which a seasonal difference is taken
const SeasonalStrengthThreshold = 0.64

// Decomposition is an additive split of a series into trend, seasonal and remainder parts. Trend
// and remainder are NaN at the edges where the centered moving average is undefined.
type Decomposition struct {
	Trend     []float64
	Seasonal  []float64
	Remainder []float64
	Period    int
}

// Decompose runs a classical additive decomposition with a centered moving average trend
func Decompose(x []float64, period int) (*Decomposition, error) {
	if period < 2 {
		return nil, fmt.Errorf("got period %d, %w", period, ErrInvalidPeriod)
	}
	n := len(x)
	if n < 2*period {
		return nil, fmt.Errorf("decomposition needs two full periods of %d, got %d points, %w", period, n, ErrNotEnoughPoints)
	}

	trend := movingAverage(x, period)

	sums := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		if math.IsNaN(trend[i]) {
			continue
		}
		sums[i%period] += x[i] - trend[i]
		counts[i%period]++
	}

	var total float64
	for i := range sums {
		if counts[i] > 0 {
			sums[i] /= float64(counts[i])
		}
		total += sums[i]
	}
	offset := total / float64(period)

	seasonal := make([]float64, n)
	remainder := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = sums[i%period] - offset
		remainder[i] = x[i] - trend[i] - seasonal[i]
	}

	return &Decomposition{
		Trend:     trend,
		Seasonal:  seasonal,
		Remainder: remainder,
		Period:    period,
	}, nil
}

// movingAverage is a centered moving average. Even windows use the 2xm form so the average stays
// centered on an observation.
func movingAverage(x []float64, window int) []float64 {
	n := len(x)
	res := make([]float64, n)
	for i := range res {
		res[i] = math.NaN()
	}

	half := window / 2
	for i := half; i < n-half; i++ {
		var sum float64
		if window%2 == 0 {
			sum = 0.5*x[i-half] + 0.5*x[i+half]
			for j := i - half + 1; j < i+half; j++ {
				sum += x[j]
			}
		} else {
			for j := i - half; j <= i+half; j++ {
				sum += x[j]
			}
		}
		res[i] = sum / float64(window)
	}
	return res
}

// SeasonalStrength measures max(0, 1 - Var(R)/Var(S+R)) from an additive decomposition. Series
// shorter than two periods have no measurable seasonality.
func SeasonalStrength(x []float64, period int) float64 {
	dec, err := Decompose(x, period)
	if err != nil {
		return 0
	}

	detrended := make([]float64, len(x))
	for i := range x {
		detrended[i] = dec.Seasonal[i] + dec.Remainder[i]
	}

	varSR := finiteVariance(detrended)
	if varSR == 0 {
		return 0
	}
	return math.Max(0, 1-finiteVariance(dec.Remainder)/varSR)
}

// NSDiffs returns the number of seasonal differences, up to maxD, taken while the seasonal strength
// stays at or above SeasonalStrengthThreshold
func NSDiffs(x []float64, period, maxD int) int {
	if period < 2 || IsConstant(x) {
		return 0
	}

	var d int
	cur := x
	for d < maxD && len(cur) >= 2*period {
		if SeasonalStrength(cur, period) < SeasonalStrengthThreshold {
			break
		}
		cur = Diff(cur, period)
		d++
		if IsConstant(cur) {
			break
		}
	}
	return d
}
