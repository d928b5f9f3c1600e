package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateFreqT generates n time points starting at start and stepping by the calendar frequency
func GenerateFreqT(start time.Time, n int, freq Frequency) []time.Time {
	if n <= 0 {
		return nil
	}
	t := make([]time.Time, 0, n)
	t = append(t, start)
	return append(t, freq.Range(start, n-1)...)
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

// SetAt overwrites the value at the index if it is within the series
func (s Series) SetAt(idx int, val float64) Series {
	if idx >= 0 && idx < len(s) {
		s[idx] = val
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateSineY returns amp*sin(omega*i) for each index i
func GenerateSineY(n int, amp, omega float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, amp*math.Sin(omega*float64(i)))
	}
	return Series(y)
}

// GenerateSeasonalY returns a wave with the provided period measured in number of points
func GenerateSeasonalY(n, period int, amp float64) Series {
	if period <= 0 {
		return GenerateConstY(n, 0)
	}
	return GenerateSineY(n, amp, 2.0*math.Pi/float64(period))
}

// GenerateTrendY returns a linear series starting at bias increasing by slope per point
func GenerateTrendY(n int, bias, slope float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, bias+slope*float64(i))
	}
	return Series(y)
}

// GenerateNoise returns gaussian noise with the provided standard deviation. A nil random source
// falls back to the global generator.
func GenerateNoise(n int, scale float64, rng *rand.Rand) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		var z float64
		if rng != nil {
			z = rng.NormFloat64()
		} else {
			z = rand.NormFloat64()
		}
		y = append(y, z*scale)
	}
	return Series(y)
}
