// Package anomaly labels outlying values of a series with an isolation forest
package anomaly

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrNoPoints             = errors.New("no points to label")
	ErrNonFiniteValue       = errors.New("value is not finite")
	ErrInvalidContamination = errors.New("contamination must be in (0, 0.5]")
	ErrInvalidOptions       = errors.New("invalid anomaly options")
)

const (
	DefaultContamination = 0.05
	DefaultNumTrees      = 100
	DefaultSampleSize    = 256
	DefaultSeed          = 42
)

// Point is one observation. Time is kept as the raw label so uploaded series may be indexed by
// integers, dates or timestamps.
type Point struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

type LabeledPoint struct {
	Time      string  `json:"time"`
	Value     float64 `json:"value"`
	Score     float64 `json:"score"`
	IsAnomaly bool    `json:"is_anomaly"`
}

type Options struct {
	// Contamination is the expected fraction of anomalies
	Contamination float64
	NumTrees      int
	SampleSize    int
	Seed          uint64
}

func NewDefaultOptions() *Options {
	return &Options{
		Contamination: DefaultContamination,
		NumTrees:      DefaultNumTrees,
		SampleSize:    DefaultSampleSize,
		Seed:          DefaultSeed,
	}
}

// Validate returns the default options when unset
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.Contamination <= 0 || o.Contamination > 0.5 || math.IsNaN(o.Contamination) {
		return nil, fmt.Errorf("got %f, %w", o.Contamination, ErrInvalidContamination)
	}
	if o.NumTrees < 0 || o.SampleSize < 0 {
		return nil, fmt.Errorf("num trees %d, sample size %d, %w", o.NumTrees, o.SampleSize, ErrInvalidOptions)
	}
	return o, nil
}

// Label scores every point and flags those whose score is above the (1 - contamination) percentile
// of all scores. About ceil(contamination * n) distinct scores clear that percentile. The output has
// one entry per input point in input order.
func Label(points []Point, opt *Options) ([]LabeledPoint, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	x := make([]float64, len(points))
	for i, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return nil, fmt.Errorf("point %d at %s, %w", i, p.Time, ErrNonFiniteValue)
		}
		x[i] = p.Value
	}

	forest := NewIsolationForest(opt.NumTrees, opt.SampleSize, opt.Seed)
	forest.Train(x)

	scores := make([]float64, len(x))
	for i, v := range x {
		scores[i] = forest.Score(v)
	}
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)
	threshold := percentile(sorted, 1-opt.Contamination)

	labeled := make([]LabeledPoint, len(points))
	for i, p := range points {
		labeled[i] = LabeledPoint{
			Time:      p.Time,
			Value:     p.Value,
			Score:     scores[i],
			IsAnomaly: scores[i] > threshold,
		}
	}
	return labeled, nil
}

// percentile interpolates linearly between the closest ranks at position (n-1)*p of the ascending
// values
func percentile(sorted []float64, p float64) float64 {
	pos := float64(len(sorted)-1) * p
	lo := int(math.Floor(pos))
	hi := min(lo+1, len(sorted)-1)
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// Anomalies filters to the flagged points
func Anomalies(labeled []LabeledPoint) []LabeledPoint {
	res := make([]LabeledPoint, 0, len(labeled))
	for _, p := range labeled {
		if p.IsAnomaly {
			res = append(res, p)
		}
	}
	return res
}

// Count returns the number of flagged points
func Count(labeled []LabeledPoint) int {
	var n int
	for _, p := range labeled {
		if p.IsAnomaly {
			n++
		}
	}
	return n
}
