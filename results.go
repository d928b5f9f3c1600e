package forecaster

import "time"

// Results holds forecasts per time point. Upper and Lower are only set when a prediction interval
// level was requested.
type Results struct {
	T        []time.Time `json:"time"`
	Forecast []float64   `json:"forecast"`
	Upper    []float64   `json:"upper,omitempty"`
	Lower    []float64   `json:"lower,omitempty"`
	Level    float64     `json:"level,omitempty"`
}

// Len returns the number of forecast points
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.T)
}

// HasInterval reports whether prediction bounds were computed
func (r *Results) HasInterval() bool {
	return r != nil && r.Level > 0 && len(r.Upper) == len(r.T) && len(r.Lower) == len(r.T)
}
