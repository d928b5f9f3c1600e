package timedataset

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrCannotInferFreq = errors.New("cannot infer frequency from time slice")

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}

	lastTime = t[len(t)-1]
	return lastTime
}

// EstimateFreq returns the most common duration between consecutive points, preferring the smaller
// duration on ties.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	frequencies := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		delta := t[i].Sub(t[i-1])
		frequencies[delta] += 1
	}

	var maxCnt int
	maxDelta := time.Duration(math.MaxInt64)

	for delta, cnt := range frequencies {
		if cnt > maxCnt || (cnt == maxCnt && delta < maxDelta) {
			maxCnt = cnt
			maxDelta = delta
		}
	}
	return maxDelta, nil
}

// InferFrequency returns the calendar frequency that exactly generates every step of the time slice.
// Calendar units are tried first since month and year lengths vary in duration.
func (t TimeSlice) InferFrequency() (Frequency, error) {
	if len(t) < 2 {
		return "", ErrCannotInferFreq
	}

	candidates := []Frequency{MonthStart, QuarterStart, YearStart, Weekly, Daily, Hourly}
	for _, freq := range candidates {
		matches := true
		for i := 1; i < len(t); i++ {
			if !freq.Add(t[i-1], 1).Equal(t[i]) {
				matches = false
				break
			}
		}
		if matches {
			return freq, nil
		}
	}

	// report the dominant spacing so irregular inputs can be diagnosed
	step, err := t.EstimateFreq()
	if err != nil {
		return "", err
	}
	return "", fmt.Errorf("most common step is %s, %w", step, ErrCannotInferFreq)
}
