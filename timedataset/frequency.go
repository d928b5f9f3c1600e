package timedataset

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownFrequency = errors.New("unknown frequency")

// Frequency is a pandas style offset alias describing the spacing between consecutive points of a
// series. Calendar frequencies step by calendar units rather than fixed durations so month starts stay
// on the first of the month.
type Frequency string

const (
	Hourly       Frequency = "H"
	Daily        Frequency = "D"
	Weekly       Frequency = "W"
	MonthStart   Frequency = "MS"
	QuarterStart Frequency = "QS"
	YearStart    Frequency = "YS"
)

// ParseFrequency converts an offset alias into a Frequency
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToUpper(strings.TrimSpace(s))); f {
	case Hourly, Daily, Weekly, MonthStart, QuarterStart, YearStart:
		return f, nil
	case "AS":
		return YearStart, nil
	default:
		return "", fmt.Errorf("%q, %w", s, ErrUnknownFrequency)
	}
}

// Add steps the time forward by n periods of the frequency
func (f Frequency) Add(t time.Time, n int) time.Time {
	switch f {
	case Hourly:
		return t.Add(time.Duration(n) * time.Hour)
	case Daily:
		return t.AddDate(0, 0, n)
	case Weekly:
		return t.AddDate(0, 0, 7*n)
	case MonthStart:
		return t.AddDate(0, n, 0)
	case QuarterStart:
		return t.AddDate(0, 3*n, 0)
	case YearStart:
		return t.AddDate(n, 0, 0)
	}
	return t
}

// Range returns the n time points immediately following the provided time
func (f Frequency) Range(after time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	t := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		t = append(t, f.Add(after, i))
	}
	return t
}

// SeasonLength is the number of periods in the dominant seasonal cycle of the frequency, e.g. 12 for
// monthly data with a yearly cycle. Returns 1 when there is no natural season.
func (f Frequency) SeasonLength() int {
	switch f {
	case Hourly:
		return 24
	case Daily:
		return 7
	case Weekly:
		return 52
	case MonthStart:
		return 12
	case QuarterStart:
		return 4
	}
	return 1
}

func (f Frequency) String() string {
	return string(f)
}
