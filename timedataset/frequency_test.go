package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected Frequency
		err      error
	}{
		"month start":        {input: "MS", expected: MonthStart},
		"lower case":         {input: "ms", expected: MonthStart},
		"year start alias":   {input: "AS", expected: YearStart},
		"padded daily":       {input: " D ", expected: Daily},
		"unsupported offset": {input: "ME", err: ErrUnknownFrequency},
		"empty":              {input: "", err: ErrUnknownFrequency},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := ParseFrequency(td.input)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestFrequencyRange(t *testing.T) {
	last := time.Date(1960, 12, 1, 0, 0, 0, 0, time.UTC)

	res := MonthStart.Range(last, 12)
	require.Len(t, res, 12)
	for i, ts := range res {
		assert.Equal(t, time.Date(1961, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC), ts)
	}

	assert.Nil(t, MonthStart.Range(last, 0))
	assert.Equal(t, []time.Time{time.Date(1961, 3, 1, 0, 0, 0, 0, time.UTC)}, QuarterStart.Range(last, 1))
	assert.Equal(t, []time.Time{time.Date(1961, 12, 1, 0, 0, 0, 0, time.UTC)}, YearStart.Range(last, 1))
	assert.Equal(t, []time.Time{time.Date(1960, 12, 8, 0, 0, 0, 0, time.UTC)}, Weekly.Range(last, 1))
	assert.Equal(t, []time.Time{time.Date(1960, 12, 1, 1, 0, 0, 0, time.UTC)}, Hourly.Range(last, 1))
}

func TestSeasonLength(t *testing.T) {
	assert.Equal(t, 12, MonthStart.SeasonLength())
	assert.Equal(t, 4, QuarterStart.SeasonLength())
	assert.Equal(t, 7, Daily.SeasonLength())
	assert.Equal(t, 1, YearStart.SeasonLength())
}
