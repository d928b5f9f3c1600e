package anomaly

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt *Options
		err error
	}{
		"nil uses defaults": {},
		"half contaminated": {
			opt: &Options{Contamination: 0.5},
		},
		"zero contamination": {
			opt: &Options{},
			err: ErrInvalidContamination,
		},
		"contamination above half": {
			opt: &Options{Contamination: 0.6},
			err: ErrInvalidContamination,
		},
		"negative trees": {
			opt: &Options{Contamination: 0.1, NumTrees: -1},
			err: ErrInvalidOptions,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.Nil(t, err)
		})
	}
}

func TestLabelSynthetic(t *testing.T) {
	points := Synthetic(500, DefaultSeed)
	require.Len(t, points, 500)
	assert.Equal(t, 3.0, points[100].Value)
	assert.Equal(t, -3.0, points[300].Value)
	assert.Equal(t, "100", points[100].Time)

	labeled, err := Label(points, nil)
	require.Nil(t, err)
	require.Len(t, labeled, len(points))

	for i, p := range labeled {
		assert.Equal(t, points[i].Time, p.Time)
		assert.Equal(t, points[i].Value, p.Value)
	}
	assert.True(t, labeled[100].IsAnomaly)
	assert.True(t, labeled[300].IsAnomaly)

	cnt := Count(labeled)
	assert.InDelta(t, 25, cnt, 3)
	assert.Len(t, Anomalies(labeled), cnt)

	// deterministic for a fixed seed
	again, err := Label(points, nil)
	require.Nil(t, err)
	assert.Equal(t, labeled, again)
}

func TestLabelSmallSeries(t *testing.T) {
	testData := map[string]struct {
		contamination float64
		expected      int
	}{
		"default contamination flags the outlier": {contamination: 0.05, expected: 1},
		"ten percent flags two":                   {contamination: 0.1, expected: 2},
	}

	points := make([]Point, 19)
	for i := range points {
		points[i] = Point{Time: strconv.Itoa(i), Value: float64(i%6) * 0.1}
	}
	points[7].Value = 100
	points[13].Value = -37

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			labeled, err := Label(points, &Options{Contamination: td.contamination, Seed: DefaultSeed})
			require.Nil(t, err)
			assert.Equal(t, td.expected, Count(labeled))
			assert.True(t, labeled[7].IsAnomaly)
		})
	}
}

func TestPercentile(t *testing.T) {
	testData := map[string]struct {
		sorted   []float64
		p        float64
		expected float64
	}{
		"single value":    {sorted: []float64{3}, p: 0.95, expected: 3},
		"minimum":         {sorted: []float64{1, 2, 3, 4, 5}, p: 0, expected: 1},
		"maximum":         {sorted: []float64{1, 2, 3, 4, 5}, p: 1, expected: 5},
		"median":          {sorted: []float64{1, 2, 3, 4, 5}, p: 0.5, expected: 3},
		"between ranks":   {sorted: []float64{1, 2, 3, 4}, p: 0.5, expected: 2.5},
		"near the top":    {sorted: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, p: 0.95, expected: 95},
		"repeated values": {sorted: []float64{2, 2, 2}, p: 0.9, expected: 2},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, td.expected, percentile(td.sorted, td.p), 1e-12)
		})
	}
}

func TestLabelContamination(t *testing.T) {
	points := Synthetic(1000, 7)
	for _, c := range []float64{0.01, 0.1, 0.25} {
		labeled, err := Label(points, &Options{Contamination: c, Seed: 1})
		require.Nil(t, err)
		assert.InDelta(t, c*float64(len(points)), Count(labeled), 0.01*float64(len(points))+1)
	}
}

func TestLabelErrors(t *testing.T) {
	_, err := Label(nil, nil)
	assert.ErrorIs(t, err, ErrNoPoints)

	_, err = Label([]Point{{Time: "0", Value: 1}, {Time: "1", Value: math.NaN()}}, nil)
	assert.ErrorIs(t, err, ErrNonFiniteValue)

	_, err = Label([]Point{{Time: "0", Value: 1}}, &Options{Contamination: 1})
	assert.ErrorIs(t, err, ErrInvalidContamination)
}

func TestLabelConstant(t *testing.T) {
	points := make([]Point, 50)
	for i := range points {
		points[i] = Point{Value: 2}
	}
	labeled, err := Label(points, nil)
	require.Nil(t, err)
	assert.Equal(t, 0, Count(labeled))
}

func TestIsolationForest(t *testing.T) {
	f := NewIsolationForest(0, 0, 1)
	assert.Equal(t, DefaultNumTrees, f.NumTrees)
	assert.Equal(t, 0.0, f.Score(1))

	x := []float64{1, 1.1, 0.9, 1.05, 0.95, 1.02, 0.98, 10}
	f.Train(x)
	assert.Equal(t, len(x), f.SampleSize)
	assert.Len(t, f.Trees, DefaultNumTrees)
	assert.Greater(t, f.Score(10), f.Score(1))

	assert.Equal(t, 0.0, cFactor(1))
	assert.Equal(t, 1.0, cFactor(2))
	assert.InDelta(t, 10.24, cFactor(256), 0.01)
}

func TestReadCSV(t *testing.T) {
	testData := map[string]struct {
		input   string
		points  []Point
		missing []string
		row     int
	}{
		"valid with extra column": {
			input:  "Time,Value,Note\n0,1.5,a\n1,-2,b\n",
			points: []Point{{Time: "0", Value: 1.5}, {Time: "1", Value: -2}},
		},
		"reordered columns": {
			input:  "Value,Time\n3,2024-01-01\n",
			points: []Point{{Time: "2024-01-01", Value: 3}},
		},
		"missing value column": {
			input:   "Time,Amount\n0,1\n",
			missing: []string{ValueColumn},
		},
		"missing both": {
			input:   "ds,y\n",
			missing: []string{TimeColumn, ValueColumn},
		},
		"lower case header": {
			input:   "time,value\n0,1\n",
			missing: []string{TimeColumn, ValueColumn},
		},
		"empty file": {
			input:   "",
			missing: []string{TimeColumn, ValueColumn},
		},
		"bad number": {
			input: "Time,Value\n0,1\n1,abc\n",
			row:   3,
		},
		"short record": {
			input: "Time,Note,Value\n0,x\n",
			row:   2,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			points, err := ReadCSV(strings.NewReader(td.input))
			if td.missing == nil && td.row == 0 {
				require.Nil(t, err)
				assert.Equal(t, td.points, points)
				return
			}

			var dfe *DataFormatError
			require.True(t, errors.As(err, &dfe))
			assert.Equal(t, td.missing, dfe.Missing)
			assert.Equal(t, td.row, dfe.Row)
			assert.NotEmpty(t, dfe.Error())
		})
	}
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload.csv")
	require.Nil(t, os.WriteFile(path, []byte("Time,Value\n0,1\n1,2\n"), 0o644))

	points, err := ReadCSVFile(path)
	require.Nil(t, err)
	assert.Equal(t, []float64{1, 2}, Values(points))

	_, err = ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func BenchmarkLabel(b *testing.B) {
	points := Synthetic(5000, DefaultSeed)
	for b.Loop() {
		if _, err := Label(points, nil); err != nil {
			b.Fatal(err)
		}
	}
}
