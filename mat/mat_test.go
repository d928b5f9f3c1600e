package mat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewDenseFromArray(t *testing.T) {
	testData := map[string]struct {
		err error
		x   [][]float64
		m   int
		n   int
	}{
		"nil input": {
			mat.ErrZeroLength,
			nil,
			0, 0,
		},
		"single element": {
			nil,
			[][]float64{{1}},
			1, 1,
		},
		"multiple rows and cols": {
			nil,
			[][]float64{{1, 2, 3}, {4, 5, 6}},
			2, 3,
		},
		"inconsistent cols": {
			ErrColMismatch,
			[][]float64{{1, 2, 3}, {4, 5}},
			0, 0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				if td.err != nil && r != nil {
					err, ok := r.(error)
					require.True(t, ok, "panic is not an error")
					assert.ErrorIs(t, err, td.err)
				}
			}()
			mx, err := NewDenseFromArray(td.x)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)

			m, n := mx.Dims()
			assert.Equal(t, td.m, m, "m")
			assert.Equal(t, td.n, n, "n")

			for ri, row := range td.x {
				assert.Equal(t, row, mat.Row(nil, ri, mx), "array")
			}
		})
	}
}

func TestLagMatrix(t *testing.T) {
	testData := map[string]struct {
		x      []float64
		lags   []int
		design [][]float64
		target []float64
		err    error
	}{
		"consecutive lags": {
			x:      []float64{1, 2, 3, 4, 5},
			lags:   []int{1, 2},
			design: [][]float64{{2, 1}, {3, 2}, {4, 3}},
			target: []float64{3, 4, 5},
		},
		"seasonal lag": {
			x:      []float64{1, 2, 3, 4, 5, 6},
			lags:   []int{3},
			design: [][]float64{{1}, {2}, {3}},
			target: []float64{4, 5, 6},
		},
		"zero lag": {
			x:    []float64{1, 2, 3},
			lags: []int{0},
			err:  ErrInvalidLag,
		},
		"too short": {
			x:    []float64{1, 2, 3},
			lags: []int{1, 2},
			err:  ErrNotEnoughRows,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			design, target, err := LagMatrix(td.x, td.lags)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)

			m, n := design.Dims()
			require.Equal(t, len(td.design), m)
			require.Equal(t, len(td.lags), n)
			for i, row := range td.design {
				assert.Equal(t, row, mat.Row(nil, i, design))
			}
			assert.Equal(t, td.target, mat.Col(nil, 0, target))
		})
	}
}

func TestCompanion(t *testing.T) {
	assert.Nil(t, Companion(nil))

	c := Companion([]float64{0.5, -0.2, 0.1})
	expected := mat.NewDense(3, 3, []float64{
		0.5, -0.2, 0.1,
		1, 0, 0,
		0, 1, 0,
	})
	assert.True(t, mat.Equal(expected, c))
}
