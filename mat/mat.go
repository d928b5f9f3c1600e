// Package mat holds small helpers for building gonum matrices out of time series, such as lagged
// design matrices for autoregressive fits and companion matrices for root checks.
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch   = errors.New("column size mismatch")
	ErrInvalidLag    = errors.New("lags must be positive")
	ErrNotEnoughRows = errors.New("series is too short for the requested lags")
)

func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if n < 0 {
		n = 0
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// LagMatrix builds a design matrix where column j holds x shifted back by lags[j]. Rows start at the
// largest lag so every cell is observed. The aligned target column is returned alongside.
func LagMatrix(x []float64, lags []int) (*mat.Dense, *mat.Dense, error) {
	maxLag := 0
	for _, lag := range lags {
		if lag <= 0 {
			return nil, nil, fmt.Errorf("got lag %d, %w", lag, ErrInvalidLag)
		}
		maxLag = max(maxLag, lag)
	}

	m := len(x) - maxLag
	if m <= len(lags) {
		return nil, nil, fmt.Errorf(
			"%d points with max lag %d leaves %d rows for %d columns, %w",
			len(x), maxLag, m, len(lags), ErrNotEnoughRows,
		)
	}

	rows := make([][]float64, m)
	target := make([]float64, m)
	for i := 0; i < m; i++ {
		t := i + maxLag
		row := make([]float64, len(lags))
		for j, lag := range lags {
			row[j] = x[t-lag]
		}
		rows[i] = row
		target[i] = x[t]
	}

	design, err := NewDenseFromArray(rows)
	if err != nil {
		return nil, nil, err
	}
	return design, mat.NewDense(m, 1, target), nil
}

// Companion returns the companion matrix of the recurrence x_t = c_1 x_{t-1} + ... + c_p x_{t-p}.
// Its eigenvalues are the inverse roots of 1 - c_1 z - ... - c_p z^p. Returns nil for an empty
// coefficient slice.
func Companion(coef []float64) *mat.Dense {
	p := len(coef)
	if p == 0 {
		return nil
	}
	c := mat.NewDense(p, p, nil)
	c.SetRow(0, coef)
	for i := 1; i < p; i++ {
		c.Set(i, i-1, 1)
	}
	return c
}
