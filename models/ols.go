// Package models holds the linear regression used to seed the autoregressive parameters of the
// ARIMA fits
package models

import (
	"fmt"
	"math"

	mat_ "github.com/aouyang1/go-autoforecast/mat"

	"gonum.org/v1/gonum/mat"
)

// singularTol is the smallest diagonal magnitude of R, relative to the largest, accepted as full rank
const singularTol = 1e-12

type OLSOptions struct {
	FitIntercept bool
}

// Validate returns the default options when unset
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}
	return o, nil
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression computes ordinary least squares using QR factorization
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
	sigma2    float64
}

func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

// FitLags regresses w on its own values at the given lags, the least squares estimate of an
// autoregression on those lags
func FitLags(w []float64, lags []int) (*OLSRegression, error) {
	x, y, err := mat_.LagMatrix(w, lags)
	if err != nil {
		return nil, fmt.Errorf("unable to build lag design, %w", err)
	}
	reg, err := NewOLSRegression(nil)
	if err != nil {
		return nil, err
	}
	if err := reg.Fit(x, y); err != nil {
		return nil, err
	}
	return reg, nil
}

// design prepends a column of ones when fitting an intercept
func (o *OLSRegression) design(x mat.Matrix) mat.Matrix {
	if !o.opt.FitIntercept {
		return x
	}
	m, n := x.Dims()
	d := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		d.Set(i, 0, 1)
	}
	d.Slice(0, m, 1, n+1).(*mat.Dense).Copy(x)
	return d
}

// checkRank rejects a factorization whose R has a pivot too small to back substitute through
func checkRank(qr *mat.QR, n int) error {
	var r mat.Dense
	qr.RTo(&r)

	var rmax float64
	for i := 0; i < n; i++ {
		rmax = math.Max(rmax, math.Abs(r.At(i, i)))
	}
	for i := 0; i < n; i++ {
		if math.Abs(r.At(i, i)) <= singularTol*math.Max(rmax, 1) {
			return fmt.Errorf("zero pivot at column %d, %w", i, ErrSingularMatrix)
		}
	}
	return nil
}

func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}

	m, _ := x.Dims()
	if ym, _ := y.Dims(); ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}

	d := o.design(x)
	_, n := d.Dims()
	if m < n {
		return fmt.Errorf("%d rows for %d coefficients, %w", m, n, ErrSingularMatrix)
	}

	var qr mat.QR
	qr.Factorize(d)
	if err := checkRank(&qr, n); err != nil {
		return err
	}

	var c mat.Dense
	if err := qr.SolveTo(&c, false, y); err != nil {
		return fmt.Errorf("unable to solve least squares, %v, %w", err, ErrSingularMatrix)
	}
	coef := mat.Col(nil, 0, &c)

	var resid mat.Dense
	resid.Mul(d, &c)
	resid.Sub(y, &resid)
	if dof := m - n; dof > 0 {
		sse := mat.Dot(resid.ColView(0), resid.ColView(0))
		o.sigma2 = sse / float64(dof)
	} else {
		o.sigma2 = 0
	}

	if o.opt.FitIntercept {
		o.intercept = coef[0]
		o.coef = coef[1:]
	} else {
		o.intercept = 0
		o.coef = coef
	}
	return nil
}

func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}

// Sigma2 is the residual variance of the last fit with degrees of freedom correction
func (o *OLSRegression) Sigma2() float64 {
	return o.sigma2
}
