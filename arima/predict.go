package arima

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Forecast holds h step ahead point forecasts and, when a level was requested, the symmetric normal
// prediction interval at that level
type Forecast struct {
	Mean  []float64
	Lower []float64
	Upper []float64
	Level float64
}

// Predict returns the h step ahead point forecasts on the original scale
func (m *Model) Predict(h int) ([]float64, error) {
	f, err := m.PredictInterval(h, 0)
	if err != nil {
		return nil, err
	}
	return f.Mean, nil
}

// PredictInterval returns point forecasts with a prediction interval at level percent. A level of 0
// skips the interval.
func (m *Model) PredictInterval(h int, level float64) (*Forecast, error) {
	if !m.isFit() {
		return nil, ErrNotFitted
	}
	if h <= 0 {
		return nil, fmt.Errorf("got horizon %d, %w", h, ErrInvalidHorizon)
	}
	if level < 0 || level >= 100 || math.IsNaN(level) {
		return nil, fmt.Errorf("got level %f, %w", level, ErrInvalidLevel)
	}

	mean := m.integrate(m.forecastDifferenced(h))
	f := &Forecast{Mean: mean}
	if level == 0 {
		return f, nil
	}

	ar := polyMul(
		arPolynomial(m.coef.AR, m.coef.SAR, m.order.M),
		diffPolynomial(m.order.D, m.order.SD, m.order.M),
	)
	ma := maPolynomial(m.coef.MA, m.coef.SMA, m.order.M)
	psi := psiWeights(ar, ma, h)
	z := distuv.UnitNormal.Quantile(0.5 + level/200)

	f.Level = level
	f.Lower = make([]float64, h)
	f.Upper = make([]float64, h)
	var cumPsi2 float64
	for i := 0; i < h; i++ {
		cumPsi2 += psi[i] * psi[i]
		se := math.Sqrt(m.sigma2 * cumPsi2)
		f.Lower[i] = mean[i] - z*se
		f.Upper[i] = mean[i] + z*se
	}
	return f, nil
}

// forecastDifferenced extends the differenced series h steps with future errors set to zero
func (m *Model) forecastDifferenced(h int) []float64 {
	ar := arPolynomial(m.coef.AR, m.coef.SAR, m.order.M)
	ma := maPolynomial(m.coef.MA, m.coef.SMA, m.order.M)
	mu := m.coef.Constant

	n := len(m.w)
	w := make([]float64, n+h)
	copy(w, m.w)
	e := make([]float64, n+h)
	copy(e, m.resid)

	for t := n; t < n+h; t++ {
		v := mu
		for k := 1; k < len(ar) && k <= t; k++ {
			v -= ar[k] * (w[t-k] - mu)
		}
		for k := 1; k < len(ma) && k <= t; k++ {
			v += ma[k] * e[t-k]
		}
		w[t] = v
	}
	return w[n:]
}

// integrate undoes the differencing of forecasts made on the differenced scale using the tail of the
// original series
func (m *Model) integrate(wf []float64) []float64 {
	delta := diffPolynomial(m.order.D, m.order.SD, m.order.M)

	n := len(m.y)
	y := make([]float64, n+len(wf))
	copy(y, m.y)
	for i, v := range wf {
		t := n + i
		for k := 1; k < len(delta); k++ {
			v -= delta[k] * y[t-k]
		}
		y[t] = v
	}
	return y[n:]
}
