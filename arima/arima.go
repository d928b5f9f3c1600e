// Package arima fits seasonal ARIMA(p,d,q)(P,D,Q)[m] models by conditional sum of squares and
// produces point forecasts with normal prediction intervals.
//
// The series is differenced by (1-B)^d (1-B^m)^D and the remaining stationary series w is modelled as
//
//	phi(B) Phi(B^m) (w_t - c) = theta(B) Theta(B^m) e_t
//
// where c is an optional constant. With one difference the constant acts as a drift on the
// original scale and with none it is the series mean.
package arima

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-autoforecast/models"
	"github.com/aouyang1/go-autoforecast/stats"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultMaxFuncEvaluations = 5000
	DefaultTolerance          = 1e-8

	// penalty is returned by the objective for parameters outside the stationary and invertible
	// regions
	penalty = 1e10
)

type Options struct {
	// IncludeConstant adds a mean (no differencing) or drift (one difference) term
	IncludeConstant bool

	// MaxFuncEvaluations caps the number of objective evaluations made by the optimizer
	MaxFuncEvaluations int

	// Tolerance is the absolute objective change below which the optimizer is considered converged
	Tolerance float64
}

func NewDefaultOptions() *Options {
	return &Options{
		MaxFuncEvaluations: DefaultMaxFuncEvaluations,
		Tolerance:          DefaultTolerance,
	}
}

// Validate returns the default options when unset
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.MaxFuncEvaluations < 0 {
		return nil, fmt.Errorf("max function evaluations of %d, %w", o.MaxFuncEvaluations, ErrInvalidOptions)
	}
	if o.Tolerance < 0 {
		return nil, fmt.Errorf("tolerance of %f, %w", o.Tolerance, ErrInvalidOptions)
	}
	return o, nil
}

// Coefficients holds the estimated parameters of a fit model
type Coefficients struct {
	AR       []float64 `json:"ar"`
	MA       []float64 `json:"ma"`
	SAR      []float64 `json:"sar"`
	SMA      []float64 `json:"sma"`
	Constant float64   `json:"constant"`
}

// Model is a seasonal ARIMA model. A Model is not safe for concurrent fitting but may be shared for
// prediction once fit.
type Model struct {
	order Order
	opt   *Options

	coef   Coefficients
	sigma2 float64
	loglik float64
	aic    float64
	aicc   float64
	bic    float64

	y     []float64 // original series
	w     []float64 // differenced series
	resid []float64 // residuals aligned with w, zero over the conditioning points
	nCond int
}

func New(order Order, opt *Options) (*Model, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Model{
		order: order,
		opt:   opt,
	}, nil
}

func (m *Model) numParams() int {
	n := m.order.NumCoef()
	if m.opt.IncludeConstant {
		n++
	}
	return n
}

func (m *Model) unpack(x []float64) Coefficients {
	o := m.order
	c := Coefficients{
		AR:  make([]float64, o.P),
		MA:  make([]float64, o.Q),
		SAR: make([]float64, o.SP),
		SMA: make([]float64, o.SQ),
	}
	i := copy(c.AR, x)
	i += copy(c.MA, x[i:])
	i += copy(c.SAR, x[i:])
	i += copy(c.SMA, x[i:])
	if m.opt.IncludeConstant {
		c.Constant = x[i]
	}
	return c
}

func (m *Model) pack(c Coefficients) []float64 {
	x := make([]float64, 0, m.numParams())
	x = append(x, c.AR...)
	x = append(x, c.MA...)
	x = append(x, c.SAR...)
	x = append(x, c.SMA...)
	if m.opt.IncludeConstant {
		x = append(x, c.Constant)
	}
	return x
}

// css fills resid with the conditional residuals of w and returns their sum of squares
func (m *Model) css(c Coefficients, resid []float64) float64 {
	ar := arPolynomial(c.AR, c.SAR, m.order.M)
	ma := maPolynomial(c.MA, c.SMA, m.order.M)
	mu := c.Constant
	nCond := len(ar) - 1

	var sse float64
	for t := range m.w {
		if t < nCond {
			resid[t] = 0
			continue
		}
		var e float64
		for k, a := range ar {
			if a != 0 {
				e += a * (m.w[t-k] - mu)
			}
		}
		for k := 1; k < len(ma) && k <= t; k++ {
			if ma[k] != 0 {
				e -= ma[k] * resid[t-k]
			}
		}
		resid[t] = e
		sse += e * e
	}
	return sse
}

func (m *Model) objective(x []float64) float64 {
	c := m.unpack(x)
	if !stationary(c.AR, c.SAR, 1) || !invertible(c.MA, c.SMA, 1) {
		return penalty
	}

	resid := make([]float64, len(m.w))
	sse := m.css(c, resid)
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return penalty
	}
	v := sse / float64(len(m.w)-m.nCond)
	return 0.5 * math.Log(math.Max(v, math.SmallestNonzeroFloat64))
}

// arStart seeds autoregressive coefficients with a least squares regression on the given lags. Falls
// back to zeros when the regression fails or lands outside the stationary region.
func arStart(w []float64, lags []int) []float64 {
	start := make([]float64, len(lags))
	if len(lags) == 0 {
		return start
	}

	reg, err := models.FitLags(w, lags)
	if err != nil {
		return start
	}
	coef := reg.Coef()
	if maxInverseRoot(coef) >= rootMargin {
		return start
	}
	return coef
}

func (m *Model) startValues() []float64 {
	o := m.order
	arLags := make([]int, o.P)
	for i := range arLags {
		arLags[i] = i + 1
	}
	sarLags := make([]int, o.SP)
	for i := range sarLags {
		sarLags[i] = (i + 1) * o.M
	}

	c := Coefficients{
		AR:  arStart(m.w, arLags),
		MA:  make([]float64, o.Q),
		SAR: arStart(m.w, sarLags),
		SMA: make([]float64, o.SQ),
	}
	if m.opt.IncludeConstant {
		c.Constant = stat.Mean(m.w, nil)
	}
	return m.pack(c)
}

// Fit estimates the model coefficients from the series y by minimizing the conditional sum of
// squares with Nelder-Mead
func (m *Model) Fit(y []float64) error {
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value at index %d, %w", i, ErrNonFiniteValue)
		}
	}

	o := m.order
	m.y = make([]float64, len(y))
	copy(m.y, y)
	m.w = stats.Difference(m.y, o.D, o.SD, o.M)
	m.nCond = o.P + o.SP*o.M

	nUsed := len(m.w) - m.nCond
	if nUsed <= m.numParams()+1 {
		return fmt.Errorf(
			"%s with %d points leaves %d usable observations for %d parameters, %w",
			o, len(y), max(nUsed, 0), m.numParams(), ErrInsufficientData,
		)
	}

	x := m.startValues()
	if len(x) > 0 {
		problem := optimize.Problem{Func: m.objective}
		settings := &optimize.Settings{
			FuncEvaluations: m.opt.MaxFuncEvaluations,
			Converger: &optimize.FunctionConverge{
				Absolute:   m.opt.Tolerance,
				Iterations: 100,
			},
		}
		result, err := optimize.Minimize(problem, x, settings, &optimize.NelderMead{})
		if result == nil {
			return fmt.Errorf("optimizer returned no result for %s, %v, %w", o, err, ErrOptimizationFailed)
		}
		if result.F >= penalty || math.IsNaN(result.F) {
			return fmt.Errorf("%s converged to an inadmissible point, %w", o, ErrOptimizationFailed)
		}
		x = result.X
	}

	m.coef = m.unpack(x)
	m.resid = make([]float64, len(m.w))
	sse := m.css(m.coef, m.resid)
	m.sigma2 = sse / float64(nUsed)
	m.informationCriteria()
	return nil
}

// informationCriteria scales the conditional likelihood to every differenced observation so models
// with different conditioning lengths remain comparable
func (m *Model) informationCriteria() {
	n := float64(len(m.w))
	k := float64(m.numParams() + 1)

	m.loglik = -0.5 * n * (math.Log(2*math.Pi*m.sigma2) + 1)
	m.aic = -2*m.loglik + 2*k
	m.bic = -2*m.loglik + k*math.Log(n)
	if n-k-1 > 0 {
		m.aicc = m.aic + 2*k*(k+1)/(n-k-1)
	} else {
		m.aicc = math.Inf(1)
	}
}

func (m *Model) isFit() bool {
	return m.resid != nil
}

// Admissible returns an error when an estimated polynomial has an inverse root within 1% of the
// unit circle. Such fits produce unstable forecasts and are skipped by order searches.
func (m *Model) Admissible() error {
	if !m.isFit() {
		return ErrNotFitted
	}
	if !stationary(m.coef.AR, m.coef.SAR, rootMargin) {
		return fmt.Errorf("%s, %w", m, ErrNonStationary)
	}
	if !invertible(m.coef.MA, m.coef.SMA, rootMargin) {
		return fmt.Errorf("%s, %w", m, ErrNonInvertible)
	}
	return nil
}

// Residuals returns the one step ahead errors aligned with the fit series. Points consumed by
// differencing or conditioning are NaN.
func (m *Model) Residuals() []float64 {
	if !m.isFit() {
		return nil
	}
	res := make([]float64, len(m.y))
	floats.AddConst(math.NaN(), res)
	offset := m.order.Lost()
	for t := m.nCond; t < len(m.w); t++ {
		res[t+offset] = m.resid[t]
	}
	return res
}

// FittedValues returns the one step ahead in-sample predictions on the original scale
func (m *Model) FittedValues() []float64 {
	res := m.Residuals()
	for i, r := range res {
		res[i] = m.y[i] - r
	}
	return res
}

func (m *Model) Order() Order {
	return m.order
}

func (m *Model) Coefficients() Coefficients {
	c := Coefficients{
		AR:       append([]float64{}, m.coef.AR...),
		MA:       append([]float64{}, m.coef.MA...),
		SAR:      append([]float64{}, m.coef.SAR...),
		SMA:      append([]float64{}, m.coef.SMA...),
		Constant: m.coef.Constant,
	}
	return c
}

func (m *Model) IncludeConstant() bool {
	return m.opt.IncludeConstant
}

func (m *Model) Sigma2() float64 { return m.sigma2 }
func (m *Model) LogLik() float64 { return m.loglik }
func (m *Model) AIC() float64    { return m.aic }
func (m *Model) AICc() float64   { return m.aicc }
func (m *Model) BIC() float64    { return m.bic }

// NObs is the number of observations after differencing
func (m *Model) NObs() int {
	return len(m.w)
}

func (m *Model) String() string {
	s := m.order.String()
	if m.opt.IncludeConstant {
		switch m.order.Differences() {
		case 0:
			s += " with non-zero mean"
		case 1:
			s += " with drift"
		default:
			s += " with constant"
		}
	}
	return s
}
