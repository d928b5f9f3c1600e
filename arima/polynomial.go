package arima

import (
	"math"
	"math/cmplx"

	mat_ "github.com/aouyang1/go-autoforecast/mat"

	"gonum.org/v1/gonum/mat"
)

// rootMargin rejects inverse roots within 1% of the unit circle
const rootMargin = 1.0 / 1.01

// Lag polynomials are stored by ascending power of B with a leading 1, e.g. 1 - 0.5B is {1, -0.5}.

func polyMul(a, b []float64) []float64 {
	res := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			res[i+j] += av * bv
		}
	}
	return res
}

// lagPoly builds 1 + sign*(c_1 B^s + c_2 B^2s + ...)
func lagPoly(coef []float64, step int, sign float64) []float64 {
	res := make([]float64, len(coef)*step+1)
	res[0] = 1
	for i, c := range coef {
		res[(i+1)*step] = sign * c
	}
	return res
}

// arPolynomial expands (1 - phi(B))(1 - Phi(B^m))
func arPolynomial(ar, sar []float64, m int) []float64 {
	return polyMul(lagPoly(ar, 1, -1), lagPoly(sar, max(m, 1), -1))
}

// maPolynomial expands (1 + theta(B))(1 + Theta(B^m))
func maPolynomial(ma, sma []float64, m int) []float64 {
	return polyMul(lagPoly(ma, 1, 1), lagPoly(sma, max(m, 1), 1))
}

// diffPolynomial expands (1 - B)^d (1 - B^m)^D
func diffPolynomial(d, sd, m int) []float64 {
	res := []float64{1}
	for i := 0; i < d; i++ {
		res = polyMul(res, []float64{1, -1})
	}
	for i := 0; i < sd; i++ {
		res = polyMul(res, lagPoly([]float64{1}, m, -1))
	}
	return res
}

// psiWeights returns the first n coefficients of theta(B)/phi(B), the moving average representation
// used for forecast variances
func psiWeights(ar, ma []float64, n int) []float64 {
	psi := make([]float64, n)
	if n == 0 {
		return psi
	}
	psi[0] = 1
	for j := 1; j < n; j++ {
		var v float64
		if j < len(ma) {
			v = ma[j]
		}
		for k := 1; k < len(ar) && k <= j; k++ {
			v -= ar[k] * psi[j-k]
		}
		psi[j] = v
	}
	return psi
}

// maxInverseRoot returns the largest modulus among the inverse roots of 1 - c_1 z - ... - c_p z^p
func maxInverseRoot(coef []float64) float64 {
	c := mat_.Companion(coef)
	if c == nil {
		return 0
	}

	var eig mat.Eigen
	if ok := eig.Factorize(c, mat.EigenNone); !ok {
		return math.Inf(1)
	}

	var maxMod float64
	for _, v := range eig.Values(nil) {
		maxMod = math.Max(maxMod, cmplx.Abs(v))
	}
	return maxMod
}

func negate(coef []float64) []float64 {
	res := make([]float64, len(coef))
	for i, c := range coef {
		res[i] = -c
	}
	return res
}

// stationary reports whether both autoregressive factors have all inverse roots strictly inside
// the given radius
func stationary(ar, sar []float64, radius float64) bool {
	return maxInverseRoot(ar) < radius && maxInverseRoot(sar) < radius
}

// invertible checks the moving average factors the same way
func invertible(ma, sma []float64, radius float64) bool {
	return maxInverseRoot(negate(ma)) < radius && maxInverseRoot(negate(sma)) < radius
}
