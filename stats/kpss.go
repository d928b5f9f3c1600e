package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// KPSS critical values for level stationarity and their significance levels
var (
	kpssCritical = []float64{0.347, 0.463, 0.574, 0.739}
	kpssPValues  = []float64{0.10, 0.05, 0.025, 0.01}
)

// KPSSAlpha is the significance level at which the unit root decision is made
const KPSSAlpha = 0.05

type KPSSResult struct {
	Statistic float64
	PValue    float64 // clipped to [0.01, 0.10]
	Lags      int
}

// Stationary reports whether the null of level stationarity is kept at KPSSAlpha
func (k *KPSSResult) Stationary() bool {
	return k.PValue >= KPSSAlpha
}

// KPSS runs the Kwiatkowski-Phillips-Schmidt-Shin test for level stationarity. A non-positive lag
// count uses the short bandwidth trunc(4*(n/100)^0.25).
func KPSS(x []float64, nlags int) (*KPSSResult, error) {
	n := len(x)
	if n < 4 {
		return nil, fmt.Errorf("kpss needs at least 4 points, got %d, %w", n, ErrNotEnoughPoints)
	}
	if nlags <= 0 {
		nlags = int(4 * math.Pow(float64(n)/100.0, 0.25))
	}
	nlags = min(nlags, n-1)

	mean := stat.Mean(x, nil)
	resid := make([]float64, n)
	for i, v := range x {
		resid[i] = v - mean
	}

	var s2 float64
	for _, r := range resid {
		s2 += r * r
	}
	// Newey-West long run variance with Bartlett weights
	for l := 1; l <= nlags; l++ {
		var cov float64
		for i := l; i < n; i++ {
			cov += resid[i] * resid[i-l]
		}
		s2 += 2 * (1 - float64(l)/float64(nlags+1)) * cov
	}
	s2 /= float64(n)

	res := &KPSSResult{Lags: nlags}
	if s2 <= 0 {
		res.PValue = kpssPValues[0]
		return res, nil
	}

	var cum, eta float64
	for _, r := range resid {
		cum += r
		eta += cum * cum
	}
	res.Statistic = eta / (float64(n) * float64(n) * s2)
	res.PValue = kpssPValue(res.Statistic)
	return res, nil
}

func kpssPValue(statistic float64) float64 {
	if statistic <= kpssCritical[0] {
		return kpssPValues[0]
	}
	last := len(kpssCritical) - 1
	if statistic >= kpssCritical[last] {
		return kpssPValues[last]
	}
	for i := 1; i <= last; i++ {
		if statistic <= kpssCritical[i] {
			frac := (statistic - kpssCritical[i-1]) / (kpssCritical[i] - kpssCritical[i-1])
			return kpssPValues[i-1] + frac*(kpssPValues[i]-kpssPValues[i-1])
		}
	}
	return kpssPValues[last]
}

// NDiffs returns the number of first differences, up to maxD, needed for the KPSS test to keep the
// null of stationarity
func NDiffs(x []float64, maxD int) int {
	if IsConstant(x) {
		return 0
	}

	var d int
	cur := x
	for d < maxD {
		res, err := KPSS(cur, 0)
		if err != nil || res.Stationary() {
			break
		}
		cur = Diff(cur, 1)
		d++
		if IsConstant(cur) {
			break
		}
	}
	return d
}
