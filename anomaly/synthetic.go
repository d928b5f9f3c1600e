package anomaly

import (
	"math/rand/v2"
	"strconv"

	"github.com/aouyang1/go-autoforecast/timedataset"
)

// spikes injected into the synthetic series by index
var spikes = map[int]float64{
	100: 3,
	300: -3,
}

// Synthetic generates sin(0.05 t) with gaussian noise of scale 0.3 over t = 0..n-1 and sets points 100
// and 300 to 3 and -3 when they are in range
func Synthetic(n int, seed uint64) []Point {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	y := timedataset.GenerateSineY(n, 1, 0.05).
		Add(timedataset.GenerateNoise(n, 0.3, rng))
	for idx, v := range spikes {
		y.SetAt(idx, v)
	}

	points := make([]Point, n)
	for i, v := range y {
		points[i] = Point{Time: strconv.Itoa(i), Value: v}
	}
	return points
}

// Values extracts the value of every point
func Values(points []Point) []float64 {
	res := make([]float64, len(points))
	for i, p := range points {
		res[i] = p.Value
	}
	return res
}
