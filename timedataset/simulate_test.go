package timedataset

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestGenerateFreqT(t *testing.T) {
	start := time.Date(1949, 1, 1, 0, 0, 0, 0, time.UTC)
	res := GenerateFreqT(start, 144, MonthStart)
	require.Len(t, res, 144)
	assert.Equal(t, start, res[0])
	assert.Equal(t, time.Date(1960, 12, 1, 0, 0, 0, 0, time.UTC), res[143])

	assert.Nil(t, GenerateFreqT(start, 0, MonthStart))
}

func TestSeries(t *testing.T) {
	numPnts := 7
	s := Series(GenerateConstY(numPnts, 1))

	res := s.Add(GenerateConstY(numPnts, 2))
	require.Equal(t, Series([]float64{3, 3, 3, 3, 3, 3, 3}), res)

	s.SetAt(0, -1).SetAt(100, 5).SetAt(-1, 5).SetAt(3, 2)
	assert.Equal(t, Series([]float64{-1, 3, 3, 2, 3, 3, 3}), s)
}

func TestGenerateShapes(t *testing.T) {
	sine := GenerateSineY(4, 2.0, math.Pi/2)
	assert.InDeltaSlice(t, []float64{0, 2, 0, -2}, []float64(sine), 1e-9)

	seasonal := GenerateSeasonalY(12, 12, 1.0)
	assert.InDelta(t, 1.0, seasonal[3], 1e-9)
	assert.Equal(t, Series([]float64{0, 0}), GenerateSeasonalY(2, 0, 1.0))

	trend := GenerateTrendY(3, 1, 0.5)
	assert.Equal(t, Series([]float64{1, 1.5, 2}), trend)
}

func TestGenerateNoise(t *testing.T) {
	noise := GenerateNoise(5000, 0.3, rand.New(rand.NewPCG(42, 42)))
	require.Len(t, noise, 5000)

	mean, std := stat.MeanStdDev(noise, nil)
	assert.InDelta(t, 0.0, mean, 0.05)
	assert.InDelta(t, 0.3, std, 0.05)

	again := GenerateNoise(5000, 0.3, rand.New(rand.NewPCG(42, 42)))
	assert.Equal(t, noise, again)
}
