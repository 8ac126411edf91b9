package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinEdges(t *testing.T) {
	edges, err := BinEdges([]float64{0, 10}, 5)
	require.NoError(t, err)
	require.Len(t, edges, 6)
	assert.InDelta(t, -0.01, edges[0], 1e-12)
	assert.InDelta(t, 10, edges[5], 1e-12)

	edges, err = BinEdges([]float64{0, 0}, 2)
	require.NoError(t, err)
	assert.InDelta(t, -0.001, edges[0], 1e-12)
	assert.InDelta(t, 0.001, edges[2], 1e-12)
}

func TestHistogramIgnoresOutOfRange(t *testing.T) {
	edges := []float64{0, 1, 2}
	probs, ok := Histogram([]float64{0.5, 1, 1.5, 5, -3}, edges)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{2.0 / 3.0, 1.0 / 3.0}, probs, 1e-12)

	_, ok = Histogram([]float64{7, 8}, edges)
	assert.False(t, ok)
}

func TestJSDistance(t *testing.T) {
	real := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	d, err := JSDistance(real, real, DefaultHistogramBins)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-12)

	d, err = JSDistance(real, []float64{100, 200}, DefaultHistogramBins)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(math.Ln2), d, 1e-12)

	shifted := []float64{6, 7, 8, 9, 10, 6, 7, 8, 9, 10}
	d, err = JSDistance(real, shifted, DefaultHistogramBins)
	require.NoError(t, err)
	assert.Greater(t, d, 0.0)
	assert.Less(t, d, math.Sqrt(math.Ln2))
}

func TestKolmogorovSmirnov(t *testing.T) {
	x := []float64{5, 1, 3, 2, 4}

	res, err := KolmogorovSmirnov(x, x)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.Statistic, 1e-12)
	assert.InDelta(t, 1.0, res.PValue, 1e-12)

	res, err = KolmogorovSmirnov([]float64{1, 2, 3, 4}, []float64{11, 12, 13, 14})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Statistic, 1e-12)
	assert.Less(t, res.PValue, 0.05)

	_, err = KolmogorovSmirnov(nil, x)
	assert.Error(t, err)
}
