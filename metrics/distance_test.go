package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorDistances(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 0, 3}

	d, err := EuclideanDistance(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-12)

	d, err = MeanAbsoluteError(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, d, 1e-12)

	d, err = RootMeanSquaredError(a, b)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(4.0/3.0), d, 1e-12)

	d, err = CosineDistance([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d, 1e-12)

	d, err = CosineDistance(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-12)
}

func TestDistanceIdenticalIsZero(t *testing.T) {
	a := []float64{0.3, -0.2, 0.9, 1}
	for _, fn := range []func(a, b []float64) (float64, error){EuclideanDistance, MeanAbsoluteError, RootMeanSquaredError} {
		d, err := fn(a, a)
		require.NoError(t, err)
		assert.Zero(t, d)
	}
}

func TestDistanceValidation(t *testing.T) {
	_, err := EuclideanDistance([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
	_, err = CosineDistance(nil, nil)
	assert.Error(t, err)
}
