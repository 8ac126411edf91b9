package neural_network

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

func twoMoons(n int) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(11, 0))
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		c := float64(i % 2)
		X.Set(i, 0, 2*c-1+0.2*rng.NormFloat64())
		X.Set(i, 1, 1-2*c+0.2*rng.NormFloat64())
		y.Set(i, 0, c+5) // ラベルは 5 と 6
	}
	return X, y
}

func TestMLPClassifier_Separable(t *testing.T) {
	X, y := twoMoons(100)
	mlp := NewMLPClassifier(WithHiddenLayerSizes(50, 50), WithMaxIter(300), WithRandomState(42))
	require.NoError(t, mlp.Fit(X, y))

	assert.Equal(t, []float64{5, 6}, mlp.Classes())
	score, err := mlp.Score(X, y)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0.95)

	proba, err := mlp.PredictProba(X)
	require.NoError(t, err)
	r, c := proba.Dims()
	require.Equal(t, 2, c)
	for i := 0; i < r; i++ {
		assert.InDelta(t, 1.0, proba.At(i, 0)+proba.At(i, 1), 1e-9)
	}
	assert.False(t, math.IsNaN(mlp.Loss()))
}

func TestMLPClassifier_Deterministic(t *testing.T) {
	X, y := twoMoons(60)
	a := NewMLPClassifier(WithHiddenLayerSizes(8), WithMaxIter(20), WithRandomState(42))
	require.NoError(t, a.Fit(X, y))
	b := a.Clone()
	require.NoError(t, b.Fit(X, y))

	pa, _ := a.PredictProba(X)
	pb, _ := b.(*MLPClassifier).PredictProba(X)
	assert.True(t, mat.Equal(pa, pb))
}

func TestMLPClassifier_Errors(t *testing.T) {
	mlp := NewMLPClassifier()
	_, err := mlp.Predict(mat.NewDense(1, 2, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	X, y := twoMoons(10)
	assert.Error(t, NewMLPClassifier(WithHiddenLayerSizes(0)).Fit(X, y))
	assert.Error(t, mlp.Fit(X, mat.NewDense(3, 1, nil)))
}
