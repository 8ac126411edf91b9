package association

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/metrics"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

func mixed() *frame.Frame {
	return frame.MustNew(
		frame.NewNumeric("x", []float64{1, 2, 3, 4, 5, 6}),
		frame.NewNumeric("y", []float64{2, 4, 6, 8, 10, 13}),
		frame.NewCategorical("color", []string{"r", "r", "g", "g", "b", "b"}, nil),
		frame.NewCategorical("size", []string{"s", "s", "s", "l", "l", "l"}, nil),
	)
}

func TestTheilsU(t *testing.T) {
	x := []string{"a", "a", "b", "b"}
	assert.InDelta(t, 1.0, TheilsU(x, x), 1e-12)
	assert.InDelta(t, 1.0, TheilsU([]string{"c", "c", "c", "c"}, x), 1e-12, "constant target")
	assert.InDelta(t, 0.0, TheilsU(x, []string{"p", "q", "p", "q"}), 1e-12, "independent")

	// y が x を完全に決めるが逆は成り立たない
	fine := []string{"1", "2", "3", "4"}
	assert.InDelta(t, 1.0, TheilsU(x, fine), 1e-12)
	assert.InDelta(t, 0.5, TheilsU(fine, x), 1e-12)
}

func TestCorrelationRatio(t *testing.T) {
	assert.InDelta(t, 1.0, CorrelationRatio([]string{"a", "a", "b", "b"}, []float64{1, 1, 5, 5}), 1e-12)
	assert.InDelta(t, 0.0, CorrelationRatio([]string{"a", "b", "a", "b"}, []float64{1, 1, 5, 5}), 1e-12)
	assert.Equal(t, 0.0, CorrelationRatio([]string{"a", "b"}, []float64{3, 3}))
}

func TestCompute(t *testing.T) {
	m, err := Compute(mixed(), []string{"color", "size"})
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y", "color", "size"}, m.Names)

	for i := 0; i < 4; i++ {
		assert.Equal(t, 1.0, m.At(i, i))
	}
	assert.InDelta(t, metrics.Pearson([]float64{1, 2, 3, 4, 5, 6}, []float64{2, 4, 6, 8, 10, 13}), m.At(0, 1), 1e-12)
	assert.Equal(t, m.At(0, 1), m.At(1, 0))

	// color は size を決めない (g が s と l に分かれる) が、非対称であること
	assert.NotEqual(t, m.At(2, 3), m.At(3, 2))
	assert.Len(t, m.OffDiagonal(), 12)

	eta, err := Compute(mixed(), []string{"color", "size"}, WithMixedMeasure(MixedCorrelationRatio))
	require.NoError(t, err)
	assert.Equal(t, eta.At(0, 2), eta.At(2, 0))
}

func TestCompute_ConstantColumnIsZero(t *testing.T) {
	f := frame.MustNew(
		frame.NewNumeric("a", []float64{1, 2, 3}),
		frame.NewNumeric("b", []float64{5, 5, 5}),
	)
	m, err := Compute(f, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.At(0, 1))
}

func TestMatrixDistance(t *testing.T) {
	real, err := Compute(mixed(), []string{"color", "size"})
	require.NoError(t, err)
	same, err := Compute(mixed(), []string{"color", "size"})
	require.NoError(t, err)

	for _, how := range []Distance{Euclidean, MAE, RMSE, Cosine} {
		d, err := MatrixDistance(real, same, how)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, d, 1e-12, string(how))
	}

	c, err := Correlation(real, same, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c, 1e-12)
}

func TestParseDistance(t *testing.T) {
	d, err := ParseDistance("RMSE")
	require.NoError(t, err)
	assert.Equal(t, RMSE, d)

	_, err = ParseDistance("manhattan")
	var ide *errors.InvalidDistanceKindError
	assert.True(t, errors.As(err, &ide))

	m, _ := Compute(mixed(), []string{"color", "size"})
	_, err = MatrixDistance(m, m, Distance("chebyshev"))
	assert.True(t, errors.As(err, &ide))
}

func TestColumnCorrelations(t *testing.T) {
	real := mixed()
	cols, mean, err := ColumnCorrelations(real, real, []string{"color", "size"})
	require.NoError(t, err)
	require.Len(t, cols, 4)
	for _, c := range cols {
		assert.InDelta(t, 1.0, c.Value, 1e-12, c.Column)
	}
	assert.InDelta(t, 1.0, mean, 1e-12)

	// 行の並び替えは影響しない
	shuffled := real.Take([]int{5, 3, 1, 0, 2, 4})
	_, mean2, err := ColumnCorrelations(real, shuffled, []string{"color", "size"})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(mean2))
	assert.InDelta(t, 1.0, mean2, 1e-12)
}
