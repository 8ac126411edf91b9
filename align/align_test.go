package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

func people(n int) *frame.Frame {
	age := make([]float64, n)
	income := make([]float64, n)
	city := make([]string, n)
	for i := 0; i < n; i++ {
		age[i] = float64(20 + i%50)
		income[i] = float64(1000 * (i % 17))
		city[i] = []string{"Tokyo", "Osaka", "Kyoto"}[i%3]
	}
	return frame.MustNew(
		frame.NewNumeric("age", age),
		frame.NewNumeric("income", income),
		frame.NewCategorical("city", city, nil),
	)
}

func TestAlign_LengthsAndOrder(t *testing.T) {
	real := people(120)
	fakeBase := people(80)
	fake, err := fakeBase.Reorder([]string{"city", "income", "age"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		nSamples int
		want     int
	}{
		{"min of both", 0, 80},
		{"explicit", 50, 50},
		{"explicit equal to smaller", 80, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Align(real, fake, Options{NSamples: tt.nSamples, Seed: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.NSamples)
			assert.Equal(t, tt.want, a.Real.NRows())
			assert.Equal(t, tt.want, a.Fake.NRows())
			assert.Equal(t, a.Real.Names(), a.Fake.Names())
			assert.Equal(t, []string{"age", "income", "city"}, a.Real.Names())
		})
	}
}

func TestAlign_InsufficientRows(t *testing.T) {
	_, err := Align(people(10), people(8), Options{NSamples: 9})
	var ire *errors.InsufficientRowsError
	require.True(t, errors.As(err, &ire), "got %v", err)
	assert.Equal(t, 9, ire.Requested)
}

func TestAlign_SchemaMismatch(t *testing.T) {
	fake := people(10).Drop("city")
	fake, err := fake.WithColumn(frame.NewNumeric("zip", make([]float64, 10)))
	require.NoError(t, err)

	_, err = Align(people(10), fake, Options{})
	var sme *errors.SchemaMismatchError
	require.True(t, errors.As(err, &sme), "got %v", err)
	assert.Equal(t, []string{"city"}, sme.Missing)
	assert.Equal(t, []string{"zip"}, sme.Extra)
}

func TestAlign_DoesNotMutateInputs(t *testing.T) {
	real := frame.MustNew(frame.NewNumeric("x", []float64{1, math.NaN(), 3}), frame.NewNumeric("y", []float64{1, 2, 3}))
	fake := frame.MustNew(frame.NewNumeric("y", []float64{4, 5, 6}), frame.NewNumeric("x", []float64{math.NaN(), 2, 2}))

	a, err := Align(real, fake, Options{})
	require.NoError(t, err)

	rx, _ := real.Column("x")
	assert.True(t, math.IsNaN(rx.Float(1)), "input must keep its NaN")

	ax, _ := a.Real.Column("x")
	assert.ElementsMatch(t, []float64{1, 2, 3}, ax.Floats(), "real mean imputation uses real's mean")
	fx, _ := a.Fake.Column("x")
	assert.ElementsMatch(t, []float64{2, 2, 2}, fx.Floats(), "fake mean imputation uses fake's mean")
}

func TestAlign_CategoricalMissingToken(t *testing.T) {
	real := frame.MustNew(
		frame.NewCategorical("c", []string{"a", "", "b"}, []bool{false, true, false}),
		frame.NewNumeric("code", []float64{1, math.NaN(), 1}),
	)
	a, err := Align(real, real, Options{UniqueThreshold: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "code"}, a.Columns.Categorical)
	assert.Empty(t, a.Columns.Numerical)
	c, _ := a.Real.Column("c")
	assert.Contains(t, c.Strings(), MissingToken)
	code, _ := a.Real.Column("code")
	assert.Equal(t, frame.Categorical, code.Kind())
	assert.ElementsMatch(t, []string{"1", "1", MissingToken}, code.Strings())
}

func TestClassify(t *testing.T) {
	f := people(30)

	cols, err := Classify(f, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "income"}, cols.Numerical)
	assert.Equal(t, []string{"city"}, cols.Categorical)

	// 閾値より distinct 値が少ない数値列はカテゴリ扱い
	cols, err = Classify(f, nil, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"age"}, cols.Numerical)

	cols, err = Classify(f, []string{"income", "city"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"age"}, cols.Numerical)
	assert.True(t, cols.IsCategorical("income"))

	_, err = Classify(f, []string{"nope"}, 0)
	assert.Error(t, err)
}

func TestAlign_NumericalColumnWithStrings(t *testing.T) {
	real := frame.MustNew(frame.NewNumeric("x", []float64{1, 2, 3}))
	fake := frame.MustNew(frame.NewCategorical("x", []string{"1", "2", "3"}, nil))
	_, err := Align(real, fake, Options{})
	var sme *errors.SchemaMismatchError
	assert.True(t, errors.As(err, &sme), "got %v", err)
}

func TestAlign_Deterministic(t *testing.T) {
	a1, err := Align(people(100), people(60), Options{Seed: 7})
	require.NoError(t, err)
	a2, err := Align(people(100), people(60), Options{Seed: 7})
	require.NoError(t, err)
	c1, _ := a1.Real.Column("age")
	c2, _ := a2.Real.Column("age")
	assert.Equal(t, c1.Floats(), c2.Floats())
}
