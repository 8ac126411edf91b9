package duplicates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/synthcheck/frame"
)

func table(x []float64, s []string) *frame.Frame {
	return frame.MustNew(frame.NewNumeric("x", x), frame.NewCategorical("s", s, nil))
}

func TestCopies_FakeEqualsReal(t *testing.T) {
	real := table([]float64{1, 2, 3, 4}, []string{"a", "b", "c", "d"})
	n, err := CountCopies(real, real)
	require.NoError(t, err)
	assert.Equal(t, real.NRows(), n)
}

func TestCopies_SetMembership(t *testing.T) {
	real := table([]float64{1, 2, 3}, []string{"a", "b", "c"})
	fake := table([]float64{3, 9, 1, 2}, []string{"c", "z", "a", "x"})

	idx, err := CopyIndices(real, fake)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, idx)

	copies, err := Copies(real, fake)
	require.NoError(t, err)
	assert.Equal(t, 2, copies.NRows())
}

func TestCopies_SchemaMismatch(t *testing.T) {
	real := table([]float64{1}, []string{"a"})
	fake, err := real.Reorder([]string{"s", "x"})
	require.NoError(t, err)
	_, err = CountCopies(real, fake)
	assert.Error(t, err)
}

func TestDuplicates(t *testing.T) {
	tests := []struct {
		name string
		f    *frame.Frame
		want []int
	}{
		{"no repeats", table([]float64{1, 2, 3}, []string{"a", "a", "a"}), nil},
		{"all occurrences", table([]float64{1, 2, 1, 1}, []string{"a", "b", "a", "a"}), []int{0, 2, 3}},
		{"missing equals missing", table([]float64{math.NaN(), math.NaN()}, []string{"a", "a"}), []int{0, 1}},
		{"negative zero", table([]float64{0, math.Copysign(0, -1)}, []string{"a", "a"}), []int{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DuplicateIndices(tt.f))
		})
	}

	r, f := CountDuplicates(tests[0].f, tests[1].f)
	assert.Equal(t, 0, r)
	assert.Equal(t, 3, f)
}

func TestRowHash_StringBoundaries(t *testing.T) {
	// 長さプレフィックスにより "ab"+"c" と "a"+"bc" は区別される
	a := frame.MustNew(frame.NewCategorical("p", []string{"ab"}, nil), frame.NewCategorical("q", []string{"c"}, nil))
	b := frame.MustNew(frame.NewCategorical("p", []string{"a"}, nil), frame.NewCategorical("q", []string{"bc"}, nil))
	assert.NotEqual(t, RowHash(a, 0), RowHash(b, 0))
	assert.Equal(t, RowHash(a, 0), RowHash(a.Copy(), 0))
}
