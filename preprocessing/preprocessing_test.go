package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})

	tests := []struct {
		name      string
		opts      []ScalerOption
		wantScale float64
	}{
		{"population std", nil, math.Sqrt(1.25)},
		{"sample std", []ScalerOption{WithDDOF(1)}, math.Sqrt(5.0 / 3.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStandardScaler(tt.opts...)
			out, err := s.FitTransform(X)
			require.NoError(t, err)

			assert.InDelta(t, 2.5, s.Mean[0], 1e-12)
			assert.InDelta(t, tt.wantScale, s.Scale[0], 1e-12)
			assert.Equal(t, 1.0, s.Scale[1], "constant column keeps scale 1")
			assert.InDelta(t, 0.0, out.At(0, 1), 1e-12)

			back, err := s.InverseTransform(out)
			require.NoError(t, err)
			assert.InDelta(t, 3.0, back.At(2, 0), 1e-12)
		})
	}
}

func TestStandardScalerColumnMask(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{0, 1, 1, 2, 0, 3})
	s := NewStandardScaler(WithColumnMask([]bool{false, true}))
	out, err := s.FitTransform(X)
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.At(1, 0), "masked column passes through")
	assert.InDelta(t, 0.0, out.At(1, 1), 1e-12)
}

func TestStandardScalerNotFitted(t *testing.T) {
	_, err := NewStandardScaler().Transform(mat.NewDense(1, 1, nil))
	var nf *errors.NotFittedError
	assert.ErrorAs(t, err, &nf)
}

func TestOrdinalEncode(t *testing.T) {
	real := frame.MustNew(
		frame.NewCategorical("color", []string{"red", "blue", "green", "blue"}, nil),
		frame.NewNumeric("x", []float64{1, 2, 3, 4}),
	)
	fake := frame.MustNew(
		frame.NewCategorical("color", []string{"red", "red", "green", "green"}, nil),
		frame.NewNumeric("x", []float64{4, 3, 2, 1}),
	)

	r, f, err := OrdinalEncode(real, fake, []string{"color"})
	require.NoError(t, err)

	rc, _ := r.Column("color")
	fc, _ := f.Column("color")
	assert.Equal(t, []float64{2, 0, 1, 0}, rc.Floats())
	assert.Equal(t, []float64{1, 1, 0, 0}, fc.Floats(), "codes are per dataset")

	r2, _, err := OrdinalEncode(r, f, []string{"color"})
	require.NoError(t, err)
	rc2, _ := r2.Column("color")
	assert.Equal(t, rc.Floats(), rc2.Floats(), "encoding is idempotent")

	_, _, err = OrdinalEncode(real, fake, []string{"size"})
	var schemaErr *errors.SchemaMismatchError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestOneHotEncodeReconcilesCategories(t *testing.T) {
	real := frame.MustNew(
		frame.NewNumeric("x", []float64{1, 2, 3}),
		frame.NewCategorical("color", []string{"red", "blue", "green"}, nil),
	)
	fake := frame.MustNew(
		frame.NewNumeric("x", []float64{1, 2, 3}),
		frame.NewCategorical("color", []string{"red", "red", "purple"}, nil),
	)

	r, f, err := OneHotEncode(real, fake, []string{"color"})
	require.NoError(t, err)

	want := []string{"color_blue", "color_green", "color_red", "x"}
	assert.Equal(t, want, r.Names())
	assert.Equal(t, want, f.Names())

	green, _ := f.Column("color_green")
	assert.Equal(t, []float64{0, 0, 0}, green.Floats(), "real-only category becomes a zero column")
	red, _ := f.Column("color_red")
	assert.Equal(t, []float64{1, 1, 0}, red.Floats())
	assert.False(t, f.Has("color_purple"), "fake-only category is dropped")
}

func TestOneHotEncodeNumericCategorical(t *testing.T) {
	real := frame.MustNew(frame.NewNumeric("grade", []float64{1, 2, 2.5}))
	fake := frame.MustNew(frame.NewNumeric("grade", []float64{2, 2, 1}))

	r, f, err := OneHotEncode(real, fake, []string{"grade"})
	require.NoError(t, err)
	assert.Equal(t, []string{"grade_1", "grade_2", "grade_2.5"}, r.Names())
	assert.Equal(t, r.Names(), f.Names())
}

func TestOneHotEncodeNameCollision(t *testing.T) {
	tests := []struct {
		name string
		cols []*frame.Column
		cat  []string
		want string
	}{
		{
			name: "numeric column",
			cols: []*frame.Column{
				frame.NewCategorical("a", []string{"b", "c"}, nil),
				frame.NewNumeric("a_b", []float64{1, 2}),
			},
			cat:  []string{"a"},
			want: `"a_b"`,
		},
		{
			name: "two categorical columns",
			cols: []*frame.Column{
				frame.NewCategorical("a", []string{"b_c", "d"}, nil),
				frame.NewCategorical("a_b", []string{"c", "c"}, nil),
			},
			cat:  []string{"a", "a_b"},
			want: `"a_b_c"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := frame.MustNew(tt.cols...)
			_, _, err := OneHotEncode(f, f, tt.cat)
			var schemaErr *errors.SchemaMismatchError
			require.True(t, errors.As(err, &schemaErr))
			assert.Contains(t, schemaErr.Reason, tt.want)
		})
	}
}
