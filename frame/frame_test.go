package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/YuminosukeSato/synthcheck/pkg/errors"
)

func sample() *Frame {
	return MustNew(
		NewNumeric("age", []float64{23, 35, math.NaN(), 51}),
		NewCategorical("city", []string{"Tokyo", "Osaka", "", "Tokyo"}, []bool{false, false, true, false}),
	)
}

func TestNewValidation(t *testing.T) {
	_, err := New(NewNumeric("a", []float64{1, 2}), NewNumeric("b", []float64{1}))
	var dimErr *scerrors.DimensionError
	assert.ErrorAs(t, err, &dimErr)

	_, err = New(NewNumeric("a", []float64{1}), NewNumeric("a", []float64{2}))
	var valErr *scerrors.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestColumnNUnique(t *testing.T) {
	f := sample()
	age, _ := f.Column("age")
	city, _ := f.Column("city")

	assert.Equal(t, 4, age.NUnique(), "missing counts as one value")
	assert.Equal(t, 3, city.NUnique())
	assert.True(t, age.IsMissing(2))
	assert.True(t, city.HasMissing())
}

func TestTakeAndHead(t *testing.T) {
	f := sample()
	sub := f.Take([]int{3, 0})

	require.Equal(t, 2, sub.NRows())
	age, _ := sub.Column("age")
	assert.Equal(t, []float64{51, 23}, age.Floats())

	assert.Equal(t, 2, f.Head(2).NRows())
	assert.Same(t, f, f.Head(10))
	assert.Equal(t, 4, f.NRows(), "input untouched")
}

func TestReorder(t *testing.T) {
	f := sample()

	out, err := f.Reorder([]string{"city", "age"})
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "age"}, out.Names())
	assert.Equal(t, []string{"age", "city"}, f.Names())

	_, err = f.Reorder([]string{"city", "income"})
	var schemaErr *scerrors.SchemaMismatchError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"income"}, schemaErr.Missing)
	assert.Equal(t, []string{"age"}, schemaErr.Extra)
}

func TestDropAndWithColumn(t *testing.T) {
	f := sample()
	assert.Equal(t, []string{"city"}, f.Drop("age", "unknown").Names())

	g, err := f.WithColumn(NewNumeric("age", []float64{1, 2, 3, 4}))
	require.NoError(t, err)
	age, _ := g.Column("age")
	assert.Equal(t, 3.0, age.Float(2))

	_, err = f.WithColumn(NewNumeric("score", []float64{1}))
	assert.Error(t, err)
}

func TestToMatrix(t *testing.T) {
	f := MustNew(NewNumeric("x", []float64{1, 2}), NewNumeric("y", []float64{3, 4}))
	m, err := f.ToMatrix()
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.At(0, 1))
	assert.Equal(t, 2.0, m.At(1, 0))

	_, err = sample().ToMatrix()
	assert.Error(t, err)
}

func TestRow(t *testing.T) {
	row := sample().Row(2)
	require.Len(t, row, 2)
	assert.True(t, row[0].Missing)
	assert.Equal(t, Numeric, row[0].Kind)
	assert.True(t, row[1].Missing)
	assert.Equal(t, Categorical, row[1].Kind)
}

func TestCategoricalNaNLiteral(t *testing.T) {
	// "NaN" は欠損ではなく通常のカテゴリとして扱う
	c := NewCategorical("grade", []string{"NaN", "A", ""}, []bool{false, false, true})

	assert.False(t, c.IsMissing(0))
	assert.Equal(t, "NaN", c.Str(0))
	assert.True(t, c.IsMissing(2))
	assert.Equal(t, 3, c.NUnique())

	sub := MustNew(c).Take([]int{0, 0, 1})
	grade, _ := sub.Column("grade")
	assert.Equal(t, []string{"NaN", "NaN", "A"}, grade.Strings())
	assert.False(t, grade.HasMissing())
}

func TestColumnConversions(t *testing.T) {
	empty := NewNumeric("x", nil)
	assert.Equal(t, 0, empty.Len())

	c := NewNumeric("x", []float64{0.1234567891, math.NaN(), 3})
	assert.Equal(t, []string{"0.1234567891", "[NAN]", "3"}, c.AsCategorical("[NAN]").Strings())

	filled := c.FillNaN(2.5)
	assert.Equal(t, []float64{0.1234567891, 2.5, 3}, filled.Floats())
	assert.True(t, math.IsNaN(c.Float(1)), "input untouched")

	r := c.Rename("y")
	assert.Equal(t, "y", r.Name())
	assert.Equal(t, "x", c.Name())
}
