package preprocessing

import (
	"sort"

	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// Categories returns the sorted distinct non-missing values of a column,
// formatted as strings.
func Categories(c *frame.Column) []string {
	cat := c.AsCategorical("")
	seen := make(map[string]struct{})
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		seen[cat.Str(i)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// OrdinalColumn replaces a categorical column by the index of each value in
// its own sorted distinct values. Missing values get -1. Numeric columns are
// returned unchanged, so encoding twice is a no-op.
func OrdinalColumn(c *frame.Column) *frame.Column {
	if c.Kind() == frame.Numeric {
		return c
	}
	cats := Categories(c)
	code := make(map[string]int, len(cats))
	for i, v := range cats {
		code[v] = i
	}
	values := make([]float64, c.Len())
	for i := range values {
		if c.IsMissing(i) {
			values[i] = -1
			continue
		}
		values[i] = float64(code[c.Str(i)])
	}
	return frame.NewNumeric(c.Name(), values)
}

// OrdinalEncode converts the listed categorical columns of both frames to
// integer codes. Each dataset is encoded with its own sorted categories, so a
// value present in only one dataset shifts the codes of that dataset.
func OrdinalEncode(real, fake *frame.Frame, categorical []string) (*frame.Frame, *frame.Frame, error) {
	r, err := ordinalEncode(real, categorical)
	if err != nil {
		return nil, nil, err
	}
	f, err := ordinalEncode(fake, categorical)
	if err != nil {
		return nil, nil, err
	}
	return r, f, nil
}

func ordinalEncode(f *frame.Frame, categorical []string) (*frame.Frame, error) {
	out := f
	for _, name := range categorical {
		c, ok := f.Column(name)
		if !ok {
			return nil, errors.NewSchemaMismatchErrorf("categorical column %q not found", name)
		}
		var err error
		if out, err = out.WithColumn(OrdinalColumn(c)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// OneHotEncode expands every listed categorical column into "<col>_<value>"
// indicator columns. The categories of real define the expansion for both
// frames: a fake-only category produces no column and a real-only category
// yields an all-zero column in fake. Both outputs have the same columns,
// sorted by name. An indicator name that clashes with another column
// ("a" = "b" next to a numeric "a_b") is a SchemaMismatchError.
func OneHotEncode(real, fake *frame.Frame, categorical []string) (*frame.Frame, *frame.Frame, error) {
	isCat := make(map[string]bool, len(categorical))
	for _, name := range categorical {
		if !real.Has(name) || !fake.Has(name) {
			return nil, nil, errors.NewSchemaMismatchErrorf("categorical column %q not found", name)
		}
		isCat[name] = true
	}

	var rCols, fCols []*frame.Column
	for _, rc := range real.Columns() {
		fc, ok := fake.Column(rc.Name())
		if !ok {
			return nil, nil, errors.NewSchemaMismatchError([]string{rc.Name()}, nil)
		}
		if !isCat[rc.Name()] {
			if rc.Kind() != frame.Numeric || fc.Kind() != frame.Numeric {
				return nil, nil, errors.NewSchemaMismatchErrorf("column %q is not numeric and not listed as categorical", rc.Name())
			}
			rCols = append(rCols, rc)
			fCols = append(fCols, fc)
			continue
		}
		cats := Categories(rc)
		rCols = append(rCols, indicators(rc, cats)...)
		fCols = append(fCols, indicators(fc, cats)...)
	}

	if err := checkCollisions(rCols); err != nil {
		return nil, nil, err
	}
	sortColumns(rCols)
	sortColumns(fCols)
	r, err := frame.New(rCols...)
	if err != nil {
		return nil, nil, err
	}
	f, err := frame.New(fCols...)
	if err != nil {
		return nil, nil, err
	}
	return r, f, nil
}

func indicators(c *frame.Column, categories []string) []*frame.Column {
	pos := make(map[string]int, len(categories))
	values := make([][]float64, len(categories))
	for i, cat := range categories {
		pos[cat] = i
		values[i] = make([]float64, c.Len())
	}
	strs := c.AsCategorical("")
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		if k, ok := pos[strs.Str(i)]; ok {
			values[k][i] = 1
		}
	}
	cols := make([]*frame.Column, len(categories))
	for i, cat := range categories {
		cols[i] = frame.NewNumeric(c.Name()+"_"+cat, values[i])
	}
	return cols
}

func checkCollisions(cols []*frame.Column) error {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c.Name()] {
			return errors.NewSchemaMismatchErrorf("one-hot column %q collides with an existing column", c.Name())
		}
		seen[c.Name()] = true
	}
	return nil
}

func sortColumns(cols []*frame.Column) {
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Name() < cols[j].Name() })
}
