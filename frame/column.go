package frame

import (
	"math"
	"strconv"

	"github.com/go-gota/gota/series"
)

// Kind is the storage type of a column.
type Kind int

const (
	// Numeric columns hold float64 values; NaN marks a missing value.
	Numeric Kind = iota
	// Categorical columns hold strings with a separate missing mask.
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is a named, typed, immutable vector of values backed by a gota
// series. Categorical columns keep their own missing mask: gota marks the
// literal string "NaN" as NA, which is a legitimate category here.
type Column struct {
	name    string
	kind    Kind
	s       series.Series
	missing []bool
}

// NewNumeric creates a numeric column. The values are copied.
func NewNumeric(name string, values []float64) *Column {
	// series.New(nil) は長さ1のNA列になるため、空でも非nilのスライスを渡す
	v := make([]float64, len(values))
	copy(v, values)
	return &Column{name: name, kind: Numeric, s: series.New(v, series.Float, name)}
}

// NewCategorical creates a categorical column. missing may be nil, in which
// case no value is missing. Both slices are copied.
func NewCategorical(name string, values []string, missing []bool) *Column {
	m := make([]bool, len(values))
	copy(m, missing)
	v := make([]string, len(values))
	copy(v, values)
	return &Column{name: name, kind: Categorical, s: series.New(v, series.String, name), missing: m}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the storage type.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of rows.
func (c *Column) Len() int { return c.s.Len() }

// Float returns the i-th numeric value. It panics on categorical columns.
func (c *Column) Float(i int) float64 {
	if c.kind != Numeric {
		panic("frame: Float called on categorical column " + c.name)
	}
	return c.s.Elem(i).Float()
}

// Str returns the i-th categorical value. It panics on numeric columns.
func (c *Column) Str(i int) string {
	if c.kind != Categorical {
		panic("frame: Str called on numeric column " + c.name)
	}
	return c.s.Elem(i).String()
}

// IsMissing reports whether the i-th value is missing.
func (c *Column) IsMissing(i int) bool {
	if c.kind == Numeric {
		return math.IsNaN(c.s.Elem(i).Float())
	}
	return c.missing[i]
}

// HasMissing reports whether any value is missing.
func (c *Column) HasMissing() bool {
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			return true
		}
	}
	return false
}

// Floats returns a copy of the numeric values.
func (c *Column) Floats() []float64 {
	if c.kind != Numeric {
		panic("frame: Floats called on categorical column " + c.name)
	}
	return c.s.Float()
}

// Strings returns a copy of the categorical values. Missing entries hold
// whatever string was stored for them, usually "".
func (c *Column) Strings() []string {
	if c.kind != Categorical {
		panic("frame: Strings called on numeric column " + c.name)
	}
	return c.s.Records()
}

// NUnique returns the number of distinct values, counting missing as one value.
func (c *Column) NUnique() int {
	hasMissing := false
	if c.kind == Numeric {
		seen := make(map[float64]struct{}, c.Len())
		for _, v := range c.s.Float() {
			if math.IsNaN(v) {
				hasMissing = true
				continue
			}
			seen[v] = struct{}{}
		}
		if hasMissing {
			return len(seen) + 1
		}
		return len(seen)
	}
	seen := make(map[string]struct{}, c.Len())
	for i, v := range c.s.Records() {
		if c.missing[i] {
			hasMissing = true
			continue
		}
		seen[v] = struct{}{}
	}
	if hasMissing {
		return len(seen) + 1
	}
	return len(seen)
}

// Rename returns a copy of the column under a new name.
func (c *Column) Rename(name string) *Column {
	out := *c
	out.name = name
	out.s = c.s.Copy()
	out.s.Name = name
	return &out
}

func (c *Column) take(idx []int) *Column {
	out := &Column{name: c.name, kind: c.kind, s: c.s.Subset(idx)}
	if c.kind == Categorical {
		out.missing = make([]bool, len(idx))
		for i, j := range idx {
			out.missing[i] = c.missing[j]
		}
	}
	return out
}

// AsCategorical converts the column to a categorical column without missing
// values: missing entries become missingToken and numeric values are formatted
// with the shortest representation that round-trips ("3", "2.5").
func (c *Column) AsCategorical(missingToken string) *Column {
	n := c.Len()
	strs := make([]string, n)
	for i := 0; i < n; i++ {
		switch {
		case c.IsMissing(i):
			strs[i] = missingToken
		case c.kind == Numeric:
			// gota の Records は小数6桁で丸めるため自前で整形する
			strs[i] = strconv.FormatFloat(c.s.Elem(i).Float(), 'f', -1, 64)
		default:
			strs[i] = c.s.Elem(i).String()
		}
	}
	return NewCategorical(c.name, strs, nil)
}

// FillNaN returns a numeric column whose NaN entries are replaced by v.
func (c *Column) FillNaN(v float64) *Column {
	if c.kind != Numeric {
		panic("frame: FillNaN called on categorical column " + c.name)
	}
	vals := c.s.Float()
	for i, x := range vals {
		if math.IsNaN(x) {
			vals[i] = v
		}
	}
	return NewNumeric(c.name, vals)
}
