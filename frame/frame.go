// Package frame is the tabular data model shared by every evaluation component:
// an ordered set of named numeric or categorical columns with a common row count.
//
// Frames are never modified in place. Every operation returns a new Frame,
// sharing column storage where nothing changed.
package frame

import (
	"math"

	"gonum.org/v1/gonum/mat"

	scerrors "github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// Frame is an ordered collection of equally long columns.
type Frame struct {
	cols  []*Column
	index map[string]int
	nrows int
}

// New builds a frame from columns. Names must be unique and non-empty and
// every column must have the same length.
func New(cols ...*Column) (*Frame, error) {
	f := &Frame{cols: make([]*Column, len(cols)), index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, scerrors.NewValueError("frame.New", "nil column")
		}
		if c.name == "" {
			return nil, scerrors.NewValidationError("name", "column name must not be empty", i)
		}
		if _, dup := f.index[c.name]; dup {
			return nil, scerrors.NewValidationError("name", "duplicate column name", c.name)
		}
		if i == 0 {
			f.nrows = c.Len()
		} else if c.Len() != f.nrows {
			return nil, scerrors.NewDimensionError("frame.New("+c.name+")", f.nrows, c.Len(), 0)
		}
		f.cols[i] = c
		f.index[c.name] = i
	}
	return f, nil
}

// MustNew is New that panics on error. Intended for tests and literals.
func MustNew(cols ...*Column) *Frame {
	f, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

// NRows returns the number of rows.
func (f *Frame) NRows() int { return f.nrows }

// NCols returns the number of columns.
func (f *Frame) NCols() int { return len(f.cols) }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.name
	}
	return names
}

// Columns returns the columns in order.
func (f *Frame) Columns() []*Column {
	return append([]*Column(nil), f.cols...)
}

// Column looks up a column by name.
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// ColumnAt returns the i-th column.
func (f *Frame) ColumnAt(i int) *Column { return f.cols[i] }

// Has reports whether the frame has a column with the given name.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Copy returns a frame with the same columns. Column storage is shared
// because columns are immutable.
func (f *Frame) Copy() *Frame {
	out, _ := New(f.cols...)
	if len(f.cols) == 0 {
		out.nrows = f.nrows
	}
	return out
}

// Take returns the rows at idx, in idx order.
func (f *Frame) Take(idx []int) *Frame {
	cols := make([]*Column, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.take(idx)
	}
	out, _ := New(cols...)
	out.nrows = len(idx)
	return out
}

// Head returns the first n rows (all rows if n exceeds NRows).
func (f *Frame) Head(n int) *Frame {
	if n >= f.nrows {
		return f
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return f.Take(idx)
}

// Select returns the named columns in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]*Column, len(names))
	for i, n := range names {
		c, ok := f.Column(n)
		if !ok {
			return nil, scerrors.NewSchemaMismatchError([]string{n}, nil)
		}
		cols[i] = c
	}
	return New(cols...)
}

// Drop returns the frame without the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	cols := make([]*Column, 0, len(f.cols))
	for _, c := range f.cols {
		if _, ok := skip[c.name]; !ok {
			cols = append(cols, c)
		}
	}
	out, _ := New(cols...)
	if len(cols) == 0 {
		out.nrows = f.nrows
	}
	return out
}

// Reorder returns the frame with columns in the given order. names must be a
// permutation of the frame's column names.
func (f *Frame) Reorder(names []string) (*Frame, error) {
	if len(names) != len(f.cols) {
		return nil, schemaDiff(names, f.Names())
	}
	out, err := f.Select(names...)
	if err != nil {
		return nil, schemaDiff(names, f.Names())
	}
	return out, nil
}

// WithColumn returns a frame where the column of the same name is replaced,
// or the column is appended when no such column exists.
func (f *Frame) WithColumn(c *Column) (*Frame, error) {
	cols := f.Columns()
	if i, ok := f.index[c.name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// ToMatrix converts the frame into a dense row-major matrix. Every column must
// be numeric; missing values stay NaN.
func (f *Frame) ToMatrix() (*mat.Dense, error) {
	if f.nrows == 0 || len(f.cols) == 0 {
		return nil, scerrors.ErrEmptyData
	}
	data := make([]float64, f.nrows*len(f.cols))
	for j, c := range f.cols {
		if c.kind != Numeric {
			return nil, scerrors.NewValueError("frame.ToMatrix", "column "+c.name+" is categorical")
		}
		for i, v := range c.s.Float() {
			data[i*len(f.cols)+j] = v
		}
	}
	return mat.NewDense(f.nrows, len(f.cols), data), nil
}

// Value is one cell of a row.
type Value struct {
	Kind    Kind
	Float   float64
	Str     string
	Missing bool
}

// Row returns the ordered values of row i.
func (f *Frame) Row(i int) []Value {
	row := make([]Value, len(f.cols))
	for j, c := range f.cols {
		if c.kind == Numeric {
			v := c.s.Elem(i).Float()
			row[j] = Value{Kind: Numeric, Float: v, Missing: math.IsNaN(v)}
			continue
		}
		row[j] = Value{Kind: Categorical, Str: c.s.Elem(i).String(), Missing: c.missing[i]}
	}
	return row
}

func schemaDiff(want, have []string) error {
	wantSet := make(map[string]struct{}, len(want))
	for _, n := range want {
		wantSet[n] = struct{}{}
	}
	haveSet := make(map[string]struct{}, len(have))
	for _, n := range have {
		haveSet[n] = struct{}{}
	}
	var missing, extra []string
	for _, n := range want {
		if _, ok := haveSet[n]; !ok {
			missing = append(missing, n)
		}
	}
	for _, n := range have {
		if _, ok := wantSet[n]; !ok {
			extra = append(extra, n)
		}
	}
	return scerrors.NewSchemaMismatchError(missing, extra)
}
