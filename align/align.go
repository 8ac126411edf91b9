// Package align turns a real and a synthetic frame into a comparable pair:
// identical column order, equal row counts, no missing values and a single
// numerical/categorical partition shared by every downstream component.
package align

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
	"github.com/YuminosukeSato/synthcheck/pkg/log"
)

// MissingToken replaces missing categorical values.
const MissingToken = "[NAN]"

// Options controls alignment.
type Options struct {
	// Categorical, when non-nil, is the authoritative list of categorical
	// columns; every other column is numerical.
	Categorical []string
	// UniqueThreshold: a numeric-typed column with more distinct values than
	// this is numerical.
	UniqueThreshold int
	// NSamples overrides min(len(real), len(fake)) when positive.
	NSamples int
	// Seed drives the row subsampling. Real uses PCG stream 0, fake stream 1.
	Seed uint64
}

// Columns is the numerical/categorical partition, both in frame order.
type Columns struct {
	Numerical   []string
	Categorical []string
}

// IsCategorical reports whether name is in the categorical list.
func (c Columns) IsCategorical(name string) bool {
	for _, n := range c.Categorical {
		if n == name {
			return true
		}
	}
	return false
}

// Aligned is the output of Align. Real and Fake are owned by the caller and
// share no storage with the inputs that could be mutated.
type Aligned struct {
	Real     *frame.Frame
	Fake     *frame.Frame
	Columns  Columns
	NSamples int
}

// Align validates the schemas, subsamples both frames to the same row count,
// classifies the columns and imputes missing values.
func Align(real, fake *frame.Frame, opts Options) (*Aligned, error) {
	logger := log.GetLoggerWithName("align")

	if err := sameSchema(real, fake); err != nil {
		return nil, err
	}
	fake, err := fake.Reorder(real.Names())
	if err != nil {
		return nil, err
	}

	n, err := sampleSize(real.NRows(), fake.NRows(), opts.NSamples)
	if err != nil {
		return nil, err
	}
	realS := real.Take(sample(real.NRows(), n, opts.Seed, 0))
	fakeS := fake.Take(sample(fake.NRows(), n, opts.Seed, 1))

	cols, err := Classify(realS, opts.Categorical, opts.UniqueThreshold)
	if err != nil {
		return nil, err
	}
	for _, name := range cols.Numerical {
		rc, _ := realS.Column(name)
		fc, _ := fakeS.Column(name)
		if rc.Kind() != frame.Numeric || fc.Kind() != frame.Numeric {
			return nil, errors.NewSchemaMismatchErrorf("numerical column %q holds categorical values", name)
		}
	}

	realA, err := impute(realS, cols, log.DatasetReal)
	if err != nil {
		return nil, err
	}
	fakeA, err := impute(fakeS, cols, log.DatasetFake)
	if err != nil {
		return nil, err
	}

	logger.Debug("aligned datasets",
		log.SamplesKey, n,
		log.NumericalKey, len(cols.Numerical),
		log.CategoricalKey, len(cols.Categorical),
	)
	return &Aligned{Real: realA, Fake: fakeA, Columns: cols, NSamples: n}, nil
}

// sameSchema はカラム名の集合が一致するか検証する
func sameSchema(real, fake *frame.Frame) error {
	var missing, extra []string
	for _, name := range real.Names() {
		if !fake.Has(name) {
			missing = append(missing, name)
		}
	}
	for _, name := range fake.Names() {
		if !real.Has(name) {
			extra = append(extra, name)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return errors.NewSchemaMismatchError(missing, extra)
	}
	return nil
}

func sampleSize(realRows, fakeRows, requested int) (int, error) {
	if requested > 0 {
		if requested > realRows || requested > fakeRows {
			return 0, errors.NewInsufficientRowsError(requested, realRows, fakeRows)
		}
		return requested, nil
	}
	n := min(realRows, fakeRows)
	if n == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "align.Align")
	}
	return n, nil
}

// sample は seeded permutation の先頭 n 行を返す
func sample(rows, n int, seed, stream uint64) []int {
	rng := rand.New(rand.NewPCG(seed, stream))
	return rng.Perm(rows)[:n]
}

// Classify partitions the columns of f. A non-nil categorical list is taken
// as is; otherwise a column is numerical when it is numeric-typed and has more
// than threshold distinct values (missing counted as one).
func Classify(f *frame.Frame, categorical []string, threshold int) (Columns, error) {
	var cols Columns
	if categorical != nil {
		listed := make(map[string]bool, len(categorical))
		for _, name := range categorical {
			if !f.Has(name) {
				return Columns{}, errors.NewSchemaMismatchError([]string{name}, nil)
			}
			listed[name] = true
		}
		for _, name := range f.Names() {
			if listed[name] {
				cols.Categorical = append(cols.Categorical, name)
			} else {
				cols.Numerical = append(cols.Numerical, name)
			}
		}
		return cols, nil
	}

	for _, c := range f.Columns() {
		if c.Kind() == frame.Numeric && c.NUnique() > threshold {
			cols.Numerical = append(cols.Numerical, c.Name())
		} else {
			cols.Categorical = append(cols.Categorical, c.Name())
		}
	}
	return cols, nil
}

// impute は欠損を埋める。カテゴリ列は MissingToken 付きの文字列に、数値列は列平均で埋める
func impute(f *frame.Frame, cols Columns, dataset string) (*frame.Frame, error) {
	out := f
	var err error
	for _, name := range cols.Categorical {
		c, _ := f.Column(name)
		if out, err = out.WithColumn(c.AsCategorical(MissingToken)); err != nil {
			return nil, err
		}
	}
	for _, name := range cols.Numerical {
		c, _ := f.Column(name)
		if !c.HasMissing() {
			continue
		}
		mean, ok := nanMean(c.Floats())
		if !ok {
			errors.Warn(errors.NewDataConversionWarning(name, "numeric", "numeric",
				dataset+" column has no observed values; filled with 0"))
		}
		if out, err = out.WithColumn(c.FillNaN(mean)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// nanMean は NaN を除いた平均を返す。値が一つもなければ (0, false)
func nanMean(x []float64) (float64, bool) {
	kept := x[:0:0]
	for _, v := range x {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return 0, false
	}
	return floats.Sum(kept) / float64(len(kept)), true
}
