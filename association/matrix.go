// Package association computes pairwise association matrices over mixed
// numerical/categorical frames and compares the matrices of two datasets.
//
// Nominal pairs use Theil's U, so the matrix is generally not symmetric:
// entry (r, c) is U(r|c), how well column c predicts column r. The diagonal
// is 1 and never takes part in a comparison.
package association

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/metrics"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// MixedMeasure selects the measure for numerical/categorical pairs.
type MixedMeasure int

const (
	// MixedTheilsU treats the numerical column as nominal tokens.
	MixedTheilsU MixedMeasure = iota
	// MixedCorrelationRatio uses η of the numerical column grouped by the
	// categorical one. It is symmetric.
	MixedCorrelationRatio
)

type config struct {
	numerical metrics.CorrelationFunc
	mixed     MixedMeasure
}

// Option configures Compute.
type Option func(*config)

// WithNumericalMetric sets the correlation used for numerical pairs (default Pearson).
func WithNumericalMetric(fn metrics.CorrelationFunc) Option {
	return func(c *config) { c.numerical = fn }
}

// WithMixedMeasure sets the measure used for mixed pairs (default Theil's U).
func WithMixedMeasure(m MixedMeasure) Option {
	return func(c *config) { c.mixed = m }
}

// Matrix is a square association matrix with column labels.
type Matrix struct {
	Names  []string
	Values *mat.Dense
}

// At returns the association of row r and column c.
func (m *Matrix) At(r, c int) float64 {
	return m.Values.At(r, c)
}

// OffDiagonal returns the entries outside the diagonal in row-major order.
func (m *Matrix) OffDiagonal() []float64 {
	n := len(m.Names)
	out := make([]float64, 0, n*(n-1))
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if r != c {
				out = append(out, m.Values.At(r, c))
			}
		}
	}
	return out
}

// Compute builds the association matrix of f.
func Compute(f *frame.Frame, categorical []string, opts ...Option) (*Matrix, error) {
	cfg := config{numerical: metrics.Pearson, mixed: MixedTheilsU}
	for _, opt := range opts {
		opt(&cfg)
	}

	isCat := make(map[string]bool, len(categorical))
	for _, name := range categorical {
		if !f.Has(name) {
			return nil, errors.NewSchemaMismatchError([]string{name}, nil)
		}
		isCat[name] = true
	}

	cols := f.Columns()
	n := len(cols)
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "association.Compute")
	}

	// 数値列とトークン列を前もって用意する
	nums := make([][]float64, n)
	toks := make([][]string, n)
	for i, c := range cols {
		if c.Kind() == frame.Numeric && !isCat[c.Name()] {
			nums[i] = c.Floats()
		} else if c.Kind() != frame.Numeric && !isCat[c.Name()] {
			return nil, errors.NewSchemaMismatchErrorf("column %q is categorical-typed but not listed as categorical", c.Name())
		}
		toks[i] = c.AsCategorical(MissingToken).Strings()
	}

	values := mat.NewDense(n, n, nil)
	for r := 0; r < n; r++ {
		values.Set(r, r, 1)
		for c := r + 1; c < n; c++ {
			rc, cr := pair(cfg, nums[r], nums[c], toks[r], toks[c])
			if math.IsNaN(rc) {
				// 定数列との相関は定義できないので 0 とする
				errors.Warn(errors.NewUndefinedMetricWarning(
					"correlation("+cols[r].Name()+", "+cols[c].Name()+")", "a constant column", 0))
				rc, cr = 0, 0
			}
			values.Set(r, c, rc)
			values.Set(c, r, cr)
		}
	}
	return &Matrix{Names: f.Names(), Values: values}, nil
}

// MissingToken is used when a column is read as nominal tokens.
const MissingToken = "[NAN]"

// pair は (r, c) と (c, r) の値を返す
func pair(cfg config, xr, xc []float64, tr, tc []string) (float64, float64) {
	switch {
	case xr != nil && xc != nil:
		v := cfg.numerical(xr, xc)
		return v, v
	case xr == nil && xc == nil:
		return TheilsU(tr, tc), TheilsU(tc, tr)
	case cfg.mixed == MixedCorrelationRatio:
		var v float64
		if xr != nil {
			v = CorrelationRatio(tc, xr)
		} else {
			v = CorrelationRatio(tr, xc)
		}
		return v, v
	default:
		return TheilsU(tr, tc), TheilsU(tc, tr)
	}
}
