// Package moments compares the first moments of the numerical columns of two
// aligned frames.
package moments

import (
	"github.com/montanaflynn/stats"

	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/metrics"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// Statistic names in output order.
var Statistics = []string{"mean", "median", "std", "variance"}

// Comparison holds the moment vectors of both datasets and their Spearman
// correlation. Labels[i] is "<statistic>_<column>".
type Comparison struct {
	Labels      []string
	Real        []float64
	Fake        []float64
	Correlation float64
}

// Compare computes mean, median, sample std and sample variance of every
// numerical column, ordered as all means, all medians, all stds, all variances.
func Compare(real, fake *frame.Frame, numerical []string) (*Comparison, error) {
	if len(numerical) < 2 {
		return nil, errors.NewInsufficientDataError("moments.Compare", 2, len(numerical), "numerical columns")
	}
	r, err := vector(real, numerical)
	if err != nil {
		return nil, err
	}
	f, err := vector(fake, numerical)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(r))
	for _, s := range Statistics {
		for _, name := range numerical {
			labels = append(labels, s+"_"+name)
		}
	}
	return &Comparison{
		Labels:      labels,
		Real:        r,
		Fake:        f,
		Correlation: metrics.Spearman(r, f),
	}, nil
}

// vector は統計量ごとに全列を並べたベクトルを返す
func vector(f *frame.Frame, numerical []string) ([]float64, error) {
	k := len(numerical)
	out := make([]float64, 4*k)
	for j, name := range numerical {
		c, ok := f.Column(name)
		if !ok {
			return nil, errors.NewSchemaMismatchError([]string{name}, nil)
		}
		if c.Kind() != frame.Numeric {
			return nil, errors.NewSchemaMismatchErrorf("column %q is not numeric", name)
		}
		m, err := Describe(c.Floats())
		if err != nil {
			return nil, errors.Wrapf(err, "moments of %s", name)
		}
		out[j] = m.Mean
		out[k+j] = m.Median
		out[2*k+j] = m.Std
		out[3*k+j] = m.Variance
	}
	return out, nil
}

// Moments of a single column.
type Moments struct {
	Mean     float64
	Median   float64
	Std      float64
	Variance float64
}

// Describe computes the moments of x with ddof=1 for std and variance.
func Describe(x []float64) (Moments, error) {
	if len(x) < 2 {
		return Moments{}, errors.NewInsufficientDataError("moments.Describe", 2, len(x), "samples")
	}
	data := stats.Float64Data(x)
	var m Moments
	var err error
	if m.Mean, err = data.Mean(); err != nil {
		return Moments{}, err
	}
	if m.Median, err = data.Median(); err != nil {
		return Moments{}, err
	}
	if m.Std, err = data.StandardDeviationSample(); err != nil {
		return Moments{}, err
	}
	if m.Variance, err = data.SampleVariance(); err != nil {
		return Moments{}, err
	}
	return m, nil
}
