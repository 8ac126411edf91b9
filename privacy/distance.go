// Package privacy measures how close synthetic rows lie to real rows.
package privacy

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/synthcheck/core/parallel"
	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
	"github.com/YuminosukeSato/synthcheck/preprocessing"
)

// DefaultSamples bounds the rows taken from each side.
const DefaultSamples = 20000

// parallelThreshold: fewer fake rows than this are handled on one goroutine.
const parallelThreshold = 64

// Distance summarises the nearest-real-neighbour distance of every fake row.
type Distance struct {
	Mean float64
	Std  float64
}

// RowDistance one-hot encodes both frames, standardises every column with
// more than two distinct real values (each dataset with its own mean and
// sample std), and returns the mean and population std over fake rows of the
// Euclidean distance to the closest real row. At most n rows of each side are
// used; n <= 0 means DefaultSamples.
func RowDistance(real, fake *frame.Frame, categorical []string, n int) (Distance, error) {
	if n <= 0 {
		n = DefaultSamples
	}
	r, f, err := preprocessing.OneHotEncode(real, fake, categorical)
	if err != nil {
		return Distance{}, err
	}
	r, f = r.Head(n), f.Head(n)
	if r.NRows() == 0 || f.NRows() == 0 {
		return Distance{}, errors.Wrap(errors.ErrEmptyData, "privacy.RowDistance")
	}

	mask := make([]bool, r.NCols())
	for j, c := range r.Columns() {
		mask[j] = c.NUnique() > 2
	}
	rm, err := standardize(r, mask)
	if err != nil {
		return Distance{}, err
	}
	fm, err := standardize(f, mask)
	if err != nil {
		return Distance{}, err
	}

	minima := NearestDistances(fm, rm)
	mean, std := stat.PopMeanStdDev(minima, nil)
	return Distance{Mean: mean, Std: std}, nil
}

func standardize(f *frame.Frame, mask []bool) (mat.Matrix, error) {
	X, err := f.ToMatrix()
	if err != nil {
		return nil, err
	}
	rows, _ := X.Dims()
	if rows < 2 {
		// 1 行では標本標準偏差が定義できないのでそのまま使う
		return X, nil
	}
	scaler := preprocessing.NewStandardScaler(preprocessing.WithDDOF(1), preprocessing.WithColumnMask(mask))
	return scaler.FitTransform(X)
}

// NearestDistances returns, for every row of from, the Euclidean distance to
// the closest row of to. Rows of from are processed in parallel.
func NearestDistances(from, to mat.Matrix) []float64 {
	nFrom, cols := from.Dims()
	nTo, _ := to.Dims()

	toRows := make([][]float64, nTo)
	for i := range toRows {
		toRows[i] = make([]float64, cols)
		mat.Row(toRows[i], i, to)
	}

	out := make([]float64, nFrom)
	parallel.ParallelizeWithThreshold(nFrom, parallelThreshold, func(start, end int) {
		row := make([]float64, cols)
		for i := start; i < end; i++ {
			mat.Row(row, i, from)
			best := math.Inf(1)
			for _, t := range toRows {
				if d := floats.Distance(row, t, 2); d < best {
					best = d
					if best == 0 {
						break
					}
				}
			}
			out[i] = best
		}
	})
	return out
}
