package association

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/metrics"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// Distance selects how two association matrices are compared.
type Distance string

const (
	Euclidean Distance = "euclidean"
	MAE       Distance = "mae"
	RMSE      Distance = "rmse"
	Cosine    Distance = "cosine"
)

var distanceFuncs = map[Distance]func(a, b []float64) (float64, error){
	Euclidean: metrics.EuclideanDistance,
	MAE:       metrics.MeanAbsoluteError,
	RMSE:      metrics.RootMeanSquaredError,
	Cosine:    metrics.CosineDistance,
}

// Distances lists the accepted distance keys.
func Distances() []string {
	return []string{string(Euclidean), string(MAE), string(RMSE), string(Cosine)}
}

// ParseDistance resolves a distance key, failing with InvalidDistanceKindError.
func ParseDistance(s string) (Distance, error) {
	d := Distance(strings.ToLower(s))
	if _, ok := distanceFuncs[d]; !ok {
		return "", errors.NewInvalidDistanceKindError(s, Distances())
	}
	return d, nil
}

func checkPair(real, fake *Matrix) error {
	if len(real.Names) != len(fake.Names) {
		return errors.NewDimensionError("association.compare", len(real.Names), len(fake.Names), 0)
	}
	for i := range real.Names {
		if real.Names[i] != fake.Names[i] {
			return errors.NewSchemaMismatchErrorf("matrix column %d is %q in real and %q in fake", i, real.Names[i], fake.Names[i])
		}
	}
	if len(real.Names) < 2 {
		return errors.NewInsufficientDataError("association.compare", 2, len(real.Names), "columns")
	}
	return nil
}

// MatrixDistance compares the off-diagonal entries of both matrices entry for entry.
func MatrixDistance(real, fake *Matrix, how Distance) (float64, error) {
	fn, ok := distanceFuncs[how]
	if !ok {
		return 0, errors.NewInvalidDistanceKindError(string(how), Distances())
	}
	if err := checkPair(real, fake); err != nil {
		return 0, err
	}
	return fn(real.OffDiagonal(), fake.OffDiagonal())
}

// Correlation correlates the off-diagonal entries of both matrices. metric
// defaults to Pearson when nil.
func Correlation(real, fake *Matrix, metric metrics.CorrelationFunc) (float64, error) {
	if metric == nil {
		metric = metrics.Pearson
	}
	if err := checkPair(real, fake); err != nil {
		return 0, err
	}
	return metric(real.OffDiagonal(), fake.OffDiagonal()), nil
}

// ColumnCorrelation is the per-column similarity of the sorted value
// distributions of real and fake.
type ColumnCorrelation struct {
	Column string
	Value  float64
}

// ColumnCorrelations compares every column of real with the same column of
// fake after sorting both: Theil's U for categorical columns (on their tokens)
// and Pearson for numerical ones. It returns the per-column values in frame
// order and their mean, ignoring undefined (NaN) values.
func ColumnCorrelations(real, fake *frame.Frame, categorical []string) ([]ColumnCorrelation, float64, error) {
	isCat := make(map[string]bool, len(categorical))
	for _, name := range categorical {
		isCat[name] = true
	}

	out := make([]ColumnCorrelation, 0, real.NCols())
	var kept []float64
	for _, rc := range real.Columns() {
		fc, ok := fake.Column(rc.Name())
		if !ok {
			return nil, 0, errors.NewSchemaMismatchError([]string{rc.Name()}, nil)
		}
		if rc.Len() != fc.Len() {
			return nil, 0, errors.NewDimensionError("association.ColumnCorrelations", rc.Len(), fc.Len(), 0)
		}

		var v float64
		if isCat[rc.Name()] || rc.Kind() != frame.Numeric {
			r := rc.AsCategorical(MissingToken).Strings()
			f := fc.AsCategorical(MissingToken).Strings()
			sort.Strings(r)
			sort.Strings(f)
			v = TheilsU(r, f)
		} else {
			if fc.Kind() != frame.Numeric {
				return nil, 0, errors.NewSchemaMismatchErrorf("column %q is numeric in real only", rc.Name())
			}
			r, f := rc.Floats(), fc.Floats()
			sort.Float64s(r)
			sort.Float64s(f)
			v = metrics.Pearson(r, f)
		}
		out = append(out, ColumnCorrelation{Column: rc.Name(), Value: v})
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return out, math.NaN(), nil
	}
	return out, stat.Mean(kept, nil), nil
}
