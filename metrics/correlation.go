package metrics

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// CorrelationFunc computes a correlation coefficient between two equally long
// vectors. It returns NaN when the coefficient is undefined, e.g. when either
// vector is constant.
type CorrelationFunc func(x, y []float64) float64

// Pearson returns the Pearson product-moment correlation.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	if isConstant(x) || isConstant(y) {
		return math.NaN()
	}
	return clampUnit(stat.Correlation(x, y, nil))
}

// Spearman returns the Spearman rank correlation (Pearson on average ranks).
func Spearman(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	return Pearson(Rank(x), Rank(y))
}

// Kendall returns Kendall's tau-b, which corrects for ties in either vector.
func Kendall(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n < 2 {
		return math.NaN()
	}
	var concordant, discordant, tiesX, tiesY float64
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			dx := x[i] - x[j]
			dy := y[i] - y[j]
			switch {
			case dx == 0 && dy == 0:
			case dx == 0:
				tiesX++
			case dy == 0:
				tiesY++
			case (dx > 0) == (dy > 0):
				concordant++
			default:
				discordant++
			}
		}
	}
	denom := math.Sqrt((concordant + discordant + tiesX) * (concordant + discordant + tiesY))
	if denom == 0 {
		return math.NaN()
	}
	return clampUnit((concordant - discordant) / denom)
}

// ParseCorrelation resolves "pearsonr", "spearmanr" or "kendalltau" (the
// trailing suffix is optional).
func ParseCorrelation(name string) (CorrelationFunc, error) {
	switch strings.ToLower(name) {
	case "pearsonr", "pearson", "":
		return Pearson, nil
	case "spearmanr", "spearman":
		return Spearman, nil
	case "kendalltau", "kendall":
		return Kendall, nil
	default:
		return nil, errors.NewValidationError("metric", "must be one of pearsonr, spearmanr, kendalltau", name)
	}
}

// Rank assigns 1-based ranks, giving tied values the average of their ranks.
func Rank(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	ranks := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && x[idx[j]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}
	return ranks
}

func isConstant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
