package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// DefaultHistogramBins is the number of equal-width bins used by JSDistance.
const DefaultHistogramBins = 25

// BinEdges returns bins+1 equal-width edges spanning [min(x), max(x)]. The
// lowest edge is moved down by 0.1% of the range so the minimum falls inside
// the first right-closed bin. A constant input is widened by 0.1% on both sides.
func BinEdges(x []float64, bins int) ([]float64, error) {
	if len(x) == 0 {
		return nil, errors.NewValueError("BinEdges", "empty vector")
	}
	if bins < 1 {
		return nil, errors.NewValidationError("bins", "must be positive", bins)
	}
	lo, hi := floats.Min(x), floats.Max(x)
	if lo == hi {
		adj := 0.001 * math.Abs(lo)
		if lo == 0 {
			adj = 0.001
		}
		lo, hi = lo-adj, hi+adj
		return floats.Span(make([]float64, bins+1), lo, hi), nil
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	edges[0] -= (hi - lo) * 0.001
	return edges, nil
}

// Histogram returns the share of values of x falling into each right-closed
// bin (edges[i], edges[i+1]]. Values outside the edges are ignored; the shares
// are relative to the values that were kept. ok is false when nothing was kept.
func Histogram(x, edges []float64) (probs []float64, ok bool) {
	probs = make([]float64, len(edges)-1)
	upper := edges[1:]
	kept := 0
	for _, v := range x {
		if math.IsNaN(v) || v <= edges[0] || v > upper[len(upper)-1] {
			continue
		}
		probs[sort.SearchFloat64s(upper, v)]++
		kept++
	}
	if kept == 0 {
		return probs, false
	}
	floats.Scale(1/float64(kept), probs)
	return probs, true
}

// JSDistance returns the Jensen-Shannon distance (square root of the
// divergence, natural log) between the histograms of real and fake, using
// bins equal-width bins derived from real. When no fake value falls inside
// real's range the supports are disjoint and the maximum sqrt(ln 2) is returned.
func JSDistance(real, fake []float64, bins int) (float64, error) {
	if len(fake) == 0 {
		return 0, errors.NewValueError("JSDistance", "empty vector")
	}
	edges, err := BinEdges(real, bins)
	if err != nil {
		return 0, err
	}
	p, _ := Histogram(real, edges)
	q, ok := Histogram(fake, edges)
	if !ok {
		return math.Sqrt(math.Ln2), nil
	}
	js := stat.JensenShannon(p, q)
	if js < 0 {
		js = 0
	}
	return math.Sqrt(js), nil
}

// KSResult is the outcome of a two-sample Kolmogorov-Smirnov test.
type KSResult struct {
	Statistic float64
	PValue    float64
}

// KolmogorovSmirnov runs the two-sided two-sample KS test. The p-value uses
// the asymptotic Kolmogorov distribution with Stephens' small-sample correction.
func KolmogorovSmirnov(x, y []float64) (KSResult, error) {
	if len(x) == 0 || len(y) == 0 {
		return KSResult{}, errors.NewValueError("KolmogorovSmirnov", "empty sample")
	}
	xs := append([]float64(nil), x...)
	ys := append([]float64(nil), y...)
	sort.Float64s(xs)
	sort.Float64s(ys)

	d := stat.KolmogorovSmirnov(xs, nil, ys, nil)
	n, m := float64(len(xs)), float64(len(ys))
	en := math.Sqrt(n * m / (n + m))
	return KSResult{Statistic: d, PValue: kolmogorovSurvival((en + 0.12 + 0.11/en) * d)}, nil
}

// kolmogorovSurvival is P(K > lambda) for the Kolmogorov distribution.
func kolmogorovSurvival(lambda float64) float64 {
	if lambda < 0.2 {
		return 1
	}
	var sum float64
	sign := 1.0
	for k := 1; k <= 100; k++ {
		term := sign * math.Exp(-2*float64(k*k)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}
	p := 2 * sum
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
