package association

import (
	"math"
)

// entropy は度数表からシャノンエントロピー (自然対数) を計算する
func entropy(counts map[string]float64, n float64) float64 {
	var h float64
	for _, c := range counts {
		p := c / n
		h -= p * math.Log(p)
	}
	return h
}

// TheilsU returns the uncertainty coefficient U(x|y): the share of the
// entropy of x explained by knowing y. It is asymmetric. A constant x gives 1.
func TheilsU(x, y []string) float64 {
	n := float64(len(x))
	if n == 0 {
		return math.NaN()
	}
	xCounts := make(map[string]float64)
	yCounts := make(map[string]float64)
	joint := make(map[[2]string]float64)
	for i := range x {
		xCounts[x[i]]++
		yCounts[y[i]]++
		joint[[2]string{x[i], y[i]}]++
	}

	hx := entropy(xCounts, n)
	if hx == 0 {
		return 1
	}
	// H(x|y) = Σ p(x,y) log(p(y)/p(x,y))
	var hxy float64
	for k, c := range joint {
		pxy := c / n
		py := yCounts[k[1]] / n
		hxy += pxy * math.Log(py/pxy)
	}
	u := (hx - hxy) / hx
	return math.Max(0, math.Min(1, u))
}

// CorrelationRatio returns η between a nominal grouping and a numeric
// measurement. It is 0 when the measurement is constant.
func CorrelationRatio(categories []string, measurements []float64) float64 {
	n := float64(len(measurements))
	if n == 0 {
		return math.NaN()
	}
	sums := make(map[string]float64)
	counts := make(map[string]float64)
	var total float64
	for i, c := range categories {
		sums[c] += measurements[i]
		counts[c]++
		total += measurements[i]
	}
	mean := total / n

	var between, within float64
	for c, s := range sums {
		d := s/counts[c] - mean
		between += counts[c] * d * d
	}
	for _, v := range measurements {
		within += (v - mean) * (v - mean)
	}
	if within == 0 {
		return 0
	}
	return math.Sqrt(between / within)
}
