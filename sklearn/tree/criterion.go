package tree

import "math"

// criterion は分割探索中の不純度を逐次的に計算する。
// reset で全サンプルを右側に置き、move で 1 サンプルずつ左側へ移す
type criterion interface {
	reset(idx []int)
	move(i int)
	children() (left, right float64)
	impurity(idx []int) float64
	value(idx []int) []float64
}

// classCriterion は gini / entropy のためのクラス度数を保持する
type classCriterion struct {
	y        []int // クラスインデックス
	nClasses int
	entropy  bool

	left, right []float64
	nLeft       float64
	nRight      float64
}

func newClassCriterion(y []int, nClasses int, entropy bool) *classCriterion {
	return &classCriterion{
		y:        y,
		nClasses: nClasses,
		entropy:  entropy,
		left:     make([]float64, nClasses),
		right:    make([]float64, nClasses),
	}
}

func (c *classCriterion) reset(idx []int) {
	for k := range c.left {
		c.left[k] = 0
		c.right[k] = 0
	}
	for _, i := range idx {
		c.right[c.y[i]]++
	}
	c.nLeft, c.nRight = 0, float64(len(idx))
}

func (c *classCriterion) move(i int) {
	k := c.y[i]
	c.left[k]++
	c.right[k]--
	c.nLeft++
	c.nRight--
}

func (c *classCriterion) children() (float64, float64) {
	return c.fromCounts(c.left, c.nLeft), c.fromCounts(c.right, c.nRight)
}

func (c *classCriterion) impurity(idx []int) float64 {
	counts := c.counts(idx)
	return c.fromCounts(counts, float64(len(idx)))
}

func (c *classCriterion) counts(idx []int) []float64 {
	counts := make([]float64, c.nClasses)
	for _, i := range idx {
		counts[c.y[i]]++
	}
	return counts
}

// value はノードのクラス確率を返す
func (c *classCriterion) value(idx []int) []float64 {
	counts := c.counts(idx)
	n := float64(len(idx))
	for k := range counts {
		counts[k] /= n
	}
	return counts
}

func (c *classCriterion) fromCounts(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	var imp float64
	if c.entropy {
		for _, cnt := range counts {
			if cnt > 0 {
				p := cnt / n
				imp -= p * math.Log2(p)
			}
		}
		return imp
	}
	imp = 1
	for _, cnt := range counts {
		p := cnt / n
		imp -= p * p
	}
	return imp
}

// mseCriterion は平均二乗誤差 (分散) を不純度とする
type mseCriterion struct {
	y []float64

	sumLeft, sqLeft, nLeft    float64
	sumRight, sqRight, nRight float64
}

func newMSECriterion(y []float64) *mseCriterion {
	return &mseCriterion{y: y}
}

func (c *mseCriterion) reset(idx []int) {
	c.sumLeft, c.sqLeft, c.nLeft = 0, 0, 0
	c.sumRight, c.sqRight, c.nRight = 0, 0, 0
	for _, i := range idx {
		v := c.y[i]
		c.sumRight += v
		c.sqRight += v * v
		c.nRight++
	}
}

func (c *mseCriterion) move(i int) {
	v := c.y[i]
	c.sumLeft += v
	c.sqLeft += v * v
	c.nLeft++
	c.sumRight -= v
	c.sqRight -= v * v
	c.nRight--
}

func variance(sum, sq, n float64) float64 {
	if n == 0 {
		return 0
	}
	mean := sum / n
	return math.Max(sq/n-mean*mean, 0)
}

func (c *mseCriterion) children() (float64, float64) {
	return variance(c.sumLeft, c.sqLeft, c.nLeft), variance(c.sumRight, c.sqRight, c.nRight)
}

func (c *mseCriterion) impurity(idx []int) float64 {
	var sum, sq float64
	for _, i := range idx {
		sum += c.y[i]
		sq += c.y[i] * c.y[i]
	}
	return variance(sum, sq, float64(len(idx)))
}

// value はノードの平均値を返す
func (c *mseCriterion) value(idx []int) []float64 {
	var sum float64
	for _, i := range idx {
		sum += c.y[i]
	}
	return []float64{sum / float64(len(idx))}
}
