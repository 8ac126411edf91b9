package metrics

import (
	"sort"

	"github.com/YuminosukeSato/synthcheck/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Confusion は多クラス分類の混同行列
type Confusion struct {
	// Labels は yTrue と yPred に現れたラベルの昇順
	Labels []float64
	// Counts[i][j] は真のラベル Labels[i] を Labels[j] と予測した件数
	Counts [][]int
	total  int
}

// NewConfusion は混同行列を作成する
func NewConfusion(yTrue, yPred *mat.VecDense) (*Confusion, error) {
	n, err := checkPair("Confusion", yTrue, yPred)
	if err != nil {
		return nil, err
	}

	seen := make(map[float64]struct{})
	for i := 0; i < n; i++ {
		seen[yTrue.AtVec(i)] = struct{}{}
		seen[yPred.AtVec(i)] = struct{}{}
	}
	labels := make([]float64, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Float64s(labels)

	pos := make(map[float64]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}
	for i := 0; i < n; i++ {
		counts[pos[yTrue.AtVec(i)]][pos[yPred.AtVec(i)]]++
	}
	return &Confusion{Labels: labels, Counts: counts, total: n}, nil
}

// micro はクラス全体で合算した TP, FP, FN を返す
func (c *Confusion) micro() (tp, fp, fn int) {
	for i := range c.Counts {
		for j, v := range c.Counts[i] {
			if i == j {
				tp += v
			} else {
				fp += v
				fn += v
			}
		}
	}
	return tp, fp, fn
}

// Accuracy は正解率
func (c *Confusion) Accuracy() float64 {
	tp, _, _ := c.micro()
	return float64(tp) / float64(c.total)
}

// MicroPrecision はマイクロ平均の適合率
func (c *Confusion) MicroPrecision() float64 {
	tp, fp, _ := c.micro()
	return errors.SafeDivide(float64(tp), float64(tp+fp))
}

// MicroRecall はマイクロ平均の再現率
func (c *Confusion) MicroRecall() float64 {
	tp, _, fn := c.micro()
	return errors.SafeDivide(float64(tp), float64(tp+fn))
}

// MicroF1 はマイクロ平均の F1 スコア
func (c *Confusion) MicroF1() float64 {
	tp, fp, fn := c.micro()
	return errors.SafeDivide(float64(2*tp), float64(2*tp+fp+fn))
}

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := NewConfusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.Accuracy(), nil
}

// F1Micro はマイクロ平均の F1 スコアを計算する
func F1Micro(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := NewConfusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.MicroF1(), nil
}

// RecallMicro はマイクロ平均の再現率を計算する
func RecallMicro(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := NewConfusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.MicroRecall(), nil
}
