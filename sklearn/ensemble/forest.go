// Package ensemble provides bagged random forests built on sklearn/tree.
// Every tree owns its own PCG stream, so a fixed random state gives identical
// forests regardless of how many trees are trained concurrently.
package ensemble

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/core/parallel"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
	"github.com/YuminosukeSato/synthcheck/sklearn/tree"
)

// forestParams はランダムフォレストの共通ハイパーパラメータ
type forestParams struct {
	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     string // "sqrt", "log2", "all"
	bootstrap       bool
	randomState     int64
	workers         int
}

// Option はランダムフォレストの設定オプション
type Option func(*forestParams)

// WithNEstimators は木の本数を設定
func WithNEstimators(n int) Option {
	return func(p *forestParams) { p.nEstimators = n }
}

// WithMaxDepth は各木の最大深さを設定 (0 は無制限)
func WithMaxDepth(depth int) Option {
	return func(p *forestParams) { p.maxDepth = depth }
}

// WithMinSamplesSplit は分割に必要な最小サンプル数を設定
func WithMinSamplesSplit(n int) Option {
	return func(p *forestParams) { p.minSamplesSplit = n }
}

// WithMinSamplesLeaf は葉に必要な最小サンプル数を設定
func WithMinSamplesLeaf(n int) Option {
	return func(p *forestParams) { p.minSamplesLeaf = n }
}

// WithMaxFeatures はノードごとに検討する特徴量数の決め方を設定 ("sqrt", "log2", "all")
func WithMaxFeatures(mode string) Option {
	return func(p *forestParams) { p.maxFeatures = mode }
}

// WithBootstrap はブートストラップサンプリングの有無を設定
func WithBootstrap(b bool) Option {
	return func(p *forestParams) { p.bootstrap = b }
}

// WithRandomState は乱数シードを設定
func WithRandomState(seed int64) Option {
	return func(p *forestParams) { p.randomState = seed }
}

// WithWorkers は木を並列に学習するゴルーチン数を設定 (0 は CPU 数)
func WithWorkers(n int) Option {
	return func(p *forestParams) { p.workers = n }
}

func (p forestParams) options() []Option {
	return []Option{
		WithNEstimators(p.nEstimators),
		WithMaxDepth(p.maxDepth),
		WithMinSamplesSplit(p.minSamplesSplit),
		WithMinSamplesLeaf(p.minSamplesLeaf),
		WithMaxFeatures(p.maxFeatures),
		WithBootstrap(p.bootstrap),
		WithRandomState(p.randomState),
		WithWorkers(p.workers),
	}
}

func (p forestParams) getParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      p.nEstimators,
		"max_depth":         p.maxDepth,
		"min_samples_split": p.minSamplesSplit,
		"min_samples_leaf":  p.minSamplesLeaf,
		"max_features":      p.maxFeatures,
		"bootstrap":         p.bootstrap,
		"random_state":      p.randomState,
	}
}

func (p forestParams) validate() error {
	if p.nEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be >= 1", p.nEstimators)
	}
	switch p.maxFeatures {
	case "sqrt", "log2", "all":
	default:
		return errors.NewValidationError("max_features", "must be sqrt, log2 or all", p.maxFeatures)
	}
	return nil
}

// featuresPerSplit は max_features の指定を特徴量数に変換する
func (p forestParams) featuresPerSplit(nFeatures int) int {
	var k int
	switch p.maxFeatures {
	case "sqrt":
		k = int(math.Sqrt(float64(nFeatures)))
	case "log2":
		k = int(math.Log2(float64(nFeatures)))
	default:
		return 0
	}
	if k < 1 {
		k = 1
	}
	return k
}

// treeOptions は i 番目の木のオプションを返す。
// ブートストラップはストリーム 2i、木の特徴量サンプリングはストリーム 2i+1 を使う
func (p forestParams) treeOptions(i, nFeatures int) []tree.Option {
	return []tree.Option{
		tree.WithMaxDepth(p.maxDepth),
		tree.WithMinSamplesSplit(p.minSamplesSplit),
		tree.WithMinSamplesLeaf(p.minSamplesLeaf),
		tree.WithMaxFeatures(p.featuresPerSplit(nFeatures)),
		tree.WithRandomStream(uint64(p.randomState), uint64(2*i+1)),
	}
}

func (p forestParams) sample(i, n int) []int {
	rows := make([]int, n)
	if !p.bootstrap {
		for j := range rows {
			rows[j] = j
		}
		return rows
	}
	rng := rand.New(rand.NewPCG(uint64(p.randomState), uint64(2*i)))
	for j := range rows {
		rows[j] = rng.IntN(n)
	}
	return rows
}

// subsetFitter は行サブセットで学習できる木
type subsetFitter interface {
	FitSubset(X, y mat.Matrix, rows []int) error
}

// fitTrees は木を並列に学習する。結果は木ごとのスロットに書き込まれる
func (p forestParams) fitTrees(op string, X, y mat.Matrix, trees []subsetFitter) error {
	n, _ := X.Dims()
	errs := make([]error, len(trees))
	parallel.ParallelizeWorkers(len(trees), p.workers, func(start, end int) {
		for i := start; i < end; i++ {
			i := i
			errs[i] = errors.SafeExecute(op, func() error {
				return trees[i].FitSubset(X, y, p.sample(i, n))
			})
		}
	})
	for i, err := range errs {
		if err != nil {
			return errors.Wrapf(err, "%s: tree %d", op, i)
		}
	}
	return nil
}
