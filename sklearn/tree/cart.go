// Package tree provides CART decision trees for classification (gini or
// entropy) and regression (squared error).
package tree

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/core/model"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

const leaf = -1

// node はフラットな配列に格納される木のノード
type node struct {
	feature   int // leaf の場合は -1
	threshold float64
	left      int
	right     int
	value     []float64
	nSamples  int
	impurity  float64
}

// params は分類木と回帰木で共通のハイパーパラメータ
type params struct {
	criterion       string
	maxDepth        int // 0 は無制限
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int // 0 は全特徴量
	seed            uint64
	stream          uint64
}

// Option は決定木の設定オプション
type Option func(*params)

// WithCriterion は不純度の種類を設定 (分類: "gini", "entropy" / 回帰: "squared_error")
func WithCriterion(criterion string) Option {
	return func(p *params) {
		p.criterion = criterion
	}
}

// WithMaxDepth は木の最大深さを設定 (0 は無制限)
func WithMaxDepth(depth int) Option {
	return func(p *params) {
		p.maxDepth = depth
	}
}

// WithMinSamplesSplit は分割に必要な最小サンプル数を設定
func WithMinSamplesSplit(n int) Option {
	return func(p *params) {
		p.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf は葉に必要な最小サンプル数を設定
func WithMinSamplesLeaf(n int) Option {
	return func(p *params) {
		p.minSamplesLeaf = n
	}
}

// WithMaxFeatures は各ノードで検討する特徴量数を設定 (0 は全特徴量)
func WithMaxFeatures(k int) Option {
	return func(p *params) {
		p.maxFeatures = k
	}
}

// WithRandomState は特徴量サンプリングの乱数シードを設定
func WithRandomState(seed int64) Option {
	return func(p *params) {
		p.seed = uint64(seed)
	}
}

// WithRandomStream はシードと PCG ストリームを直接指定する。
// ランダムフォレストが木ごとに独立したストリームを割り当てるのに使う
func WithRandomStream(seed, stream uint64) Option {
	return func(p *params) {
		p.seed = seed
		p.stream = stream
	}
}

func (p params) options() []Option {
	return []Option{
		WithCriterion(p.criterion),
		WithMaxDepth(p.maxDepth),
		WithMinSamplesSplit(p.minSamplesSplit),
		WithMinSamplesLeaf(p.minSamplesLeaf),
		WithMaxFeatures(p.maxFeatures),
		WithRandomStream(p.seed, p.stream),
	}
}

func (p params) getParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":         p.criterion,
		"max_depth":         p.maxDepth,
		"min_samples_split": p.minSamplesSplit,
		"min_samples_leaf":  p.minSamplesLeaf,
		"max_features":      p.maxFeatures,
		"random_state":      int64(p.seed),
	}
}

func (p params) validate() error {
	if p.maxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be >= 0", p.maxDepth)
	}
	if p.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be >= 2", p.minSamplesSplit)
	}
	if p.minSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be >= 1", p.minSamplesLeaf)
	}
	if p.maxFeatures < 0 {
		return errors.NewValidationError("max_features", "must be >= 0", p.maxFeatures)
	}
	return nil
}

// cart は学習済みの木構造と構築処理を持つ
type cart struct {
	params
	state *model.StateManager

	nodes       []node
	importances []float64
	depth       int
}

// builder は 1 回の学習の作業領域
type builder struct {
	p     params
	crit  criterion
	cols  [][]float64
	rng   *rand.Rand
	nodes []node
	gain  []float64
	depth int
}

// checkInput は X と y を検証し、列優先の特徴量と目的変数を返す
func checkInput(op string, X, y mat.Matrix, rows []int) ([][]float64, []float64, error) {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	yRows, yCols := y.Dims()
	if yRows != n {
		return nil, nil, errors.NewDimensionError(op, n, yRows, 0)
	}
	if yCols != 1 {
		return nil, nil, errors.NewDimensionError(op, 1, yCols, 1)
	}
	if rows != nil && len(rows) == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	cols := make([][]float64, p)
	for j := range cols {
		cols[j] = make([]float64, n)
		mat.Col(cols[j], j, X)
	}
	yv := make([]float64, n)
	mat.Col(yv, 0, y)
	return cols, yv, nil
}

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// grow は rows (重複可) を学習サンプルとして木を構築する
func (t *cart) grow(cols [][]float64, crit criterion, rows []int) {
	b := &builder{
		p:    t.params,
		crit: crit,
		cols: cols,
		rng:  rand.New(rand.NewPCG(t.seed, t.stream)),
		gain: make([]float64, len(cols)),
	}
	idx := append([]int(nil), rows...)
	b.build(idx, 0)

	var total float64
	for _, g := range b.gain {
		total += g
	}
	if total > 0 {
		for j := range b.gain {
			b.gain[j] /= total
		}
	}
	t.nodes = b.nodes
	t.importances = b.gain
	t.depth = b.depth
}

type split struct {
	feature   int
	threshold float64
	pos       int
	score     float64
}

// build はノードを再帰的に作り、そのインデックスを返す
func (b *builder) build(idx []int, depth int) int {
	if depth > b.depth {
		b.depth = depth
	}
	id := len(b.nodes)
	imp := b.crit.impurity(idx)
	b.nodes = append(b.nodes, node{
		feature:  leaf,
		value:    b.crit.value(idx),
		nSamples: len(idx),
		impurity: imp,
	})

	if imp <= 1e-12 || len(idx) < b.p.minSamplesSplit || len(idx) < 2*b.p.minSamplesLeaf ||
		(b.p.maxDepth > 0 && depth >= b.p.maxDepth) {
		return id
	}

	best, ok := b.bestSplit(idx, imp)
	if !ok {
		return id
	}

	// best.feature で並べ替えて左右に分ける
	sortByFeature(idx, b.cols[best.feature])
	left := append([]int(nil), idx[:best.pos]...)
	right := append([]int(nil), idx[best.pos:]...)

	b.gain[best.feature] += math.Max(best.score, 0)
	l := b.build(left, depth+1)
	r := b.build(right, depth+1)

	nd := &b.nodes[id]
	nd.feature = best.feature
	nd.threshold = best.threshold
	nd.left = l
	nd.right = r
	return id
}

func sortByFeature(idx []int, col []float64) {
	sort.SliceStable(idx, func(a, b int) bool { return col[idx[a]] < col[idx[b]] })
}

// bestSplit は不純度の重み付き減少量が最大となる分割を探す
func (b *builder) bestSplit(idx []int, parentImpurity float64) (split, bool) {
	nFeatures := len(b.cols)
	features := make([]int, nFeatures)
	for j := range features {
		features[j] = j
	}
	if b.p.maxFeatures > 0 && b.p.maxFeatures < nFeatures {
		b.rng.Shuffle(nFeatures, func(i, j int) { features[i], features[j] = features[j], features[i] })
		features = features[:b.p.maxFeatures]
	}

	n := float64(len(idx))
	// scikit-learn と同様に改善量 0 の分割も許す
	best := split{feature: leaf, score: math.Inf(-1)}
	sorted := append([]int(nil), idx...)
	for _, f := range features {
		col := b.cols[f]
		sortByFeature(sorted, col)
		b.crit.reset(sorted)
		for pos := 1; pos < len(sorted); pos++ {
			b.crit.move(sorted[pos-1])
			lo, hi := col[sorted[pos-1]], col[sorted[pos]]
			if hi <= lo+1e-7 {
				continue
			}
			if pos < b.p.minSamplesLeaf || len(sorted)-pos < b.p.minSamplesLeaf {
				continue
			}
			impL, impR := b.crit.children()
			nl, nr := float64(pos), n-float64(pos)
			score := n*parentImpurity - nl*impL - nr*impR
			if score > best.score+1e-12 {
				threshold := lo/2 + hi/2
				if threshold >= hi || math.IsInf(threshold, 0) {
					threshold = lo
				}
				best = split{feature: f, threshold: threshold, pos: pos, score: score}
			}
		}
	}
	return best, best.feature != leaf
}

// apply は 1 行に対応する葉の値を返す
func (t *cart) apply(X mat.Matrix, i int) []float64 {
	k := 0
	for t.nodes[k].feature != leaf {
		nd := t.nodes[k]
		if X.At(i, nd.feature) <= nd.threshold {
			k = nd.left
		} else {
			k = nd.right
		}
	}
	return t.nodes[k].value
}

func (t *cart) checkPredict(method string, X mat.Matrix) error {
	if err := t.state.RequireFitted(method); err != nil {
		return err
	}
	_, cols := X.Dims()
	return t.state.CheckFeatures(method, cols)
}

// FeatureImportances は不純度減少に基づく特徴量重要度 (合計 1) を返す
func (t *cart) FeatureImportances() []float64 {
	return append([]float64(nil), t.importances...)
}

// GetDepth は学習済みの木の深さを返す
func (t *cart) GetDepth() int {
	return t.depth
}

// GetNLeaves は葉の数を返す
func (t *cart) GetNLeaves() int {
	n := 0
	for _, nd := range t.nodes {
		if nd.feature == leaf {
			n++
		}
	}
	return n
}

// IsFitted はモデルが学習済みかどうかを返す
func (t *cart) IsFitted() bool {
	return t.state.IsFitted()
}

// GetParams はハイパーパラメータを返す
func (t *cart) GetParams() map[string]interface{} {
	return t.params.getParams()
}
