// Package neural_network provides a multi-layer perceptron classifier trained
// with Adam on mini-batches, following scikit-learn's MLPClassifier defaults.
package neural_network

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/core/model"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
	"github.com/YuminosukeSato/synthcheck/pkg/log"
)

// MLPClassifier は ReLU 隠れ層とソフトマックス出力を持つ多層パーセプトロン
type MLPClassifier struct {
	state *model.StateManager

	// Hyperparameters
	hiddenLayerSizes []int
	alpha            float64 // L2 正則化
	learningRate     float64
	batchSize        int // 0 は min(200, n_samples)
	maxIter          int
	tol              float64
	nIterNoChange    int
	randomState      int64

	// Model parameters
	weights  []*mat.Dense // layer l: fan_in x fan_out
	biases   [][]float64
	classes_ []float64
	loss_    float64
	nIter_   int
}

// Option はMLPClassifierの設定オプション
type Option func(*MLPClassifier)

// WithHiddenLayerSizes は隠れ層のユニット数を設定
func WithHiddenLayerSizes(sizes ...int) Option {
	return func(m *MLPClassifier) {
		m.hiddenLayerSizes = append([]int(nil), sizes...)
	}
}

// WithAlpha は L2 正則化の強さを設定
func WithAlpha(alpha float64) Option {
	return func(m *MLPClassifier) { m.alpha = alpha }
}

// WithLearningRate は Adam の初期学習率を設定
func WithLearningRate(lr float64) Option {
	return func(m *MLPClassifier) { m.learningRate = lr }
}

// WithBatchSize はミニバッチサイズを設定
func WithBatchSize(n int) Option {
	return func(m *MLPClassifier) { m.batchSize = n }
}

// WithMaxIter は最大エポック数を設定
func WithMaxIter(n int) Option {
	return func(m *MLPClassifier) { m.maxIter = n }
}

// WithTol は損失改善の許容誤差を設定
func WithTol(tol float64) Option {
	return func(m *MLPClassifier) { m.tol = tol }
}

// WithRandomState は重み初期化とシャッフルの乱数シードを設定
func WithRandomState(seed int64) Option {
	return func(m *MLPClassifier) { m.randomState = seed }
}

// NewMLPClassifier は新しいMLPClassifierを作成
// デフォルト: hidden_layer_sizes=(100,), alpha=1e-4, learning_rate_init=1e-3, max_iter=200
func NewMLPClassifier(opts ...Option) *MLPClassifier {
	m := &MLPClassifier{
		state:            model.NewStateManager("MLPClassifier"),
		hiddenLayerSizes: []int{100},
		alpha:            1e-4,
		learningRate:     1e-3,
		maxIter:          200,
		tol:              1e-4,
		nIterNoChange:    10,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// adam は Adam オプティマイザの状態
type adam struct {
	lr, beta1, beta2, eps float64
	t                     int
	m, v                  [][]float64
}

func newAdam(lr float64, params [][]float64) *adam {
	a := &adam{lr: lr, beta1: 0.9, beta2: 0.999, eps: 1e-8}
	for _, p := range params {
		a.m = append(a.m, make([]float64, len(p)))
		a.v = append(a.v, make([]float64, len(p)))
	}
	return a
}

func (a *adam) step(params, grads [][]float64) {
	a.t++
	rate := a.lr * math.Sqrt(1-math.Pow(a.beta2, float64(a.t))) / (1 - math.Pow(a.beta1, float64(a.t)))
	for k, p := range params {
		g := grads[k]
		m, v := a.m[k], a.v[k]
		for i := range p {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g[i]
			v[i] = a.beta2*v[i] + (1-a.beta2)*g[i]*g[i]
			p[i] -= rate * m[i] / (math.Sqrt(v[i]) + a.eps)
		}
	}
}

// Fit はミニバッチ Adam で学習する
func (m *MLPClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "MLPClassifier.Fit")
	m.state.Reset()
	for _, h := range m.hiddenLayerSizes {
		if h < 1 {
			return errors.NewValidationError("hidden_layer_sizes", "must be positive", m.hiddenLayerSizes)
		}
	}
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrap(errors.ErrEmptyData, "MLPClassifier.Fit")
	}
	yRows, _ := y.Dims()
	if yRows != nSamples {
		return errors.NewDimensionError("MLPClassifier.Fit", nSamples, yRows, 0)
	}

	m.classes_ = model.UniqueLabels(y)
	index := model.LabelIndex(m.classes_)
	nClasses := len(m.classes_)
	target := mat.NewDense(nSamples, nClasses, nil)
	for i := 0; i < nSamples; i++ {
		target.Set(i, index[y.At(i, 0)], 1)
	}
	Xd := mat.DenseCopyOf(X)

	rng := rand.New(rand.NewPCG(uint64(m.randomState), 0))
	m.initialize(rng, nFeatures, nClasses)

	batch := m.batchSize
	if batch <= 0 {
		batch = 200
	}
	if batch > nSamples {
		batch = nSamples
	}

	opt := newAdam(m.learningRate, m.params())
	order := make([]int, nSamples)
	for i := range order {
		order[i] = i
	}

	best := math.Inf(1)
	noChange := 0
	converged := false
	for epoch := 0; epoch < m.maxIter; epoch++ {
		m.nIter_ = epoch + 1
		rng.Shuffle(nSamples, func(i, j int) { order[i], order[j] = order[j], order[i] })

		var total float64
		for start := 0; start < nSamples; start += batch {
			end := min(start+batch, nSamples)
			xb, yb := rowsOf(Xd, order[start:end]), rowsOf(target, order[start:end])
			loss, grads := m.backprop(xb, yb)
			opt.step(m.params(), grads)
			total += loss * float64(end-start)
		}
		m.loss_ = total / float64(nSamples)
		if err := errors.CheckScalar("MLPClassifier.Fit", m.loss_, epoch); err != nil {
			return err
		}

		if m.loss_ > best-m.tol {
			noChange++
		} else {
			noChange = 0
		}
		if m.loss_ < best {
			best = m.loss_
		}
		if noChange > m.nIterNoChange {
			converged = true
			break
		}
	}
	if !converged {
		log.GetLoggerWithName("neural_network").Debug("mlp reached max_iter",
			log.ModelNameKey, "MLPClassifier",
			log.LossKey, m.loss_,
			"warning", errors.NewConvergenceWarning("MLPClassifier", m.maxIter, "optimizer did not converge"),
		)
	}

	m.state.SetFitted(nFeatures, nSamples)
	return nil
}

// initialize は Glorot 一様分布で重みを初期化する
func (m *MLPClassifier) initialize(rng *rand.Rand, nFeatures, nClasses int) {
	sizes := append(append([]int{nFeatures}, m.hiddenLayerSizes...), nClasses)
	m.weights = make([]*mat.Dense, len(sizes)-1)
	m.biases = make([][]float64, len(sizes)-1)
	for l := 0; l < len(sizes)-1; l++ {
		fanIn, fanOut := sizes[l], sizes[l+1]
		factor := 6.0
		if l == len(sizes)-2 {
			factor = 2.0
		}
		bound := math.Sqrt(factor / float64(fanIn+fanOut))
		w := make([]float64, fanIn*fanOut)
		for i := range w {
			w[i] = (2*rng.Float64() - 1) * bound
		}
		b := make([]float64, fanOut)
		for i := range b {
			b[i] = (2*rng.Float64() - 1) * bound
		}
		m.weights[l] = mat.NewDense(fanIn, fanOut, w)
		m.biases[l] = b
	}
}

// params は重みとバイアスの生データを Adam に渡す順で返す
func (m *MLPClassifier) params() [][]float64 {
	out := make([][]float64, 0, 2*len(m.weights))
	for l, w := range m.weights {
		out = append(out, w.RawMatrix().Data, m.biases[l])
	}
	return out
}

func rowsOf(src *mat.Dense, idx []int) *mat.Dense {
	_, c := src.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for k, i := range idx {
		out.SetRow(k, src.RawRowView(i))
	}
	return out
}

// forward は各層の活性化を返す。最後の要素がソフトマックス出力
func (m *MLPClassifier) forward(X mat.Matrix) []*mat.Dense {
	acts := []*mat.Dense{mat.DenseCopyOf(X)}
	for l, w := range m.weights {
		var z mat.Dense
		z.Mul(acts[l], w)
		b := m.biases[l]
		last := l == len(m.weights)-1
		z.Apply(func(_, j int, v float64) float64 {
			v += b[j]
			if !last && v < 0 {
				return 0
			}
			return v
		}, &z)
		if last {
			softmaxRows(&z)
		}
		acts = append(acts, &z)
	}
	return acts
}

func softmaxRows(z *mat.Dense) {
	r, _ := z.Dims()
	for i := 0; i < r; i++ {
		row := z.RawRowView(i)
		maxV := floats.Max(row)
		var sum float64
		for j, v := range row {
			row[j] = math.Exp(v - maxV)
			sum += row[j]
		}
		floats.Scale(1/sum, row)
	}
}

// backprop は交差エントロピー損失と勾配を返す (勾配の順は params と同じ)
func (m *MLPClassifier) backprop(X, Y *mat.Dense) (float64, [][]float64) {
	n, _ := X.Dims()
	acts := m.forward(X)
	out := acts[len(acts)-1]

	var loss float64
	r, c := out.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if Y.At(i, j) > 0 {
				loss -= errors.StabilizeLog(out.At(i, j))
			}
		}
	}
	loss /= float64(n)
	var sq float64
	for _, w := range m.weights {
		sq += mat.Sum(mulElem(w, w))
	}
	loss += 0.5 * m.alpha * sq / float64(n)

	grads := make([][]float64, 2*len(m.weights))
	delta := &mat.Dense{}
	delta.Sub(out, Y)
	delta.Scale(1/float64(n), delta)
	for l := len(m.weights) - 1; l >= 0; l-- {
		var gw mat.Dense
		gw.Mul(acts[l].T(), delta)
		gw.Add(&gw, scaled(m.alpha/float64(n), m.weights[l]))
		gb := make([]float64, m.weights[l].RawMatrix().Cols)
		dr, _ := delta.Dims()
		for i := 0; i < dr; i++ {
			floats.Add(gb, delta.RawRowView(i))
		}
		grads[2*l] = gw.RawMatrix().Data
		grads[2*l+1] = gb

		if l > 0 {
			prev := &mat.Dense{}
			prev.Mul(delta, m.weights[l].T())
			a := acts[l]
			prev.Apply(func(i, j int, v float64) float64 {
				if a.At(i, j) <= 0 {
					return 0
				}
				return v
			}, prev)
			delta = prev
		}
	}
	return loss, grads
}

func mulElem(a, b *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.MulElem(a, b)
	return &out
}

func scaled(f float64, a *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Scale(f, a)
	return &out
}

// PredictProba は Classes() の順に並んだクラス確率を返す
func (m *MLPClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("PredictProba"); err != nil {
		return nil, err
	}
	_, cols := X.Dims()
	if err := m.state.CheckFeatures("PredictProba", cols); err != nil {
		return nil, err
	}
	acts := m.forward(X)
	return acts[len(acts)-1], nil
}

// Predict は確率最大のクラスを返す
func (m *MLPClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	p := proba.(*mat.Dense)
	rows, _ := p.Dims()
	out := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		out.SetVec(i, m.classes_[floats.MaxIdx(p.RawRowView(i))])
	}
	return out, nil
}

// Score は正解率を返す
func (m *MLPClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.Accuracy(y, pred), nil
}

// Classes は学習時に観測したクラスラベルを返す
func (m *MLPClassifier) Classes() []float64 {
	return append([]float64(nil), m.classes_...)
}

// Loss は最終エポックの平均損失を返す
func (m *MLPClassifier) Loss() float64 {
	return m.loss_
}

// NIter は実行したエポック数を返す
func (m *MLPClassifier) NIter() int {
	return m.nIter_
}

// IsFitted はモデルが学習済みかどうかを返す
func (m *MLPClassifier) IsFitted() bool {
	return m.state.IsFitted()
}

// Clone は同じハイパーパラメータを持つ未学習のMLPClassifierを返す
func (m *MLPClassifier) Clone() model.Estimator {
	return NewMLPClassifier(
		WithHiddenLayerSizes(m.hiddenLayerSizes...),
		WithAlpha(m.alpha),
		WithLearningRate(m.learningRate),
		WithBatchSize(m.batchSize),
		WithMaxIter(m.maxIter),
		WithTol(m.tol),
		WithRandomState(m.randomState),
	)
}

// GetParams はハイパーパラメータを返す
func (m *MLPClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"hidden_layer_sizes": append([]int(nil), m.hiddenLayerSizes...),
		"activation":         "relu",
		"solver":             "adam",
		"alpha":              m.alpha,
		"learning_rate_init": m.learningRate,
		"batch_size":         m.batchSize,
		"max_iter":           m.maxIter,
		"tol":                m.tol,
		"random_state":       m.randomState,
	}
}

var (
	_ model.ProbabilisticClassifier = (*MLPClassifier)(nil)
	_ model.ParameterGetter         = (*MLPClassifier)(nil)
)
