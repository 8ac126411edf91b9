package linear_model

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/core/model"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
	"github.com/YuminosukeSato/synthcheck/pkg/log"
)

// ElasticNet は L1 と L2 を組み合わせた正則化付き線形回帰
// 目的関数: 1/(2n) ||y - Xw||² + alpha*l1Ratio*||w||₁ + 0.5*alpha*(1-l1Ratio)*||w||²
// 座標降下法で解き、双対ギャップで収束を判定する
type ElasticNet struct {
	linearRegressor

	// Hyperparameters
	alpha        float64
	l1Ratio      float64
	fitIntercept bool
	maxIter      int
	tol          float64

	nIter_ int
}

// ElasticNetOption は設定オプション
type ElasticNetOption func(*ElasticNet)

// WithENAlpha は正則化の強さを設定
func WithENAlpha(alpha float64) ElasticNetOption {
	return func(e *ElasticNet) {
		e.alpha = alpha
	}
}

// WithENL1Ratio は L1 の比率を設定 (0: Ridge 相当, 1: Lasso)
func WithENL1Ratio(ratio float64) ElasticNetOption {
	return func(e *ElasticNet) {
		e.l1Ratio = ratio
	}
}

// WithENMaxIter は最大反復回数を設定
func WithENMaxIter(maxIter int) ElasticNetOption {
	return func(e *ElasticNet) {
		e.maxIter = maxIter
	}
}

// WithENTol は収束判定の許容誤差を設定
func WithENTol(tol float64) ElasticNetOption {
	return func(e *ElasticNet) {
		e.tol = tol
	}
}

// WithENFitIntercept は切片の学習有無を設定
func WithENFitIntercept(fit bool) ElasticNetOption {
	return func(e *ElasticNet) {
		e.fitIntercept = fit
	}
}

// NewElasticNet は新しいElasticNetモデルを作成
// デフォルト: alpha=1.0, l1Ratio=0.5, maxIter=1000, tol=1e-4
func NewElasticNet(opts ...ElasticNetOption) *ElasticNet {
	return newElasticNet("ElasticNet", opts...)
}

func newElasticNet(name string, opts ...ElasticNetOption) *ElasticNet {
	e := &ElasticNet{
		linearRegressor: newLinearRegressor(name),
		alpha:           1.0,
		l1Ratio:         0.5,
		fitIntercept:    true,
		maxIter:         1000,
		tol:             1e-4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *ElasticNet) options() []ElasticNetOption {
	return []ElasticNetOption{
		WithENAlpha(e.alpha),
		WithENL1Ratio(e.l1Ratio),
		WithENFitIntercept(e.fitIntercept),
		WithENMaxIter(e.maxIter),
		WithENTol(e.tol),
	}
}

// Fit は座標降下法で学習する
func (e *ElasticNet) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, e.name+".Fit")
	e.state.Reset()
	if e.alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", e.alpha)
	}
	if e.l1Ratio < 0 || e.l1Ratio > 1 {
		return errors.NewValidationError("l1_ratio", "must be in [0, 1]", e.l1Ratio)
	}

	Xw, yw, err := checkXy(e.name+".Fit", X, y)
	if err != nil {
		return err
	}
	rows, cols := Xw.Dims()

	var xMean []float64
	var yMean float64
	if e.fitIntercept {
		xMean, yMean = center(Xw, yw)
	}

	// 列ベクトルを連続領域に持っておく
	columns := make([][]float64, cols)
	colNorm := make([]float64, cols)
	for j := range columns {
		columns[j] = make([]float64, rows)
		mat.Col(columns[j], j, Xw)
		colNorm[j] = floats.Dot(columns[j], columns[j])
	}

	n := float64(rows)
	l1Reg := e.alpha * e.l1Ratio * n
	l2Reg := e.alpha * (1 - e.l1Ratio) * n
	tol := e.tol * floats.Dot(yw, yw)

	w := make([]float64, cols)
	residual := append([]float64(nil), yw...)

	converged := false
	for iter := 0; iter < e.maxIter; iter++ {
		e.nIter_ = iter + 1
		var wMax, dMax float64
		for j := 0; j < cols; j++ {
			if colNorm[j] == 0 {
				continue
			}
			old := w[j]
			if old != 0 {
				floats.AddScaled(residual, old, columns[j])
			}
			rho := floats.Dot(columns[j], residual)
			w[j] = softThreshold(rho, l1Reg) / (colNorm[j] + l2Reg)
			if w[j] != 0 {
				floats.AddScaled(residual, -w[j], columns[j])
			}
			dMax = math.Max(dMax, math.Abs(w[j]-old))
			wMax = math.Max(wMax, math.Abs(w[j]))
		}

		if wMax == 0 || dMax/wMax < e.tol || iter == e.maxIter-1 {
			if dualityGap(columns, yw, residual, w, l1Reg, l2Reg) < tol {
				converged = true
				break
			}
		}
	}

	if !converged {
		log.GetLoggerWithName("linear_model").Debug("coordinate descent did not converge",
			log.ModelNameKey, e.name,
			"warning", errors.NewConvergenceWarning(e.name, e.nIter_, "duality gap above tolerance"),
		)
	}

	e.coef_ = w
	e.intercept_ = 0
	if e.fitIntercept {
		e.intercept_ = interceptFromMeans(xMean, yMean, w)
	}
	e.state.SetFitted(cols, rows)
	return nil
}

func softThreshold(x, lambda float64) float64 {
	switch {
	case x > lambda:
		return x - lambda
	case x < -lambda:
		return x + lambda
	default:
		return 0
	}
}

// dualityGap は scikit-learn の enet_coordinate_descent と同じ双対ギャップを計算する
func dualityGap(columns [][]float64, y, residual, w []float64, l1Reg, l2Reg float64) float64 {
	var dualNorm float64
	for j, col := range columns {
		v := floats.Dot(col, residual) - l2Reg*w[j]
		dualNorm = math.Max(dualNorm, math.Abs(v))
	}
	rNorm2 := floats.Dot(residual, residual)
	wNorm2 := floats.Dot(w, w)

	var gap float64
	scale := 1.0
	if dualNorm > l1Reg {
		scale = l1Reg / dualNorm
		gap = 0.5 * (rNorm2 + rNorm2*scale*scale)
	} else {
		gap = rNorm2
	}
	gap += l1Reg*floats.Norm(w, 1) - scale*floats.Dot(residual, y) + 0.5*l2Reg*(1+scale*scale)*wNorm2
	return gap
}

// NIter は実際の反復回数を返す
func (e *ElasticNet) NIter() int {
	return e.nIter_
}

// Clone は同じハイパーパラメータを持つ未学習のElasticNetを返す
func (e *ElasticNet) Clone() model.Estimator {
	return newElasticNet(e.name, e.options()...)
}

// GetParams はハイパーパラメータを返す
func (e *ElasticNet) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         e.alpha,
		"l1_ratio":      e.l1Ratio,
		"fit_intercept": e.fitIntercept,
		"max_iter":      e.maxIter,
		"tol":           e.tol,
	}
}

// Lasso は L1 正則化のみの線形回帰 (l1Ratio=1 の ElasticNet)
type Lasso struct {
	*ElasticNet
}

// NewLasso は新しいLassoモデルを作成 (デフォルト alpha=1.0)
func NewLasso(opts ...ElasticNetOption) *Lasso {
	opts = append(opts, WithENL1Ratio(1.0))
	return &Lasso{ElasticNet: newElasticNet("Lasso", opts...)}
}

// Clone は同じハイパーパラメータを持つ未学習のLassoを返す
func (l *Lasso) Clone() model.Estimator {
	return &Lasso{ElasticNet: newElasticNet("Lasso", l.options()...)}
}

var (
	_ model.Regressor       = (*ElasticNet)(nil)
	_ model.LinearModel     = (*ElasticNet)(nil)
	_ model.Regressor       = (*Lasso)(nil)
	_ model.LinearModel     = (*Lasso)(nil)
	_ model.ParameterGetter = (*Lasso)(nil)
)
