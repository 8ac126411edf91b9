package linear_model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/core/model"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// Ridge は L2 正則化付きの最小二乗回帰
// 目的関数: ||y - Xw||² + alpha * ||w||²
type Ridge struct {
	linearRegressor

	// Hyperparameters
	alpha        float64
	fitIntercept bool
}

// RidgeOption は設定オプション
type RidgeOption func(*Ridge)

// WithRidgeAlpha は正則化の強さを設定
func WithRidgeAlpha(alpha float64) RidgeOption {
	return func(r *Ridge) {
		r.alpha = alpha
	}
}

// WithRidgeFitIntercept は切片の学習有無を設定
func WithRidgeFitIntercept(fit bool) RidgeOption {
	return func(r *Ridge) {
		r.fitIntercept = fit
	}
}

// NewRidge は新しいRidgeモデルを作成 (デフォルト alpha=1.0)
func NewRidge(opts ...RidgeOption) *Ridge {
	r := &Ridge{
		linearRegressor: newLinearRegressor("Ridge"),
		alpha:           1.0,
		fitIntercept:    true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fit は正規方程式 (XᵀX + αI)w = Xᵀy を解いて学習する
func (r *Ridge) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "Ridge.Fit")
	r.state.Reset()
	if r.alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", r.alpha)
	}

	Xw, yw, err := checkXy("Ridge.Fit", X, y)
	if err != nil {
		return err
	}
	rows, cols := Xw.Dims()

	var xMean []float64
	var yMean float64
	if r.fitIntercept {
		xMean, yMean = center(Xw, yw)
	}

	var gram mat.SymDense
	gram.SymOuterK(1, Xw.T())
	for j := 0; j < cols; j++ {
		gram.SetSym(j, j, gram.At(j, j)+r.alpha)
	}
	var xty mat.VecDense
	xty.MulVec(Xw.T(), mat.NewVecDense(rows, yw))

	coef := mat.NewVecDense(cols, nil)
	var chol mat.Cholesky
	if chol.Factorize(&gram) {
		if err := chol.SolveVecTo(coef, &xty); err != nil {
			return fmt.Errorf("failed to solve ridge system: %w", err)
		}
	} else if err := coef.SolveVec(&gram, &xty); err != nil {
		return errors.Wrap(errors.ErrSingularMatrix, "Ridge.Fit")
	}

	r.coef_ = make([]float64, cols)
	for j := range r.coef_ {
		r.coef_[j] = coef.AtVec(j)
	}
	r.intercept_ = 0
	if r.fitIntercept {
		r.intercept_ = interceptFromMeans(xMean, yMean, r.coef_)
	}

	r.state.SetFitted(cols, rows)
	return nil
}

// Clone は同じハイパーパラメータを持つ未学習のRidgeを返す
func (r *Ridge) Clone() model.Estimator {
	return NewRidge(WithRidgeAlpha(r.alpha), WithRidgeFitIntercept(r.fitIntercept))
}

// GetParams はハイパーパラメータを返す
func (r *Ridge) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         r.alpha,
		"fit_intercept": r.fitIntercept,
	}
}

var (
	_ model.Regressor       = (*Ridge)(nil)
	_ model.LinearModel     = (*Ridge)(nil)
	_ model.ParameterGetter = (*Ridge)(nil)
)
