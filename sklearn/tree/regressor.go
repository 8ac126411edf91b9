package tree

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/core/model"
	"github.com/YuminosukeSato/synthcheck/metrics"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// DecisionTreeRegressor は二乗誤差を最小化する CART 回帰木
type DecisionTreeRegressor struct {
	cart
}

// NewDecisionTreeRegressor は新しい回帰木を作成
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	p := params{criterion: "squared_error", minSamplesSplit: 2, minSamplesLeaf: 1}
	for _, opt := range opts {
		opt(&p)
	}
	return &DecisionTreeRegressor{
		cart: cart{params: p, state: model.NewStateManager("DecisionTreeRegressor")},
	}
}

// Fit は全サンプルで回帰木を学習する
func (dt *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	return dt.FitSubset(X, y, nil)
}

// FitSubset は rows で指定した行 (重複可) だけを使って学習する
func (dt *DecisionTreeRegressor) FitSubset(X, y mat.Matrix, rows []int) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.Fit")
	dt.state.Reset()
	if err := dt.validate(); err != nil {
		return err
	}
	if dt.criterion != "squared_error" {
		return errors.NewValidationError("criterion", "must be squared_error", dt.criterion)
	}
	cols, yv, err := checkInput("DecisionTreeRegressor.Fit", X, y, rows)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = allRows(len(yv))
	}
	dt.grow(cols, newMSECriterion(yv), rows)
	dt.state.SetFitted(len(cols), len(rows))
	return nil
}

// Predict は到達した葉の平均値を返す
func (dt *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.checkPredict("Predict", X); err != nil {
		return nil, err
	}
	rows, _ := X.Dims()
	out := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		out.SetVec(i, dt.apply(X, i)[0])
	}
	return out, nil
}

// Score は決定係数 R² を返す
func (dt *DecisionTreeRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	yv, err := metrics.VecFromMatrix(y)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(yv, pred.(*mat.VecDense))
}

// Clone は同じハイパーパラメータを持つ未学習の回帰木を返す
func (dt *DecisionTreeRegressor) Clone() model.Estimator {
	return NewDecisionTreeRegressor(dt.options()...)
}

// String は回帰木の文字列表現を返す
func (dt *DecisionTreeRegressor) String() string {
	return fmt.Sprintf("DecisionTreeRegressor(max_depth=%d)", dt.maxDepth)
}

var _ model.Regressor = (*DecisionTreeRegressor)(nil)
