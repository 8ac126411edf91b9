package tree

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/core/model"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// DecisionTreeClassifier は CART 分類木
type DecisionTreeClassifier struct {
	cart
	classes_ []float64
}

// NewDecisionTreeClassifier は新しい分類木を作成
// デフォルト: criterion="gini", max_depth=0 (無制限), min_samples_split=2, min_samples_leaf=1
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	p := params{criterion: "gini", minSamplesSplit: 2, minSamplesLeaf: 1}
	for _, opt := range opts {
		opt(&p)
	}
	return &DecisionTreeClassifier{
		cart: cart{params: p, state: model.NewStateManager("DecisionTreeClassifier")},
	}
}

// Fit は全サンプルで分類木を学習する
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	return dt.FitSubset(X, y, nil)
}

// FitSubset は rows で指定した行 (重複可) だけを使って学習する。
// rows が nil の場合は全行を使う
func (dt *DecisionTreeClassifier) FitSubset(X, y mat.Matrix, rows []int) (err error) {
	defer errors.Recover(&err, "DecisionTreeClassifier.Fit")
	dt.state.Reset()
	if err := dt.validate(); err != nil {
		return err
	}
	entropy := false
	switch dt.criterion {
	case "gini":
	case "entropy":
		entropy = true
	default:
		return errors.NewValidationError("criterion", "must be gini or entropy", dt.criterion)
	}

	cols, yv, err := checkInput("DecisionTreeClassifier.Fit", X, y, rows)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = allRows(len(yv))
	}

	// クラスは使用する行だけから決める
	sub := make([]float64, len(rows))
	for k, i := range rows {
		sub[k] = yv[i]
	}
	dt.classes_ = model.UniqueLabels(mat.NewVecDense(len(sub), sub))
	index := model.LabelIndex(dt.classes_)
	yIdx := make([]int, len(yv))
	for _, i := range rows {
		yIdx[i] = index[yv[i]]
	}

	dt.grow(cols, newClassCriterion(yIdx, len(dt.classes_), entropy), rows)
	dt.state.SetFitted(len(cols), len(rows))
	return nil
}

// PredictProba は Classes() の順に並んだクラス確率を返す
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.checkPredict("PredictProba", X); err != nil {
		return nil, err
	}
	rows, _ := X.Dims()
	out := mat.NewDense(rows, len(dt.classes_), nil)
	for i := 0; i < rows; i++ {
		out.SetRow(i, dt.apply(X, i))
	}
	return out, nil
}

// Predict は確率最大のクラスを返す
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.checkPredict("Predict", X); err != nil {
		return nil, err
	}
	rows, _ := X.Dims()
	out := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		out.SetVec(i, dt.classes_[floats.MaxIdx(dt.apply(X, i))])
	}
	return out, nil
}

// Score は正解率を返す
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.Accuracy(y, pred), nil
}

// Classes は学習時に観測したクラスラベルを返す
func (dt *DecisionTreeClassifier) Classes() []float64 {
	return append([]float64(nil), dt.classes_...)
}

// Clone は同じハイパーパラメータを持つ未学習の分類木を返す
func (dt *DecisionTreeClassifier) Clone() model.Estimator {
	return NewDecisionTreeClassifier(dt.options()...)
}

// String は分類木の文字列表現を返す
func (dt *DecisionTreeClassifier) String() string {
	return fmt.Sprintf("DecisionTreeClassifier(criterion=%s, max_depth=%d)", dt.criterion, dt.maxDepth)
}

var (
	_ model.ProbabilisticClassifier = (*DecisionTreeClassifier)(nil)
	_ model.ParameterGetter         = (*DecisionTreeClassifier)(nil)
)
