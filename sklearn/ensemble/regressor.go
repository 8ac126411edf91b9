package ensemble

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/core/model"
	"github.com/YuminosukeSato/synthcheck/metrics"
	"github.com/YuminosukeSato/synthcheck/sklearn/tree"
)

// RandomForestRegressor は回帰木のバギングアンサンブル。予測は各木の平均
type RandomForestRegressor struct {
	forestParams
	state *model.StateManager

	trees []*tree.DecisionTreeRegressor
}

// NewRandomForestRegressor は新しいランダムフォレスト回帰器を作成
// デフォルト: n_estimators=100, max_features="all", bootstrap=true
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	p := forestParams{
		nEstimators:     100,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		maxFeatures:     "all",
		bootstrap:       true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return &RandomForestRegressor{forestParams: p, state: model.NewStateManager("RandomForestRegressor")}
}

// Fit は木を並列に学習する
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) error {
	rf.state.Reset()
	if err := rf.validate(); err != nil {
		return err
	}
	n, p := X.Dims()

	rf.trees = make([]*tree.DecisionTreeRegressor, rf.nEstimators)
	fitters := make([]subsetFitter, rf.nEstimators)
	for i := range rf.trees {
		rf.trees[i] = tree.NewDecisionTreeRegressor(rf.treeOptions(i, p)...)
		fitters[i] = rf.trees[i]
	}
	if err := rf.fitTrees("RandomForestRegressor.Fit", X, y, fitters); err != nil {
		return err
	}
	rf.state.SetFitted(p, n)
	return nil
}

// Predict は全ての木の予測を平均する
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := rf.state.RequireFitted("Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if err := rf.state.CheckFeatures("Predict", cols); err != nil {
		return nil, err
	}
	out := mat.NewVecDense(rows, nil)
	for _, t := range rf.trees {
		pred, err := t.Predict(X)
		if err != nil {
			return nil, err
		}
		out.AddVec(out, pred.(*mat.VecDense))
	}
	out.ScaleVec(1/float64(len(rf.trees)), out)
	return out, nil
}

// Score は決定係数 R² を返す
func (rf *RandomForestRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	yv, err := metrics.VecFromMatrix(y)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(yv, pred.(*mat.VecDense))
}

// FeatureImportances は木ごとの重要度の平均を返す
func (rf *RandomForestRegressor) FeatureImportances() []float64 {
	return meanImportances(len(rf.trees), func(i int) []float64 { return rf.trees[i].FeatureImportances() })
}

// IsFitted はモデルが学習済みかどうかを返す
func (rf *RandomForestRegressor) IsFitted() bool {
	return rf.state.IsFitted()
}

// Clone は同じハイパーパラメータを持つ未学習のフォレストを返す
func (rf *RandomForestRegressor) Clone() model.Estimator {
	return NewRandomForestRegressor(rf.options()...)
}

// GetParams はハイパーパラメータを返す
func (rf *RandomForestRegressor) GetParams() map[string]interface{} {
	return rf.getParams()
}

var (
	_ model.Regressor       = (*RandomForestRegressor)(nil)
	_ model.ParameterGetter = (*RandomForestRegressor)(nil)
)
