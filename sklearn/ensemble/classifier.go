package ensemble

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/core/model"
	"github.com/YuminosukeSato/synthcheck/sklearn/tree"
)

// RandomForestClassifier は分類木のバギングアンサンブル。
// 予測は各木のクラス確率の平均 (soft voting)
type RandomForestClassifier struct {
	forestParams
	state *model.StateManager

	trees    []*tree.DecisionTreeClassifier
	classes_ []float64
}

// NewRandomForestClassifier は新しいランダムフォレスト分類器を作成
// デフォルト: n_estimators=100, max_features="sqrt", bootstrap=true
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	p := forestParams{
		nEstimators:     100,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		maxFeatures:     "sqrt",
		bootstrap:       true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return &RandomForestClassifier{forestParams: p, state: model.NewStateManager("RandomForestClassifier")}
}

// Fit は木を並列に学習する
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	rf.state.Reset()
	if err := rf.validate(); err != nil {
		return err
	}
	n, p := X.Dims()

	rf.classes_ = model.UniqueLabels(y)
	rf.trees = make([]*tree.DecisionTreeClassifier, rf.nEstimators)
	fitters := make([]subsetFitter, rf.nEstimators)
	for i := range rf.trees {
		rf.trees[i] = tree.NewDecisionTreeClassifier(rf.treeOptions(i, p)...)
		fitters[i] = rf.trees[i]
	}
	if err := rf.fitTrees("RandomForestClassifier.Fit", X, y, fitters); err != nil {
		return err
	}
	rf.state.SetFitted(p, n)
	return nil
}

// PredictProba は全ての木のクラス確率を平均する
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := rf.state.RequireFitted("PredictProba"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if err := rf.state.CheckFeatures("PredictProba", cols); err != nil {
		return nil, err
	}

	index := model.LabelIndex(rf.classes_)
	out := mat.NewDense(rows, len(rf.classes_), nil)
	for _, t := range rf.trees {
		proba, err := t.PredictProba(X)
		if err != nil {
			return nil, err
		}
		// ブートストラップで欠けたクラスがあるので列を対応付ける
		for k, c := range t.Classes() {
			col := index[c]
			for i := 0; i < rows; i++ {
				out.Set(i, col, out.At(i, col)+proba.At(i, k))
			}
		}
	}
	out.Scale(1/float64(len(rf.trees)), out)
	return out, nil
}

// Predict は平均確率が最大のクラスを返す
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	rows, nClasses := proba.Dims()
	out := mat.NewVecDense(rows, nil)
	row := make([]float64, nClasses)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, proba)
		out.SetVec(i, rf.classes_[floats.MaxIdx(row)])
	}
	return out, nil
}

// Score は正解率を返す
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.Accuracy(y, pred), nil
}

// Classes は学習時に観測したクラスラベルを返す
func (rf *RandomForestClassifier) Classes() []float64 {
	return append([]float64(nil), rf.classes_...)
}

// FeatureImportances は木ごとの重要度の平均を返す
func (rf *RandomForestClassifier) FeatureImportances() []float64 {
	return meanImportances(len(rf.trees), func(i int) []float64 { return rf.trees[i].FeatureImportances() })
}

// IsFitted はモデルが学習済みかどうかを返す
func (rf *RandomForestClassifier) IsFitted() bool {
	return rf.state.IsFitted()
}

// Clone は同じハイパーパラメータを持つ未学習のフォレストを返す
func (rf *RandomForestClassifier) Clone() model.Estimator {
	return NewRandomForestClassifier(rf.options()...)
}

// GetParams はハイパーパラメータを返す
func (rf *RandomForestClassifier) GetParams() map[string]interface{} {
	return rf.getParams()
}

func meanImportances(n int, get func(i int) []float64) []float64 {
	if n == 0 {
		return nil
	}
	var out []float64
	for i := 0; i < n; i++ {
		imp := get(i)
		if out == nil {
			out = make([]float64, len(imp))
		}
		floats.Add(out, imp)
	}
	floats.Scale(1/float64(n), out)
	return out
}

var (
	_ model.ProbabilisticClassifier = (*RandomForestClassifier)(nil)
	_ model.Cloner                  = (*RandomForestClassifier)(nil)
	_ model.ParameterGetter         = (*RandomForestClassifier)(nil)
)
