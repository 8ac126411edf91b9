package linear_model

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/core/model"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
	"github.com/YuminosukeSato/synthcheck/pkg/log"
	"github.com/YuminosukeSato/synthcheck/preprocessing"
)

// LogisticRegression は L2 正則化付きロジスティック回帰
// 2 クラスは単一の二値モデル、3 クラス以上は one-vs-rest で学習する。
// 特徴量は内部で標準化してから勾配降下法で最適化する
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	C            float64 // 正則化強度の逆数
	fitIntercept bool
	maxIter      int
	tol          float64
	randomState  int64

	// Model parameters
	coef_      [][]float64 // 標準化後の空間での係数 (binary: 1 x n_features)
	intercept_ []float64
	classes_   []float64
	nIter_     []int

	scaler *preprocessing.StandardScaler
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier.
// Defaults: C=1.0, max_iter=100, tol=1e-4, random_state=0.
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager("LogisticRegression"),
		C:            1.0,
		fitIntercept: true,
		maxIter:      100,
		tol:          1e-4,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRRandomState sets the seed of the weight initialisation
func WithLRRandomState(seed int64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.randomState = seed
	}
}

// Fit trains the logistic regression model
func (lr *LogisticRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LogisticRegression.Fit")
	lr.state.Reset()
	if lr.C <= 0 {
		return errors.NewValidationError("C", "must be positive", lr.C)
	}

	Xd, yv, err := checkXy("LogisticRegression.Fit", X, y)
	if err != nil {
		return err
	}
	nSamples, nFeatures := Xd.Dims()

	lr.scaler = preprocessing.NewStandardScaler()
	Xs, err := lr.scaler.FitTransform(Xd)
	if err != nil {
		return err
	}

	lr.classes_ = model.UniqueLabels(y)
	rng := rand.New(rand.NewPCG(uint64(lr.randomState), 0))

	// 1 クラスしかない場合は学習せずそのクラスを返すモデルにする
	nModels := len(lr.classes_)
	switch {
	case nModels == 1:
		nModels = 0
	case nModels == 2:
		nModels = 1
	}

	lr.coef_ = make([][]float64, nModels)
	lr.intercept_ = make([]float64, nModels)
	lr.nIter_ = make([]int, nModels)
	for k := 0; k < nModels; k++ {
		positive := lr.classes_[k]
		if nModels == 1 {
			positive = lr.classes_[1]
		}
		target := make([]float64, nSamples)
		for i, v := range yv {
			if v == positive {
				target[i] = 1
			}
		}
		w := make([]float64, nFeatures)
		for j := range w {
			w[j] = rng.NormFloat64() * 0.01
		}
		lr.coef_[k] = w
		lr.nIter_[k] = lr.descend(Xs, target, w, &lr.intercept_[k])
		if lr.nIter_[k] == lr.maxIter {
			log.GetLoggerWithName("linear_model").Debug("logistic regression did not converge",
				log.ModelNameKey, "LogisticRegression",
				"warning", errors.NewConvergenceWarning("LogisticRegression", lr.maxIter, fmt.Sprintf("class %v", positive)),
			)
		}
	}

	lr.state.SetFitted(nFeatures, nSamples)
	return nil
}

// descend はバッチ勾配降下で二値ロジスティック損失を最小化し、反復回数を返す
func (lr *LogisticRegression) descend(X mat.Matrix, target, w []float64, intercept *float64) int {
	nSamples, nFeatures := X.Dims()
	lambda := 1.0 / (lr.C * float64(nSamples))
	grad := make([]float64, nFeatures)
	row := make([]float64, nFeatures)

	for iter := 0; iter < lr.maxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradIntercept float64
		for i := 0; i < nSamples; i++ {
			mat.Row(row, i, X)
			diff := sigmoid(*intercept+floats.Dot(row, w)) - target[i]
			gradIntercept += diff
			floats.AddScaled(grad, diff, row)
		}
		floats.Scale(1/float64(nSamples), grad)
		gradIntercept /= float64(nSamples)
		floats.AddScaled(grad, lambda, w)

		rate := 1.0 / (1.0 + 0.1*float64(iter))
		floats.AddScaled(w, -rate, grad)
		if lr.fitIntercept {
			*intercept -= rate * gradIntercept
		}

		maxGrad := math.Max(math.Abs(gradIntercept), floats.Norm(grad, math.Inf(1)))
		if maxGrad < lr.tol {
			return iter + 1
		}
	}
	return lr.maxIter
}

// decision は標準化済みの 1 行に対する各モデルの線形スコアを返す
func (lr *LogisticRegression) decision(row []float64, out []float64) {
	for k, w := range lr.coef_ {
		out[k] = lr.intercept_[k] + floats.Dot(row, w)
	}
}

func (lr *LogisticRegression) standardize(method string, X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted(method); err != nil {
		return nil, err
	}
	_, cols := X.Dims()
	if err := lr.state.CheckFeatures(method, cols); err != nil {
		return nil, err
	}
	return lr.scaler.Transform(X)
}

// PredictProba returns probability estimates for each class in Classes() order
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	Xs, err := lr.standardize("PredictProba", X)
	if err != nil {
		return nil, err
	}
	nSamples, nFeatures := Xs.Dims()
	nClasses := len(lr.classes_)
	probas := mat.NewDense(nSamples, nClasses, nil)
	row := make([]float64, nFeatures)
	scores := make([]float64, len(lr.coef_))

	for i := 0; i < nSamples; i++ {
		mat.Row(row, i, Xs)
		lr.decision(row, scores)
		switch nClasses {
		case 1:
			probas.Set(i, 0, 1)
		case 2:
			p := sigmoid(scores[0])
			probas.Set(i, 0, 1-p)
			probas.Set(i, 1, p)
		default:
			// OVR の確率を正規化する (scikit-learn と同じ)
			var sum float64
			for k, s := range scores {
				scores[k] = sigmoid(s)
				sum += scores[k]
			}
			for k, s := range scores {
				probas.Set(i, k, s/sum)
			}
		}
	}
	return probas, nil
}

// Predict makes predictions for input data
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	probas, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	nSamples, nClasses := probas.Dims()
	predictions := mat.NewVecDense(nSamples, nil)
	row := make([]float64, nClasses)
	for i := 0; i < nSamples; i++ {
		mat.Row(row, i, probas)
		predictions.SetVec(i, lr.classes_[floats.MaxIdx(row)])
	}
	return predictions, nil
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.Accuracy(y, predictions), nil
}

// Classes returns the class labels seen during Fit
func (lr *LogisticRegression) Classes() []float64 {
	return append([]float64(nil), lr.classes_...)
}

// NIter returns the iterations used per binary model
func (lr *LogisticRegression) NIter() []int {
	return append([]int(nil), lr.nIter_...)
}

// IsFitted reports whether Fit has completed
func (lr *LogisticRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// Clone returns an unfitted copy with the same hyperparameters
func (lr *LogisticRegression) Clone() model.Estimator {
	return NewLogisticRegression(
		WithLRC(lr.C),
		WithLogisticFitIntercept(lr.fitIntercept),
		WithLRMaxIter(lr.maxIter),
		WithLRTol(lr.tol),
		WithLRRandomState(lr.randomState),
	)
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       "l2",
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
		"random_state":  lr.randomState,
	}
}

// sigmoid computes the sigmoid function
func sigmoid(z float64) float64 {
	if z < 0 {
		e := math.Exp(z)
		return e / (1 + e)
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

var (
	_ model.ProbabilisticClassifier = (*LogisticRegression)(nil)
	_ model.ParameterGetter         = (*LogisticRegression)(nil)
)
