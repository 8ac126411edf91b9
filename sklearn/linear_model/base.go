// Package linear_model provides the linear estimators of the efficacy panels:
// LogisticRegression for classification and Ridge, Lasso and ElasticNet for
// regression. All of them follow scikit-learn's objectives and defaults.
package linear_model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/core/model"
	"github.com/YuminosukeSato/synthcheck/metrics"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// linearRegressor holds the fitted parameters shared by Ridge, Lasso and ElasticNet.
type linearRegressor struct {
	state *model.StateManager
	name  string

	coef_      []float64
	intercept_ float64
}

func newLinearRegressor(name string) linearRegressor {
	return linearRegressor{state: model.NewStateManager(name), name: name}
}

// Weights は学習された係数を返す
func (l *linearRegressor) Weights() []float64 {
	return append([]float64(nil), l.coef_...)
}

// Intercept は学習された切片を返す
func (l *linearRegressor) Intercept() float64 {
	return l.intercept_
}

// IsFitted はモデルが学習済みかどうかを返す
func (l *linearRegressor) IsFitted() bool {
	return l.state.IsFitted()
}

// Predict は X·coef + intercept を返す
func (l *linearRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := l.state.RequireFitted("Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if err := l.state.CheckFeatures("Predict", cols); err != nil {
		return nil, err
	}

	out := mat.NewVecDense(rows, nil)
	out.MulVec(X, mat.NewVecDense(cols, l.coef_))
	for i := 0; i < rows; i++ {
		out.SetVec(i, out.AtVec(i)+l.intercept_)
	}
	return out, nil
}

// Score は決定係数 R² を返す
func (l *linearRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := l.Predict(X)
	if err != nil {
		return 0, err
	}
	return regressionScore(y, pred)
}

func regressionScore(y, pred mat.Matrix) (float64, error) {
	yv, err := metrics.VecFromMatrix(y)
	if err != nil {
		return 0, err
	}
	pv, err := metrics.VecFromMatrix(pred)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(yv, pv)
}

// checkXy validates shapes and returns X as a dense copy and y as a slice.
func checkXy(op string, X, y mat.Matrix) (*mat.Dense, []float64, error) {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if rows != yRows {
		return nil, nil, errors.NewDimensionError(op, rows, yRows, 0)
	}
	if yCols != 1 {
		return nil, nil, errors.NewDimensionError(op, 1, yCols, 1)
	}
	yv := make([]float64, rows)
	mat.Col(yv, 0, y)
	return mat.DenseCopyOf(X), yv, nil
}

// center subtracts column means from X in place and the mean from y.
func center(X *mat.Dense, y []float64) (xMean []float64, yMean float64) {
	rows, cols := X.Dims()
	xMean = make([]float64, cols)
	for j := 0; j < cols; j++ {
		var s float64
		for i := 0; i < rows; i++ {
			s += X.At(i, j)
		}
		xMean[j] = s / float64(rows)
		for i := 0; i < rows; i++ {
			X.Set(i, j, X.At(i, j)-xMean[j])
		}
	}
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(rows)
	for i := range y {
		y[i] -= yMean
	}
	return xMean, yMean
}

// interceptFromMeans returns yMean - xMean·coef.
func interceptFromMeans(xMean []float64, yMean float64, coef []float64) float64 {
	b := yMean
	for j, m := range xMean {
		b -= m * coef[j]
	}
	return b
}
