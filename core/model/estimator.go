// Package model は推定器とトランスフォーマーが満たすインターフェースを定義します。
// ML efficacy パネルに載せる推定器は Estimator に加えて Scorer と Cloner を実装する必要があります。
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator は教師あり学習モデルの基本インターフェース
type Estimator interface {
	Fitter
	Predictor
}

// Scorer はスコアを計算できるモデルのインターフェース。
// 分類器は正解率、回帰器は決定係数 R² を返す。
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Cloner は同じハイパーパラメータを持つ未学習のコピーを作れるモデルのインターフェース。
// フォールドごと・データセットごとに独立したインスタンスを学習させるために使う。
type Cloner interface {
	Clone() Estimator
}

// Classifier は分類モデルのインターフェース
type Classifier interface {
	Estimator
	Scorer

	// Classes は学習時に観測したクラスラベルを昇順で返す
	Classes() []float64
}

// ProbabilisticClassifier はクラス確率を返せる分類モデル
type ProbabilisticClassifier interface {
	Classifier

	// PredictProba は Classes() の順に並んだクラス確率を返す
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// Regressor は回帰モデルのインターフェース
type Regressor interface {
	Estimator
	Scorer
}

// LinearModel は線形モデルのインターフェース
type LinearModel interface {
	// Weights は学習された重み（係数）を返す
	Weights() []float64
	// Intercept は学習された切片を返す
	Intercept() float64
}

// ParameterGetter はハイパーパラメータを公開するモデルのインターフェース
type ParameterGetter interface {
	GetParams() map[string]interface{}
}
