package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/synthcheck/core/model"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// StandardScaler はscikit-learn互換の標準化スケーラー
// データを平均0、標準偏差1に変換する
type StandardScaler struct {
	state *model.StateManager

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差（0 の場合は 1）
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int

	withMean bool
	withStd  bool
	ddof     int
	mask     []bool
}

// ScalerOption はStandardScalerの設定オプション
type ScalerOption func(*StandardScaler)

// WithMean は平均を引くかどうかを設定する (デフォルト: true)
func WithMean(b bool) ScalerOption {
	return func(s *StandardScaler) { s.withMean = b }
}

// WithStd は標準偏差で割るかどうかを設定する (デフォルト: true)
func WithStd(b bool) ScalerOption {
	return func(s *StandardScaler) { s.withStd = b }
}

// WithDDOF は標準偏差の自由度補正を設定する。
// 0 は母標準偏差（scikit-learn のデフォルト）、1 は標本標準偏差（pandas のデフォルト）
func WithDDOF(ddof int) ScalerOption {
	return func(s *StandardScaler) { s.ddof = ddof }
}

// WithColumnMask は標準化する列を指定する。false の列はそのまま通す
func WithColumnMask(mask []bool) ScalerOption {
	return func(s *StandardScaler) { s.mask = append([]bool(nil), mask...) }
}

// NewStandardScaler は新しいStandardScalerを作成する
//
//	scaler := preprocessing.NewStandardScaler(preprocessing.WithDDOF(1))
//	XScaled, err := scaler.FitTransform(X)
func NewStandardScaler(opts ...ScalerOption) *StandardScaler {
	s := &StandardScaler{
		state:    model.NewStateManager("StandardScaler"),
		withMean: true,
		withStd:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *StandardScaler) scaled(j int) bool {
	return s.mask == nil || s.mask[j]
}

// Fit は訓練データから統計情報（平均、標準偏差）を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	s.state.Reset()
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "StandardScaler.Fit")
	}
	if s.mask != nil && len(s.mask) != c {
		return errors.NewDimensionError("StandardScaler.Fit", len(s.mask), c, 1)
	}
	if s.withStd && r <= s.ddof {
		return errors.NewInsufficientDataError("StandardScaler.Fit", s.ddof+1, r, "samples")
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		s.Scale[j] = 1.0
		if !s.scaled(j) {
			continue
		}
		mat.Col(col, j, X)

		mean := stat.Mean(col, nil)
		if s.withMean {
			s.Mean[j] = mean
		}
		if s.withStd {
			var ss float64
			for _, v := range col {
				ss += (v - mean) * (v - mean)
			}
			std := math.Sqrt(ss / float64(r-s.ddof))
			// 標準偏差が0に近い場合は1のまま（ゼロ除算を避ける）
			if std >= 1e-8 {
				s.Scale[j] = std
			}
		}
	}

	s.state.SetFitted(c, r)
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := s.state.CheckFeatures("Transform", c); err != nil {
		return nil, err
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("InverseTransform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := s.state.CheckFeatures("InverseTransform", c); err != nil {
		return nil, err
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}
	return result, nil
}

var (
	_ model.Transformer     = (*StandardScaler)(nil)
	_ model.ParameterGetter = (*StandardScaler)(nil)
)

// IsFitted はスケーラーが学習済みかどうかを返す
func (s *StandardScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.withMean,
		"with_std":  s.withStd,
		"ddof":      s.ddof,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, ddof=%d)", s.withMean, s.withStd, s.ddof)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, ddof=%d, n_features=%d)",
		s.withMean, s.withStd, s.ddof, s.NFeatures)
}
