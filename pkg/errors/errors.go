// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 評価エンジンの各コンポーネントが返す型付きエラーを定義し、
// cockroachdb/errors によるスタックトレースと zerolog 向けの構造化情報を付与します。
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("synthcheck-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ConvergenceWarning は最適化アルゴリズムが収束しなかった場合に発生する警告です。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or adjusting parameters.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// DataConversionWarning はデータの型が暗黙的に変換された場合に発生する警告です。
// 数値型のカテゴリ列を文字列へ変換する際に使われます。
type DataConversionWarning struct {
	Column   string
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("column %q converted from %s to %s. Reason: %s", w.Column, w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning は新しいDataConversionWarningを作成します。
func NewDataConversionWarning(column, from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{Column: column, FromType: from, ToType: to, Reason: reason}
}

// UndefinedMetricWarning は評価指標が計算できない場合に発生する警告です。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	推定器まわりのエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("synthcheck: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("synthcheck: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("synthcheck: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("synthcheck: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ===========================================================================
//
//	評価エンジンのエラー型
//
// ===========================================================================

// SchemaMismatchError は real と fake の列集合が一致しない場合のエラーです。
type SchemaMismatchError struct {
	Missing []string // real にあって fake にない列
	Extra   []string // fake にあって real にない列
	Reason  string
}

func (e *SchemaMismatchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("synthcheck: schema mismatch: %s", e.Reason)
	}
	return fmt.Sprintf("synthcheck: schema mismatch: columns in real and fake are not the same (missing in fake: [%s], extra in fake: [%s])",
		strings.Join(e.Missing, ", "), strings.Join(e.Extra, ", "))
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SchemaMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Strs("missing", e.Missing).
		Strs("extra", e.Extra).
		Str("reason", e.Reason).
		Str("type", "SchemaMismatchError")
}

// NewSchemaMismatchError は列集合の差分からSchemaMismatchErrorを作成します。
func NewSchemaMismatchError(missing, extra []string) error {
	return errors.WithStack(&SchemaMismatchError{Missing: missing, Extra: extra})
}

// NewSchemaMismatchErrorf は理由を指定してSchemaMismatchErrorを作成します。
func NewSchemaMismatchErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&SchemaMismatchError{Reason: fmt.Sprintf(format, args...)})
}

// InsufficientRowsError は要求されたサンプル数がデータセットの行数を超える場合のエラーです。
type InsufficientRowsError struct {
	Requested int
	RealRows  int
	FakeRows  int
}

func (e *InsufficientRowsError) Error() string {
	return fmt.Sprintf("synthcheck: make sure n_samples <= len(fake/real): requested %d, len(real): %d, len(fake): %d",
		e.Requested, e.RealRows, e.FakeRows)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InsufficientRowsError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("requested", e.Requested).
		Int("real_rows", e.RealRows).
		Int("fake_rows", e.FakeRows).
		Str("type", "InsufficientRowsError")
}

// NewInsufficientRowsError は新しいInsufficientRowsErrorを作成します。
func NewInsufficientRowsError(requested, realRows, fakeRows int) error {
	return errors.WithStack(&InsufficientRowsError{Requested: requested, RealRows: realRows, FakeRows: fakeRows})
}

// InsufficientDataError は統計量を意味のある形で計算するには列や行が足りない場合のエラーです。
type InsufficientDataError struct {
	Op       string
	Required int
	Got      int
	What     string // "numerical columns", "samples" など
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("synthcheck: %s: at least %d %s required, got %d", e.Op, e.Required, e.What, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InsufficientDataError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("required", e.Required).
		Int("got", e.Got).
		Str("what", e.What).
		Str("type", "InsufficientDataError")
}

// NewInsufficientDataError は新しいInsufficientDataErrorを作成します。
func NewInsufficientDataError(op string, required, got int, what string) error {
	return errors.WithStack(&InsufficientDataError{Op: op, Required: required, Got: got, What: what})
}

// InvalidTargetTypeError はターゲット種別が "class" でも "regr" でもない場合のエラーです。
type InvalidTargetTypeError struct {
	TargetType string
}

func (e *InvalidTargetTypeError) Error() string {
	return fmt.Sprintf("synthcheck: target_type must be 'regr' or 'class', got %q", e.TargetType)
}

// NewInvalidTargetTypeError は新しいInvalidTargetTypeErrorを作成します。
func NewInvalidTargetTypeError(targetType string) error {
	return errors.WithStack(&InvalidTargetTypeError{TargetType: targetType})
}

// InvalidDistanceKindError は未知の距離関数が指定された場合のエラーです。
type InvalidDistanceKindError struct {
	Kind    string
	Allowed []string
}

func (e *InvalidDistanceKindError) Error() string {
	return fmt.Sprintf("synthcheck: `how` parameter must be in [%s], got %q", strings.Join(e.Allowed, ", "), e.Kind)
}

// NewInvalidDistanceKindError は新しいInvalidDistanceKindErrorを作成します。
func NewInvalidDistanceKindError(kind string, allowed []string) error {
	return errors.WithStack(&InvalidDistanceKindError{Kind: kind, Allowed: allowed})
}

// UnsupportedEstimatorError はパネルの推定器が必要な機能を持たない場合のエラーです。
type UnsupportedEstimatorError struct {
	Estimator string
	Missing   []string // 欠けている機能 ("Score", "Clone" など)
}

func (e *UnsupportedEstimatorError) Error() string {
	return fmt.Sprintf("synthcheck: estimator %s does not support required capabilities: %s",
		e.Estimator, strings.Join(e.Missing, ", "))
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedEstimatorError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("estimator", e.Estimator).
		Strs("missing", e.Missing).
		Str("type", "UnsupportedEstimatorError")
}

// NewUnsupportedEstimatorError は新しいUnsupportedEstimatorErrorを作成します。
func NewUnsupportedEstimatorError(estimator string, missing []string) error {
	return errors.WithStack(&UnsupportedEstimatorError{Estimator: estimator, Missing: missing})
}

// EstimatorFailureError はフォールド内の学習・評価が失敗した場合のエラーです。
// どの推定器・フォールド・データセットで失敗したかを保持します。
type EstimatorFailureError struct {
	Estimator string
	Fold      int
	Dataset   string
	Op        string
	Err       error
}

func (e *EstimatorFailureError) Error() string {
	return fmt.Sprintf("synthcheck: %s of %s on %s data failed in fold %d: %v", e.Op, e.Estimator, e.Dataset, e.Fold, e.Err)
}

func (e *EstimatorFailureError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *EstimatorFailureError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("estimator", e.Estimator).
		Int("fold", e.Fold).
		Str("dataset", e.Dataset).
		Str("operation", e.Op).
		AnErr("cause", e.Err).
		Str("type", "EstimatorFailureError")
}

// NewEstimatorFailureError は新しいEstimatorFailureErrorを作成します。
func NewEstimatorFailureError(estimator string, fold int, dataset, op string, err error) error {
	return errors.WithStack(&EstimatorFailureError{Estimator: estimator, Fold: fold, Dataset: dataset, Op: op, Err: err})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	数値計算のエラー型
//
// ===========================================================================

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf、オーバーフローなどを検出します。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "loss_calculation"）
	Values    []float64 // 問題のある値
	Iteration int       // 発生したイテレーション番号
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("synthcheck: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	})
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")
)
