package errors

import "math"

// logEpsilon は log(0) を避けるための下限
const logEpsilon = 1e-10

// CheckScalar は損失などのスカラー値が NaN / Inf になっていないか検査する。
// 発散を検出した場合は NumericalInstabilityError を返す。
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}

// SafeDivide は分母がほぼ 0 のとき 0 を返す割り算
func SafeDivide(numerator, denominator float64) float64 {
	if math.Abs(denominator) < logEpsilon {
		return 0
	}
	return numerator / denominator
}

// StabilizeLog は log(max(value, 1e-10)) を返す
func StabilizeLog(value float64) float64 {
	return math.Log(math.Max(value, logEpsilon))
}
