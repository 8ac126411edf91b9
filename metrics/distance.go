package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

func checkVectors(op string, a, b []float64) error {
	if len(a) == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if len(a) != len(b) {
		return errors.NewDimensionError(op, len(a), len(b), 0)
	}
	return nil
}

// EuclideanDistance returns sqrt(Σ(a_i - b_i)²).
func EuclideanDistance(a, b []float64) (float64, error) {
	if err := checkVectors("EuclideanDistance", a, b); err != nil {
		return 0, err
	}
	return floats.Distance(a, b, 2), nil
}

// MeanAbsoluteError returns mean(|a_i - b_i|).
func MeanAbsoluteError(a, b []float64) (float64, error) {
	if err := checkVectors("MeanAbsoluteError", a, b); err != nil {
		return 0, err
	}
	return floats.Distance(a, b, 1) / float64(len(a)), nil
}

// RootMeanSquaredError returns sqrt(mean((a_i - b_i)²)).
func RootMeanSquaredError(a, b []float64) (float64, error) {
	if err := checkVectors("RootMeanSquaredError", a, b); err != nil {
		return 0, err
	}
	d := floats.Distance(a, b, 2)
	return math.Sqrt(d * d / float64(len(a))), nil
}

// CosineDistance returns 1 - a·b / (‖a‖‖b‖). If either vector has zero norm
// the distance is 1 unless both are zero, in which case it is 0.
func CosineDistance(a, b []float64) (float64, error) {
	if err := checkVectors("CosineDistance", a, b); err != nil {
		return 0, err
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		if na == nb {
			return 0, nil
		}
		return 1, nil
	}
	return 1 - floats.Dot(a, b)/(na*nb), nil
}
