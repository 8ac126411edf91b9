package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestClassificationMetrics(t *testing.T) {
	yTrue := mat.NewVecDense(6, []float64{0, 0, 1, 1, 2, 2})
	yPred := mat.NewVecDense(6, []float64{0, 1, 1, 1, 2, 0})

	c, err := NewConfusion(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Labels) != 3 {
		t.Fatalf("Labels = %v, want 3 labels", c.Labels)
	}
	if c.Counts[0][1] != 1 || c.Counts[2][0] != 1 || c.Counts[1][1] != 2 {
		t.Errorf("unexpected counts %v", c.Counts)
	}

	tests := []struct {
		name string
		fn   func(a, b *mat.VecDense) (float64, error)
		want float64
	}{
		{"accuracy", Accuracy, 4.0 / 6.0},
		{"micro f1", F1Micro, 4.0 / 6.0},
		{"micro recall", RecallMicro, 4.0 / 6.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(yTrue, yPred)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassificationDimensionMismatch(t *testing.T) {
	_, err := Accuracy(mat.NewVecDense(2, []float64{0, 1}), mat.NewVecDense(1, []float64{0}))
	if err == nil {
		t.Error("expected dimension error")
	}
}
