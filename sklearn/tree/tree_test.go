package tree

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// blobs は grid 上の 3 つの塊 (各 3 点) とそのラベル 0, 1, 2 を返す
func blobs(nClasses int) (*mat.Dense, *mat.Dense) {
	centers := [][2]float64{{0, 0}, {3, 3}, {6, 6}}
	offsets := [][2]float64{{0, 0}, {0, 1}, {1, 0}}
	X := mat.NewDense(3*nClasses, 2, nil)
	y := mat.NewDense(3*nClasses, 1, nil)
	for c := 0; c < nClasses; c++ {
		for k, o := range offsets {
			i := 3*c + k
			X.Set(i, 0, centers[c][0]+o[0])
			X.Set(i, 1, centers[c][1]+o[1])
			y.Set(i, 0, float64(c))
		}
	}
	return X, y
}

func TestDecisionTreeClassifier_Separable(t *testing.T) {
	tests := []struct {
		name      string
		nClasses  int
		criterion string
	}{
		{"binary gini", 2, "gini"},
		{"binary entropy", 2, "entropy"},
		{"three classes gini", 3, "gini"},
		{"three classes entropy", 3, "entropy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X, y := blobs(tt.nClasses)
			dt := NewDecisionTreeClassifier(WithCriterion(tt.criterion), WithMaxDepth(5))
			if err := dt.Fit(X, y); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			if got := len(dt.Classes()); got != tt.nClasses {
				t.Errorf("Classes() has %d labels, want %d", got, tt.nClasses)
			}
			score, err := dt.Score(X, y)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if score != 1 {
				t.Errorf("training accuracy = %v, want 1", score)
			}

			// 塊の中心付近の未知点
			point := mat.NewDense(1, 2, []float64{0.4, 0.4})
			pred, err := dt.Predict(point)
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}
			if pred.At(0, 0) != 0 {
				t.Errorf("point predicted %v, want 0", pred.At(0, 0))
			}
		})
	}
}

func TestDecisionTreeClassifier_PredictProba(t *testing.T) {
	X, y := blobs(3)
	dt := NewDecisionTreeClassifier()
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	proba, err := dt.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	r, c := proba.Dims()
	if c != 3 {
		t.Fatalf("got %d probability columns, want 3", c)
	}
	for i := 0; i < r; i++ {
		row := mat.Row(nil, i, proba)
		var sum float64
		best := 0
		for j, p := range row {
			if p < 0 || p > 1 {
				t.Errorf("row %d: probability %v out of range", i, p)
			}
			sum += p
			if p > row[best] {
				best = j
			}
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d sums to %v", i, sum)
		}
		if float64(best) != y.At(i, 0) {
			t.Errorf("row %d: argmax %d, label %v", i, best, y.At(i, 0))
		}
	}
}

func TestDecisionTreeClassifier_FeatureImportances(t *testing.T) {
	// 特徴量 0 だけがラベルを決める
	X := mat.NewDense(8, 3, []float64{
		0, 0, 0,
		0, 1, 1,
		0, 0, 1,
		0, 1, 0,
		1, 0, 0,
		1, 1, 1,
		1, 0, 1,
		1, 1, 0,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	dt := NewDecisionTreeClassifier()
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	imp := dt.FeatureImportances()
	if len(imp) != 3 {
		t.Fatalf("got %d importances, want 3", len(imp))
	}
	if math.Abs(imp[0]-1) > 1e-12 || imp[1] != 0 || imp[2] != 0 {
		t.Errorf("importances = %v, want [1 0 0]", imp)
	}
}

func TestDecisionTreeClassifier_Constraints(t *testing.T) {
	// 偶奇ラベルは深い木でないと分けられない
	X := mat.NewDense(16, 2, nil)
	y := mat.NewDense(16, 1, nil)
	for i := 0; i < 16; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i%4))
		y.Set(i, 0, float64(i%2))
	}

	tests := []struct {
		name      string
		opts      []Option
		maxDepth  int
		maxLeaves int
	}{
		{"max depth", []Option{WithMaxDepth(2)}, 2, 4},
		{"min samples", []Option{WithMinSamplesSplit(8), WithMinSamplesLeaf(4)}, 3, 4},
		{"stump", []Option{WithMaxDepth(1)}, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := NewDecisionTreeClassifier(tt.opts...)
			if err := dt.Fit(X, y); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			if d := dt.GetDepth(); d > tt.maxDepth {
				t.Errorf("depth %d > %d", d, tt.maxDepth)
			}
			if n := dt.GetNLeaves(); n > tt.maxLeaves {
				t.Errorf("%d leaves > %d", n, tt.maxLeaves)
			}
		})
	}
}

func TestDecisionTree_GetParams(t *testing.T) {
	dt := NewDecisionTreeClassifier()
	params := dt.GetParams()
	if params["criterion"].(string) != "gini" {
		t.Errorf("Default criterion should be 'gini', got %v", params["criterion"])
	}
	if params["min_samples_split"].(int) != 2 {
		t.Errorf("Default min_samples_split should be 2, got %v", params["min_samples_split"])
	}

	clone := NewDecisionTreeClassifier(WithCriterion("entropy"), WithMaxDepth(5)).Clone().(*DecisionTreeClassifier)
	if clone.criterion != "entropy" || clone.maxDepth != 5 {
		t.Errorf("clone lost hyperparameters: %v", clone.GetParams())
	}
	if clone.IsFitted() {
		t.Error("clone must be unfitted")
	}

	if err := NewDecisionTreeClassifier(WithCriterion("bogus")).Fit(mat.NewDense(2, 1, []float64{0, 1}), mat.NewDense(2, 1, []float64{0, 1})); err == nil {
		t.Error("expected error for unknown criterion")
	}
	if err := NewDecisionTreeRegressor(WithMinSamplesLeaf(0)).Fit(mat.NewDense(2, 1, []float64{0, 1}), mat.NewDense(2, 1, []float64{0, 1})); err == nil {
		t.Error("expected error for min_samples_leaf=0")
	}
}

func TestDecisionTreeClassifier_NotFitted(t *testing.T) {
	dt := NewDecisionTreeClassifier()
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if _, err := dt.Predict(X); err == nil {
		t.Error("Expected error when predicting without fitting")
	}
	if _, err := dt.PredictProba(X); err == nil {
		t.Error("Expected error when predicting probabilities without fitting")
	}
}

func TestDecisionTreeClassifier_FitSubset(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{0, 1, 2, 3, 4, 5})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 2})

	dt := NewDecisionTreeClassifier()
	// 重複ありのサブセット。クラス 2 を含まない
	if err := dt.FitSubset(X, y, []int{0, 0, 1, 3, 4, 4}); err != nil {
		t.Fatalf("FitSubset: %v", err)
	}
	if got := dt.Classes(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("expected classes [0 1], got %v", got)
	}
	pred, _ := dt.Predict(mat.NewDense(2, 1, []float64{0.5, 4.5}))
	if pred.At(0, 0) != 0 || pred.At(1, 0) != 1 {
		t.Errorf("unexpected predictions %v %v", pred.At(0, 0), pred.At(1, 0))
	}
}

func TestDecisionTreeRegressor(t *testing.T) {
	// 階段関数: x < 5 なら 1、それ以外は 3
	X := mat.NewDense(10, 1, nil)
	y := mat.NewDense(10, 1, nil)
	for i := 0; i < 10; i++ {
		X.Set(i, 0, float64(i))
		if i < 5 {
			y.Set(i, 0, 1)
		} else {
			y.Set(i, 0, 3)
		}
	}

	tests := []struct {
		name     string
		opts     []Option
		maxDepth int
	}{
		{"unbounded", nil, 1},
		{"depth 5", []Option{WithMaxDepth(5)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := NewDecisionTreeRegressor(tt.opts...)
			if err := dt.Fit(X, y); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			if dt.GetDepth() != tt.maxDepth {
				t.Errorf("expected depth %d, got %d", tt.maxDepth, dt.GetDepth())
			}
			score, err := dt.Score(X, y)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if math.Abs(score-1) > 1e-12 {
				t.Errorf("expected R2 1, got %v", score)
			}
			pred, _ := dt.Predict(mat.NewDense(2, 1, []float64{4.4, 4.6}))
			if pred.At(0, 0) != 1 || pred.At(1, 0) != 3 {
				t.Errorf("threshold should sit at 4.5, got %v %v", pred.At(0, 0), pred.At(1, 0))
			}
		})
	}
}

func TestDecisionTree_MaxFeaturesDeterministic(t *testing.T) {
	X := mat.NewDense(20, 4, nil)
	y := mat.NewDense(20, 1, nil)
	for i := 0; i < 20; i++ {
		for j := 0; j < 4; j++ {
			X.Set(i, j, float64((i*(j+3))%7))
		}
		y.Set(i, 0, float64(i%3))
	}

	fit := func() mat.Matrix {
		dt := NewDecisionTreeClassifier(WithMaxFeatures(2), WithRandomState(42))
		if err := dt.Fit(X, y); err != nil {
			t.Fatalf("Fit: %v", err)
		}
		p, _ := dt.PredictProba(X)
		return p
	}
	if !mat.Equal(fit(), fit()) {
		t.Error("same seed must produce identical trees")
	}
}
