// Package model_selection provides the K-fold splitter used by the efficacy
// evaluator.
package model_selection

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// Fold は 1 つのフォールドの訓練・テスト行インデックス
type Fold struct {
	Train []int
	Test  []int
}

// KFold は scikit-learn の KFold と同じ分割を行う。
// 先頭 n % k 個のフォールドがテスト行を 1 行多く持つ
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed uint64
}

// NewKFold creates a new k-fold splitter.
func NewKFold(nSplits int, shuffle bool, randomSeed uint64) *KFold {
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of splits
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Split は nSamples 行を分割する。テストブロックは連続した範囲
func (kf *KFold) Split(nSamples int) ([]Fold, error) {
	if kf.NSplits < 2 {
		return nil, errors.NewValidationError("n_splits", "must be >= 2", kf.NSplits)
	}
	if nSamples < kf.NSplits {
		return nil, errors.NewInsufficientDataError("KFold.Split", kf.NSplits, nSamples, "samples")
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(kf.RandomSeed, 0))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	start := 0
	for i := range folds {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		end := start + testSize

		test := append([]int(nil), indices[start:end]...)
		train := make([]int, 0, nSamples-testSize)
		train = append(train, indices[:start]...)
		train = append(train, indices[end:]...)

		folds[i] = Fold{Train: train, Test: test}
		start = end
	}
	return folds, nil
}
