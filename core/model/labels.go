package model

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// UniqueLabels は列ベクトル y に含まれるクラスラベルを昇順で返す
func UniqueLabels(y mat.Matrix) []float64 {
	rows, _ := y.Dims()
	seen := make(map[float64]struct{})
	labels := make([]float64, 0)
	for i := 0; i < rows; i++ {
		v := y.At(i, 0)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		labels = append(labels, v)
	}
	sort.Float64s(labels)
	return labels
}

// LabelIndex はラベルから Classes() 上の位置への写像を作る
func LabelIndex(classes []float64) map[float64]int {
	idx := make(map[float64]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	return idx
}

// Accuracy は予測と正解の一致率を返す。分類器の Score で共有する
func Accuracy(y, pred mat.Matrix) float64 {
	rows, _ := y.Dims()
	if rows == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < rows; i++ {
		if y.At(i, 0) == pred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(rows)
}
