// Package metrics provides evaluation metrics for shape classifiers.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/shapeml/pkg/errors"
)

// logLossEpsilon clips probabilities away from 0 and 1.
const logLossEpsilon = 1e-15

func checkLabels(op string, yTrue, yPred []string) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty label slice")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred []string) (float64, error) {
	if err := checkLabels("Accuracy", yTrue, yPred); err != nil {
		return 0, err
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// ClassificationError は誤分類率（1 - 正解率）を計算する
func ClassificationError(yTrue, yPred []string) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// ConfusionMatrix は混同行列を計算する
//
// 行が正解ラベル、列が予測ラベル。labels が空の場合は yTrue と yPred に
// 現れるラベルをソートして使用する。labels に含まれないラベルはエラー。
func ConfusionMatrix(yTrue, yPred, labels []string) (*mat.Dense, error) {
	if err := checkLabels("ConfusionMatrix", yTrue, yPred); err != nil {
		return nil, err
	}

	if len(labels) == 0 {
		labels = uniqueSorted(yTrue, yPred)
	}
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, dup := index[l]; dup {
			return nil, errors.NewValueError("ConfusionMatrix", "duplicate label "+l)
		}
		index[l] = i
	}

	cm := mat.NewDense(len(labels), len(labels), nil)
	for i := range yTrue {
		r, ok := index[yTrue[i]]
		if !ok {
			return nil, errors.NewValueError("ConfusionMatrix", "unknown label "+yTrue[i])
		}
		c, ok := index[yPred[i]]
		if !ok {
			return nil, errors.NewValueError("ConfusionMatrix", "unknown label "+yPred[i])
		}
		cm.Set(r, c, cm.At(r, c)+1)
	}
	return cm, nil
}

func uniqueSorted(slices ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range slices {
		for _, l := range s {
			if _, ok := seen[l]; !ok {
				seen[l] = struct{}{}
				out = append(out, l)
			}
		}
	}
	sort.Strings(out)
	return out
}

// BinaryLogLoss は二値分類の平均対数損失を計算する
//
// yTrue は0か1、yProb は正クラスの確率。確率は [eps, 1-eps] にクリップする。
func BinaryLogLoss(yTrue, yProb *mat.VecDense) (float64, error) {
	if yTrue == nil || yProb == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("BinaryLogLoss", "empty vector")
	}
	n := yTrue.Len()
	if yProb.Len() != n {
		return 0, errors.NewDimensionError("BinaryLogLoss", n, yProb.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		y := yTrue.AtVec(i)
		if y != 0 && y != 1 {
			return 0, errors.NewValueError("BinaryLogLoss", "yTrue must contain only 0 and 1")
		}
		p := math.Min(math.Max(yProb.AtVec(i), logLossEpsilon), 1-logLossEpsilon)
		sum -= y*math.Log(p) + (1-y)*math.Log(1-p)
	}
	return sum / float64(n), nil
}
