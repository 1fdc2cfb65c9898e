package model

import "github.com/YuminosukeSato/shapeml/shape"

// Learner は学習可能なモデルのインターフェース
type Learner interface {
	// Learn はラベル付きインスタンスでモデルを更新する
	Learn(instances []shape.LabeledInstance) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は輪郭から特徴量を抽出し、ラベルを予測する
	Predict(obj *shape.Object) (string, error)

	// PredictFeatures は抽出済みの特徴量に対するラベルを予測する
	PredictFeatures(f *shape.Features) (string, error)
}
