package model

import (
	"math"

	"github.com/YuminosukeSato/shapeml/pkg/errors"
)

// ModelWeights は線形モデルの重みを表す構造体（シリアライゼーション用）
type ModelWeights struct {
	// ModelType はモデルの種類（LogisticRegression等）
	ModelType string `json:"model_type"`

	// Version はフォーマットのバージョン（互換性チェック用）
	Version string `json:"version"`

	// ID は推定器のuuid
	ID string `json:"id"`

	// Coefficients は重み係数
	Coefficients []float64 `json:"coefficients"`

	// Intercept は切片（バイアス）
	Intercept float64 `json:"intercept"`

	// Classes はクラスラベル。インデックス0が負クラス
	Classes []string `json:"classes"`

	// Features は特徴量の名前（オプション）
	Features []string `json:"features,omitempty"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]float64 `json:"hyperparameters"`

	// Metadata は追加のメタデータ（学習時の統計等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// Validate はModelWeightsの妥当性を検証
//
// expectedType と nCoef が期待値と一致しない場合はValidationErrorを返す
func (mw *ModelWeights) Validate(expectedType string, nCoef int) error {
	if mw.ModelType != expectedType {
		return errors.NewValidationError("model_type", "must be "+expectedType, mw.ModelType)
	}

	if mw.Version == "" {
		return errors.NewValidationError("version", "is required", mw.Version)
	}

	if len(mw.Coefficients) != nCoef {
		return errors.NewValidationError("coefficients", "unexpected number of coefficients", len(mw.Coefficients))
	}

	if err := errors.CheckNumericalStability("ModelWeights.Validate", append([]float64{mw.Intercept}, mw.Coefficients...), 0); err != nil {
		return errors.NewValidationError("coefficients", "must be finite", mw.Coefficients)
	}

	if len(mw.Classes) > 2 {
		return errors.NewValidationError("classes", "at most 2 classes are supported", mw.Classes)
	}
	if len(mw.Classes) == 2 && mw.Classes[0] == mw.Classes[1] {
		return errors.NewValidationError("classes", "must be distinct", mw.Classes)
	}
	for _, c := range mw.Classes {
		if c == "" {
			return errors.NewValidationError("classes", "labels must be non-empty", mw.Classes)
		}
	}

	if mw.IsFitted != (len(mw.Classes) > 0) {
		return errors.NewValidationError("is_fitted", "must match the presence of classes", mw.IsFitted)
	}

	for name, v := range mw.Hyperparameters {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewValidationError(name, "must be finite", v)
		}
	}

	return nil
}

// Clone はスライスとマップを共有しないコピーを返す
func (mw *ModelWeights) Clone() *ModelWeights {
	c := *mw
	c.Coefficients = append([]float64(nil), mw.Coefficients...)
	c.Classes = append([]string(nil), mw.Classes...)
	c.Features = append([]string(nil), mw.Features...)
	c.Hyperparameters = make(map[string]float64, len(mw.Hyperparameters))
	for k, v := range mw.Hyperparameters {
		c.Hyperparameters[k] = v
	}
	c.Metadata = make(map[string]interface{}, len(mw.Metadata))
	for k, v := range mw.Metadata {
		c.Metadata[k] = v
	}
	return &c
}
