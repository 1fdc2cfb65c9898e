package linear

import (
	"io"
	"math"

	"github.com/YuminosukeSato/shapeml/core/model"
	"github.com/YuminosukeSato/shapeml/pkg/errors"
	"github.com/YuminosukeSato/shapeml/pkg/log"
	"github.com/YuminosukeSato/shapeml/shape"
)

// formatVersion is written to every stored model and checked on load.
const formatVersion = "1.0"

const (
	hpLearningRate   = "learning_rate"
	hpRegularization = "regularization"
	metaSamples      = "n_samples"
)

var _ model.Persistable = (*LogisticRegression)(nil)

// ExportWeights returns the parameters in the shared ModelWeights layout.
func (lr *LogisticRegression) ExportWeights() *model.ModelWeights {
	return &model.ModelWeights{
		ModelType:    modelName,
		Version:      formatVersion,
		ID:           lr.state.ID(),
		Coefficients: lr.Weights(),
		Intercept:    lr.params[0],
		Classes:      lr.Classes(),
		Features:     shape.VectorNames(),
		Hyperparameters: map[string]float64{
			hpLearningRate:   lr.alpha,
			hpRegularization: lr.beta,
		},
		Metadata: map[string]interface{}{
			metaSamples: lr.state.Samples(),
		},
		IsFitted: lr.state.IsFitted(),
	}
}

// ImportWeights validates mw and replaces the model with it. On error the
// model is unchanged.
func (lr *LogisticRegression) ImportWeights(mw *model.ModelWeights) error {
	if mw == nil {
		return errors.NewValidationError("weights", "must not be nil", nil)
	}
	mw = mw.Clone()
	if err := mw.Validate(modelName, shape.VectorLen); err != nil {
		return err
	}
	if mw.Version != formatVersion {
		return errors.NewValidationError("version", "unsupported format version", mw.Version)
	}

	alpha, beta := lr.alpha, lr.beta
	if v, ok := mw.Hyperparameters[hpLearningRate]; ok {
		alpha = v
	}
	if v, ok := mw.Hyperparameters[hpRegularization]; ok {
		beta = v
	}
	if err := validateRates(alpha, beta); err != nil {
		return err
	}

	samples := 0
	if v, ok := mw.Metadata[metaSamples].(float64); ok && v >= 0 && v == math.Trunc(v) {
		samples = int(v)
	} else if v, ok := mw.Metadata[metaSamples].(int); ok && v >= 0 {
		samples = v
	}

	state := model.NewStateManager(modelName)
	if err := state.SetState(model.ModelState{ID: mw.ID, Fitted: mw.IsFitted, NSamples: samples}); err != nil {
		return errors.Wrap(err, "restore estimator id")
	}

	params := make([]float64, NumParams)
	params[0] = mw.Intercept
	copy(params[1:], mw.Coefficients)

	lr.state = state
	lr.params = params
	lr.classes = mw.Classes
	lr.alpha = alpha
	lr.beta = beta
	lr.bindLogger()
	return nil
}

// Store writes the model to path as JSON.
func (lr *LogisticRegression) Store(path string) error {
	if err := model.SaveJSON(lr.ExportWeights(), path); err != nil {
		lr.logger.Error("Store failed", log.OperationKey, log.OperationStore, log.PathKey, path, log.ErrorKey, err)
		return err
	}
	lr.logger.Info("Model stored", log.OperationKey, log.OperationStore, log.PathKey, path, log.ClassesKey, lr.classes)
	return nil
}

// StoreTo writes the model to w as JSON.
func (lr *LogisticRegression) StoreTo(w io.Writer) error {
	return model.EncodeJSON(lr.ExportWeights(), w)
}

// Load replaces the model with the one stored at path. On error the model
// is unchanged.
func (lr *LogisticRegression) Load(path string) error {
	var mw model.ModelWeights
	if err := model.LoadJSON(&mw, path); err != nil {
		return err
	}
	if err := lr.ImportWeights(&mw); err != nil {
		lr.logger.Error("Load rejected", log.OperationKey, log.OperationLoad, log.PathKey, path, log.ErrorKey, err)
		return err
	}
	lr.logger.Info("Model loaded", log.OperationKey, log.OperationLoad, log.PathKey, path, log.ClassesKey, lr.classes)
	return nil
}

// LoadFrom replaces the model with the one read from r.
func (lr *LogisticRegression) LoadFrom(r io.Reader) error {
	var mw model.ModelWeights
	if err := model.DecodeJSON(&mw, r); err != nil {
		return err
	}
	return lr.ImportWeights(&mw)
}

// LoadLogisticRegression reads a stored model from path.
func LoadLogisticRegression(path string, opts ...Option) (*LogisticRegression, error) {
	lr, err := NewLogisticRegression(opts...)
	if err != nil {
		return nil, err
	}
	if err := lr.Load(path); err != nil {
		return nil, err
	}
	return lr, nil
}
