package neighbors

import (
	"io"

	"github.com/YuminosukeSato/shapeml/core/model"
	"github.com/YuminosukeSato/shapeml/pkg/errors"
	"github.com/YuminosukeSato/shapeml/pkg/log"
	"github.com/YuminosukeSato/shapeml/shape"
)

// formatVersion is written to every stored model and checked on load.
const formatVersion = "1.0"

var _ model.Persistable = (*KNN)(nil)

// document is the self-describing JSON layout of a stored KNN.
type document struct {
	ModelType string           `json:"model_type"`
	Version   string           `json:"version"`
	ID        string           `json:"id"`
	K         int              `json:"k"`
	D         int              `json:"d"`
	Epsilon   float64          `json:"epsilon"`
	Instances []instanceRecord `json:"instances"`
}

type instanceRecord struct {
	Label    string       `json:"label"`
	Features shape.Record `json:"features"`
}

func (knn *KNN) document() *document {
	doc := &document{
		ModelType: modelName,
		Version:   formatVersion,
		ID:        knn.state.ID(),
		K:         knn.k,
		D:         knn.d,
		Epsilon:   knn.epsilon,
		Instances: make([]instanceRecord, len(knn.instances)),
	}
	for i, inst := range knn.instances {
		doc.Instances[i] = instanceRecord{Label: inst.Label, Features: inst.Features.Record()}
	}
	return doc
}

// Store writes the model to path as JSON.
func (knn *KNN) Store(path string) error {
	if err := model.SaveJSON(knn.document(), path); err != nil {
		knn.logger.Error("Store failed", log.OperationKey, log.OperationStore, log.PathKey, path, log.ErrorKey, err)
		return err
	}
	knn.logger.Info("Model stored", log.OperationKey, log.OperationStore, log.PathKey, path, log.InstancesKey, len(knn.instances))
	return nil
}

// StoreTo writes the model to w as JSON.
func (knn *KNN) StoreTo(w io.Writer) error {
	return model.EncodeJSON(knn.document(), w)
}

// Load replaces the model with the one stored at path. On error the model
// is unchanged.
func (knn *KNN) Load(path string) error {
	var doc document
	if err := model.LoadJSON(&doc, path); err != nil {
		return err
	}
	if err := knn.restore(&doc); err != nil {
		knn.logger.Error("Load rejected", log.OperationKey, log.OperationLoad, log.PathKey, path, log.ErrorKey, err)
		return err
	}
	knn.logger.Info("Model loaded", log.OperationKey, log.OperationLoad, log.PathKey, path, log.InstancesKey, len(knn.instances))
	return nil
}

// LoadFrom replaces the model with the one read from r.
func (knn *KNN) LoadFrom(r io.Reader) error {
	var doc document
	if err := model.DecodeJSON(&doc, r); err != nil {
		return err
	}
	return knn.restore(&doc)
}

// LoadKNN reads a stored model from path.
func LoadKNN(path string, opts ...Option) (*KNN, error) {
	knn, err := NewKNN(1, shape.DefaultNorm, opts...)
	if err != nil {
		return nil, err
	}
	if err := knn.Load(path); err != nil {
		return nil, err
	}
	return knn, nil
}

func (knn *KNN) restore(doc *document) error {
	if doc.ModelType != modelName {
		return errors.NewValidationError("model_type", "must be "+modelName, doc.ModelType)
	}
	if doc.Version != formatVersion {
		return errors.NewValidationError("version", "unsupported format version", doc.Version)
	}
	if err := validateParams(doc.K, doc.D, doc.Epsilon); err != nil {
		return err
	}

	instances := make([]shape.LabeledInstance, len(doc.Instances))
	for i, rec := range doc.Instances {
		f, err := rec.Features.Features()
		if err != nil {
			return errors.Wrapf(err, "instance %d", i)
		}
		instances[i] = shape.LabeledInstance{Label: rec.Label, Features: f}
	}
	if err := validateInstances(instances); err != nil {
		return err
	}

	state := model.NewStateManager(modelName)
	if err := state.SetState(model.ModelState{ID: doc.ID, Fitted: len(instances) > 0, NSamples: len(instances)}); err != nil {
		return errors.Wrap(err, "restore estimator id")
	}

	knn.state = state
	knn.k = doc.K
	knn.d = doc.D
	knn.epsilon = doc.Epsilon
	knn.instances = instances
	knn.bindLogger()
	return nil
}
