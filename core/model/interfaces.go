package model

import (
	"io"

	"github.com/YuminosukeSato/shapeml/shape"
)

// Classifier combines learning and prediction over shape descriptors.
type Classifier interface {
	Learner
	Predictor
}

// Scorer is the interface for models that report accuracy on labeled data.
type Scorer interface {
	// Score returns the fraction of instances whose label is predicted correctly.
	Score(instances []shape.LabeledInstance) (float64, error)
}

// Persistable is the interface for models that can be stored and loaded.
type Persistable interface {
	Store(path string) error
	Load(path string) error
	StoreTo(w io.Writer) error
	LoadFrom(r io.Reader) error
}

// Identified is implemented by models carrying an estimator id.
type Identified interface {
	ID() string
}
