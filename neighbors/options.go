package neighbors

import (
	"github.com/YuminosukeSato/shapeml/pkg/log"
	"github.com/YuminosukeSato/shapeml/shape"
)

// Option is a function that configures KNN
type Option func(*KNN)

// WithEpsilon sets the constant added to distances before inverting them into vote weights
func WithEpsilon(eps float64) Option {
	return func(k *KNN) {
		k.epsilon = eps
	}
}

// WithExtractor sets the descriptor extractor used by Predict
func WithExtractor(e shape.Extractor) Option {
	return func(k *KNN) {
		k.extractor = e
	}
}

// WithLogger sets the logger. The estimator id is attached to every record
func WithLogger(l log.Logger) Option {
	return func(k *KNN) {
		k.base = l
	}
}
