package linear

import (
	"github.com/YuminosukeSato/shapeml/pkg/log"
	"github.com/YuminosukeSato/shapeml/shape"
)

// Option is a function that configures LogisticRegression
type Option func(*LogisticRegression)

// WithLearningRate sets the step size alpha used by Learn
func WithLearningRate(alpha float64) Option {
	return func(lr *LogisticRegression) {
		lr.alpha = alpha
	}
}

// WithRegularization sets the L2 shrinkage strength beta used by Learn
func WithRegularization(beta float64) Option {
	return func(lr *LogisticRegression) {
		lr.beta = beta
	}
}

// WithClasses fixes the class order. negative maps to target 0 and
// positive to target 1; labels outside the pair are rejected by Learn
func WithClasses(negative, positive string) Option {
	return func(lr *LogisticRegression) {
		lr.classes = []string{negative, positive}
	}
}

// WithExtractor sets the descriptor extractor used by Predict
func WithExtractor(e shape.Extractor) Option {
	return func(lr *LogisticRegression) {
		lr.extractor = e
	}
}

// WithLogger sets the logger. The estimator id is attached to every record
func WithLogger(l log.Logger) Option {
	return func(lr *LogisticRegression) {
		lr.base = l
	}
}
