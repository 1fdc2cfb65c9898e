// Package log defines standard attribute keys for shape classification operations.
//
// The keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that log records from KNN, LogisticRegression and the
// persistence layer can be filtered with the same queries.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model.
	// Examples: "KNN", "LogisticRegression", "OneVsRest"
	ModelNameKey = "model.name"

	// EstimatorIDKey is the uuid assigned to a model instance at construction.
	// It is persisted with the model so reloaded models keep their identity.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of labeled instances processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the descriptor dimensionality.
	FeaturesKey = "data.features"

	// ClassesKey lists the class labels known to a model.
	ClassesKey = "data.classes"

	// InstancesKey records the number of instances a model holds after an update.
	InstancesKey = "model.instances"

	// ContourPointsKey records the number of points of an input contour.
	ContourPointsKey = "shape.contour_points"

	// PathKey records the file a model is stored to or loaded from.
	PathKey = "io.path"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records training or evaluation accuracy in [0.0, 1.0].
	AccuracyKey = "metrics.accuracy"

	// LossKey records the mean log-loss of a training pass.
	LossKey = "metrics.loss"

	// EpochKey records the current epoch number during training.
	EpochKey = "training.epoch"
)

// Prediction Context
const (
	// LabelKey records the predicted label.
	LabelKey = "preds.label"

	// NeighborsKey records the number of neighbours consulted by kNN.
	NeighborsKey = "preds.neighbors"

	// DistanceKey records the distance to the closest neighbour.
	DistanceKey = "preds.distance"

	// ScoreKey records a linear decision score.
	ScoreKey = "preds.score"
)

// Error Context
const (
	// ErrorKey carries an error value. Loggers extract its stack trace.
	ErrorKey = "error"

	// StacktraceKey contains stack trace information for debugging.
	// Automatically populated from cockroachdb/errors safe details.
	StacktraceKey = "error.stacktrace"
)

// Hyperparameters and Configuration
const (
	// KKey records the number of neighbours k.
	KKey = "hyperparams.k"

	// NormKey records the Minkowski order used for distances.
	NormKey = "hyperparams.norm"

	// LearningRateKey records the learning rate alpha.
	LearningRateKey = "hyperparams.learning_rate"

	// RegularizationKey records the L2 shrinkage strength beta.
	RegularizationKey = "hyperparams.regularization"
)

// Standard attribute values.
const (
	OperationLearn   = "learn"
	OperationPredict = "predict"
	OperationStore   = "store"
	OperationLoad    = "load"
	OperationExtract = "extract"

	PhaseTraining  = "training"
	PhaseInference = "inference"
)
