// Package linear implements a binary logistic classifier over shape
// descriptors, trained online by stochastic gradient descent, and a
// one-vs-rest composition for more than two labels.
package linear

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/shapeml/core/model"
	"github.com/YuminosukeSato/shapeml/metrics"
	"github.com/YuminosukeSato/shapeml/pkg/errors"
	"github.com/YuminosukeSato/shapeml/pkg/log"
	"github.com/YuminosukeSato/shapeml/shape"
)

const (
	// DefaultLearningRate is the default step size alpha.
	DefaultLearningRate = 0.01

	// DefaultRegularization is the default L2 shrinkage strength beta.
	DefaultRegularization = 0.1

	modelName = "LogisticRegression"

	// NumParams is the parameter count: the bias followed by one weight per
	// descriptor component.
	NumParams = shape.VectorLen + 1

	maxClasses = 2
)

var (
	_ model.Classifier = (*LogisticRegression)(nil)
	_ model.Scorer     = (*LogisticRegression)(nil)
	_ model.Identified = (*LogisticRegression)(nil)
)

// LogisticRegression は二値ロジスティック回帰分類器
//
// パラメータは [bias, w_1..w_12]。score = bias + w·x が0以上なら正クラス
// （classes[1]）、それ以外は負クラス（classes[0]）を予測する。
type LogisticRegression struct {
	state     *model.StateManager
	params    []float64
	classes   []string
	alpha     float64
	beta      float64
	extractor shape.Extractor
	base      log.Logger
	logger    log.Logger
}

// NewLogisticRegression creates a model with all parameters at zero.
func NewLogisticRegression(opts ...Option) (*LogisticRegression, error) {
	lr := &LogisticRegression{
		state:     model.NewStateManager(modelName),
		params:    make([]float64, NumParams),
		alpha:     DefaultLearningRate,
		beta:      DefaultRegularization,
		extractor: shape.DefaultExtractor,
	}

	for _, opt := range opts {
		opt(lr)
	}

	if err := validateRates(lr.alpha, lr.beta); err != nil {
		return nil, err
	}
	if err := validateClasses(lr.classes); err != nil {
		return nil, err
	}
	if lr.extractor == nil {
		return nil, errors.NewValidationError("extractor", "must not be nil", nil)
	}
	if len(lr.classes) > 0 {
		lr.state.MarkFitted()
	}
	if lr.base == nil {
		lr.base = log.GetLoggerWithName("linear")
	}
	lr.bindLogger()
	return lr, nil
}

// NewLogisticRegressionFromParams creates a model from known parameters
// [bias, w_1..w_12] and at most two classes.
func NewLogisticRegressionFromParams(params []float64, classes []string, opts ...Option) (*LogisticRegression, error) {
	if len(params) != NumParams {
		return nil, errors.NewValidationError("params", fmt.Sprintf("must contain exactly %d values", NumParams), len(params))
	}
	if err := errors.CheckNumericalStability("NewLogisticRegressionFromParams", params, 0); err != nil {
		return nil, errors.NewValidationError("params", "must be finite", params)
	}

	lr, err := NewLogisticRegression(opts...)
	if err != nil {
		return nil, err
	}
	if err := validateClasses(classes); err != nil {
		return nil, err
	}
	copy(lr.params, params)
	lr.classes = append([]string(nil), classes...)
	if len(lr.classes) > 0 {
		lr.state.MarkFitted()
	}
	return lr, nil
}

func (lr *LogisticRegression) bindLogger() {
	lr.logger = lr.base.With(log.ModelNameKey, lr.state.ModelName(), log.EstimatorIDKey, lr.state.ID())
}

func validateRates(alpha, beta float64) error {
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) || alpha <= 0 {
		return errors.NewValidationError("learning_rate", "must be finite and positive", alpha)
	}
	if math.IsNaN(beta) || math.IsInf(beta, 0) || beta < 0 {
		return errors.NewValidationError("regularization", "must be finite and non-negative", beta)
	}
	return nil
}

func validateClasses(classes []string) error {
	if len(classes) > maxClasses {
		return errors.NewLabelCardinalityError(modelName, maxClasses, classes)
	}
	for _, c := range classes {
		if c == "" {
			return errors.NewValidationError("classes", "labels must be non-empty", classes)
		}
	}
	if len(classes) == 2 && classes[0] == classes[1] {
		return errors.NewValidationError("classes", "must be distinct", classes)
	}
	return nil
}

func validateInstances(instances []shape.LabeledInstance) error {
	for i, inst := range instances {
		if inst.Features == nil {
			return errors.Wrapf(errors.ErrNilFeatures, "instance %d", i)
		}
		if inst.Label == "" {
			return errors.NewValidationError("label", fmt.Sprintf("instance %d has an empty label", i), inst.Label)
		}
	}
	return nil
}

// mergeClasses appends the labels of instances not yet in known, sorted.
func mergeClasses(known []string, instances []shape.LabeledInstance) []string {
	seen := make(map[string]struct{}, len(known))
	for _, c := range known {
		seen[c] = struct{}{}
	}
	var fresh []string
	for _, inst := range instances {
		if _, ok := seen[inst.Label]; !ok {
			seen[inst.Label] = struct{}{}
			fresh = append(fresh, inst.Label)
		}
	}
	sort.Strings(fresh)
	return append(append([]string(nil), known...), fresh...)
}

// Learn runs one pass of gradient descent over instances with the
// configured learning rate and regularization.
func (lr *LogisticRegression) Learn(instances []shape.LabeledInstance) error {
	return lr.LearnWith(instances, lr.alpha, lr.beta)
}

// LearnWith runs one pass of gradient descent over instances, in order.
//
// For each instance with target t (1 for the positive class):
//
//	err = t - sigmoid(b + w·x)
//	w_i += alpha*err*x_i - alpha*beta*w_i
//	b   += alpha*err
//
// Classes not configured with WithClasses are taken from the labels in the
// order they first appear across batches, new labels of one batch sorted.
// The update runs on a copy and is committed only if the whole pass succeeds.
// An empty slice is a no-op.
func (lr *LogisticRegression) LearnWith(instances []shape.LabeledInstance, alpha, beta float64) error {
	if len(instances) == 0 {
		return nil
	}
	if err := validateRates(alpha, beta); err != nil {
		return err
	}
	if err := validateInstances(instances); err != nil {
		return err
	}

	classes := mergeClasses(lr.classes, instances)
	if len(classes) > maxClasses {
		err := errors.NewLabelCardinalityError("LogisticRegression.Learn", maxClasses, classes)
		lr.logger.Error("Learn rejected", log.OperationKey, log.OperationLearn, log.ErrorKey, err)
		return err
	}

	params := append([]float64(nil), lr.params...)
	bias, weights := params[:1], params[1:]
	shrink := 1 - alpha*beta

	for i, inst := range instances {
		x := inst.Features.Vector()
		target := 0.0
		if len(classes) == maxClasses && inst.Label == classes[1] {
			target = 1
		}

		residual := target - errors.Sigmoid(bias[0]+floats.Dot(weights, x))
		floats.Scale(shrink, weights)
		floats.AddScaled(weights, alpha*residual, x)
		bias[0] += alpha * residual

		if err := errors.CheckNumericalStability("LogisticRegression.Learn", params, i); err != nil {
			lr.logger.Error("Learn diverged", log.OperationKey, log.OperationLearn, log.ErrorKey, err)
			return err
		}
	}

	lr.params = params
	lr.classes = classes
	lr.state.MarkLearned(len(instances))

	lr.logger.Info("Parameters updated",
		log.OperationKey, log.OperationLearn,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, len(instances),
		log.FeaturesKey, shape.VectorLen,
		log.ClassesKey, classes,
		log.LearningRateKey, alpha,
		log.RegularizationKey, beta,
	)
	return nil
}

// Fit repeats Learn until every instance is classified correctly or
// maxEpochs passes have run, and returns the number of passes. A
// ConvergenceWarning is emitted through errors.Warn when the budget is
// exhausted.
func (lr *LogisticRegression) Fit(instances []shape.LabeledInstance, maxEpochs int) (int, error) {
	if maxEpochs < 1 {
		return 0, errors.NewValidationError("max_epochs", "must be at least 1", maxEpochs)
	}
	if len(instances) == 0 {
		return 0, nil
	}

	var acc float64
	for epoch := 1; epoch <= maxEpochs; epoch++ {
		if err := lr.Learn(instances); err != nil {
			return epoch - 1, err
		}
		var err error
		acc, err = lr.Score(instances)
		if err != nil {
			return epoch, err
		}

		if lr.logger.Enabled(context.Background(), log.LevelDebug) {
			fields := []any{log.PhaseKey, log.PhaseTraining, log.EpochKey, epoch, log.AccuracyKey, acc}
			if loss, err := lr.logLoss(instances); err == nil {
				fields = append(fields, log.LossKey, loss)
			}
			lr.logger.Debug("Epoch finished", fields...)
		}

		if acc == 1 {
			return epoch, nil
		}
	}

	errors.Warn(errors.NewConvergenceWarning(modelName, maxEpochs, fmt.Sprintf("training accuracy %.4f", acc)))
	return maxEpochs, nil
}

// logLoss is the mean binary log-loss of the positive class probability.
func (lr *LogisticRegression) logLoss(instances []shape.LabeledInstance) (float64, error) {
	if len(lr.classes) != maxClasses {
		return 0, errors.NewValueError("LogisticRegression.logLoss", "needs two classes")
	}
	yTrue := mat.NewVecDense(len(instances), nil)
	yProb := mat.NewVecDense(len(instances), nil)
	for i, inst := range instances {
		if inst.Label == lr.classes[1] {
			yTrue.SetVec(i, 1)
		}
		yProb.SetVec(i, errors.Sigmoid(lr.score(inst.Features)))
	}
	return metrics.BinaryLogLoss(yTrue, yProb)
}

func (lr *LogisticRegression) score(f *shape.Features) float64 {
	return lr.params[0] + floats.Dot(lr.params[1:], f.Vector())
}

// DecisionFunction returns the score b + w·x of f.
func (lr *LogisticRegression) DecisionFunction(f *shape.Features) (float64, error) {
	if err := lr.state.RequireFitted("DecisionFunction"); err != nil {
		return 0, err
	}
	if f == nil {
		return 0, errors.Wrap(errors.ErrNilFeatures, "LogisticRegression.DecisionFunction")
	}
	return lr.score(f), nil
}

// PredictProba returns the probability that f belongs to the positive class.
func (lr *LogisticRegression) PredictProba(f *shape.Features) (float64, error) {
	s, err := lr.DecisionFunction(f)
	if err != nil {
		return 0, err
	}
	return errors.Sigmoid(s), nil
}

// Predict extracts the descriptor of obj and classifies it.
func (lr *LogisticRegression) Predict(obj *shape.Object) (string, error) {
	if obj == nil {
		return "", errors.NewValidationError("object", "must not be nil", nil)
	}
	f, err := lr.extractor.Extract(obj.Contour)
	if err != nil {
		lr.logger.Warn("Extraction failed",
			log.OperationKey, log.OperationExtract,
			log.ContourPointsKey, len(obj.Contour),
			log.ErrorKey, err,
		)
		return "", errors.Wrap(err, "LogisticRegression.Predict")
	}
	return lr.PredictFeatures(f)
}

// PredictFeatures returns the positive class when the score is >= 0 and the
// negative class otherwise. With a single known class that class is returned.
func (lr *LogisticRegression) PredictFeatures(f *shape.Features) (string, error) {
	if err := lr.state.RequireFitted("Predict"); err != nil {
		return "", err
	}
	if f == nil {
		return "", errors.Wrap(errors.ErrNilFeatures, "LogisticRegression.PredictFeatures")
	}

	label := lr.classes[0]
	s := lr.score(f)
	if len(lr.classes) == maxClasses && s >= 0 {
		label = lr.classes[1]
	}

	if lr.logger.Enabled(context.Background(), log.LevelDebug) {
		lr.logger.Debug("Prediction made",
			log.OperationKey, log.OperationPredict,
			log.PhaseKey, log.PhaseInference,
			log.LabelKey, label,
			log.ScoreKey, s,
		)
	}
	return label, nil
}

// Score returns the accuracy of the model on instances.
func (lr *LogisticRegression) Score(instances []shape.LabeledInstance) (float64, error) {
	yTrue := make([]string, len(instances))
	yPred := make([]string, len(instances))
	for i, inst := range instances {
		p, err := lr.PredictFeatures(inst.Features)
		if err != nil {
			return 0, err
		}
		yTrue[i] = inst.Label
		yPred[i] = p
	}
	return metrics.Accuracy(yTrue, yPred)
}

// Params returns a copy of [bias, w_1..w_12].
func (lr *LogisticRegression) Params() []float64 {
	return append([]float64(nil), lr.params...)
}

// Weights returns a copy of the 12 descriptor weights.
func (lr *LogisticRegression) Weights() []float64 {
	return append([]float64(nil), lr.params[1:]...)
}

// Bias returns the intercept.
func (lr *LogisticRegression) Bias() float64 { return lr.params[0] }

// Classes returns the known classes, negative first.
func (lr *LogisticRegression) Classes() []string {
	return append([]string(nil), lr.classes...)
}

// LearningRate returns the configured alpha.
func (lr *LogisticRegression) LearningRate() float64 { return lr.alpha }

// Regularization returns the configured beta.
func (lr *LogisticRegression) Regularization() float64 { return lr.beta }

// ID returns the estimator id.
func (lr *LogisticRegression) ID() string { return lr.state.ID() }

func (lr *LogisticRegression) String() string {
	return fmt.Sprintf("LogisticRegression classes=%v alpha=%g beta=%g params=%v",
		lr.classes, lr.alpha, lr.beta, lr.params)
}

// clone returns a deep copy sharing the estimator id.
func (lr *LogisticRegression) clone() *LogisticRegression {
	c := *lr
	c.state = lr.state.Clone()
	c.params = lr.Params()
	c.classes = lr.Classes()
	return &c
}
