package linear

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/shapeml/core/model"
	"github.com/YuminosukeSato/shapeml/metrics"
	"github.com/YuminosukeSato/shapeml/pkg/errors"
	"github.com/YuminosukeSato/shapeml/pkg/log"
	"github.com/YuminosukeSato/shapeml/shape"
)

// RestLabel is the negative class of every binary model inside OneVsRest.
const RestLabel = "__rest__"

const ovrModelName = "OneVsRest"

var (
	_ model.Classifier = (*OneVsRest)(nil)
	_ model.Scorer     = (*OneVsRest)(nil)
	_ model.Identified = (*OneVsRest)(nil)
)

// OneVsRest は各ラベルごとに「そのラベル vs 残り」の二値分類器を持つ多クラス分類器
//
// A label's model is created by the batch that first contains it and sees
// every later batch.
type OneVsRest struct {
	state    *model.StateManager
	opts     []Option
	models   map[string]*LogisticRegression
	template *LogisticRegression
	logger   log.Logger
}

// NewOneVsRest creates an empty classifier. opts configure every binary
// model; WithClasses is not allowed.
func NewOneVsRest(opts ...Option) (*OneVsRest, error) {
	template, err := NewLogisticRegression(opts...)
	if err != nil {
		return nil, err
	}
	if len(template.classes) > 0 {
		return nil, errors.NewValidationError("classes", "are assigned per label by OneVsRest", template.classes)
	}

	state := model.NewStateManager(ovrModelName)
	return &OneVsRest{
		state:    state,
		opts:     opts,
		models:   make(map[string]*LogisticRegression),
		template: template,
		logger:   template.base.With(log.ModelNameKey, state.ModelName(), log.EstimatorIDKey, state.ID()),
	}, nil
}

// Learn runs one pass of every binary model over instances. Each instance
// is the positive example of its own label and a negative example of all
// others. The update is all-or-nothing.
func (o *OneVsRest) Learn(instances []shape.LabeledInstance) error {
	if len(instances) == 0 {
		return nil
	}
	if err := validateInstances(instances); err != nil {
		return err
	}
	for i, inst := range instances {
		if inst.Label == RestLabel {
			return errors.NewValidationError("label", fmt.Sprintf("instance %d uses the reserved label %q", i, RestLabel), inst.Label)
		}
	}

	next := make(map[string]*LogisticRegression, len(o.models))
	for label, m := range o.models {
		next[label] = m.clone()
	}
	for _, inst := range instances {
		if _, ok := next[inst.Label]; ok {
			continue
		}
		opts := append(append([]Option(nil), o.opts...), WithClasses(RestLabel, inst.Label))
		m, err := NewLogisticRegression(opts...)
		if err != nil {
			return err
		}
		next[inst.Label] = m
	}

	labels := make([]string, 0, len(next))
	for label := range next {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	relabeled := make([]shape.LabeledInstance, len(instances))
	for _, label := range labels {
		m := next[label]
		for i, inst := range instances {
			relabeled[i] = shape.LabeledInstance{Label: RestLabel, Features: inst.Features}
			if inst.Label == label {
				relabeled[i].Label = label
			}
		}
		if err := m.Learn(relabeled); err != nil {
			return errors.NewModelError("OneVsRest.Learn", fmt.Sprintf("binary model %q", label), err)
		}
	}

	o.models = next
	o.state.MarkLearned(len(instances))
	o.logger.Info("Models updated",
		log.OperationKey, log.OperationLearn,
		log.SamplesKey, len(instances),
		log.ClassesKey, o.Classes(),
	)
	return nil
}

// Classes returns the known labels in sorted order.
func (o *OneVsRest) Classes() []string {
	labels := make([]string, 0, len(o.models))
	for label := range o.models {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Model returns the binary model of label.
func (o *OneVsRest) Model(label string) (*LogisticRegression, bool) {
	m, ok := o.models[label]
	return m, ok
}

// Predict extracts the descriptor of obj and classifies it.
func (o *OneVsRest) Predict(obj *shape.Object) (string, error) {
	if obj == nil {
		return "", errors.NewValidationError("object", "must not be nil", nil)
	}
	f, err := o.template.extractor.Extract(obj.Contour)
	if err != nil {
		return "", errors.Wrap(err, "OneVsRest.Predict")
	}
	return o.PredictFeatures(f)
}

// PredictFeatures returns the label whose model scores f highest. Ties go
// to the label that sorts first.
func (o *OneVsRest) PredictFeatures(f *shape.Features) (string, error) {
	if err := o.state.RequireFitted("Predict"); err != nil {
		return "", err
	}
	if f == nil {
		return "", errors.Wrap(errors.ErrNilFeatures, "OneVsRest.PredictFeatures")
	}

	var best string
	var bestScore float64
	for i, label := range o.Classes() {
		s := o.models[label].score(f)
		if i == 0 || s > bestScore {
			best, bestScore = label, s
		}
	}
	return best, nil
}

// Score returns the accuracy on instances.
func (o *OneVsRest) Score(instances []shape.LabeledInstance) (float64, error) {
	yTrue := make([]string, len(instances))
	yPred := make([]string, len(instances))
	for i, inst := range instances {
		p, err := o.PredictFeatures(inst.Features)
		if err != nil {
			return 0, err
		}
		yTrue[i] = inst.Label
		yPred[i] = p
	}
	return metrics.Accuracy(yTrue, yPred)
}

// ID returns the estimator id.
func (o *OneVsRest) ID() string { return o.state.ID() }
