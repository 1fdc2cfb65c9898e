// Package neighbors implements a distance-weighted k-nearest-neighbour
// classifier over shape descriptors.
package neighbors

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/YuminosukeSato/shapeml/core/model"
	"github.com/YuminosukeSato/shapeml/core/parallel"
	"github.com/YuminosukeSato/shapeml/pkg/errors"
	"github.com/YuminosukeSato/shapeml/pkg/log"
	"github.com/YuminosukeSato/shapeml/shape"
)

const (
	// DefaultEpsilon keeps the vote weight 1/(d+eps) finite for exact matches.
	DefaultEpsilon = 1e-9

	modelName = "KNN"

	// 並列処理の閾値（この値以下のインスタンス数では逐次処理を使用）
	parallelThreshold = 512
)

var (
	_ model.Classifier = (*KNN)(nil)
	_ model.Identified = (*KNN)(nil)
)

// Neighbor is one ranked neighbour of a query.
type Neighbor struct {
	Label    string
	Distance float64
	Weight   float64
}

// KNN は距離重み付きk近傍分類器
//
// 学習はインスタンスを追加するだけで、予測時に全インスタンスとの
// Minkowski距離を計算する。Learn は呼び出し側で直列化すること。
type KNN struct {
	state     *model.StateManager
	k         int
	d         int
	epsilon   float64
	instances []shape.LabeledInstance
	extractor shape.Extractor
	base      log.Logger
	logger    log.Logger
}

// NewKNN creates an empty classifier voting over k neighbours with the
// Minkowski distance of order d.
func NewKNN(k, d int, opts ...Option) (*KNN, error) {
	knn := &KNN{
		state:     model.NewStateManager(modelName),
		k:         k,
		d:         d,
		epsilon:   DefaultEpsilon,
		extractor: shape.DefaultExtractor,
	}
	for _, opt := range opts {
		opt(knn)
	}
	if err := validateParams(knn.k, knn.d, knn.epsilon); err != nil {
		return nil, err
	}
	if knn.extractor == nil {
		return nil, errors.NewValidationError("extractor", "must not be nil", nil)
	}
	if knn.base == nil {
		knn.base = log.GetLoggerWithName("neighbors")
	}
	knn.bindLogger()
	return knn, nil
}

func (knn *KNN) bindLogger() {
	knn.logger = knn.base.With(log.ModelNameKey, modelName, log.EstimatorIDKey, knn.state.ID())
}

// NewKNNWithInstances creates a classifier and learns instances.
func NewKNNWithInstances(k, d int, instances []shape.LabeledInstance, opts ...Option) (*KNN, error) {
	knn, err := NewKNN(k, d, opts...)
	if err != nil {
		return nil, err
	}
	if err := knn.Learn(instances); err != nil {
		return nil, err
	}
	return knn, nil
}

func validateParams(k, d int, eps float64) error {
	if k <= 0 {
		return errors.NewValidationError("k", "must be positive", k)
	}
	if d < 1 {
		return errors.NewValidationError("d", "Minkowski order must be at least 1", d)
	}
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps <= 0 {
		return errors.NewValidationError("epsilon", "must be finite and positive", eps)
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

// Learn appends instances. Every instance is validated first, so on error
// the model is unchanged. An empty slice is a no-op.
func (knn *KNN) Learn(instances []shape.LabeledInstance) error {
	if len(instances) == 0 {
		return nil
	}
	if err := validateParams(knn.k, knn.d, knn.epsilon); err != nil {
		return err
	}
	if err := validateInstances(instances); err != nil {
		knn.logger.Error("Learn rejected", log.OperationKey, log.OperationLearn, log.ErrorKey, err)
		return err
	}

	knn.instances = append(knn.instances, instances...)
	knn.state.MarkLearned(len(instances))

	knn.logger.Info("Instances learned",
		log.OperationKey, log.OperationLearn,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, len(instances),
		log.InstancesKey, len(knn.instances),
		log.KKey, knn.k,
		log.NormKey, knn.d,
	)
	return nil
}

// Predict extracts the descriptor of obj and classifies it.
func (knn *KNN) Predict(obj *shape.Object) (string, error) {
	if obj == nil {
		return "", errors.NewValidationError("object", "must not be nil", nil)
	}
	f, err := knn.extractor.Extract(obj.Contour)
	if err != nil {
		knn.logger.Warn("Extraction failed",
			log.OperationKey, log.OperationExtract,
			log.ContourPointsKey, len(obj.Contour),
			log.ErrorKey, err,
		)
		return "", errors.Wrap(err, "KNN.Predict")
	}
	return knn.PredictFeatures(f)
}

// PredictFeatures returns the label with the highest summed vote weight
// among the k nearest instances.
//
// Ties go to the label that appears first in the ranked neighbours: the one
// owning the smallest distance and, among equal distances, the one learned
// first.
func (knn *KNN) PredictFeatures(f *shape.Features) (string, error) {
	nbs, err := knn.rank(f, "KNN.PredictFeatures")
	if err != nil {
		return "", err
	}

	votes := make(map[string]float64, len(nbs))
	order := make([]string, 0, len(nbs))
	for _, nb := range nbs {
		if _, ok := votes[nb.Label]; !ok {
			order = append(order, nb.Label)
		}
		votes[nb.Label] += nb.Weight
	}

	// order follows first appearance, so a strict comparison keeps the earlier label on ties
	best := order[0]
	for _, label := range order[1:] {
		if votes[label] > votes[best] {
			best = label
		}
	}

	if knn.logger.Enabled(context.Background(), log.LevelDebug) {
		knn.logger.Debug("Prediction made",
			log.OperationKey, log.OperationPredict,
			log.PhaseKey, log.PhaseInference,
			log.LabelKey, best,
			log.NeighborsKey, len(nbs),
			log.DistanceKey, nbs[0].Distance,
		)
	}
	return best, nil
}

// Neighbors returns the k nearest instances to f ordered by distance.
// Equal distances keep insertion order.
func (knn *KNN) Neighbors(f *shape.Features) ([]Neighbor, error) {
	return knn.rank(f, "KNN.Neighbors")
}

func (knn *KNN) rank(f *shape.Features, op string) ([]Neighbor, error) {
	if f == nil {
		return nil, errors.Wrap(errors.ErrNilFeatures, op)
	}
	if len(knn.instances) < knn.k {
		return nil, errors.NewInsufficientDataError(op, knn.k, len(knn.instances))
	}

	n := len(knn.instances)
	dists := make([]float64, n)
	err := parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) error {
		for i := start; i < end; i++ {
			d, err := knn.instances[i].Features.Distance(f, knn.d)
			if err != nil {
				return errors.Wrapf(err, "instance %d", i)
			}
			dists[i] = d
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return dists[idx[a]] < dists[idx[b]]
	})

	nbs := make([]Neighbor, knn.k)
	for i := range nbs {
		j := idx[i]
		nbs[i] = Neighbor{
			Label:    knn.instances[j].Label,
			Distance: dists[j],
			Weight:   1 / (dists[j] + knn.epsilon),
		}
	}
	return nbs, nil
}

// K returns the number of neighbours consulted.
func (knn *KNN) K() int { return knn.k }

// Norm returns the Minkowski order.
func (knn *KNN) Norm() int { return knn.d }

// Epsilon returns the vote weight smoothing constant.
func (knn *KNN) Epsilon() float64 { return knn.epsilon }

// Len returns the number of stored instances.
func (knn *KNN) Len() int { return len(knn.instances) }

// ID returns the estimator id.
func (knn *KNN) ID() string { return knn.state.ID() }

// Instances returns a copy of the stored instances in insertion order.
func (knn *KNN) Instances() []shape.LabeledInstance {
	out := make([]shape.LabeledInstance, len(knn.instances))
	copy(out, knn.instances)
	return out
}

func (knn *KNN) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "KNN k=%d d=%d epsilon=%g instances=%d", knn.k, knn.d, knn.epsilon, len(knn.instances))
	for _, inst := range knn.instances {
		fmt.Fprintf(&b, "\n%s: %s", inst.Label, inst.Features)
	}
	return b.String()
}
