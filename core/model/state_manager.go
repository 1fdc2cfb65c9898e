// Package model provides state management, persistence and the shared
// interfaces of shapeml classifiers.
package model

import (
	"sync"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/shapeml/pkg/errors"
)

// StateManager tracks the identity and the learned state of a model.
// Models hold it by composition instead of embedding a base struct.
type StateManager struct {
	mu sync.RWMutex

	modelName string
	id        string
	fitted    bool
	nSamples  int
}

// NewStateManager creates a StateManager with a fresh estimator id.
func NewStateManager(modelName string) *StateManager {
	return &StateManager{
		modelName: modelName,
		id:        uuid.NewString(),
	}
}

// ModelName returns the model type name used in errors and logs.
func (s *StateManager) ModelName() string {
	return s.modelName
}

// ID returns the estimator id.
func (s *StateManager) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// SetID restores a persisted estimator id. The id must be a valid uuid.
func (s *StateManager) SetID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NewValidationError("id", "must be a uuid", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	return nil
}

// IsFitted returns whether the model has learned at least one instance or
// was marked fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// MarkLearned records n more learned instances. n == 0 leaves the state unchanged.
func (s *StateManager) MarkLearned(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
	s.nSamples += n
}

// MarkFitted marks the model ready for prediction without counting any
// learned instance, for parameters supplied directly.
func (s *StateManager) MarkFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
}

// Samples returns the number of instances learned so far.
func (s *StateManager) Samples() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nSamples
}

// Clone returns an independent copy with the same id and counters.
func (s *StateManager) Clone() *StateManager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &StateManager{
		modelName: s.modelName,
		id:        s.id,
		fitted:    s.fitted,
		nSamples:  s.nSamples,
	}
}

// RequireFitted returns a NotFittedError naming method if nothing was learned yet.
func (s *StateManager) RequireFitted(method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(s.modelName, method)
	}
	return nil
}

// ModelState is the serializable snapshot of a StateManager.
type ModelState struct {
	ID       string `json:"id"`
	Fitted   bool   `json:"fitted"`
	NSamples int    `json:"n_samples,omitempty"`
}

// GetState returns the current state as a ModelState.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ModelState{
		ID:       s.id,
		Fitted:   s.fitted,
		NSamples: s.nSamples,
	}
}

// SetState restores a snapshot taken with GetState.
func (s *StateManager) SetState(state ModelState) error {
	if err := s.SetID(state.ID); err != nil {
		return err
	}
	if state.NSamples < 0 {
		return errors.NewValidationError("n_samples", "must be non-negative", state.NSamples)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = state.Fitted
	s.nSamples = state.NSamples
	return nil
}
