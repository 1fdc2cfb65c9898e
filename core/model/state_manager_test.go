package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/shapeml/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager("KNN")

	_, err := uuid.Parse(s.ID())
	require.NoError(t, err)
	assert.False(t, s.IsFitted())

	err = s.RequireFitted("Predict")
	var notFitted *errors.NotFittedError
	require.True(t, errors.As(err, &notFitted))
	assert.Equal(t, "KNN", notFitted.ModelName)
	assert.Equal(t, "Predict", notFitted.Method)

	s.MarkLearned(0)
	assert.False(t, s.IsFitted(), "learning nothing must not mark the model fitted")

	s.MarkLearned(3)
	s.MarkLearned(2)
	assert.True(t, s.IsFitted())
	assert.Equal(t, 5, s.Samples())
	assert.NoError(t, s.RequireFitted("Predict"))

	assert.Equal(t, "KNN", s.ModelName())
}

func TestStateManagerMarkFitted(t *testing.T) {
	s := NewStateManager("LogisticRegression")
	s.MarkFitted()
	assert.True(t, s.IsFitted())
	assert.Zero(t, s.Samples())
	assert.NoError(t, s.RequireFitted("Predict"))
}

func TestStateManagerClone(t *testing.T) {
	s := NewStateManager("LogisticRegression")
	s.MarkLearned(4)

	c := s.Clone()
	assert.Equal(t, s.GetState(), c.GetState())
	assert.Equal(t, s.ModelName(), c.ModelName())

	c.MarkLearned(1)
	assert.Equal(t, 4, s.Samples())
	assert.Equal(t, 5, c.Samples())
}

func TestStateManagerIDsAreUnique(t *testing.T) {
	a := NewStateManager("KNN")
	b := NewStateManager("KNN")
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestStateManagerSetState(t *testing.T) {
	src := NewStateManager("LogisticRegression")
	src.MarkLearned(7)

	dst := NewStateManager("LogisticRegression")
	require.NoError(t, dst.SetState(src.GetState()))
	assert.Equal(t, src.GetState(), dst.GetState())

	err := dst.SetState(ModelState{ID: "not-a-uuid"})
	var vErr *errors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "id", vErr.ParamName)
	assert.Equal(t, src.ID(), dst.ID(), "failed restore must not change the id")
}
