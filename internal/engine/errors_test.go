package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/guidance/internal/store"
)

func TestErrorMatching(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", invalidState("switch approach", "session %s is resolved", "x"))

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.EqualError(t, err, "wrapped: switch approach: invalid state: session x is resolved")

	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, KindInvalidState, e.Kind)
}

func TestNotFoundUnwrapsStoreError(t *testing.T) {
	eng := &Engine{}
	err := eng.storeErr("get session", "x", fmt.Errorf("session x: %w", store.ErrNotFound))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
