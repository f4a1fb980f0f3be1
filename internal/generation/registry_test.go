package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
)

func TestRegistry_AddGetRemove(t *testing.T) {
	reg := NewRegistry(nil)
	c := NewCoordinator(&CoordinatorConfig{Executor: succeedingExecutor()})

	_, err := reg.Get("batch_missing")
	assert.ErrorIs(t, err, domain.ErrBatchNotFound)

	reg.Add("batch_1", c)
	assert.Equal(t, 1, reg.Len())

	got, err := reg.Get("batch_1")
	require.NoError(t, err)
	assert.Same(t, c, got)

	reg.Remove("batch_1")
	assert.Equal(t, 0, reg.Len())

	_, err = reg.Get("batch_1")
	assert.ErrorIs(t, err, domain.ErrBatchNotFound)

	// Removing an unknown id is a no-op.
	assert.NotPanics(t, func() { reg.Remove("batch_1") })
}

func TestRegistry_StopIsIdempotent(t *testing.T) {
	reg := NewRegistry(nil)
	c := NewCoordinator(&CoordinatorConfig{Executor: succeedingExecutor()})
	reg.Add("batch_1", c)

	assert.True(t, reg.Stop("batch_1"))
	assert.False(t, reg.Stop("batch_1"), "second stop must report not found")
	assert.False(t, reg.Stop("batch_unknown"))
	assert.Equal(t, 0, reg.Len())
}
