package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestWarning_Error(t *testing.T) {
	t.Parallel()

	w := NewWarning(WarningDepthExceeded, "0.1", "max depth %d reached", 2)
	assert.Equal(t, "depth_exceeded at 0.1: max depth 2 reached", w.Error())

	w = NewWarning(WarningInconsistentOperationState, "", "both set")
	assert.Equal(t, "inconsistent_operation_state: both set", w.Error())
}

func TestWarnings_Err(t *testing.T) {
	t.Parallel()

	require.NoError(t, Warnings(nil).Err())

	ws := Warnings{
		NewWarning(WarningUnknownInterface, "0", "a"),
		NewWarning(WarningMalformedEventRecord, "3", "b"),
	}
	err := ws.Err()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.True(t, ws.Has(WarningMalformedEventRecord))
	assert.False(t, ws.Has(WarningDepthExceeded))
}
