package timelock

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/smartcontractkit/timelock/types"
)

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	reason := errors.New("boom")
	tests := []struct {
		err      error
		expected string
	}{
		{
			NewInvalidOperationError(common.HexToHash("0x01"), reason),
			"invalid operation 0x0000000000000000000000000000000000000000000000000000000000000001: boom",
		},
		{NewUnsupportedChainFamilyError(7, reason), "unsupported chain selector 7: boom"},
		{NewDecodeError(2, reason), "failed to decode call 2: boom"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.err.Error())
		assert.ErrorIs(t, test.err, reason)
	}
}

func TestUnsupportedChainFamilyError_Wraps(t *testing.T) {
	t.Parallel()

	err := NewUnsupportedChainFamilyError(1, types.ErrChainFamilyNotFound)
	assert.ErrorIs(t, err, types.ErrChainFamilyNotFound)
}
