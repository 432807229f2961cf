package timelock

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartcontractkit/timelock/types"
)

// InvalidOperationError is returned when an operation record fails validation.
type InvalidOperationError struct {
	ID     common.Hash
	Reason error
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %s: %v", e.ID.Hex(), e.Reason)
}

func (e *InvalidOperationError) Unwrap() error {
	return e.Reason
}

func NewInvalidOperationError(id common.Hash, reason error) *InvalidOperationError {
	return &InvalidOperationError{ID: id, Reason: reason}
}

// UnsupportedChainFamilyError is returned when an operation belongs to a chain
// whose calldata cannot be interpreted.
type UnsupportedChainFamilyError struct {
	ChainSelector types.ChainSelector
	Reason        error
}

func (e *UnsupportedChainFamilyError) Error() string {
	return fmt.Sprintf("unsupported chain selector %d: %v", e.ChainSelector, e.Reason)
}

func (e *UnsupportedChainFamilyError) Unwrap() error {
	return e.Reason
}

func NewUnsupportedChainFamilyError(sel types.ChainSelector, reason error) *UnsupportedChainFamilyError {
	return &UnsupportedChainFamilyError{ChainSelector: sel, Reason: reason}
}

// DecodeError is returned when a call of an operation cannot be decoded at all.
type DecodeError struct {
	CallIndex uint64
	Reason    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode call %d: %v", e.CallIndex, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Reason
}

func NewDecodeError(index uint64, reason error) *DecodeError {
	return &DecodeError{CallIndex: index, Reason: reason}
}
