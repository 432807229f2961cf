package types

import (
	"fmt"

	"go.uber.org/multierr"
)

// WarningKind classifies a recoverable anomaly found while interpreting
// on-chain data. Warnings never abort interpretation.
type WarningKind string

const (
	WarningUnknownInterface           WarningKind = "unknown_interface"
	WarningUnknownSelector            WarningKind = "unknown_selector"
	WarningUndecodableCalldata        WarningKind = "undecodable_calldata"
	WarningMalformedBatchArity        WarningKind = "malformed_batch_arity"
	WarningDepthExceeded              WarningKind = "depth_exceeded"
	WarningAmbiguousSelector          WarningKind = "ambiguous_selector"
	WarningMalformedEventRecord       WarningKind = "malformed_event_record"
	WarningInconsistentOperationState WarningKind = "inconsistent_operation_state"
	WarningOperationIDMismatch        WarningKind = "operation_id_mismatch"
)

// Warning is a single anomaly. Path locates it: a call tree path such as
// "0.2" for decoder warnings, an event position for ledger warnings.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
	Path    string      `json:"path,omitempty"`
}

// NewWarning creates a warning with a formatted message.
func NewWarning(kind WarningKind, path string, format string, args ...any) Warning {
	return Warning{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
	}
}

// Error implements the error interface.
func (w Warning) Error() string {
	if w.Path == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}

	return fmt.Sprintf("%s at %s: %s", w.Kind, w.Path, w.Message)
}

// Warnings is a list of warnings in the order they were found.
type Warnings []Warning

// Err combines the warnings into a single error, or nil when there are none.
func (ws Warnings) Err() error {
	var err error
	for _, w := range ws {
		err = multierr.Append(err, w)
	}

	return err
}

// Has reports whether a warning of the given kind is present.
func (ws Warnings) Has(kind WarningKind) bool {
	for _, w := range ws {
		if w.Kind == kind {
			return true
		}
	}

	return false
}
