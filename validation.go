package timelock

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/smartcontractkit/timelock/types"
)

// ErrMixedCallShapes is returned when an operation populates both the single
// call fields and the call list.
var ErrMixedCallShapes = errors.New("operation has both a single call and a call list")

var validate = validator.New()

// ValidateOperation checks the shape of an operation record before
// interpretation. Timestamp anomalies are not errors: ComputeStatus reports
// them as warnings.
func ValidateOperation(op types.Operation) error {
	if err := validate.Struct(op); err != nil {
		return NewInvalidOperationError(op.ID, err)
	}
	if op.Target != nil && len(op.Calls) > 0 {
		return NewInvalidOperationError(op.ID, ErrMixedCallShapes)
	}

	return nil
}
