package sdkerrors

import (
	"fmt"
)

// CalldataTooShortError is returned when calldata handed to the decoder cannot
// even hold a function selector. This signals a bug in the caller, not bad
// on-chain data.
type CalldataTooShortError struct {
	Length int
}

func (e *CalldataTooShortError) Error() string {
	return fmt.Sprintf("calldata too short: got %d bytes, need at least 4", e.Length)
}

func NewCalldataTooShortError(length int) *CalldataTooShortError {
	return &CalldataTooShortError{Length: length}
}

// MalformedBatchArityError is returned when the parallel arrays of a batch
// wrapper call do not have the same length.
type MalformedBatchArityError struct {
	Targets  int
	Values   int
	Payloads int
}

func (e *MalformedBatchArityError) Error() string {
	return fmt.Sprintf("malformed batch arity: %d targets, %d values, %d payloads", e.Targets, e.Values, e.Payloads)
}

func NewMalformedBatchArityError(targets, values, payloads int) *MalformedBatchArityError {
	return &MalformedBatchArityError{Targets: targets, Values: values, Payloads: payloads}
}

// InvalidInterfaceError is returned when an interface description cannot be
// parsed into function descriptors.
type InvalidInterfaceError struct {
	Address string
	Reason  error
}

func (e *InvalidInterfaceError) Error() string {
	return fmt.Sprintf("invalid interface for %s: %v", e.Address, e.Reason)
}

func (e *InvalidInterfaceError) Unwrap() error {
	return e.Reason
}

func NewInvalidInterfaceError(address string, reason error) *InvalidInterfaceError {
	return &InvalidInterfaceError{Address: address, Reason: reason}
}

// InvalidSignatureError is returned when a human readable function signature
// such as "transfer(address,uint256)" cannot be parsed.
type InvalidSignatureError struct {
	Signature string
	Reason    string
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("invalid function signature %q: %s", e.Signature, e.Reason)
}

func NewInvalidSignatureError(signature, reason string) *InvalidSignatureError {
	return &InvalidSignatureError{Signature: signature, Reason: reason}
}
