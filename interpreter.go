package timelock

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartcontractkit/timelock/sdk"
	"github.com/smartcontractkit/timelock/sdk/evm"
	"github.com/smartcontractkit/timelock/types"
)

// OperationReport is the interpretation of one timelock operation.
type OperationReport struct {
	Operation types.Operation    `json:"operation"`
	Status    StatusResult       `json:"status"`
	Calls     []*evm.DecodedCall `json:"calls"`
	// IDScheme is the hashing scheme that reproduces the operation id, empty
	// when none does or the id could not be checked.
	IDScheme   evm.HashScheme `json:"idScheme,omitempty"`
	IDVerified bool           `json:"idVerified"`
	Warnings   types.Warnings `json:"warnings,omitempty"`
}

// RoleReport is the membership and audit history of one role.
type RoleReport struct {
	Role     Role           `json:"role"`
	History  []HistoryEntry `json:"history"`
	Warnings types.Warnings `json:"warnings,omitempty"`
}

// InterpreterOption configures an Interpreter.
type InterpreterOption func(*Interpreter)

// WithDecodeOptions sets the options used for every decoded call.
func WithDecodeOptions(opts ...evm.DecodeOption) InterpreterOption {
	return func(i *Interpreter) {
		i.decoder = evm.NewDecoder(opts...)
	}
}

// WithIDVerification toggles recomputing operation ids. It is on by default.
func WithIDVerification(enabled bool) InterpreterOption {
	return func(i *Interpreter) {
		i.verifyIDs = enabled
	}
}

// Interpreter turns raw operation and role records into reports. It never
// performs I/O: interfaces come from the lookup it is built with.
type Interpreter struct {
	lookup    evm.InterfaceLookup
	decoder   *evm.Decoder
	verifyIDs bool
}

// NewInterpreter creates an interpreter resolving interfaces through lookup.
func NewInterpreter(lookup evm.InterfaceLookup, opts ...InterpreterOption) *Interpreter {
	i := &Interpreter{
		lookup:    lookup,
		decoder:   evm.NewDecoder(),
		verifyIDs: true,
	}
	for _, opt := range opts {
		opt(i)
	}

	return i
}

// InterpretOperation computes the status of op at now (unix seconds), decodes
// each of its calls and checks its id.
//
// Only invalid records and calls whose payload is too short to hold a
// selector are errors. Everything else is reported in the warnings, which
// are also logged through the context logger.
func (i *Interpreter) InterpretOperation(ctx context.Context, op types.Operation, now uint64) (*OperationReport, error) {
	if err := ValidateOperation(op); err != nil {
		return nil, err
	}
	if err := types.RequireEVM(op.ChainSelector); err != nil {
		return nil, NewUnsupportedChainFamilyError(op.ChainSelector, err)
	}

	report := &OperationReport{
		Operation: op,
		Status:    ComputeStatus(op, now),
	}
	report.Warnings = append(report.Warnings, report.Status.Warnings...)

	for _, call := range op.EffectiveCalls() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		decoded, err := i.decodeCall(call)
		if err != nil {
			return nil, NewDecodeError(call.Index, err)
		}
		report.Calls = append(report.Calls, decoded)
		report.Warnings = append(report.Warnings, decoded.Warnings()...)
	}

	if i.verifyIDs && op.ID != (common.Hash{}) {
		scheme, err := evm.MatchOperationID(op)
		switch {
		case errors.Is(err, evm.ErrNoCalls):
			// nothing to hash
		case err != nil:
			return nil, err
		case scheme == evm.HashSchemeUnverified:
			report.Warnings = append(report.Warnings, types.NewWarning(types.WarningOperationIDMismatch, op.ID.Hex(),
				"operation id does not match its calls, predecessor and salt"))
		default:
			report.IDScheme = scheme
			report.IDVerified = true
		}
	}

	lggr := sdk.LoggerFrom(ctx)
	lggr.Infof("operation %s is %s with %d call(s)", op.ID.Hex(), report.Status.Status, len(report.Calls))
	for _, w := range report.Warnings {
		lggr.Warnf("operation %s: %s", op.ID.Hex(), w.Error())
	}

	return report, nil
}

func (i *Interpreter) decodeCall(call types.Call) (*evm.DecodedCall, error) {
	path := strconv.FormatUint(call.Index, 10)
	if len(call.Payload) == 0 {
		return evm.NativeTransfer(call.Target, call.Value, evm.WithPath(path)), nil
	}

	return i.decoder.Decode(call.Target, call.Payload, i.lookup,
		evm.WithPath(path),
		evm.WithValue(call.Value),
		evm.WithSignature(call.Signature),
	)
}

// InterpretRole replays the events of roleID into its current membership and
// newest-first history.
func (i *Interpreter) InterpretRole(
	ctx context.Context, roleID common.Hash, events []types.RoleAssignmentEvent,
) (*RoleReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	history, members, warnings := replay(roleID, events)
	report := &RoleReport{
		Role:     newRole(roleID, members),
		History:  history,
		Warnings: warnings,
	}
	slices.Reverse(report.History)

	lggr := sdk.LoggerFrom(ctx)
	lggr.Infof("role %s has %d member(s) after %d event(s)", roleLabel(roleID), report.Role.MemberCount, len(history))
	for _, w := range warnings {
		lggr.Warnf("role %s: %s", roleLabel(roleID), w.Error())
	}

	return report, nil
}

func roleLabel(roleID common.Hash) string {
	if name := RoleName(roleID); name != "" {
		return name
	}

	return roleID.Hex()
}
