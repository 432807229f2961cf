package evm

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/smartcontractkit/timelock/internal/utils/abi"
	"github.com/smartcontractkit/timelock/types"
)

// ErrNoCalls is returned when an operation record carries no call to hash.
var ErrNoCalls = errors.New("operation has no calls")

// RBACTimelockCall mirrors the Call struct of the RBAC timelock.
type RBACTimelockCall struct {
	Target common.Address
	Value  *big.Int
	Data   []byte
}

// HashScheme names the way a timelock derives operation ids.
type HashScheme string

const (
	HashSchemeSingle     HashScheme = "openzeppelin_single"
	HashSchemeBatch      HashScheme = "openzeppelin_batch"
	HashSchemeRBACBatch  HashScheme = "rbac_batch"
	HashSchemeUnverified HashScheme = ""
)

// HashOperation replicates TimelockController.hashOperation.
func HashOperation(target common.Address, value *big.Int, data []byte, predecessor, salt [32]byte) (common.Hash, error) {
	encoded, err := abi.Encode(ozOperationArgs, target, orZero(value), data, predecessor, salt)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

// HashOperationBatch replicates TimelockController.hashOperationBatch.
func HashOperationBatch(
	targets []common.Address, values []*big.Int, payloads [][]byte, predecessor, salt [32]byte,
) (common.Hash, error) {
	vals := make([]*big.Int, len(values))
	for i, v := range values {
		vals[i] = orZero(v)
	}

	encoded, err := abi.Encode(ozOperationBatchArgs, targets, vals, payloads, predecessor, salt)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

// HashRBACOperationBatch replicates RBACTimelock.hashOperationBatch.
func HashRBACOperationBatch(calls []RBACTimelockCall, predecessor, salt [32]byte) (common.Hash, error) {
	normalized := make([]RBACTimelockCall, len(calls))
	for i, c := range calls {
		normalized[i] = RBACTimelockCall{Target: c.Target, Value: orZero(c.Value), Data: c.Data}
	}

	encoded, err := abi.Encode(rbacOperationBatchArgs, normalized, predecessor, salt)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

// MatchOperationID recomputes the id of op under every known scheme and
// returns the scheme that reproduces op.ID, or HashSchemeUnverified.
func MatchOperationID(op types.Operation) (HashScheme, error) {
	calls := op.EffectiveCalls()
	if len(calls) == 0 {
		return HashSchemeUnverified, ErrNoCalls
	}

	if len(calls) == 1 {
		c := calls[0]
		id, err := HashOperation(c.Target, c.Value, c.Payload, op.Predecessor, op.Salt)
		if err != nil {
			return HashSchemeUnverified, err
		}
		if id == op.ID {
			return HashSchemeSingle, nil
		}
	}

	targets := make([]common.Address, len(calls))
	values := make([]*big.Int, len(calls))
	payloads := make([][]byte, len(calls))
	rbacCalls := make([]RBACTimelockCall, len(calls))
	for i, c := range calls {
		targets[i], values[i], payloads[i] = c.Target, c.Value, c.Payload
		rbacCalls[i] = RBACTimelockCall{Target: c.Target, Value: c.Value, Data: c.Payload}
	}

	id, err := HashOperationBatch(targets, values, payloads, op.Predecessor, op.Salt)
	if err != nil {
		return HashSchemeUnverified, err
	}
	if id == op.ID {
		return HashSchemeBatch, nil
	}

	id, err = HashRBACOperationBatch(rbacCalls, op.Predecessor, op.Salt)
	if err != nil {
		return HashSchemeUnverified, err
	}
	if id == op.ID {
		return HashSchemeRBACBatch, nil
	}

	return HashSchemeUnverified, nil
}

// VerifyOperationID reports whether op.ID matches its calls, predecessor and
// salt under any known scheme.
func VerifyOperationID(op types.Operation) (bool, error) {
	scheme, err := MatchOperationID(op)
	if err != nil {
		return false, err
	}

	return scheme != HashSchemeUnverified, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}
