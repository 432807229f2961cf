package evm

import (
	"math/big"

	geth_abi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	sdkerrors "github.com/smartcontractkit/timelock/sdk/errors"
)

// DefaultWrapperNames are the function names treated as delegation wrappers
// when their arguments have a recognised call shape.
var DefaultWrapperNames = []string{
	"execute",
	"executeBatch",
	"schedule",
	"scheduleBatch",
	"bypasserExecuteBatch",
}

type wrapperShape int

const (
	shapeNone wrapperShape = iota
	// execute(address target, uint256 value, bytes data, ...)
	shapeSingle
	// executeBatch(address[] targets, uint256[] values, bytes[] payloads, ...)
	shapeParallel
	// executeBatch(address[] dest, bytes[] func)
	shapeParallelNoValue
	// executeBatch((address target, uint256 value, bytes data)[] calls, ...)
	shapeTupleArray
)

// innerCall is one call extracted from a wrapper's arguments.
type innerCall struct {
	target common.Address
	value  *big.Int
	data   []byte
}

func classifyWrapper(m geth_abi.Method) wrapperShape {
	in := m.Inputs
	switch {
	case len(in) >= 3 && isCallTriple(in[0].Type, in[1].Type, in[2].Type):
		return shapeSingle
	case len(in) >= 3 && isSliceOf(in[0].Type, geth_abi.AddressTy) && isSliceOf(in[1].Type, geth_abi.UintTy) &&
		isSliceOf(in[2].Type, geth_abi.BytesTy):
		return shapeParallel
	case len(in) >= 2 && isSliceOf(in[0].Type, geth_abi.AddressTy) && isSliceOf(in[1].Type, geth_abi.BytesTy):
		return shapeParallelNoValue
	case len(in) >= 1 && in[0].Type.T == geth_abi.SliceTy && in[0].Type.Elem.T == geth_abi.TupleTy:
		elems := in[0].Type.Elem.TupleElems
		if len(elems) >= 3 && isCallTriple(*elems[0], *elems[1], *elems[2]) {
			return shapeTupleArray
		}
	}

	return shapeNone
}

func isCallTriple(target, value, data geth_abi.Type) bool {
	return target.T == geth_abi.AddressTy && value.T == geth_abi.UintTy && data.T == geth_abi.BytesTy
}

func isSliceOf(t geth_abi.Type, elem byte) bool {
	return t.T == geth_abi.SliceTy && t.Elem != nil && t.Elem.T == elem
}

// extractInnerCalls pulls the inner calls out of the normalised parameters of
// a wrapper call.
func extractInnerCalls(shape wrapperShape, params []Parameter) ([]innerCall, error) {
	switch shape {
	case shapeSingle:
		return []innerCall{callFromValues(params[0].Value, params[1].Value, params[2].Value)}, nil

	case shapeParallel, shapeParallelNoValue:
		targets, _ := params[0].Value.([]any)
		var values, payloads []any
		if shape == shapeParallel {
			values, _ = params[1].Value.([]any)
			payloads, _ = params[2].Value.([]any)
		} else {
			payloads, _ = params[1].Value.([]any)
			values = make([]any, len(targets))
		}
		if len(targets) != len(values) || len(targets) != len(payloads) {
			return nil, sdkerrors.NewMalformedBatchArityError(len(targets), len(values), len(payloads))
		}
		calls := make([]innerCall, len(targets))
		for i := range targets {
			calls[i] = callFromValues(targets[i], values[i], payloads[i])
		}

		return calls, nil

	case shapeTupleArray:
		elems, _ := params[0].Value.([]any)
		calls := make([]innerCall, 0, len(elems))
		for _, e := range elems {
			fields, _ := e.([]Parameter)
			if len(fields) < 3 {
				continue
			}
			calls = append(calls, callFromValues(fields[0].Value, fields[1].Value, fields[2].Value))
		}

		return calls, nil

	default:
		return nil, nil
	}
}

func callFromValues(target, value, data any) innerCall {
	c := innerCall{value: new(big.Int)}
	if addr, ok := target.(common.Address); ok {
		c.target = addr
	}
	if v, ok := value.(*big.Int); ok && v != nil {
		c.value = v
	}
	if b, ok := data.([]byte); ok {
		c.data = b
	}

	return c
}
