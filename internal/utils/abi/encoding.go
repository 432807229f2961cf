package abi

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Encode is the equivalent of abi.encode.
//
// abiStr is the JSON list of argument descriptors, e.g. `[{"type":"uint256"}]`.
// See a full set of examples https://github.com/ethereum/go-ethereum/blob/420b78659bef661a83c5c442121b13f13288c09f/accounts/abi/packing_test.go#L31
func Encode(abiStr string, values ...any) ([]byte, error) {
	args, err := arguments(abiStr)
	if err != nil {
		return nil, err
	}

	return args.Pack(values...)
}

// Decode is the equivalent of abi.decode.
func Decode(abiStr string, data []byte) ([]any, error) {
	args, err := arguments(abiStr)
	if err != nil {
		return nil, err
	}

	return args.Unpack(data)
}

// arguments builds an abi.Arguments list by wrapping the descriptors in a
// dummy method.
func arguments(abiStr string) (abi.Arguments, error) {
	inDef := fmt.Sprintf(`[{ "name" : "method", "type": "function", "inputs": %s}]`, abiStr)
	inAbi, err := abi.JSON(strings.NewReader(inDef))
	if err != nil {
		return nil, err
	}

	return inAbi.Methods["method"].Inputs, nil
}
