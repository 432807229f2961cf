package evm

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/smartcontractkit/timelock/sdk"
	"github.com/smartcontractkit/timelock/types"
)

// DecodeStatus tells how far decoding of a single call got.
type DecodeStatus string

const (
	StatusDecoded             DecodeStatus = "decoded"
	StatusUnknownInterface    DecodeStatus = "unknown_interface"
	StatusUnknownSelector     DecodeStatus = "unknown_selector"
	StatusUndecodable         DecodeStatus = "undecodable"
	StatusDepthExceeded       DecodeStatus = "depth_exceeded"
	StatusMalformedBatchArity DecodeStatus = "malformed_batch_arity"
	StatusNativeTransfer      DecodeStatus = "native_transfer"
)

// DecodedCall is one node of a decoded call tree. Wrapper calls such as
// executeBatch carry their inner calls in Children, in call order.
type DecodedCall struct {
	// Path locates the node in the tree: "0" for the root, "0.2" for the
	// third inner call of the root.
	Path         string                `json:"path"`
	Target       common.Address        `json:"target"`
	Value        *big.Int              `json:"value"`
	Selector     hexutil.Bytes         `json:"selector,omitempty"`
	FunctionName string                `json:"functionName"`
	Signature    string                `json:"signature,omitempty"`
	Parameters   []Parameter           `json:"parameters,omitempty"`
	Source       types.InterfaceSource `json:"source"`
	Confidence   types.Confidence      `json:"confidence"`
	Status       DecodeStatus          `json:"status"`
	Reason       string                `json:"reason,omitempty"`
	Ambiguous    bool                  `json:"ambiguous,omitempty"`
	Alternatives []string              `json:"alternatives,omitempty"`
	Children     []*DecodedCall        `json:"children,omitempty"`
	Calldata     hexutil.Bytes         `json:"calldata"`
	// Issues holds the warnings raised for this node only.
	Issues types.Warnings `json:"warnings,omitempty"`
}

var _ sdk.DecodedOperation = (*DecodedCall)(nil)

func (c *DecodedCall) MethodName() string {
	return c.FunctionName
}

// Args returns the parameter values in order. Tuple arguments are returned as
// their []Parameter components.
func (c *DecodedCall) Args() []any {
	args := make([]any, len(c.Parameters))
	for i, p := range c.Parameters {
		if p.Components != nil {
			args[i] = p.Components
			continue
		}
		args[i] = p.Value
	}

	return args
}

func (c *DecodedCall) String() (string, string, error) {
	inputMap := make(map[string]any, len(c.Parameters))
	for _, p := range c.Parameters {
		inputMap[p.Name] = p
	}

	byteMap, err := json.MarshalIndent(inputMap, "", "  ")
	if err != nil {
		return "", "", err
	}

	return c.FunctionName, string(byteMap), nil
}

// Warnings returns the warnings of the whole tree in depth first order.
func (c *DecodedCall) Warnings() types.Warnings {
	if c == nil {
		return nil
	}

	var out types.Warnings
	out = append(out, c.Issues...)
	for _, child := range c.Children {
		out = append(out, child.Warnings()...)
	}

	return out
}

// Depth returns the number of tree levels that were examined. Placeholders
// left at the depth limit do not count.
func (c *DecodedCall) Depth() int {
	if c == nil || c.Status == StatusDepthExceeded {
		return 0
	}

	deepest := 0
	for _, child := range c.Children {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	}

	return deepest + 1
}

// Leaves returns the innermost calls of the tree in call order.
func (c *DecodedCall) Leaves() []*DecodedCall {
	if c == nil {
		return nil
	}
	if len(c.Children) == 0 {
		return []*DecodedCall{c}
	}

	var out []*DecodedCall
	for _, child := range c.Children {
		out = append(out, child.Leaves()...)
	}

	return out
}

// Param returns the top level parameter with the given name.
func (c *DecodedCall) Param(name string) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p, true
		}
	}

	return Parameter{}, false
}
