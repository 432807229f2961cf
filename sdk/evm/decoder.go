package evm

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	geth_abi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/smartcontractkit/timelock/format"
	sdkerrors "github.com/smartcontractkit/timelock/sdk/errors"
	"github.com/smartcontractkit/timelock/types"
)

const (
	// MinDataLengthForMethodID is the length of a function selector.
	MinDataLengthForMethodID = 4
	// DefaultMaxDepth bounds recursion into wrapper calls.
	DefaultMaxDepth = 5
	// MaxDepthLimit is the largest depth WithMaxDepth accepts.
	MaxDepthLimit = 32
	// UnknownFunctionName names calls that could not be matched to a descriptor.
	UnknownFunctionName = "unknown"

	rootPath = "0"
)

// amountParamNames are the parameter names annotated with token amounts.
var amountParamNames = map[string]struct{}{
	"amount":  {},
	"value":   {},
	"wad":     {},
	"_value":  {},
	"_amount": {},
}

// TokenMetadata describes how to render raw amounts of a token.
type TokenMetadata struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

type decodeConfig struct {
	maxDepth     int
	path         string
	signature    string
	value        *big.Int
	wrapperNames map[string]struct{}
	tokens       map[common.Address]TokenMetadata
}

// DecodeOption configures a Decoder or a single Decode call.
type DecodeOption func(*decodeConfig)

// WithMaxDepth bounds how many levels of the call tree are decoded. Values
// are clamped to [1, MaxDepthLimit].
func WithMaxDepth(depth int) DecodeOption {
	return func(c *decodeConfig) {
		c.maxDepth = min(max(depth, 1), MaxDepthLimit)
	}
}

// WithSignature sets the signature the caller intends the root call to have.
// It only matters when several descriptors share the root selector.
func WithSignature(signature string) DecodeOption {
	return func(c *decodeConfig) {
		c.signature = signature
	}
}

// WithPath sets the path of the root node, "0" by default. Nested nodes
// extend it.
func WithPath(path string) DecodeOption {
	return func(c *decodeConfig) {
		c.path = path
	}
}

// WithValue sets the native value sent with the root call.
func WithValue(value *big.Int) DecodeOption {
	return func(c *decodeConfig) {
		c.value = value
	}
}

// WithWrapperNames replaces the set of function names recursed into.
func WithWrapperNames(names ...string) DecodeOption {
	return func(c *decodeConfig) {
		c.wrapperNames = make(map[string]struct{}, len(names))
		for _, n := range names {
			c.wrapperNames[n] = struct{}{}
		}
	}
}

// WithTokenMetadata annotates amount parameters of calls to the given tokens.
func WithTokenMetadata(tokens map[common.Address]TokenMetadata) DecodeOption {
	return func(c *decodeConfig) {
		c.tokens = tokens
	}
}

// Decoder turns calldata into a tree of decoded calls. It holds no state
// beyond its default options and is safe for concurrent use.
type Decoder struct {
	defaults []DecodeOption
}

// NewDecoder creates a decoder. The options apply to every Decode call and
// can be overridden per call.
func NewDecoder(opts ...DecodeOption) *Decoder {
	return &Decoder{defaults: opts}
}

func (d *Decoder) config(opts []DecodeOption) decodeConfig {
	cfg := decodeConfig{maxDepth: DefaultMaxDepth, path: rootPath}
	WithWrapperNames(DefaultWrapperNames...)(&cfg)
	for _, opt := range d.defaults {
		opt(&cfg)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.value == nil {
		cfg.value = new(big.Int)
	}

	return cfg
}

// frame is one pending call to decode.
type frame struct {
	target    common.Address
	value     *big.Int
	calldata  []byte
	signature string
	path      string
	remaining int
}

// Decode decodes calldata sent to target, recursing into delegation wrappers.
//
// The only error is a CalldataTooShortError for root calldata without a
// selector. Every other problem is reported on the affected node and in its
// warnings, and decoding continues with the siblings.
func (d *Decoder) Decode(
	target common.Address, calldata []byte, lookup InterfaceLookup, opts ...DecodeOption,
) (*DecodedCall, error) {
	if len(calldata) < MinDataLengthForMethodID {
		return nil, sdkerrors.NewCalldataTooShortError(len(calldata))
	}
	if lookup == nil {
		lookup = NewRegistry()
	}

	cfg := d.config(opts)
	root := frame{
		target:    target,
		value:     cfg.value,
		calldata:  calldata,
		signature: cfg.signature,
		path:      cfg.path,
		remaining: cfg.maxDepth,
	}

	return decodeFrame(&cfg, lookup, root), nil
}

// NativeTransfer returns the node for a call that carries value but no
// calldata.
func NativeTransfer(target common.Address, value *big.Int, opts ...DecodeOption) *DecodedCall {
	cfg := NewDecoder().config(opts)
	if value != nil {
		cfg.value = value
	}

	return decodeFrame(&cfg, NewRegistry(), frame{
		target:    target,
		value:     cfg.value,
		path:      cfg.path,
		remaining: cfg.maxDepth,
	})
}

func decodeFrame(cfg *decodeConfig, lookup InterfaceLookup, f frame) *DecodedCall {
	node := &DecodedCall{
		Path:         f.path,
		Target:       f.target,
		Value:        f.value,
		FunctionName: UnknownFunctionName,
		Source:       types.InterfaceSourceNone,
		Confidence:   types.ConfidenceNone,
		Calldata:     f.calldata,
	}

	if f.remaining <= 0 {
		node.Status = StatusDepthExceeded
		node.Reason = fmt.Sprintf("maximum depth %d reached", cfg.maxDepth)
		node.warn(types.WarningDepthExceeded, "call to %s left undecoded: %s", f.target.Hex(), node.Reason)

		return node
	}

	if len(f.calldata) == 0 {
		node.Status = StatusNativeTransfer
		node.FunctionName = ""

		return node
	}

	if len(f.calldata) < MinDataLengthForMethodID {
		node.Status = StatusUndecodable
		node.Reason = fmt.Sprintf("calldata has %d bytes, too short for a selector", len(f.calldata))
		node.warn(types.WarningUndecodableCalldata, "call to %s: %s", f.target.Hex(), node.Reason)

		return node
	}

	selector := f.calldata[:MinDataLengthForMethodID]
	node.Selector = selector

	entry, ok := lookup.Lookup(f.target)
	if !ok {
		node.Status = StatusUnknownInterface
		node.warn(types.WarningUnknownInterface, "no interface registered for %s", f.target.Hex())

		return node
	}
	node.Source = entry.Source
	node.Confidence = entry.Confidence

	candidates := entry.MethodsBySelector(selector)
	if len(candidates) == 0 {
		node.Status = StatusUnknownSelector
		node.warn(types.WarningUnknownSelector, "selector %#x not found in interface of %s", selector, f.target.Hex())

		return node
	}

	type candidate struct {
		method geth_abi.Method
		params []Parameter
	}
	var (
		decoded []candidate
		errs    []error
	)
	for _, m := range candidates {
		values, err := m.Inputs.Unpack(f.calldata[MinDataLengthForMethodID:])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.Sig, err))
			continue
		}
		decoded = append(decoded, candidate{method: m, params: newParameters(m.Inputs, values)})
	}
	if len(decoded) == 0 {
		node.Status = StatusUndecodable
		node.Reason = errors.Join(errs...).Error()
		node.warn(types.WarningUndecodableCalldata, "call to %s: %s", f.target.Hex(), node.Reason)

		return node
	}

	chosen, resolved := 0, false
	if f.signature != "" {
		want := CanonicalSignature(f.signature)
		for i, c := range decoded {
			if c.method.Sig == want {
				chosen, resolved = i, true
				break
			}
		}
	}
	if len(decoded) > 1 && !resolved {
		node.Ambiguous = true
		for i, c := range decoded {
			if i != chosen {
				node.Alternatives = append(node.Alternatives, c.method.Sig)
			}
		}
		node.warn(types.WarningAmbiguousSelector, "selector %#x matches %d signatures, using %s",
			selector, len(decoded), decoded[chosen].method.Sig)
	}

	win := decoded[chosen]
	node.Status = StatusDecoded
	node.FunctionName = win.method.RawName
	node.Signature = win.method.Sig
	node.Parameters = win.params
	if meta, ok := cfg.tokens[f.target]; ok {
		annotateAmounts(node.Parameters, meta)
	}

	if _, ok := cfg.wrapperNames[win.method.RawName]; !ok {
		return node
	}
	shape := classifyWrapper(win.method)
	if shape == shapeNone {
		return node
	}

	inner, err := extractInnerCalls(shape, node.Parameters)
	if err != nil {
		node.Status = StatusMalformedBatchArity
		node.Reason = err.Error()
		node.warn(types.WarningMalformedBatchArity, "%s on %s: %s", win.method.RawName, f.target.Hex(), node.Reason)

		return node
	}

	for i, c := range inner {
		child := decodeFrame(cfg, lookup, frame{
			target:    c.target,
			value:     c.value,
			calldata:  c.data,
			path:      f.path + "." + strconv.Itoa(i),
			remaining: f.remaining - 1,
		})
		node.Children = append(node.Children, child)
	}

	return node
}

func (c *DecodedCall) warn(kind types.WarningKind, msg string, args ...any) {
	c.Issues = append(c.Issues, types.NewWarning(kind, c.Path, msg, args...))
}

func annotateAmounts(params []Parameter, meta TokenMetadata) {
	for i := range params {
		if _, ok := amountParamNames[params[i].Name]; !ok {
			continue
		}
		if raw, ok := params[i].Value.(*big.Int); ok {
			params[i].Annotation = format.FormatAmount(raw, meta.Decimals, meta.Symbol)
		}
	}
}
