package evm

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	geth_abi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Parameter is one decoded argument. Values are normalised so callers never
// see geth's reflection types:
//
//   - every integer is a *big.Int
//   - addresses are common.Address
//   - bytes and bytesN are []byte
//   - arrays are []any of normalised elements (tuple elements are []Parameter)
//   - tuples have a nil Value and their fields in Components
type Parameter struct {
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Value      any         `json:"value,omitempty"`
	Components []Parameter `json:"components,omitempty"`
	// Annotation is a human readable rendering added by the formatter, e.g.
	// "1.5 USDC" next to a raw token amount.
	Annotation string `json:"annotation,omitempty"`
}

// MarshalJSON renders integers as decimal strings, bytes as 0x-hex and
// addresses checksummed.
func (p Parameter) MarshalJSON() ([]byte, error) {
	type plain Parameter
	out := plain(p)
	out.Value = renderValue(p.Value)

	return json.Marshal(out)
}

func renderValue(v any) any {
	switch val := v.(type) {
	case *big.Int:
		if val == nil {
			return nil
		}

		return val.String()
	case []byte:
		return hexutil.Encode(val)
	case common.Address:
		return val.Hex()
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = renderValue(e)
		}

		return out
	default:
		return v
	}
}

// FormatValue renders a normalised value on a single line.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case *big.Int:
		return val.String()
	case []byte:
		return hexutil.Encode(val)
	case common.Address:
		return val.Hex()
	case []Parameter:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = p.Name + ": " + p.String()
		}

		return "(" + strings.Join(parts, ", ") + ")"
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = FormatValue(e)
		}

		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}

// String renders the parameter value, followed by its annotation if any.
func (p Parameter) String() string {
	s := FormatValue(p.Value)
	if p.Components != nil {
		s = FormatValue(p.Components)
	}
	if p.Annotation != "" {
		s += " (" + p.Annotation + ")"
	}

	return s
}

// newParameters converts the output of Arguments.Unpack into parameters.
func newParameters(args geth_abi.Arguments, values []any) []Parameter {
	params := make([]Parameter, 0, len(args))
	for i, arg := range args {
		var v any
		if i < len(values) {
			v = values[i]
		}
		params = append(params, newParameter(arg.Name, arg.Type, reflect.ValueOf(v)))
	}

	return params
}

func newParameter(name string, t geth_abi.Type, rv reflect.Value) Parameter {
	p := Parameter{Name: name, Type: t.String()}
	if t.T == geth_abi.TupleTy {
		p.Components = tupleComponents(t, rv)
		return p
	}
	p.Value = normalizeValue(t, rv)

	return p
}

func tupleComponents(t geth_abi.Type, rv reflect.Value) []Parameter {
	rv = reflect.Indirect(rv)
	out := make([]Parameter, 0, len(t.TupleElems))
	for i, elem := range t.TupleElems {
		var field reflect.Value
		if rv.IsValid() && rv.Kind() == reflect.Struct && i < rv.NumField() {
			field = rv.Field(i)
		}
		name := ""
		if i < len(t.TupleRawNames) {
			name = t.TupleRawNames[i]
		}
		out = append(out, newParameter(name, *elem, field))
	}

	return out
}

func normalizeValue(t geth_abi.Type, rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}

	switch t.T {
	case geth_abi.IntTy, geth_abi.UintTy:
		return toBigInt(rv)
	case geth_abi.AddressTy:
		if addr, ok := rv.Interface().(common.Address); ok {
			return addr
		}

		return rv.Interface()
	case geth_abi.BytesTy, geth_abi.FixedBytesTy, geth_abi.FunctionTy, geth_abi.HashTy:
		return toBytes(rv)
	case geth_abi.SliceTy, geth_abi.ArrayTy:
		out := make([]any, rv.Len())
		for i := range out {
			if t.Elem.T == geth_abi.TupleTy {
				out[i] = tupleComponents(*t.Elem, rv.Index(i))
				continue
			}
			out[i] = normalizeValue(*t.Elem, rv.Index(i))
		}

		return out
	case geth_abi.TupleTy:
		return tupleComponents(t, rv)
	default:
		return rv.Interface()
	}
}

func toBigInt(rv reflect.Value) *big.Int {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint())
	case reflect.Ptr:
		if b, ok := rv.Interface().(*big.Int); ok && b != nil {
			return new(big.Int).Set(b)
		}
	default:
	}

	return nil
}

func toBytes(rv reflect.Value) []byte {
	if rv.Kind() == reflect.Slice {
		b := make([]byte, rv.Len())
		copy(b, rv.Bytes())

		return b
	}
	b := make([]byte, rv.Len())
	for i := range b {
		b[i] = byte(rv.Index(i).Uint())
	}

	return b
}
