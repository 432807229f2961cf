package evm

import (
	"fmt"
	"strings"
	"unicode"

	geth_abi "github.com/ethereum/go-ethereum/accounts/abi"

	sdkerrors "github.com/smartcontractkit/timelock/sdk/errors"
)

// dataLocations are Solidity keywords that may appear between a type and a
// parameter name in a pasted signature.
var dataLocations = map[string]struct{}{
	"memory":   {},
	"calldata": {},
	"storage":  {},
	"indexed":  {},
	"payable":  {},
}

// ParseSignature parses a human readable function signature into a method
// descriptor. Both canonical ("transfer(address,uint256)") and annotated
// ("function transfer(address to, uint256 amount)") forms are accepted, as are
// tuple types such as "((address,uint256,bytes)[] calls)".
func ParseSignature(signature string) (geth_abi.Method, error) {
	sig := strings.TrimSpace(signature)
	sig = strings.TrimPrefix(sig, "function ")
	sig = strings.TrimSpace(sig)

	open := strings.IndexByte(sig, '(')
	if open <= 0 {
		return geth_abi.Method{}, sdkerrors.NewInvalidSignatureError(signature, "missing function name or parameter list")
	}
	closeIdx, err := matchingParen(sig, open)
	if err != nil {
		return geth_abi.Method{}, sdkerrors.NewInvalidSignatureError(signature, err.Error())
	}
	if rest := strings.TrimSpace(sig[closeIdx+1:]); rest != "" && !strings.HasPrefix(rest, "returns") &&
		!isModifierList(rest) {
		return geth_abi.Method{}, sdkerrors.NewInvalidSignatureError(signature, "unexpected trailing text "+rest)
	}

	name := strings.TrimSpace(sig[:open])
	if !isIdentifier(name) {
		return geth_abi.Method{}, sdkerrors.NewInvalidSignatureError(signature, "invalid function name "+name)
	}

	params, err := parseParams(sig[open+1:closeIdx], false)
	if err != nil {
		return geth_abi.Method{}, sdkerrors.NewInvalidSignatureError(signature, err.Error())
	}

	inputs := make(geth_abi.Arguments, 0, len(params))
	for _, p := range params {
		typ, err := geth_abi.NewType(p.Type, "", p.Components)
		if err != nil {
			return geth_abi.Method{}, sdkerrors.NewInvalidSignatureError(signature, err.Error())
		}
		inputs = append(inputs, geth_abi.Argument{Name: p.Name, Type: typ})
	}

	return geth_abi.NewMethod(name, name, geth_abi.Function, "nonpayable", false, false, inputs, nil), nil
}

// CanonicalSignature returns the canonical form of a signature, e.g.
// "transfer(address to, uint256 amount)" becomes "transfer(address,uint256)".
// Unparsable input is returned with whitespace removed.
func CanonicalSignature(signature string) string {
	m, err := ParseSignature(signature)
	if err != nil {
		return strings.Join(strings.Fields(signature), "")
	}

	return m.Sig
}

// parseParams parses a comma separated parameter list. Tuple components need
// names to become struct fields, so unnamed ones get positional names.
func parseParams(list string, nameComponents bool) ([]geth_abi.ArgumentMarshaling, error) {
	parts, err := splitTopLevel(list)
	if err != nil {
		return nil, err
	}

	out := make([]geth_abi.ArgumentMarshaling, 0, len(parts))
	for i, part := range parts {
		arg, err := parseParam(part)
		if err != nil {
			return nil, err
		}
		if arg.Name == "" && nameComponents {
			arg.Name = fmt.Sprintf("field%d", i)
		}
		out = append(out, arg)
	}

	return out, nil
}

func parseParam(part string) (geth_abi.ArgumentMarshaling, error) {
	part = strings.TrimSpace(part)
	if part == "" {
		return geth_abi.ArgumentMarshaling{}, fmt.Errorf("empty parameter")
	}

	var (
		arg  geth_abi.ArgumentMarshaling
		rest string
	)
	if strings.HasPrefix(part, "tuple(") {
		part = strings.TrimPrefix(part, "tuple")
	}
	if part[0] == '(' {
		closeIdx, err := matchingParen(part, 0)
		if err != nil {
			return arg, err
		}
		components, err := parseParams(part[1:closeIdx], true)
		if err != nil {
			return arg, err
		}
		dims, tail := splitArrayDims(part[closeIdx+1:])
		arg.Type = "tuple" + dims
		arg.Components = components
		rest = tail
	} else {
		fields := strings.Fields(part)
		arg.Type = normalizeElementaryType(fields[0])
		rest = strings.Join(fields[1:], " ")
	}

	for _, f := range strings.Fields(rest) {
		if _, ok := dataLocations[f]; ok {
			continue
		}
		if !isIdentifier(f) {
			return arg, fmt.Errorf("invalid parameter name %q", f)
		}
		arg.Name = f
	}

	return arg, nil
}

// normalizeElementaryType expands the Solidity aliases that are not valid in
// canonical signatures.
func normalizeElementaryType(t string) string {
	base, dims := t, ""
	if i := strings.IndexByte(t, '['); i >= 0 {
		base, dims = t[:i], t[i:]
	}
	switch base {
	case "uint":
		base = "uint256"
	case "int":
		base = "int256"
	case "byte":
		base = "bytes1"
	}

	return base + dims
}

// splitArrayDims splits "[2][] name" into "[2][]" and " name".
func splitArrayDims(s string) (string, string) {
	i := 0
	for i < len(s) && s[i] == '[' {
		j := strings.IndexByte(s[i:], ']')
		if j < 0 {
			break
		}
		i += j + 1
	}

	return s[:i], s[i:]
}

// splitTopLevel splits on commas that are not nested in parentheses.
func splitTopLevel(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses")
	}

	return append(parts, s[start:]), nil
}

func matchingParen(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}

	return 0, fmt.Errorf("unbalanced parentheses")
}

func isModifierList(s string) bool {
	for _, f := range strings.Fields(s) {
		switch f {
		case "external", "public", "view", "pure", "payable", "nonpayable":
		default:
			return false
		}
	}

	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}

		return false
	}

	return true
}
