package evm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	geth_abi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	sdkerrors "github.com/smartcontractkit/timelock/sdk/errors"
	"github.com/smartcontractkit/timelock/types"
)

// InterfaceEntry is the interface description known for one contract address.
type InterfaceEntry struct {
	Address common.Address
	// Name is an optional label such as the verified contract name.
	Name string
	// Functions holds the function descriptors in declaration order. Order
	// matters when several descriptors share a selector.
	Functions  []geth_abi.Method
	Source     types.InterfaceSource
	Confidence types.Confidence
}

// MethodsBySelector returns every descriptor whose selector matches, in
// declaration order.
func (e InterfaceEntry) MethodsBySelector(selector []byte) []geth_abi.Method {
	var out []geth_abi.Method
	for _, m := range e.Functions {
		if string(m.ID) == string(selector) {
			out = append(out, m)
		}
	}

	return out
}

// InterfaceLookup resolves the interface registered for an address.
// Implementations must be safe for concurrent reads.
type InterfaceLookup interface {
	Lookup(address common.Address) (InterfaceEntry, bool)
}

var _ InterfaceLookup = (*Registry)(nil)

// Registry maps lowercase contract addresses to their interface entries.
//
// A Registry is filled by the transport layer and then handed to the decoder.
// Add is not safe to call concurrently with Lookup; take a Snapshot to decode
// while another goroutine keeps importing.
type Registry struct {
	entries map[string]InterfaceEntry
}

// NewRegistry creates a registry holding the given entries. Later entries for
// the same address replace earlier ones.
func NewRegistry(entries ...InterfaceEntry) *Registry {
	r := &Registry{entries: make(map[string]InterfaceEntry, len(entries))}
	for _, e := range entries {
		r.Add(e)
	}

	return r
}

// Add stores the entry, replacing any entry for the same address.
func (r *Registry) Add(entry InterfaceEntry) {
	if r.entries == nil {
		r.entries = make(map[string]InterfaceEntry)
	}
	if entry.Confidence == "" {
		entry.Confidence = types.DefaultConfidence(entry.Source)
	}
	r.entries[registryKey(entry.Address)] = entry
}

// Lookup returns the entry registered for address.
func (r *Registry) Lookup(address common.Address) (InterfaceEntry, bool) {
	if r == nil {
		return InterfaceEntry{}, false
	}
	entry, ok := r.entries[registryKey(address)]

	return entry, ok
}

// LookupHex is Lookup for a raw hex address string in any letter case.
func (r *Registry) LookupHex(address string) (InterfaceEntry, bool) {
	if !common.IsHexAddress(address) {
		return InterfaceEntry{}, false
	}

	return r.Lookup(common.HexToAddress(address))
}

// Len returns the number of registered addresses.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	return len(r.entries)
}

// Snapshot returns an independent copy of the registry. Entries are replaced
// wholesale on Add, so sharing their descriptor slices is safe.
func (r *Registry) Snapshot() *Registry {
	out := &Registry{entries: make(map[string]InterfaceEntry, r.Len())}
	if r == nil {
		return out
	}
	for k, v := range r.entries {
		out.entries[k] = v
	}

	return out
}

func registryKey(address common.Address) string {
	return strings.ToLower(address.Hex())
}

// abiItem is the subset of an ABI JSON element needed to pick out functions.
type abiItem struct {
	Type string `json:"type"`
}

// NewEntryFromABI builds an entry from a JSON ABI. Non-function items
// (events, errors, constructors) are ignored.
//
// The ABI is parsed one item at a time so that declaration order and
// overloaded names survive; geth's abi.ABI keys methods by name in a map.
func NewEntryFromABI(
	address common.Address, abiJSON string, source types.InterfaceSource, confidence types.Confidence,
) (InterfaceEntry, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(abiJSON), &items); err != nil {
		return InterfaceEntry{}, sdkerrors.NewInvalidInterfaceError(address.Hex(), err)
	}

	functions := make([]geth_abi.Method, 0, len(items))
	for i, raw := range items {
		var item abiItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return InterfaceEntry{}, sdkerrors.NewInvalidInterfaceError(address.Hex(), fmt.Errorf("item %d: %w", i, err))
		}
		// A missing type defaults to function.
		if item.Type != "" && item.Type != "function" {
			continue
		}

		parsed, err := geth_abi.JSON(strings.NewReader("[" + string(raw) + "]"))
		if err != nil {
			return InterfaceEntry{}, sdkerrors.NewInvalidInterfaceError(address.Hex(), fmt.Errorf("item %d: %w", i, err))
		}
		for _, m := range parsed.Methods {
			functions = append(functions, m)
		}
	}

	return newEntry(address, functions, source, confidence), nil
}

// NewEntryFromSignatures builds an entry from human readable signatures such
// as those returned by selector databases, e.g. "transfer(address,uint256)".
// Parameter names are optional.
func NewEntryFromSignatures(
	address common.Address, signatures []string, source types.InterfaceSource, confidence types.Confidence,
) (InterfaceEntry, error) {
	functions := make([]geth_abi.Method, 0, len(signatures))
	var errs []error
	for _, sig := range signatures {
		m, err := ParseSignature(sig)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		functions = append(functions, m)
	}
	if len(errs) > 0 {
		return InterfaceEntry{}, sdkerrors.NewInvalidInterfaceError(address.Hex(), errors.Join(errs...))
	}

	return newEntry(address, functions, source, confidence), nil
}

func newEntry(
	address common.Address, functions []geth_abi.Method, source types.InterfaceSource, confidence types.Confidence,
) InterfaceEntry {
	if confidence == "" {
		confidence = types.DefaultConfidence(source)
	}

	return InterfaceEntry{
		Address:    address,
		Functions:  functions,
		Source:     source,
		Confidence: confidence,
	}
}
