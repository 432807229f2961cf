package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/multierr"

	"github.com/smartcontractkit/timelock/sdk/evm"
	"github.com/smartcontractkit/timelock/types"
)

// InterfaceManifest describes the interface of one contract. Exactly one of
// ABI and Signatures must be set. ABI may be the ABI array itself or a string
// holding it.
type InterfaceManifest struct {
	Address    common.Address        `json:"address"`
	Name       string                `json:"name,omitempty"`
	Source     types.InterfaceSource `json:"source"`
	Confidence types.Confidence      `json:"confidence,omitempty"`
	ABI        json.RawMessage       `json:"abi,omitempty"`
	Signatures []string              `json:"signatures,omitempty"`
}

// TokenManifest describes how to render amounts of a token contract.
type TokenManifest struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
}

// RegistryManifest is the content of a registry file.
type RegistryManifest struct {
	Interfaces []InterfaceManifest `json:"interfaces"`
	Tokens     []TokenManifest     `json:"tokens,omitempty"`
}

// LoadRegistry reads a registry file.
func LoadRegistry(path string) (*RegistryManifest, error) {
	m := &RegistryManifest{}
	if err := decodeFile(path, m); err != nil {
		return nil, err
	}

	return m, nil
}

// Build turns the manifest into a registry and the token metadata used to
// annotate amounts. Every invalid entry is reported, not just the first.
func (m *RegistryManifest) Build() (*evm.Registry, map[common.Address]evm.TokenMetadata, error) {
	var (
		registry = evm.NewRegistry()
		tokens   = make(map[common.Address]evm.TokenMetadata, len(m.Tokens))
		err      error
	)

	for i, im := range m.Interfaces {
		entry, entryErr := im.entry()
		if entryErr != nil {
			err = multierr.Append(err, fmt.Errorf("interface %d: %w", i, entryErr))
			continue
		}
		registry.Add(entry)
	}

	for _, tm := range m.Tokens {
		tokens[tm.Address] = evm.TokenMetadata{Symbol: tm.Symbol, Decimals: tm.Decimals}
	}

	if err != nil {
		return nil, nil, err
	}

	return registry, tokens, nil
}

func (im InterfaceManifest) entry() (evm.InterfaceEntry, error) {
	if !im.Source.Valid() {
		return evm.InterfaceEntry{}, fmt.Errorf("invalid interface source: %q", im.Source)
	}

	var (
		entry evm.InterfaceEntry
		err   error
	)
	switch hasABI := len(im.ABI) > 0 && string(im.ABI) != "null"; {
	case hasABI && len(im.Signatures) > 0:
		return evm.InterfaceEntry{}, errors.New("abi and signatures are mutually exclusive")
	case hasABI:
		abiJSON, abiErr := abiString(im.ABI)
		if abiErr != nil {
			return evm.InterfaceEntry{}, abiErr
		}
		entry, err = evm.NewEntryFromABI(im.Address, abiJSON, im.Source, im.Confidence)
	case len(im.Signatures) > 0:
		entry, err = evm.NewEntryFromSignatures(im.Address, im.Signatures, im.Source, im.Confidence)
	default:
		return evm.InterfaceEntry{}, errors.New("one of abi or signatures is required")
	}
	if err != nil {
		return evm.InterfaceEntry{}, err
	}
	entry.Name = im.Name

	return entry, nil
}

// abiString unwraps an ABI given as a JSON string.
func abiString(raw json.RawMessage) (string, error) {
	if raw[0] != '"' {
		return string(raw), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}

	return s, nil
}
