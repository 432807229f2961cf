package types //nolint:revive,nolintlint // allow pkg name 'types'

import (
	"errors"
	"fmt"

	chainsel "github.com/smartcontractkit/chain-selectors"
)

// ChainSelector is a unique identifier for a chain.
//
// These values are defined in the chain-selectors dependency.
// https://github.com/smartcontractkit/chain-selectors
type ChainSelector uint64

var (
	// ErrChainFamilyNotFound is returned when the chain family is not found for a selector
	ErrChainFamilyNotFound = errors.New("chain family not found")

	// ErrUnsupportedChainFamily is returned when the chain family cannot be interpreted
	ErrUnsupportedChainFamily = errors.New("unsupported chain family")
)

// GetChainSelectorFamily returns the family of the chain selector.
//
// Only the chain-selectors table compiled into the binary is consulted.
func GetChainSelectorFamily(sel ChainSelector) (string, error) {
	family, err := chainsel.GetSelectorFamily(uint64(sel))
	if err != nil {
		return "", fmt.Errorf("%w for selector %d", ErrChainFamilyNotFound, sel)
	}

	return family, nil
}

// RequireEVM returns an error unless the selector belongs to an EVM chain.
// The zero selector means the caller did not say and is accepted.
func RequireEVM(sel ChainSelector) error {
	if sel == 0 {
		return nil
	}

	family, err := GetChainSelectorFamily(sel)
	if err != nil {
		return err
	}
	if family != chainsel.FamilyEVM {
		return fmt.Errorf("%w: %s", ErrUnsupportedChainFamily, family)
	}

	return nil
}
