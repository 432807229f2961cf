package timelock

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/smartcontractkit/timelock/sdk/evm"
)

var roleNames = map[common.Hash]string{
	evm.DefaultAdminRole:  "DEFAULT_ADMIN",
	evm.AdminRole:         "ADMIN",
	evm.TimelockAdminRole: "TIMELOCK_ADMIN",
	evm.ProposerRole:      "PROPOSER",
	evm.ExecutorRole:      "EXECUTOR",
	evm.CancellerRole:     "CANCELLER",
	evm.BypasserRole:      "BYPASSER",
}

// RoleName returns the name of a well-known timelock role, or the empty
// string.
func RoleName(roleID common.Hash) string {
	return roleNames[roleID]
}

// ParseRole resolves a role given as a 32 byte hex id or as a well-known
// name such as "PROPOSER" or "PROPOSER_ROLE".
func ParseRole(s string) (common.Hash, error) {
	if has0xPrefix(s) {
		b, err := hexutil.Decode(s)
		if err != nil || len(b) != common.HashLength {
			return common.Hash{}, fmt.Errorf("invalid role id %q", s)
		}

		return common.BytesToHash(b), nil
	}

	name := strings.TrimSuffix(strings.ToUpper(s), "_ROLE")
	for id, known := range roleNames {
		if known == name {
			return id, nil
		}
	}

	return common.Hash{}, fmt.Errorf("unknown role %q", s)
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
