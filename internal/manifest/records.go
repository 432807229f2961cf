package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/smartcontractkit/timelock/sdk/evm"
	"github.com/smartcontractkit/timelock/types"
)

// LoadOperations reads operation records from a file holding one record or
// a list of them.
func LoadOperations(path string) ([]types.Operation, error) {
	return decodeList[types.Operation](path)
}

// LoadRoleEvents reads role assignment events.
func LoadRoleEvents(path string) ([]types.RoleAssignmentEvent, error) {
	return decodeList[types.RoleAssignmentEvent](path)
}

// logExtras are the fields a log file carries next to the eth_getLogs fields.
type logExtras struct {
	Timestamp hexutil.Uint64 `json:"timestamp"`
	From      common.Address `json:"from"`
}

// LoadLogs reads raw logs in the eth_getLogs JSON format, each extended with
// the "timestamp" of its block and the "from" address of its transaction.
func LoadLogs(path string) ([]evm.TimestampedLog, error) {
	raws, err := decodeList[json.RawMessage](path)
	if err != nil {
		return nil, err
	}

	logs := make([]evm.TimestampedLog, 0, len(raws))
	for i, raw := range raws {
		var (
			l      gethtypes.Log
			extras logExtras
		)
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("log %d: %w", i, err)
		}
		if err := json.Unmarshal(raw, &extras); err != nil {
			return nil, fmt.Errorf("log %d: %w", i, err)
		}
		logs = append(logs, evm.TimestampedLog{
			Log:       l,
			Timestamp: uint64(extras.Timestamp),
			From:      extras.From,
		})
	}

	return logs, nil
}
