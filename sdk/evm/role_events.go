package evm

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/smartcontractkit/timelock/types"
)

var (
	// ErrRemovedLog is returned for logs dropped by a chain reorganisation.
	ErrRemovedLog = errors.New("log was removed by a reorg")
	// ErrUnexpectedTopic is returned for logs that are not role events.
	ErrUnexpectedTopic = errors.New("unexpected log topic")
	// ErrInvalidAddressTopic is returned when an indexed address topic has
	// non-zero padding.
	ErrInvalidAddressTopic = errors.New("topic does not encode an address")
)

// ParseRoleLog turns a raw RoleGranted or RoleRevoked log into an event
// record. timestamp is the timestamp of the block holding the log.
func ParseRoleLog(log gethtypes.Log, timestamp uint64) (types.RoleAssignmentEvent, error) {
	if log.Removed {
		return types.RoleAssignmentEvent{}, fmt.Errorf("%w: tx %s index %d", ErrRemovedLog, log.TxHash.Hex(), log.Index)
	}
	if len(log.Topics) != 4 {
		return types.RoleAssignmentEvent{}, fmt.Errorf("%w: expected 4 topics, got %d", ErrUnexpectedTopic, len(log.Topics))
	}

	var granted bool
	switch log.Topics[0] {
	case RoleGrantedTopic:
		granted = true
	case RoleRevokedTopic:
		granted = false
	default:
		return types.RoleAssignmentEvent{}, fmt.Errorf("%w: %s", ErrUnexpectedTopic, log.Topics[0].Hex())
	}

	account, err := topicAddress(log.Topics[2])
	if err != nil {
		return types.RoleAssignmentEvent{}, fmt.Errorf("account: %w", err)
	}
	sender, err := topicAddress(log.Topics[3])
	if err != nil {
		return types.RoleAssignmentEvent{}, fmt.Errorf("sender: %w", err)
	}

	txIndex, logIndex := log.TxIndex, log.Index

	return types.RoleAssignmentEvent{
		RoleID:           log.Topics[1],
		Account:          account.Hex(),
		Granted:          granted,
		BlockNumber:      log.BlockNumber,
		TransactionIndex: &txIndex,
		LogIndex:         &logIndex,
		Timestamp:        timestamp,
		TransactionHash:  log.TxHash,
		Sender:           sender,
	}, nil
}

// topicAddress decodes an indexed address, which is left padded with zeros.
func topicAddress(topic common.Hash) (common.Address, error) {
	pad := common.HashLength - common.AddressLength
	if common.BytesToHash(topic[pad:]) != topic {
		return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidAddressTopic, topic.Hex())
	}

	return common.BytesToAddress(topic[pad:]), nil
}

// ParseRoleLogs parses every role log in logs. Logs that are not role events
// are ignored; removed or malformed role logs are reported as warnings.
func ParseRoleLogs(logs []TimestampedLog) ([]types.RoleAssignmentEvent, types.Warnings) {
	var (
		events   []types.RoleAssignmentEvent
		warnings types.Warnings
	)
	for i, l := range logs {
		if len(l.Topics) == 0 || (l.Topics[0] != RoleGrantedTopic && l.Topics[0] != RoleRevokedTopic) {
			continue
		}
		ev, err := ParseRoleLog(l.Log, l.Timestamp)
		if err != nil {
			warnings = append(warnings, types.NewWarning(types.WarningMalformedEventRecord, logPath(i), "%v", err))
			continue
		}
		events = append(events, ev)
	}

	return events, warnings
}

func logPath(i int) string {
	return fmt.Sprintf("log %d", i)
}
