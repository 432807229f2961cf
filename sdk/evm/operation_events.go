package evm

import (
	"fmt"
	"math"
	"math/big"
	"slices"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/smartcontractkit/timelock/internal/utils/abi"
	"github.com/smartcontractkit/timelock/internal/utils/safecast"
	"github.com/smartcontractkit/timelock/types"
)

// TimestampedLog is a raw log together with facts about its block and
// transaction that the log itself does not carry.
type TimestampedLog struct {
	gethtypes.Log
	// Timestamp is the timestamp of the block holding the log.
	Timestamp uint64
	// From is the sender of the transaction that emitted the log.
	From common.Address
}

// scheduledCall is the decoded data of a CallScheduled log.
type scheduledCall struct {
	target      common.Address
	value       *big.Int
	data        []byte
	predecessor common.Hash
	salt        *common.Hash
	delay       uint64
}

// OperationsFromLogs folds timelock logs into operation records, in the
// order the operations were first scheduled. Calls are ordered by index.
//
// Logs are sorted by block, transaction and log index first, so callers may
// pass them in any order. Logs from other events are ignored.
func OperationsFromLogs(logs []TimestampedLog) ([]types.Operation, types.Warnings) {
	sorted := slices.Clone(logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber < b.BlockNumber
		}
		if a.TxIndex != b.TxIndex {
			return a.TxIndex < b.TxIndex
		}

		return a.Index < b.Index
	})

	var (
		ops      = make(map[common.Hash]*types.Operation)
		order    []common.Hash
		warnings types.Warnings
	)
	malformed := func(l TimestampedLog, msg string, args ...any) {
		path := fmt.Sprintf("block %d log %d", l.BlockNumber, l.Index)
		warnings = append(warnings, types.NewWarning(types.WarningMalformedEventRecord, path, msg, args...))
	}

	for _, l := range sorted {
		if len(l.Topics) == 0 {
			continue
		}
		topic := l.Topics[0]
		switch topic {
		case OZCallScheduledTopic, RBACCallScheduledTopic, CallExecutedTopic, CallSaltTopic, CancelledTopic:
		default:
			continue
		}
		if l.Removed {
			malformed(l, "%v", ErrRemovedLog)
			continue
		}
		if len(l.Topics) < 2 {
			malformed(l, "missing operation id topic")
			continue
		}
		id := l.Topics[1]
		op := ops[id]

		switch topic {
		case OZCallScheduledTopic, RBACCallScheduledTopic:
			index, sc, err := parseCallScheduled(l)
			if err != nil {
				malformed(l, "CallScheduled: %v", err)
				continue
			}
			if op == nil {
				op = &types.Operation{
					ID:                   id,
					Predecessor:          sc.predecessor,
					Delay:                sc.delay,
					ReadyAtTimestamp:     saturatingAdd(l.Timestamp, sc.delay),
					ScheduledAtTimestamp: l.Timestamp,
					ScheduledBy:          l.From,
				}
				ops[id] = op
				order = append(order, id)
			}
			if sc.salt != nil {
				op.Salt = *sc.salt
			}
			op.Calls = append(op.Calls, types.Call{
				Index:   index,
				Target:  sc.target,
				Value:   sc.value,
				Payload: sc.data,
			})

		case CallSaltTopic:
			if op == nil {
				malformed(l, "CallSalt for unknown operation %s", id.Hex())
				continue
			}
			values, err := abi.Decode(callSaltData, l.Data)
			if err != nil {
				malformed(l, "CallSalt: %v", err)
				continue
			}
			op.Salt = values[0].([32]byte)

		case CallExecutedTopic:
			if op == nil {
				malformed(l, "CallExecuted for unknown operation %s", id.Hex())
				continue
			}
			if op.ExecutedAtTimestamp == nil {
				ts, from := l.Timestamp, l.From
				op.ExecutedAtTimestamp = &ts
				op.ExecutedBy = &from
			}

		case CancelledTopic:
			if op == nil {
				malformed(l, "Cancelled for unknown operation %s", id.Hex())
				continue
			}
			if op.CancelledAtTimestamp == nil {
				ts, from := l.Timestamp, l.From
				op.CancelledAtTimestamp = &ts
				op.CancelledBy = &from
			}
		}
	}

	out := make([]types.Operation, 0, len(order))
	for _, id := range order {
		op := ops[id]
		sort.SliceStable(op.Calls, func(i, j int) bool { return op.Calls[i].Index < op.Calls[j].Index })
		out = append(out, *op)
	}

	return out, warnings
}

func parseCallScheduled(l TimestampedLog) (uint64, scheduledCall, error) {
	if len(l.Topics) < 3 {
		return 0, scheduledCall{}, fmt.Errorf("expected 3 topics, got %d", len(l.Topics))
	}
	index, err := safecast.BigToUint64(l.Topics[2].Big())
	if err != nil {
		return 0, scheduledCall{}, fmt.Errorf("call index: %w", err)
	}

	rbac := l.Topics[0] == RBACCallScheduledTopic
	dataArgs := ozCallScheduledData
	if rbac {
		dataArgs = rbacCallScheduledData
	}
	values, err := abi.Decode(dataArgs, l.Data)
	if err != nil {
		return 0, scheduledCall{}, err
	}

	sc := scheduledCall{
		target:      values[0].(common.Address),
		value:       values[1].(*big.Int),
		data:        values[2].([]byte),
		predecessor: values[3].([32]byte),
	}
	delay := values[4].(*big.Int)
	if rbac {
		salt := common.Hash(values[4].([32]byte))
		sc.salt = &salt
		delay = values[5].(*big.Int)
	}
	if sc.delay, err = safecast.BigToUint64(delay); err != nil {
		return 0, scheduledCall{}, fmt.Errorf("delay: %w", err)
	}

	return index, sc, nil
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}

	return a + b
}
