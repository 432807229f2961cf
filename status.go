package timelock

import (
	"math"
	"time"

	"github.com/smartcontractkit/timelock/internal/utils/safecast"
	"github.com/smartcontractkit/timelock/types"
)

// Status is the lifecycle state of a timelock operation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReady     Status = "ready"
	StatusExecuted  Status = "executed"
	StatusCancelled Status = "cancelled"
)

// doneTimestamp is the sentinel some timelocks store once an operation is done.
const doneTimestamp = 1

// StatusResult is the outcome of ComputeStatus.
type StatusResult struct {
	Status Status `json:"status"`
	// RemainingSeconds is the time left until the operation is ready. It is
	// only non-zero for pending operations.
	RemainingSeconds uint64         `json:"remainingSeconds"`
	ReadyAt          uint64         `json:"readyAt"`
	Warnings         types.Warnings `json:"warnings,omitempty"`
}

// Remaining returns RemainingSeconds as a duration.
func (r StatusResult) Remaining() types.Duration {
	return types.DurationFromSeconds(r.RemainingSeconds)
}

// ReadyTime returns ReadyAt as a UTC time. Timestamps beyond the int64
// range saturate.
func (r StatusResult) ReadyTime() time.Time {
	secs, err := safecast.Uint64ToInt64(r.ReadyAt)
	if err != nil {
		secs = math.MaxInt64
	}

	return time.Unix(secs, 0).UTC()
}

// ReadyAt returns the timestamp from which op may be executed. The contract
// reported timestamp is used unless it holds one of the 0 (unset) or 1 (done)
// sentinels, in which case it is derived from the schedule time and delay.
func ReadyAt(op types.Operation) uint64 {
	if op.ReadyAtTimestamp > doneTimestamp {
		return op.ReadyAtTimestamp
	}

	return saturatingAdd(op.ScheduledAtTimestamp, op.Delay)
}

// ComputeStatus derives the status of op at now (unix seconds).
//
// A cancellation wins over an execution, an execution over readiness. Both
// terminal fields being set cannot happen on a well behaved chain; the
// operation is then reported cancelled with a warning. A missing schedule
// timestamp or a terminal timestamp preceding it is flagged the same way.
func ComputeStatus(op types.Operation, now uint64) StatusResult {
	res := StatusResult{ReadyAt: ReadyAt(op)}

	switch {
	case op.CancelledAtTimestamp != nil:
		res.Status = StatusCancelled
		if op.ExecutedAtTimestamp != nil {
			res.Warnings = append(res.Warnings, types.NewWarning(
				types.WarningInconsistentOperationState, op.ID.Hex(),
				"operation is both executed at %d and cancelled at %d",
				*op.ExecutedAtTimestamp, *op.CancelledAtTimestamp,
			))
		}
	case op.ExecutedAtTimestamp != nil:
		res.Status = StatusExecuted
	case now >= res.ReadyAt:
		res.Status = StatusReady
	default:
		res.Status = StatusPending
		res.RemainingSeconds = res.ReadyAt - now
	}
	res.Warnings = append(res.Warnings, scheduleWarnings(op)...)

	return res
}

func scheduleWarnings(op types.Operation) types.Warnings {
	if op.ScheduledAtTimestamp == 0 {
		return types.Warnings{types.NewWarning(
			types.WarningInconsistentOperationState, op.ID.Hex(),
			"operation has no schedule timestamp",
		)}
	}

	var ws types.Warnings
	for _, tt := range []struct {
		event string
		ts    *uint64
	}{
		{"executed", op.ExecutedAtTimestamp},
		{"cancelled", op.CancelledAtTimestamp},
	} {
		if tt.ts != nil && *tt.ts < op.ScheduledAtTimestamp {
			ws = append(ws, types.NewWarning(
				types.WarningInconsistentOperationState, op.ID.Hex(),
				"operation is %s at %d before it was scheduled at %d",
				tt.event, *tt.ts, op.ScheduledAtTimestamp,
			))
		}
	}

	return ws
}

// ComputeStatusAt is ComputeStatus for a wall clock time. Times before the
// unix epoch count as 0.
func ComputeStatusAt(op types.Operation, t time.Time) StatusResult {
	now, err := safecast.Int64ToUint64(t.Unix())
	if err != nil {
		now = 0
	}

	return ComputeStatus(op, now)
}

func saturatingAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}

	return ^uint64(0)
}
