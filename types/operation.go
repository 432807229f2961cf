package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Call is one leg of a (possibly batched) timelock operation.
type Call struct {
	Index   uint64         `json:"index"`
	Target  common.Address `json:"target"`
	Value   *big.Int       `json:"value"`
	Payload hexutil.Bytes  `json:"payload"`

	// Signature is an optional human readable function signature supplied by
	// whoever scheduled the call, e.g. "transfer(address,uint256)". The decoder
	// uses it to choose between descriptors sharing a selector.
	Signature string `json:"signature,omitempty"`
}

// Operation is a scheduled, delayed action managed by a timelock contract.
//
// Everything except the executed and cancelled fields is immutable once the
// operation is scheduled. Each terminal field is set at most once.
type Operation struct {
	ID            common.Hash     `json:"id"`
	ChainSelector ChainSelector   `json:"chainSelector,omitempty"`
	Target        *common.Address `json:"target,omitempty"`
	Value         *big.Int        `json:"value,omitempty"`
	Payload       hexutil.Bytes   `json:"payload,omitempty"`
	Predecessor   common.Hash     `json:"predecessor"`
	Salt          common.Hash     `json:"salt"`

	// Delay is the scheduling delay in seconds.
	Delay uint64 `json:"delay"`

	// ReadyAtTimestamp is the timestamp reported by the contract. Some
	// implementations store 0 for unset and 1 for done; neither is a time.
	ReadyAtTimestamp     uint64         `json:"readyAtTimestamp"`
	ScheduledAtTimestamp uint64         `json:"scheduledAtTimestamp"`
	ScheduledBy          common.Address `json:"scheduledBy"`

	ExecutedAtTimestamp  *uint64         `json:"executedAtTimestamp,omitempty"`
	ExecutedBy           *common.Address `json:"executedBy,omitempty"`
	CancelledAtTimestamp *uint64         `json:"cancelledAtTimestamp,omitempty"`
	CancelledBy          *common.Address `json:"cancelledBy,omitempty"`

	Calls []Call `json:"calls" validate:"omitempty,dive"`
}

// EffectiveCalls returns the calls of the operation. Single-call records that
// only populate Target/Value/Payload are expanded into a one element slice.
func (o Operation) EffectiveCalls() []Call {
	if len(o.Calls) > 0 {
		return o.Calls
	}
	if o.Target == nil {
		return nil
	}

	return []Call{{
		Index:   0,
		Target:  *o.Target,
		Value:   o.Value,
		Payload: o.Payload,
	}}
}

// IsBatch reports whether the operation was scheduled as a batch.
func (o Operation) IsBatch() bool {
	return len(o.Calls) > 1
}
