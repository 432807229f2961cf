package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// RoleAssignmentEvent is a single RoleGranted or RoleRevoked log, as delivered
// by an indexer or recovered from raw chain logs.
//
// Account is kept as the raw string received from the collaborator so that
// records with unparsable accounts can be reported rather than rejected
// wholesale.
type RoleAssignmentEvent struct {
	RoleID           common.Hash    `json:"roleId"`
	Account          string         `json:"account"`
	Granted          bool           `json:"granted"`
	BlockNumber      uint64         `json:"blockNumber"`
	TransactionIndex *uint          `json:"transactionIndex,omitempty"`
	LogIndex         *uint          `json:"logIndex,omitempty"`
	Timestamp        uint64         `json:"timestamp"`
	TransactionHash  common.Hash    `json:"transactionHash"`
	Sender           common.Address `json:"sender"`
}

// AccountAddress parses the account of the event.
func (e RoleAssignmentEvent) AccountAddress() (common.Address, bool) {
	if !common.IsHexAddress(e.Account) {
		return common.Address{}, false
	}

	return common.HexToAddress(e.Account), true
}
