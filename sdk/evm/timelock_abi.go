package evm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Argument lists used to abi.encode operation ids and to decode the
// non-indexed data of timelock logs.
const (
	ozOperationArgs = `[
		{"name":"target","type":"address"},
		{"name":"value","type":"uint256"},
		{"name":"data","type":"bytes"},
		{"name":"predecessor","type":"bytes32"},
		{"name":"salt","type":"bytes32"}]`

	ozOperationBatchArgs = `[
		{"name":"targets","type":"address[]"},
		{"name":"values","type":"uint256[]"},
		{"name":"payloads","type":"bytes[]"},
		{"name":"predecessor","type":"bytes32"},
		{"name":"salt","type":"bytes32"}]`

	rbacOperationBatchArgs = `[
		{"components":[
			{"internalType":"address","name":"target","type":"address"},
			{"internalType":"uint256","name":"value","type":"uint256"},
			{"internalType":"bytes","name":"data","type":"bytes"}],
		"internalType":"struct Call[]","name":"calls","type":"tuple[]"},
		{"internalType":"bytes32","name":"predecessor","type":"bytes32"},
		{"internalType":"bytes32","name":"salt","type":"bytes32"}]`

	// CallScheduled(bytes32 indexed id, uint256 indexed index, address target,
	// uint256 value, bytes data, bytes32 predecessor, uint256 delay)
	ozCallScheduledData = `[
		{"name":"target","type":"address"},
		{"name":"value","type":"uint256"},
		{"name":"data","type":"bytes"},
		{"name":"predecessor","type":"bytes32"},
		{"name":"delay","type":"uint256"}]`

	// CallScheduled(bytes32 indexed id, uint256 indexed index, address target,
	// uint256 value, bytes data, bytes32 predecessor, bytes32 salt, uint256 delay)
	rbacCallScheduledData = `[
		{"name":"target","type":"address"},
		{"name":"value","type":"uint256"},
		{"name":"data","type":"bytes"},
		{"name":"predecessor","type":"bytes32"},
		{"name":"salt","type":"bytes32"},
		{"name":"delay","type":"uint256"}]`

	// CallExecuted(bytes32 indexed id, uint256 indexed index, address target,
	// uint256 value, bytes data)
	callExecutedData = `[
		{"name":"target","type":"address"},
		{"name":"value","type":"uint256"},
		{"name":"data","type":"bytes"}]`

	// CallSalt(bytes32 indexed id, bytes32 salt)
	callSaltData = `[{"name":"salt","type":"bytes32"}]`
)

// Event topics emitted by OpenZeppelin TimelockController and the RBAC
// timelock.
var (
	RoleGrantedTopic = crypto.Keccak256Hash([]byte("RoleGranted(bytes32,address,address)"))
	RoleRevokedTopic = crypto.Keccak256Hash([]byte("RoleRevoked(bytes32,address,address)"))

	OZCallScheduledTopic   = crypto.Keccak256Hash([]byte("CallScheduled(bytes32,uint256,address,uint256,bytes,bytes32,uint256)"))
	RBACCallScheduledTopic = crypto.Keccak256Hash([]byte("CallScheduled(bytes32,uint256,address,uint256,bytes,bytes32,bytes32,uint256)"))
	CallExecutedTopic      = crypto.Keccak256Hash([]byte("CallExecuted(bytes32,uint256,address,uint256,bytes)"))
	CallSaltTopic          = crypto.Keccak256Hash([]byte("CallSalt(bytes32,bytes32)"))
	CancelledTopic         = crypto.Keccak256Hash([]byte("Cancelled(bytes32)"))
)

// Well-known timelock roles.
var (
	DefaultAdminRole  = common.Hash{}
	AdminRole         = crypto.Keccak256Hash([]byte("ADMIN_ROLE"))
	TimelockAdminRole = crypto.Keccak256Hash([]byte("TIMELOCK_ADMIN_ROLE"))
	ProposerRole      = crypto.Keccak256Hash([]byte("PROPOSER_ROLE"))
	ExecutorRole      = crypto.Keccak256Hash([]byte("EXECUTOR_ROLE"))
	CancellerRole     = crypto.Keccak256Hash([]byte("CANCELLER_ROLE"))
	BypasserRole      = crypto.Keccak256Hash([]byte("BYPASSER_ROLE"))
)
