package timelock

import (
	"math/rand"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/timelock/sdk/evm"
	"github.com/smartcontractkit/timelock/types"
)

var (
	accountP = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	accountQ = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	accountR = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

func roleEvent(role common.Hash, account common.Address, granted bool, block uint64, logIndex uint) types.RoleAssignmentEvent {
	return types.RoleAssignmentEvent{
		RoleID:      role,
		Account:     account.Hex(),
		Granted:     granted,
		BlockNumber: block,
		LogIndex:    &logIndex,
	}
}

func TestComputeMembers(t *testing.T) {
	t.Parallel()

	events := []types.RoleAssignmentEvent{
		roleEvent(evm.ProposerRole, accountP, true, 100, 0),
		roleEvent(evm.ProposerRole, accountQ, true, 101, 0),
		roleEvent(evm.ProposerRole, accountP, false, 102, 0),
	}

	role, warnings := ComputeMembers(evm.ProposerRole, events)
	assert.Empty(t, warnings)
	assert.Equal(t, []common.Address{accountQ}, role.Members)
	assert.Equal(t, 1, role.MemberCount)
	assert.Equal(t, "PROPOSER", role.Name)
	assert.True(t, role.HasMember(accountQ))
	assert.False(t, role.HasMember(accountP))
}

func TestComputeMembers_OrderIndependent(t *testing.T) {
	t.Parallel()

	events := []types.RoleAssignmentEvent{
		roleEvent(evm.ExecutorRole, accountP, true, 10, 0),
		roleEvent(evm.ExecutorRole, accountQ, true, 10, 1),
		roleEvent(evm.ExecutorRole, accountP, false, 11, 3),
		roleEvent(evm.ExecutorRole, accountR, true, 11, 4),
		roleEvent(evm.ExecutorRole, accountP, true, 12, 0),
		roleEvent(evm.ExecutorRole, accountQ, false, 12, 1),
		roleEvent(evm.CancellerRole, accountQ, true, 12, 2),
	}
	want, _ := ComputeMembers(evm.ExecutorRole, events)
	require.Equal(t, []common.Address{accountP, accountR}, want.Members)

	rnd := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic shuffle
	for i := range 20 {
		shuffled := append([]types.RoleAssignmentEvent(nil), events...)
		rnd.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, _ := ComputeMembers(evm.ExecutorRole, shuffled)
		assert.Equal(t, want, got, "shuffle %d", i)
	}
}

func TestComputeMembers_MembersAreUnique(t *testing.T) {
	t.Parallel()

	events := []types.RoleAssignmentEvent{
		roleEvent(evm.AdminRole, accountP, true, 1, 0),
		roleEvent(evm.AdminRole, accountP, true, 2, 0),
		{RoleID: evm.AdminRole, Account: "0x00000000000000000000000000000000000000A1", Granted: true, BlockNumber: 3},
	}

	role, _ := ComputeMembers(evm.AdminRole, events)
	assert.Equal(t, []common.Address{accountP}, role.Members)
}

func TestComputeMembers_MalformedAccount(t *testing.T) {
	t.Parallel()

	events := []types.RoleAssignmentEvent{
		roleEvent(evm.BypasserRole, accountP, true, 1, 0),
		{RoleID: evm.BypasserRole, Account: "not-an-address", Granted: true, BlockNumber: 2, LogIndex: ptr(uint(4))},
	}

	role, warnings := ComputeMembers(evm.BypasserRole, events)
	assert.Equal(t, []common.Address{accountP}, role.Members)
	require.Len(t, warnings, 1)
	assert.Equal(t, types.WarningMalformedEventRecord, warnings[0].Kind)
	assert.Equal(t, "block 2 log 4", warnings[0].Path)
}

func TestHistory(t *testing.T) {
	t.Parallel()

	events := []types.RoleAssignmentEvent{
		roleEvent(evm.CancellerRole, accountP, false, 100, 0),
		roleEvent(evm.CancellerRole, accountP, true, 101, 0),
		roleEvent(evm.CancellerRole, accountP, true, 102, 0),
		roleEvent(evm.CancellerRole, accountP, false, 103, 0),
		roleEvent(evm.ProposerRole, accountP, true, 104, 0),
	}

	history, warnings := History(evm.CancellerRole, events)
	assert.Empty(t, warnings)
	require.Len(t, history, 4)

	var (
		effects []Effect
		changed []bool
		blocks  []uint64
	)
	for _, h := range history {
		effects = append(effects, h.Effect)
		changed = append(changed, h.Changed)
		blocks = append(blocks, h.Event.BlockNumber)
	}
	assert.Equal(t, []uint64{103, 102, 101, 100}, blocks)
	assert.Equal(t, []Effect{EffectRevoked, EffectRedundantGrant, EffectGranted, EffectRedundantRevoke}, effects)
	assert.Equal(t, []bool{true, false, true, false}, changed)
	assert.Equal(t, accountP, history[0].Account)
}

func TestSortEvents(t *testing.T) {
	t.Parallel()

	tx := func(i uint) *uint { return &i }
	events := []types.RoleAssignmentEvent{
		{Account: "d", BlockNumber: 2, TransactionIndex: tx(0), LogIndex: tx(1)},
		{Account: "c", BlockNumber: 2, TransactionIndex: tx(0), LogIndex: tx(0)},
		{Account: "e", BlockNumber: 2, TransactionIndex: tx(1)},
		{Account: "b", BlockNumber: 2},
		{Account: "a", BlockNumber: 1, TransactionIndex: tx(9)},
		{Account: "b2", BlockNumber: 2},
	}

	SortEvents(events)

	got := make([]string, 0, len(events))
	for _, ev := range events {
		got = append(got, ev.Account)
	}
	assert.Equal(t, []string{"a", "b", "b2", "c", "d", "e"}, got)
}

func TestReplayRoles(t *testing.T) {
	t.Parallel()

	unknownRole := common.HexToHash("0x1234")
	events := []types.RoleAssignmentEvent{
		roleEvent(evm.ProposerRole, accountP, true, 1, 0),
		roleEvent(evm.ExecutorRole, accountQ, true, 1, 1),
		roleEvent(unknownRole, accountR, true, 1, 2),
		roleEvent(evm.ExecutorRole, accountQ, false, 2, 0),
	}

	roles, warnings := ReplayRoles(events)
	assert.Empty(t, warnings)
	require.Len(t, roles, 3)
	assert.Equal(t, []common.Address{accountP}, roles[evm.ProposerRole].Members)
	assert.Empty(t, roles[evm.ExecutorRole].Members)
	assert.Equal(t, 0, roles[evm.ExecutorRole].MemberCount)
	assert.Empty(t, roles[unknownRole].Name)

	ids := RoleIDs(mapset.NewSet(evm.ProposerRole, common.Hash{}, unknownRole))
	assert.Equal(t, common.Hash{}, ids[0])

	list := []Role{roles[evm.ProposerRole], roles[unknownRole], roles[evm.ExecutorRole]}
	SortRoles(list)
	assert.Equal(t, unknownRole, list[0].RoleID)
}

func TestRoleName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DEFAULT_ADMIN", RoleName(common.Hash{}))
	assert.Equal(t, "EXECUTOR", RoleName(evm.ExecutorRole))
	assert.Equal(t, "BYPASSER", RoleName(evm.BypasserRole))
	assert.Empty(t, RoleName(common.HexToHash("0x01")))
	assert.Equal(t,
		common.HexToHash("0xb09aa5aeb3702cfd50b6b62bc4532604938f21248a27a1d5ca736082b6819cc1"), evm.ProposerRole)
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    string
		want    common.Hash
		wantErr string
	}{
		{name: "name", give: "PROPOSER", want: evm.ProposerRole},
		{name: "name with suffix", give: "executor_role", want: evm.ExecutorRole},
		{name: "default admin", give: "DEFAULT_ADMIN_ROLE", want: common.Hash{}},
		{name: "hex id", give: evm.CancellerRole.Hex(), want: evm.CancellerRole},
		{name: "short hex", give: "0x01", wantErr: `invalid role id "0x01"`},
		{name: "unknown", give: "MINTER", wantErr: `unknown role "MINTER"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRole(tt.give)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
