package timelock

import (
	"bytes"
	"fmt"
	"slices"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/smartcontractkit/timelock/types"
)

// Role is the current membership of one role.
type Role struct {
	RoleID      common.Hash      `json:"roleId"`
	Name        string           `json:"name,omitempty"`
	Members     []common.Address `json:"members"`
	MemberCount int              `json:"memberCount"`
}

// HasMember reports whether account currently holds the role.
func (r Role) HasMember(account common.Address) bool {
	_, found := slices.BinarySearchFunc(r.Members, account, compareAddresses)

	return found
}

// Effect is what a role event did to the membership it was applied to.
type Effect string

const (
	EffectGranted         Effect = "granted"
	EffectRevoked         Effect = "revoked"
	EffectRedundantGrant  Effect = "redundant_grant"
	EffectRedundantRevoke Effect = "redundant_revoke"
)

// HistoryEntry is one applied role event.
type HistoryEntry struct {
	Event   types.RoleAssignmentEvent `json:"event"`
	Account common.Address            `json:"account"`
	Effect  Effect                    `json:"effect"`
	// Changed is false for grants to existing members and revokes of
	// non-members.
	Changed bool `json:"changed"`
}

// SortEvents sorts events in chain order: by block, then transaction index,
// then log index. Missing indexes sort before present ones and ties keep
// their input order.
func SortEvents(events []types.RoleAssignmentEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber < b.BlockNumber
		}
		if c := compareOptional(a.TransactionIndex, b.TransactionIndex); c != 0 {
			return c < 0
		}

		return compareOptional(a.LogIndex, b.LogIndex) < 0
	})
}

func compareOptional(a, b *uint) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

// replay applies the events of roleID in chain order. The input is not
// modified.
func replay(roleID common.Hash, events []types.RoleAssignmentEvent) ([]HistoryEntry, mapset.Set[common.Address], types.Warnings) {
	ordered := make([]types.RoleAssignmentEvent, 0, len(events))
	for _, ev := range events {
		if ev.RoleID == roleID {
			ordered = append(ordered, ev)
		}
	}
	SortEvents(ordered)

	var (
		members  = mapset.NewThreadUnsafeSet[common.Address]()
		history  = make([]HistoryEntry, 0, len(ordered))
		warnings types.Warnings
	)
	for _, ev := range ordered {
		account, ok := ev.AccountAddress()
		if !ok {
			warnings = append(warnings, types.NewWarning(types.WarningMalformedEventRecord, eventPath(ev),
				"invalid account %q in role event, event skipped", ev.Account))

			continue
		}

		entry := HistoryEntry{Event: ev, Account: account}
		if ev.Granted {
			entry.Changed = members.Add(account)
			entry.Effect = EffectGranted
			if !entry.Changed {
				entry.Effect = EffectRedundantGrant
			}
		} else {
			entry.Changed = members.Contains(account)
			members.Remove(account)
			entry.Effect = EffectRevoked
			if !entry.Changed {
				entry.Effect = EffectRedundantRevoke
			}
		}
		history = append(history, entry)
	}

	return history, members, warnings
}

// ComputeMembers replays the grant and revoke events of roleID and returns
// the resulting membership. Events of other roles are ignored, so the full
// event list of a contract may be passed. Events are applied in chain order
// whatever order they are passed in.
func ComputeMembers(roleID common.Hash, events []types.RoleAssignmentEvent) (Role, types.Warnings) {
	_, members, warnings := replay(roleID, events)

	return newRole(roleID, members), warnings
}

// History returns the applied events of roleID, newest first.
func History(roleID common.Hash, events []types.RoleAssignmentEvent) ([]HistoryEntry, types.Warnings) {
	history, _, warnings := replay(roleID, events)
	slices.Reverse(history)

	return history, warnings
}

// ReplayRoles computes the membership of every role present in events.
func ReplayRoles(events []types.RoleAssignmentEvent) (map[common.Hash]Role, types.Warnings) {
	seen := mapset.NewThreadUnsafeSet[common.Hash]()
	for _, ev := range events {
		seen.Add(ev.RoleID)
	}

	var (
		roles    = make(map[common.Hash]Role, seen.Cardinality())
		warnings types.Warnings
	)
	for _, roleID := range RoleIDs(seen) {
		role, w := ComputeMembers(roleID, events)
		roles[roleID] = role
		warnings = append(warnings, w...)
	}

	return roles, warnings
}

// RoleIDs returns the role ids of a set in byte order.
func RoleIDs(set mapset.Set[common.Hash]) []common.Hash {
	ids := set.ToSlice()
	slices.SortFunc(ids, func(a, b common.Hash) int { return bytes.Compare(a[:], b[:]) })

	return ids
}

// SortRoles sorts roles by id in byte order.
func SortRoles(roles []Role) {
	slices.SortFunc(roles, func(a, b Role) int { return bytes.Compare(a.RoleID[:], b.RoleID[:]) })
}

func newRole(roleID common.Hash, members mapset.Set[common.Address]) Role {
	list := members.ToSlice()
	slices.SortFunc(list, compareAddresses)

	return Role{
		RoleID:      roleID,
		Name:        RoleName(roleID),
		Members:     list,
		MemberCount: len(list),
	}
}

func compareAddresses(a, b common.Address) int {
	return bytes.Compare(a[:], b[:])
}

func eventPath(ev types.RoleAssignmentEvent) string {
	path := fmt.Sprintf("block %d", ev.BlockNumber)
	if ev.LogIndex != nil {
		path += fmt.Sprintf(" log %d", *ev.LogIndex)
	}

	return path
}
