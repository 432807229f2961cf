package timelock

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/timelock"
	"github.com/smartcontractkit/timelock/internal/manifest"
	"github.com/smartcontractkit/timelock/sdk/evm"
	"github.com/smartcontractkit/timelock/types"
)

// rolesOutput is printed when no single role is requested.
type rolesOutput struct {
	Roles    []timelock.Role `json:"roles"`
	Warnings types.Warnings  `json:"warnings,omitempty"`
}

func buildRolesCmd(opts *rootOptions) *cobra.Command {
	var (
		eventsPath string
		logsPath   string
		role       string
	)

	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Replay role assignment events into memberships",
		Long: `Replay RoleGranted and RoleRevoked events, given as indexed records or as raw
logs, into the current members of each role. With --role the history of that
role is printed as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, warnings, err := loadRoleEvents(eventsPath, logsPath)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				opts.lggr.Warn(w.Error())
			}

			if role != "" {
				roleID, err := timelock.ParseRole(role)
				if err != nil {
					return err
				}
				report, err := timelock.NewInterpreter(nil).InterpretRole(opts.context(cmd), roleID, events)
				if err != nil {
					return err
				}
				report.Warnings = append(warnings, report.Warnings...)

				return writeJSON(cmd.OutOrStdout(), report)
			}

			roles, replayWarnings := timelock.ReplayRoles(events)
			out := rolesOutput{
				Roles:    make([]timelock.Role, 0, len(roles)),
				Warnings: append(warnings, replayWarnings...),
			}
			for _, r := range roles {
				out.Roles = append(out.Roles, r)
			}
			timelock.SortRoles(out.Roles)

			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&eventsPath, "events", "", "File holding role assignment event records")
	cmd.Flags().StringVar(&logsPath, "logs", "", "File holding raw eth_getLogs output with timestamps")
	cmd.Flags().StringVar(&role, "role", "", "Role to report, as a name such as PROPOSER or a 32 byte id")
	cmd.MarkFlagsMutuallyExclusive("events", "logs")
	cmd.MarkFlagsOneRequired("events", "logs")

	return cmd
}

func loadRoleEvents(eventsPath, logsPath string) ([]types.RoleAssignmentEvent, types.Warnings, error) {
	switch {
	case eventsPath != "":
		events, err := manifest.LoadRoleEvents(eventsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load events: %w", err)
		}

		return events, nil, nil
	case logsPath != "":
		logs, err := manifest.LoadLogs(logsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load logs: %w", err)
		}
		events, warnings := evm.ParseRoleLogs(logs)

		return events, warnings, nil
	default:
		return nil, nil, errors.New("one of --events or --logs is required")
	}
}
