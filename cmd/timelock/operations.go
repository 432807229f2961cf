package timelock

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/timelock/internal/manifest"
	"github.com/smartcontractkit/timelock/sdk/evm"
	"github.com/smartcontractkit/timelock/types"
)

type operationsOutput struct {
	Operations []types.Operation `json:"operations"`
	Warnings   types.Warnings    `json:"warnings,omitempty"`
}

func buildOperationsCmd(opts *rootOptions) *cobra.Command {
	var logsPath string

	cmd := &cobra.Command{
		Use:   "operations",
		Short: "Rebuild operation records from raw timelock logs",
		Long: `Fold CallScheduled, CallSalt, CallExecuted and Cancelled logs into operation
records that the status command accepts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := manifest.LoadLogs(logsPath)
			if err != nil {
				return fmt.Errorf("load logs: %w", err)
			}

			ops, warnings := evm.OperationsFromLogs(logs)
			for _, w := range warnings {
				opts.lggr.Warn(w.Error())
			}
			if ops == nil {
				ops = []types.Operation{}
			}

			return writeJSON(cmd.OutOrStdout(), operationsOutput{Operations: ops, Warnings: warnings})
		},
	}

	cmd.Flags().StringVar(&logsPath, "logs", "", "File holding raw eth_getLogs output with timestamps")
	if err := cmd.MarkFlagRequired("logs"); err != nil {
		panic(err)
	}

	return cmd
}
