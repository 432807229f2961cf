package timelock

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/timelock"
	"github.com/smartcontractkit/timelock/internal/manifest"
)

func buildStatusCmd(opts *rootOptions) *cobra.Command {
	var (
		operationsPath string
		now            string
		skipIDCheck    bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Interpret timelock operation records",
		Long: `Compute the status of each operation, decode its calls and check that its id
matches its content.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := manifest.LoadOperations(operationsPath)
			if err != nil {
				return fmt.Errorf("load operations: %w", err)
			}
			at, err := opts.now(now)
			if err != nil {
				return err
			}
			registry, tokens, err := opts.registry()
			if err != nil {
				return fmt.Errorf("load registry: %w", err)
			}

			interpreter := timelock.NewInterpreter(registry,
				timelock.WithDecodeOptions(opts.decodeOptions(tokens)...),
				timelock.WithIDVerification(!skipIDCheck),
			)

			ctx := opts.context(cmd)
			reports := make([]*timelock.OperationReport, 0, len(ops))
			for i, op := range ops {
				report, err := interpreter.InterpretOperation(ctx, op, at)
				if err != nil {
					return fmt.Errorf("operation %d: %w", i, err)
				}
				reports = append(reports, report)
			}

			return writeJSON(cmd.OutOrStdout(), reports)
		},
	}

	cmd.Flags().StringVar(&operationsPath, "operations", "", "File holding one operation record or a list of them")
	cmd.Flags().StringVar(&now, "now", "", "Evaluation time, unix seconds or a date; defaults to the config or the clock")
	cmd.Flags().BoolVar(&skipIDCheck, "skip-id-check", false, "Do not recompute operation ids")
	if err := cmd.MarkFlagRequired("operations"); err != nil {
		panic(err)
	}

	return cmd
}
