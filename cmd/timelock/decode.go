package timelock

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/timelock/sdk"
	"github.com/smartcontractkit/timelock/sdk/evm"
)

const (
	outputJSON = "json"
	outputText = "text"
)

func buildDecodeCmd(opts *rootOptions) *cobra.Command {
	var (
		target    string
		data      string
		value     string
		signature string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode the calldata of a single call",
		Long: `Decode calldata sent to a target contract into a call tree, recursing into
execute and executeBatch style wrappers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputJSON && output != outputText {
				return fmt.Errorf("invalid output format %q", output)
			}
			if !common.IsHexAddress(target) {
				return fmt.Errorf("invalid target address %q", target)
			}
			calldata, err := hexutil.Decode(data)
			if err != nil {
				return fmt.Errorf("invalid calldata: %w", err)
			}
			amount, ok := new(big.Int).SetString(value, 0)
			if !ok || amount.Sign() < 0 {
				return fmt.Errorf("invalid value %q", value)
			}

			registry, tokens, err := opts.registry()
			if err != nil {
				return fmt.Errorf("load registry: %w", err)
			}

			decoder := evm.NewDecoder(opts.decodeOptions(tokens)...)
			var decoded *evm.DecodedCall
			if len(calldata) == 0 {
				decoded = evm.NativeTransfer(common.HexToAddress(target), amount)
			} else {
				decoded, err = decoder.Decode(common.HexToAddress(target), calldata, registry,
					evm.WithValue(amount),
					evm.WithSignature(signature),
				)
				if err != nil {
					return err
				}
			}

			for _, w := range decoded.Warnings() {
				opts.lggr.Warn(w.Error())
			}

			if output == outputText {
				return writeCallTree(cmd.OutOrStdout(), decoded)
			}

			return writeJSON(cmd.OutOrStdout(), decoded)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Address the calldata is sent to")
	cmd.Flags().StringVar(&data, "data", "", "Hex encoded calldata, 0x for a plain transfer")
	cmd.Flags().StringVar(&value, "value", "0", "Native value sent with the call, decimal or 0x hex")
	cmd.Flags().StringVar(&signature, "signature", "", "Intended function signature, used when selectors collide")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "Output format, json or text")
	if err := errors.Join(cmd.MarkFlagRequired("target"), cmd.MarkFlagRequired("data")); err != nil {
		panic(err)
	}

	return cmd
}

// writeCallTree prints one line per node of the tree, followed by the node
// arguments indented under it.
func writeCallTree(w io.Writer, call *evm.DecodedCall) error {
	indent := strings.Repeat("  ", strings.Count(call.Path, "."))
	method, args, err := describe(call)
	if err != nil {
		return fmt.Errorf("render call %s: %w", call.Path, err)
	}
	if _, err = fmt.Fprintf(w, "%s[%s] %s on %s value %s\n", indent, call.Path, method, call.Target.Hex(), call.Value); err != nil {
		return err
	}
	if len(call.Parameters) > 0 {
		for _, line := range strings.Split(args, "\n") {
			if _, err = fmt.Fprintf(w, "%s  %s\n", indent, line); err != nil {
				return err
			}
		}
	}

	for _, child := range call.Children {
		if err = writeCallTree(w, child); err != nil {
			return err
		}
	}

	return nil
}

func describe(op sdk.DecodedOperation) (string, string, error) {
	method, args, err := op.String()
	if err != nil {
		return "", "", err
	}
	if method == "" {
		method = "native transfer"
	}

	return method, args, nil
}
