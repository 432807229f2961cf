package timelock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcontractkit/timelock/internal/config"
	"github.com/smartcontractkit/timelock/internal/manifest"
	"github.com/smartcontractkit/timelock/sdk"
	"github.com/smartcontractkit/timelock/sdk/evm"
)

// rootOptions holds the persistent flags and what is loaded from them before
// any subcommand runs.
type rootOptions struct {
	configPath   string
	envFile      string
	registryPath string
	logLevel     string

	cfg  *config.Config
	lggr *zap.SugaredLogger
}

func BuildTimelockCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := cobra.Command{
		Use:   "timelock",
		Short: "Interpret timelock operations and roles",
		Long: `Decode the calls of timelock operations, compute their status and replay
role assignment events into current memberships.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "timelock.yaml", "Path of the config file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path of a .env file to load")
	cmd.PersistentFlags().StringVar(&opts.registryPath, "registry", "", "Interface registry file (JSON or YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level, overrides the config")

	cmd.AddCommand(buildDecodeCmd(opts))
	cmd.AddCommand(buildStatusCmd(opts))
	cmd.AddCommand(buildRolesCmd(opts))
	cmd.AddCommand(buildOperationsCmd(opts))

	return &cmd
}

func (o *rootOptions) load() error {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.registryPath != "" {
		cfg.RegistryPath = o.registryPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	lggr, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	o.cfg = cfg
	o.lggr = lggr

	return nil
}

func (o *rootOptions) context(cmd *cobra.Command) context.Context {
	return sdk.ContextWithLogger(cmd.Context(), o.lggr)
}

// registry loads the configured interface registry. Without one every call
// decodes as an unknown interface.
func (o *rootOptions) registry() (*evm.Registry, map[common.Address]evm.TokenMetadata, error) {
	if o.cfg.RegistryPath == "" {
		return evm.NewRegistry(), nil, nil
	}

	m, err := manifest.LoadRegistry(o.cfg.RegistryPath)
	if err != nil {
		return nil, nil, err
	}

	return m.Build()
}

// decodeOptions returns the decoder options from the config plus the token
// metadata of the registry.
func (o *rootOptions) decodeOptions(tokens map[common.Address]evm.TokenMetadata) []evm.DecodeOption {
	opts := o.cfg.DecodeOptions()
	if len(tokens) > 0 {
		opts = append(opts, evm.WithTokenMetadata(tokens))
	}

	return opts
}

// now resolves the evaluation time. The flag wins over the config; both take
// unix seconds, the flag also takes a date such as RFC 3339.
func (o *rootOptions) now(flag string) (uint64, error) {
	if flag == "" {
		if o.cfg.Now != 0 {
			return o.cfg.Now, nil
		}

		return cast.ToUint64E(time.Now().Unix())
	}

	if secs, err := cast.ToUint64E(flag); err == nil {
		return secs, nil
	}

	t, err := cast.ToTimeE(flag)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", flag, err)
	}

	return cast.ToUint64E(t.Unix())
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))

	return err
}
