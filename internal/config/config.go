// Package config loads the settings of the timelock CLI from a config file,
// a .env file and the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/smartcontractkit/timelock/sdk/evm"
)

// Config holds the CLI settings. Environment variables override values from
// the config file.
type Config struct {
	// MaxDepth bounds recursion into wrapper calls.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth" validate:"min=1,max=32"`
	// LogLevel is a zap level name.
	LogLevel string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	// Now pins the current time in unix seconds; 0 uses the wall clock.
	Now uint64 `mapstructure:"now" yaml:"now"`
	// RegistryPath is the interface registry manifest to load.
	RegistryPath string `mapstructure:"registry_path" yaml:"registry_path"`
	// WrapperNames replaces the default delegation wrapper names when set.
	WrapperNames []string `mapstructure:"wrapper_names" yaml:"wrapper_names"`
}

// DecodeOptions returns the decoder options implied by the config.
func (c *Config) DecodeOptions() []evm.DecodeOption {
	opts := []evm.DecodeOption{evm.WithMaxDepth(c.MaxDepth)}
	if len(c.WrapperNames) > 0 {
		opts = append(opts, evm.WithWrapperNames(c.WrapperNames...))
	}

	return opts
}

// Validate checks the config values.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

var (
	defaults = map[string]any{
		"max_depth": evm.DefaultMaxDepth,
		"log_level": "info",
		"now":       0,
	}

	// envBindings maps config keys to the environment variables that can set
	// them, in order of preference.
	envBindings = map[string][]string{
		"max_depth":     {"TIMELOCK_MAX_DEPTH"},
		"log_level":     {"TIMELOCK_LOG_LEVEL"},
		"now":           {"TIMELOCK_NOW"},
		"registry_path": {"TIMELOCK_REGISTRY"},
		"wrapper_names": {"TIMELOCK_WRAPPER_NAMES"},
	}
)

// Load loads the config from filePath, falling back to defaults and env vars
// if the path is empty or the file does not exist.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if filePath != "" {
		v.SetConfigFile(filePath)
		if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return godotenv.Load(path)
}

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
