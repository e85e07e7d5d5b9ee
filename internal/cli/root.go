// Package cli implements the gospin command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/gospin"
	"github.com/njchilds90/gospin/internal/config"
	"github.com/njchilds90/gospin/internal/logging"
)

// RootOptions holds global flags and the state built from them before any
// subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config *config.Config
	Logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gospin CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gospin",
		Short: "gospin - exact angular momentum algebra",
		Long: `gospin evaluates Wigner rotation matrices, Clebsch-Gordan coefficients,
basis changes and spin operators exactly, with sqrt(2)/2 instead of 0.7071.

States are given as JSON, for example '{"basis": "Jx", "j": "1/2", "m": "1/2"}'
or '{"terms": [{"coeff": "sqrt(2)/2", "kets": [{"j": "1/2", "m": "1/2"}]}]}'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg := config.DefaultConfig()
			if opts.ConfigPath != "" {
				var err error
				if cfg, err = config.Load(opts.ConfigPath); err != nil {
					return WrapExitError(ExitCommandError, "loading config", err)
				}
			}
			logger, err := logging.New(cfg.Logging, opts.Verbose)
			if err != nil {
				return WrapExitError(ExitCommandError, "building logger", err)
			}
			if err := gospin.SetCacheCapacity(cfg.Limits.CacheSize); err != nil {
				return WrapExitError(ExitCommandError, "sizing cache", err)
			}
			opts.Config = cfg
			opts.Logger = logger
			logger.Debug("configuration loaded",
				zap.String("path", opts.ConfigPath),
				zap.Int64("max_two_j", cfg.Limits.MaxTwoJ),
				zap.Int("cache_size", cfg.Limits.CacheSize))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Logger != nil {
				_ = opts.Logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(NewWignerDCommand(opts))
	cmd.AddCommand(NewWignerBigDCommand(opts))
	cmd.AddCommand(NewCGCommand(opts))
	cmd.AddCommand(NewWigner3jCommand(opts))
	cmd.AddCommand(NewWigner6jCommand(opts))
	cmd.AddCommand(NewRewriteCommand(opts))
	cmd.AddCommand(NewCoupleCommand(opts))
	cmd.AddCommand(NewUncoupleCommand(opts))
	cmd.AddCommand(NewInnerCommand(opts))
	cmd.AddCommand(NewRepresentCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewCommutatorCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
