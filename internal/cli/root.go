package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/cdo/internal/source"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Table   string // SQLite table read by record-file commands
	Config  string // optional config file

	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// EnvPrefix prefixes environment variables that override global flags,
// e.g. CDO_FORMAT=json.
const EnvPrefix = "CDO"

// NewRootCommand creates the root command for the cdo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "cdo",
		Short: "cdo - complex data object stores",
		Long:  "Load record files into an identity-indexed data store and query it by identity, name, or master.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveOptions(cmd, v, opts); err != nil {
				return NewExitError(ExitCommandError, err.Error())
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Table, "table", source.DefaultTable, "table read from SQLite record files")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (YAML)")

	_ = v.BindPFlags(cmd.PersistentFlags())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewGroupCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolveOptions layers flags, environment, and the config file into opts
// and configures the logger.
func resolveOptions(cmd *cobra.Command, v *viper.Viper, opts *RootOptions) error {
	if cfg := v.GetString("config"); cfg != "" {
		v.SetConfigFile(cfg)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	opts.Format = v.GetString("format")
	opts.Verbose = v.GetBool("verbose")
	opts.Table = v.GetString("table")

	if !isValidFormat(opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// logger returns the configured logger, or a discarding one when the
// command runs outside the root command.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
