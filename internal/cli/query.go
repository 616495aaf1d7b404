package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/cdo/internal/record"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <file> <id>",
		Short: "Look up a record by identity",
		Long: `Load a record file and print the record stored under the given identity.

Exit codes:
  0 - Record found
  1 - No record with that identity
  2 - Command error (bad identity, unreadable file, etc.)

Examples:
  cdo get ./vehicles.yaml 2
  cdo get ./vehicles.yaml 2 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, rootOpts, args[0], args[1])
		},
	}
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find <file> <name>",
		Short: "List records with a given name",
		Long: `Load a record file and list the sequenced records whose name matches
exactly, in insertion order.

Examples:
  cdo find ./vehicles.yaml car`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, rootOpts, args[0], args[1])
		},
	}
}

// NewGroupCommand creates the group command.
func NewGroupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "group <file> <master-id>",
		Short: "List records grouped under a master record",
		Long: `Load a record file and list the sequenced records whose master equals
the record stored under master-id, in insertion order.

Examples:
  cdo group ./vehicles.yaml 1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroup(cmd, rootOpts, args[0], args[1])
		},
	}
}

func runGet(cmd *cobra.Command, opts *RootOptions, path, rawID string) error {
	f := newFormatter(cmd, opts)

	id, err := parseID(f, rawID)
	if err != nil {
		return err
	}
	st, err := LoadStore(cmd.Context(), path, opts)
	if err != nil {
		return reportLoadError(f, path, err)
	}

	rec, ok := st.Get(id)
	if !ok {
		return recordNotFound(f, id)
	}
	return f.Success(newRecordView(rec))
}

func runFind(cmd *cobra.Command, opts *RootOptions, path, name string) error {
	f := newFormatter(cmd, opts)

	st, err := LoadStore(cmd.Context(), path, opts)
	if err != nil {
		return reportLoadError(f, path, err)
	}
	return f.Success(newRecordList(fmt.Sprintf("name %q", name), st.ByName(name)))
}

func runGroup(cmd *cobra.Command, opts *RootOptions, path, rawID string) error {
	f := newFormatter(cmd, opts)

	id, err := parseID(f, rawID)
	if err != nil {
		return err
	}
	st, err := LoadStore(cmd.Context(), path, opts)
	if err != nil {
		return reportLoadError(f, path, err)
	}

	master, ok := st.Get(id)
	if !ok {
		return recordNotFound(f, id)
	}
	return f.Success(newRecordList(fmt.Sprintf("master #%d", id), st.ByMaster(master)))
}

func parseID(f *OutputFormatter, raw string) (record.ID, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		msg := fmt.Sprintf("invalid identity %q: must be a 64-bit integer", raw)
		_ = f.Error(ErrCodeInvalidArgument, msg, nil)
		return 0, WrapExitError(ExitCommandError, msg, err)
	}
	return record.ID(n), nil
}

func recordNotFound(f *OutputFormatter, id record.ID) error {
	msg := fmt.Sprintf("no record with identity %d", id)
	_ = f.Error(ErrCodeRecordNotFound, msg, nil)
	return NewExitError(ExitFailure, msg)
}
