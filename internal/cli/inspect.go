package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// InspectResult summarizes a loaded store.
type InspectResult struct {
	Path         string       `json:"path"`
	Name         string       `json:"name"`
	StoreID      int64        `json:"store_id"`
	Size         int          `json:"size"`
	Sequenced    int          `json:"sequenced"`
	Attributes   []string     `json:"attributes"`
	IdentityHash int32        `json:"identity_hash"`
	Records      []RecordView `json:"records,omitempty"`
}

func (r InspectResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "Store: %s\n", displayRecordName(r.Name))
	fmt.Fprintf(w, "Source: %s\n", r.Path)
	fmt.Fprintf(w, "Records: %d (%d sequenced)\n", r.Size, r.Sequenced)
	if len(r.Attributes) > 0 {
		fmt.Fprintf(w, "Attributes: %s\n", strings.Join(r.Attributes, ", "))
	} else {
		fmt.Fprintln(w, "Attributes: none")
	}
	fmt.Fprintf(w, "Identity hash: %d\n", r.IdentityHash)
	for _, rec := range r.Records {
		rec.renderText(w)
	}
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize the store built from a record file",
		Long: `Load a record file into a data store and print its name, size,
attribute names, and identity hash. With --verbose every indexed record
is listed as well.

Supported files: .yaml/.yml, .cue, .db/.sqlite/.sqlite3

Examples:
  cdo inspect ./vehicles.yaml
  cdo inspect ./fleet.db --table trucks --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runInspect(cmd *cobra.Command, opts *RootOptions, path string) error {
	f := newFormatter(cmd, opts)

	st, err := LoadStore(cmd.Context(), path, opts)
	if err != nil {
		return reportLoadError(f, path, err)
	}

	result := InspectResult{
		Path:         path,
		Name:         st.Name(),
		StoreID:      int64(st.ID()),
		Size:         st.Len(),
		Sequenced:    len(st.Records()),
		Attributes:   st.Attributes(),
		IdentityHash: st.IdentityHash(),
	}
	if result.Attributes == nil {
		result.Attributes = []string{}
	}
	if opts.Verbose {
		for rec := range st.All() {
			result.Records = append(result.Records, newRecordView(rec))
		}
	}
	return f.Success(result)
}
