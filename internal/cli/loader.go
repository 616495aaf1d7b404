package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/cdo/internal/datastore"
	"github.com/roach88/cdo/internal/record"
	"github.com/roach88/cdo/internal/source"
)

// Error code constants for failures that are not load errors. Load
// errors carry the source package's E2xx codes.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeInvalidArgument = "E002" // Malformed command argument
	ErrCodeRecordNotFound  = "E003" // No record with the requested identity
	ErrCodeTestFailed      = "E004" // One or more scenarios failed
)

// ObjectStore is the store type every command works on.
type ObjectStore = datastore.Store[*record.Object]

// LoadStore reads a record file and builds a store from its records in
// file order. A name declared by the file replaces the derived display
// name. SQLite files are read from opts.Table.
func LoadStore(ctx context.Context, path string, opts *RootOptions) (*ObjectStore, error) {
	var (
		ds  *source.Dataset
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		table := opts.Table
		if table == "" {
			table = source.DefaultTable
		}
		ds, err = source.LoadSQLite(ctx, path, table)
	default:
		ds, err = source.Load(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	logger := opts.logger()
	st := datastore.New(ds.Records, datastore.WithLogger(logger))
	if ds.Name != "" {
		st.SetName(ds.Name)
	}
	logger.Debug("record file loaded",
		"path", path,
		"records", len(ds.Records),
		"indexed", st.Len(),
		"store", st.ID(),
	)
	return st, nil
}

// reportLoadError writes a load failure and returns the matching exit error.
func reportLoadError(f *OutputFormatter, path string, err error) error {
	code := ErrCodeGeneric
	var loadErr *source.LoadError
	if errors.As(err, &loadErr) {
		code = loadErr.Code
	}
	_ = f.Error(code, err.Error(), map[string]string{"path": path})
	return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", path), err)
}

// RecordView is the output shape of a single record.
type RecordView struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Master      *int64         `json:"master,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	Digest      string         `json:"digest,omitempty"`
}

func newRecordView(o *record.Object) RecordView {
	view := RecordView{
		ID:   int64(o.ID()),
		Name: o.Name(),
	}
	if d := o.Description(); d != o.Name() {
		view.Description = d
	}
	if m, ok := o.MasterID(); ok {
		id := int64(m)
		view.Master = &id
	}
	if attrs := o.Attributes(); len(attrs) > 0 {
		view.Attributes = make(map[string]any, len(attrs))
		for k, v := range attrs {
			view.Attributes[k] = record.ToAny(v)
		}
	}
	// Records with non-finite floats have no canonical form.
	if digest, err := record.ContentHash(o); err == nil {
		view.Digest = digest
	}
	return view
}

func (r RecordView) renderText(w io.Writer) {
	fmt.Fprintf(w, "#%d %s\n", r.ID, displayRecordName(r.Name))
	if r.Description != "" {
		fmt.Fprintf(w, "  description: %s\n", r.Description)
	}
	if r.Master != nil {
		fmt.Fprintf(w, "  master: #%d\n", *r.Master)
	}
	for _, k := range slices.Sorted(maps.Keys(r.Attributes)) {
		fmt.Fprintf(w, "  %s: %v\n", k, r.Attributes[k])
	}
	if r.Digest != "" {
		fmt.Fprintf(w, "  digest: %s\n", r.Digest)
	}
}

// RecordList is the output shape of a lookup returning several records.
type RecordList struct {
	Query   string       `json:"query"`
	Records []RecordView `json:"records"`
}

func newRecordList(query string, objects []*record.Object) RecordList {
	list := RecordList{Query: query, Records: make([]RecordView, len(objects))}
	for i, o := range objects {
		list.Records[i] = newRecordView(o)
	}
	return list
}

func (l RecordList) renderText(w io.Writer) {
	if len(l.Records) == 0 {
		fmt.Fprintf(w, "No records match %s.\n", l.Query)
		return
	}
	for _, r := range l.Records {
		fmt.Fprintf(w, "#%d\t%s\n", r.ID, displayRecordName(r.Name))
	}
	fmt.Fprintf(w, "%d record(s) match %s\n", len(l.Records), l.Query)
}

func displayRecordName(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return name
}
