package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/cdo/internal/record"
)

// Error codes for load failures.
const (
	ErrCodeNotFound      = "E200" // File not found
	ErrCodeReadFailed    = "E201" // File could not be read or opened
	ErrCodeParseFailed   = "E202" // Syntax or evaluation error
	ErrCodeInvalidRecord = "E203" // Record missing fields or holding bad values
	ErrCodeUnknownMaster = "E204" // Master identity not present in the file
	ErrCodeUnsupported   = "E205" // Unknown file extension
	ErrCodeQueryFailed   = "E206" // SQLite query failed
)

// DefaultTable is the table LoadSQLite reads when none is given.
const DefaultTable = "records"

// Dataset is the result of loading a record file.
type Dataset struct {
	Name    string           // Optional name declared by the file
	Path    string           // Source path
	Records []*record.Object // In file order
}

// LoadError describes a load failure.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads a record file, choosing the loader by extension. SQLite
// files are read from DefaultTable.
func Load(ctx context.Context, path string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".cue":
		return LoadCUE(path)
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(ctx, path, DefaultTable)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("unsupported record file extension %q: %s", filepath.Ext(path), path),
		}
	}
}

// rawRecord is the format-neutral shape every loader produces before
// master references are resolved.
type rawRecord struct {
	ID          record.ID
	Name        string
	Description string
	Master      *record.ID
	Attributes  record.Struct
	Pos         token.Pos
}

func (raw rawRecord) object() *record.Object {
	o := record.NewObject(raw.ID, raw.Name).SetDescription(raw.Description)
	for _, k := range raw.Attributes.SortedKeys() {
		o.Set(k, raw.Attributes[k])
	}
	return o
}

// build turns raw records into objects and links masters. The first
// record carrying an identity is the one masters resolve to.
func build(raws []rawRecord) ([]*record.Object, error) {
	objects := make([]*record.Object, len(raws))
	byID := make(map[record.ID]*record.Object, len(raws))
	for i, raw := range raws {
		o := raw.object()
		objects[i] = o
		if _, seen := byID[raw.ID]; !seen {
			byID[raw.ID] = o
		}
	}

	for i, raw := range raws {
		if raw.Master == nil {
			continue
		}
		m, ok := byID[*raw.Master]
		if !ok {
			return nil, &LoadError{
				Code:    ErrCodeUnknownMaster,
				Message: fmt.Sprintf("record %d: master %d not found", raw.ID, *raw.Master),
				Pos:     raw.Pos,
			}
		}
		objects[i].SetMaster(m)
	}
	return objects, nil
}

// toStruct converts decoded attribute data into a record.Struct.
func toStruct(attrs map[string]any) (record.Struct, error) {
	s := make(record.Struct, len(attrs))
	for k, v := range attrs {
		val, err := record.FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		s[k] = val
	}
	return s, nil
}
