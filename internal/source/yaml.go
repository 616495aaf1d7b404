package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cdo/internal/record"
)

type yamlFile struct {
	Name    string       `yaml:"name,omitempty"`
	Records []RecordSpec `yaml:"records"`
}

// RecordSpec is the YAML shape of a single record.
type RecordSpec struct {
	ID          *int64         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Master      *int64         `yaml:"master,omitempty"`
	Attributes  map[string]any `yaml:"attributes,omitempty"`
}

// Object builds the record described by the spec. The master reference
// is not resolved; callers link it with SetMaster.
func (r RecordSpec) Object() (*record.Object, error) {
	raw, err := r.raw()
	if err != nil {
		return nil, err
	}
	return raw.object(), nil
}

func (r RecordSpec) raw() (rawRecord, error) {
	if r.ID == nil {
		return rawRecord{}, &LoadError{Code: ErrCodeInvalidRecord, Message: "id is required"}
	}
	attrs, err := toStruct(r.Attributes)
	if err != nil {
		return rawRecord{}, &LoadError{Code: ErrCodeInvalidRecord, Message: fmt.Sprintf("record %d: %v", *r.ID, err), Err: err}
	}
	raw := rawRecord{
		ID:          record.ID(*r.ID),
		Name:        r.Name,
		Description: r.Description,
		Attributes:  attrs,
	}
	if r.Master != nil {
		m := record.ID(*r.Master)
		raw.Master = &m
	}
	return raw, nil
}

// LoadYAML reads a YAML record file. Unknown fields are rejected so typos
// surface as errors instead of silently dropped data.
func LoadYAML(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}
	ds, err := ParseYAML(data)
	if err != nil {
		return nil, err
	}
	ds.Path = path
	return ds, nil
}

// ParseYAML decodes YAML record data.
func ParseYAML(data []byte) (*Dataset, error) {
	var file yamlFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("failed to parse YAML: %v", err), Err: err}
	}

	objects, err := Objects(file.Records)
	if err != nil {
		return nil, err
	}
	return &Dataset{Name: file.Name, Records: objects}, nil
}

// Objects builds records from specs, resolving master references among
// them by identity.
func Objects(specs []RecordSpec) ([]*record.Object, error) {
	raws := make([]rawRecord, 0, len(specs))
	for i, spec := range specs {
		if spec.ID == nil {
			return nil, &LoadError{Code: ErrCodeInvalidRecord, Message: fmt.Sprintf("records[%d]: id is required", i)}
		}
		raw, err := spec.raw()
		if err != nil {
			return nil, err
		}
		raws = append(raws, raw)
	}
	return build(raws)
}

func readError(path string, err error) *LoadError {
	if errors.Is(err, os.ErrNotExist) {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("record file not found: %s", path), Err: err}
	}
	return &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("failed to read %s: %v", path, err), Err: err}
}
