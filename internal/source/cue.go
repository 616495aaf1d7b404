package source

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/cdo/internal/record"
)

// LoadCUE evaluates a CUE record file. The file may use any CUE feature
// (definitions, defaults, comprehensions) as long as the records evaluate
// to concrete values.
func LoadCUE(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}
	ds, err := ParseCUE(data, path)
	if err != nil {
		return nil, err
	}
	ds.Path = path
	return ds, nil
}

// ParseCUE evaluates CUE record data. filename is used in error positions.
func ParseCUE(data []byte, filename string) (*Dataset, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, cueError(ErrCodeParseFailed, "evaluating CUE", err)
	}
	if err := value.Validate(); err != nil {
		return nil, cueError(ErrCodeParseFailed, "validating CUE", err)
	}

	ds := &Dataset{}
	if nameVal := value.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, cueError(ErrCodeInvalidRecord, "name", err)
		}
		ds.Name = name
	}

	recordsVal := value.LookupPath(cue.ParsePath("records"))
	if !recordsVal.Exists() {
		return ds, nil
	}
	iter, err := recordsVal.List()
	if err != nil {
		return nil, cueError(ErrCodeInvalidRecord, "records must be a list", err)
	}

	var raws []rawRecord
	for i := 0; iter.Next(); i++ {
		raw, err := parseCUERecord(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		raws = append(raws, raw)
	}

	objects, err := build(raws)
	if err != nil {
		return nil, err
	}
	ds.Records = objects
	return ds, nil
}

func parseCUERecord(v cue.Value, index int) (rawRecord, error) {
	raw := rawRecord{Pos: v.Pos()}

	idVal := v.LookupPath(cue.ParsePath("id"))
	if !idVal.Exists() {
		return raw, &LoadError{
			Code:    ErrCodeInvalidRecord,
			Message: fmt.Sprintf("records[%d]: id is required", index),
			Pos:     v.Pos(),
		}
	}
	id, err := idVal.Int64()
	if err != nil {
		return raw, cueError(ErrCodeInvalidRecord, fmt.Sprintf("records[%d].id", index), err)
	}
	raw.ID = record.ID(id)

	if raw.Name, err = optionalString(v, "name"); err != nil {
		return raw, cueError(ErrCodeInvalidRecord, fmt.Sprintf("record %d: name", id), err)
	}
	if raw.Description, err = optionalString(v, "description"); err != nil {
		return raw, cueError(ErrCodeInvalidRecord, fmt.Sprintf("record %d: description", id), err)
	}

	if masterVal := v.LookupPath(cue.ParsePath("master")); isSet(masterVal) {
		m, err := masterVal.Int64()
		if err != nil {
			return raw, cueError(ErrCodeInvalidRecord, fmt.Sprintf("record %d: master", id), err)
		}
		mid := record.ID(m)
		raw.Master = &mid
	}

	raw.Attributes = record.Struct{}
	if attrsVal := v.LookupPath(cue.ParsePath("attributes")); attrsVal.Exists() {
		val, err := cueToValue(attrsVal)
		if err != nil {
			return raw, &LoadError{
				Code:    ErrCodeInvalidRecord,
				Message: fmt.Sprintf("record %d: attributes: %v", id, err),
				Pos:     attrsVal.Pos(),
				Err:     err,
			}
		}
		s, ok := val.(record.Struct)
		if !ok {
			return raw, &LoadError{
				Code:    ErrCodeInvalidRecord,
				Message: fmt.Sprintf("record %d: attributes must be a struct", id),
				Pos:     attrsVal.Pos(),
			}
		}
		raw.Attributes = s
	}
	return raw, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !isSet(f) {
		return "", nil
	}
	return f.String()
}

// isSet reports whether an optional field holds a concrete value. An
// optional field declared by a definition but never filled in is not set.
func isSet(v cue.Value) bool {
	return v.Exists() && v.IsConcrete()
}

// cueToValue converts a concrete CUE value into a record.Value.
func cueToValue(v cue.Value) (record.Value, error) {
	v, _ = v.Default()
	switch v.Kind() {
	case cue.NullKind:
		return record.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		return record.Bool(b), err
	case cue.IntKind:
		n, err := v.Int64()
		return record.Int(n), err
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return record.FromAny(f)
	case cue.StringKind:
		s, err := v.String()
		return record.String(s), err
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, err
		}
		var list record.List
		for i := 0; iter.Next(); i++ {
			elem, err := cueToValue(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list = append(list, elem)
		}
		if list == nil {
			list = record.List{}
		}
		return list, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, err
		}
		s := record.Struct{}
		for iter.Next() {
			elem, err := cueToValue(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", iter.Label(), err)
			}
			s[iter.Label()] = elem
		}
		return s, nil
	default:
		return nil, fmt.Errorf("value is not concrete (kind %s)", v.IncompleteKind())
	}
}

// cueError wraps a CUE error, keeping the first reported error and its
// position.
func cueError(code, context string, err error) *LoadError {
	le := &LoadError{
		Code:    code,
		Message: fmt.Sprintf("%s: %v", context, err),
		Err:     err,
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return le
	}
	first := errs[0]
	le.Message = fmt.Sprintf("%s: %s", context, first.Error())
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
