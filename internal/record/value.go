package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Kind names the type of an attribute value.
type Kind string

// Attribute value kinds.
const (
	KindNull   Kind = "null"
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindList   Kind = "list"
	KindStruct Kind = "struct"
)

// Value is a sealed interface over attribute values.
// Only Null, String, Int, Float, Bool, List, and Struct implement it.
type Value interface {
	Kind() Kind
	value() // Sealed
}

// Null is an explicit null attribute value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) value()     {}

// String is a string attribute value.
type String string

func (String) Kind() Kind { return KindString }
func (String) value()     {}

// Int is an integer attribute value.
type Int int64

func (Int) Kind() Kind { return KindInt }
func (Int) value()     {}

// Float is a floating point attribute value. NaN and infinities cannot be
// canonically encoded.
type Float float64

func (Float) Kind() Kind { return KindFloat }
func (Float) value()     {}

// Bool is a boolean attribute value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) value()     {}

// List is an ordered list of values.
type List []Value

func (List) Kind() Kind { return KindList }
func (List) value()     {}

// Struct maps string keys to values.
// Use SortedKeys() for deterministic iteration.
type Struct map[string]Value

func (Struct) Kind() Kind { return KindStruct }
func (Struct) value()     {}

// SortedKeys returns keys ordered by UTF-16 code units, the ordering
// canonical JSON requires. Go's native string order compares UTF-8 bytes
// and differs for characters outside the BMP.
func (s Struct) SortedKeys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// MarshalJSON encodes the struct with sorted keys.
func (s Struct) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := MarshalValue(s[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the list element by element.
func (l List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("list[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalValue encodes a Value as plain JSON (not canonical).
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Float:
		return json.Marshal(float64(val))
	case Bool:
		return json.Marshal(bool(val))
	case List:
		return val.MarshalJSON()
	case Struct:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// FromAny converts decoded YAML, JSON, or CUE data into a Value.
// Maps with non-string keys, NaN, and infinities are rejected.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case float32:
		return fromFloat(float64(val))
	case float64:
		return fromFloat(val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return fromFloat(f)
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			v, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = v
		}
		return list, nil
	case map[string]any:
		s := make(Struct, len(val))
		for k, elem := range val {
			v, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			s[k] = v
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float: %v", f)
	}
	return Float(f), nil
}

// ToAny converts a Value back into plain Go data.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Struct:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToAny(elem)
		}
		return out
	}
	return nil
}
