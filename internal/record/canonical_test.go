package record

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"max int64", Int(math.MaxInt64), "9223372036854775807"},
		{"float", Float(2.5), "2.5"},
		{"integral float", Float(2), "2"},
		{"bool true", Bool(true), "true"},
		{"null", Null{}, "null"},
		{"go nil", nil, "null"},
		{"empty list", List{}, "[]"},
		{"empty struct", Struct{}, "{}"},
		{"list of ints", List{Int(1), Int(2), Int(3)}, "[1,2,3]"},
		{"plain map", map[string]any{"b": 1, "a": "x"}, `{"a":"x","b":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(String("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to the single code point U+00E9.
	result, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))
}

func TestMarshalCanonicalEscapedBackslashPreserved(t *testing.T) {
	// A literal backslash followed by "u2028" text must stay escaped.
	result, err := MarshalCanonical(String(`\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(result))
}

func TestMarshalCanonicalRejectsNonFinite(t *testing.T) {
	_, err := MarshalCanonical(Float(math.Inf(-1)))
	assert.Error(t, err)

	_, err = MarshalCanonical(Struct{"x": Float(math.NaN())})
	assert.Error(t, err)
}

func TestMarshalCanonicalNegativeZero(t *testing.T) {
	result, err := MarshalCanonical(Float(math.Copysign(0, -1)))
	require.NoError(t, err)
	assert.Equal(t, "0", string(result))
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	s := Struct{"z": Int(1), "a": Struct{"y": Bool(true), "b": Null{}}}

	first, err := MarshalCanonical(s)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := MarshalCanonical(s)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, `{"a":{"b":null,"y":true},"z":1}`, string(first))
}
