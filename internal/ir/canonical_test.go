package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		input    IRValue
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(-42), "-42"},
		{"bool", IRBool(true), "true"},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"strings helper", Strings([]string{"a", "b"}), `["a","b"]`},
		{"html kept", IRString("<b> & </b>"), `"<b> & </b>"`},
		{"placeholders kept", IRString("%name% and %@name%"), `"%name% and %@name%"`},
		{"control escaped", IRString("a\nb\t\"c\"\\"), `"a\nb\t\"c\"\\"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalCanonical_SortedNestedKeys(t *testing.T) {
	obj := IRObject{
		"z": IRObject{"b": IRInt(1), "a": IRInt(2)},
		"a": IRArray{IRString("x"), IRBool(false)},
	}

	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":["x",false],"z":{"a":2,"b":1}}`, string(got))
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, which sorts before
	// U+E000 in UTF-16 but after it in UTF-8.
	obj := IRObject{
		"\uE000":     IRInt(1),
		"\U00010000": IRInt(2),
	}

	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(got))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed := IRString("e\u0301")
	composed := IRString("\u00e9")

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, b, a)

	keys, err := MarshalCanonical(IRObject{"cafe\u0301": IRInt(1)})
	require.NoError(t, err)
	assert.Equal(t, "{\"caf\u00e9\":1}", string(keys))
}

func TestMarshalCanonical_LineSeparators(t *testing.T) {
	got, err := MarshalCanonical(IRString("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(got))

	// A literal backslash followed by the text u2028 stays escaped.
	got, err = MarshalCanonical(IRString(`\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(got))
}

func TestMarshalCanonical_RejectsNull(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(IRObject{"k": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `value for key "k"`)
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	obj := IRObject{"b": IRInt(1), "a": IRInt(2), "c": IRArray{IRString("x")}}
	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}
