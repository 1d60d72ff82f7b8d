package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArray_ScanFormats(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  StringArray
	}{
		{"nil", nil, StringArray{}},
		{"empty string", "", StringArray{}},
		{"json", `["u1","u2"]`, StringArray{"u1", "u2"}},
		{"json bytes", []byte(`["u1"]`), StringArray{"u1"}},
		{"postgres", `{u1,"u,2"}`, StringArray{"u1", "u,2"}},
		{"postgres empty", `{}`, StringArray{}},
		{"bare", "u1", StringArray{"u1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a StringArray
			require.NoError(t, a.Scan(tt.input))
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestStringArray_ScanRejectsUnknownType(t *testing.T) {
	var a StringArray
	assert.Error(t, a.Scan(42))
}

func TestStringArray_ValueNeverNull(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringArray{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)
}

func TestStringArray_SetOperations(t *testing.T) {
	base := StringArray{"a", "b"}

	with := base.With("c")
	assert.Equal(t, StringArray{"a", "b", "c"}, with)
	assert.Equal(t, StringArray{"a", "b"}, base, "With must not mutate the receiver")

	assert.Equal(t, with, with.With("a"), "adding an existing member is a no-op")
	assert.True(t, with.Contains("c"))
	assert.False(t, base.Contains("c"))

	without := StringArray{"a", "b", "a"}.Without("a")
	assert.Equal(t, StringArray{"b"}, without)
	assert.Empty(t, StringArray(nil).Without("x"))
}
