package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromName(t *testing.T) {
	tests := []struct {
		input    string
		expected DataType
	}{
		{"integer", Integer},
		{"INT4", Integer},
		{"bigint", BigInt},
		{"character varying", Text},
		{"double precision", Double},
		{"boolean", Boolean},
		{"timestamp without time zone", Timestamp},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := FromName(tt.input)
			require.True(t, ok)
			assert.True(t, Equal(tt.expected, got), "expected %s, got %s", tt.expected.Name(), got.Name())
		})
	}

	_, ok := FromName("geometry")
	assert.False(t, ok)
}

func TestArrayTypes(t *testing.T) {
	arr, ok := FromName("text[]")
	require.True(t, ok)
	assert.Equal(t, "TEXT[]", arr.Name())
	assert.Equal(t, -1, arr.Size())
	assert.True(t, Equal(Text, ElementType(arr)))
	assert.True(t, Equal(Unknown, ElementType(Integer)))
	assert.True(t, Equal(ArrayOf(BigInt), ArrayOf(BigInt)))
	assert.False(t, Equal(ArrayOf(BigInt), ArrayOf(Integer)))
}

func TestValue(t *testing.T) {
	assert.Equal(t, "NULL", NewNullValue().String())
	assert.True(t, NewNullValue().IsNull())
	assert.Equal(t, "42", NewValue(int32(42)).String())
	assert.True(t, Equal(Integer, NewValue(int32(1)).Type()))
	assert.True(t, Equal(Text, NewValue("x").Type()))
	assert.True(t, Equal(Unknown, NewNullValue().Type()))
}
