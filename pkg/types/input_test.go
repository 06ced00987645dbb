package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeInputID(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "empty input",
			input:    []byte(""),
			expected: "da39a3ee5e6b4b0d3255bfef95601890afd80709",
		},
		{
			name:     "abc",
			input:    []byte("abc"),
			expected: "a9993e364706816aba3e25717850c26c9cd0d89d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeInputID(tt.input).Hex())
		})
	}
}

func TestParseInputID(t *testing.T) {
	id := ComputeInputID([]byte("11-22"))

	parsed, err := ParseInputID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseInputID("abc")
	assert.Error(t, err)

	_, err = ParseInputID("zz39a3ee5e6b4b0d3255bfef95601890afd80709")
	assert.Error(t, err)
}

func TestInputID_JSON(t *testing.T) {
	id := ComputeInputID([]byte("95-115"))

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+id.Hex()+`"`, string(data))

	var decoded InputID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)
}

func TestInputID_Scan(t *testing.T) {
	id := ComputeInputID([]byte("998-1012"))

	var fromString InputID
	require.NoError(t, fromString.Scan(id.Hex()))
	assert.Equal(t, id, fromString)

	var fromBytes InputID
	require.NoError(t, fromBytes.Scan([]byte(id.Hex())))
	assert.Equal(t, id, fromBytes)

	var bad InputID
	assert.Error(t, bad.Scan(42))
}
