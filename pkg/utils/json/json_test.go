package json

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags,omitempty"`
}

func TestMarshalUnmarshal(t *testing.T) {
	in := sample{Name: "devcon", Count: 3, Tags: []string{"ethereum", "conference"}}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestUnmarshalInvalid(t *testing.T) {
	var out sample
	assert.Error(t, Unmarshal([]byte("{not json"), &out))
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(sample{Name: "ethcc"}))
	assert.True(t, strings.Contains(buf.String(), `"ethcc"`))

	var out sample
	require.NoError(t, NewDecoder(&buf).Decode(&out))
	assert.Equal(t, "ethcc", out.Name)
}
