package id

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULID(t *testing.T) {
	a := NewULID()
	b := NewULID()

	require.Len(t, a, 26)
	assert.NotEqual(t, a, b)

	// Monotonic entropy: IDs generated in order must sort in order.
	ids := []string{a, b}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestNewRequestID(t *testing.T) {
	a := NewRequestID()
	b := NewRequestID()

	require.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
