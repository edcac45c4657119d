package id

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULID(t *testing.T) {
	id := NewULID()
	assert.Len(t, id, 26)
	assert.True(t, IsValidULID(id))
}

func TestULIDMonotonic(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = NewULID()
	}

	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	assert.Equal(t, sorted, ids, "ULIDs should be lexicographically increasing")
}

func TestParseULID(t *testing.T) {
	id := NewULID()
	parsed, err := ParseULID(id)
	require.NoError(t, err)
	assert.Equal(t, id, parsed.String())

	_, err = ParseULID("not-a-ulid")
	assert.Error(t, err)
}

func TestNewUUID(t *testing.T) {
	a := NewUUID()
	b := NewUUID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestNewV5Deterministic(t *testing.T) {
	ns := MustNamespace("5c0b59b2-dc3e-4d1f-9e71-1234567890ab")

	a := NewV5(ns, "task:42")
	b := NewV5(ns, "task:42")
	c := NewV5(ns, "task:43")

	assert.Equal(t, a, b, "same namespace and name must yield the same UUID")
	assert.NotEqual(t, a, c)
	assert.Equal(t, byte('5'), a[14], "version nibble must be 5")
}
