package canonical_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/pkg/canonical"
	dErrors "veridoc/pkg/domain-errors"
)

func TestHash_OrderIndependence(t *testing.T) {
	// Maps iterate in random order; hashing many times from differently built
	// maps must always land on the same digest.
	a := map[string]any{
		"institute_id": 1,
		"doc_type":     "certificate",
		"student_name": "alice",
		"issue_date":   "2024-01-01",
	}
	b := map[string]any{}
	b["issue_date"] = "2024-01-01"
	b["student_name"] = "alice"
	b["doc_type"] = "certificate"
	b["institute_id"] = 1

	ha, err := canonical.Hash(a)
	require.NoError(t, err)
	hb, err := canonical.Hash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	for i := 0; i < 50; i++ {
		h, err := canonical.Hash(a)
		require.NoError(t, err)
		assert.Equal(t, ha, h)
	}
}

func TestHash_NestedAndNull(t *testing.T) {
	withNil := map[string]any{
		"exam_name": nil,
		"nested":    map[string]any{"b": 2, "a": 1},
		"list":      []any{1, "two", nil},
	}
	h1, err := canonical.Hash(withNil)
	require.NoError(t, err)
	require.Len(t, h1, canonical.DigestLength)

	// Explicit null and absent key are distinct payloads.
	withoutKey := map[string]any{
		"nested": map[string]any{"a": 1, "b": 2},
		"list":   []any{1, "two", nil},
	}
	h2, err := canonical.Hash(withoutKey)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestHash_ValueChangesDigest(t *testing.T) {
	base := map[string]any{"k": "v", "n": 1}
	h1, err := canonical.Hash(base)
	require.NoError(t, err)

	changed := map[string]any{"k": "v", "n": 2}
	h2, err := canonical.Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestHash_LowercaseHex(t *testing.T) {
	h, err := canonical.Hash(map[string]any{"x": true})
	require.NoError(t, err)
	assert.Regexp(t, "^[0-9a-f]{64}$", h)
}

func TestHash_UnserializablePayload(t *testing.T) {
	_, err := canonical.Hash(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSerialization))
}

func TestMarshal_SortedNoWhitespace(t *testing.T) {
	out, err := canonical.Marshal(map[string]any{"b": 1, "a": "x y"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x y","b":1}`, string(out))
}
