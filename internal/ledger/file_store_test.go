package ledger_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/ledger"
	"veridoc/pkg/testutil"
)

func newFileStore(t *testing.T) (*ledger.FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.json")
	s, err := ledger.NewFileStore(path, nil, nil)
	require.NoError(t, err)
	return s, path
}

func hashPtr(h string) *string { return &h }

func TestFileStore_AppendAndLatest(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	require.NoError(t, s.Append(ctx, ledger.Entry{DocID: 1, BlockchainHash: hashPtr("h1")}))
	require.NoError(t, s.Append(ctx, ledger.Entry{DocID: 2, BlockchainHash: hashPtr("h2")}))

	testutil.When(t, "looking up the latest entry per document", func(t *testing.T) {
		entry, ok, err := s.Latest(ctx, 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "h1", *entry.BlockchainHash)
		assert.Equal(t, ledger.StatusConfirmed, entry.Status)
		assert.False(t, entry.Timestamp.IsZero())
	})

	testutil.Then(t, "unknown documents resolve to nothing", func(t *testing.T) {
		_, ok, err := s.Latest(ctx, 99)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestFileStore_LatestReturnsMostRecent(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	require.NoError(t, s.Append(ctx, ledger.Entry{DocID: 1, BlockchainHash: hashPtr("old")}))
	require.NoError(t, s.Append(ctx, ledger.Entry{DocID: 1, BlockchainHash: hashPtr("new")}))

	entry, ok, err := s.Latest(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", *entry.BlockchainHash)
}

func TestFileStore_TombstoneShadowsButKeepsHistory(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	require.NoError(t, s.Append(ctx, ledger.Entry{DocID: 1, BlockchainHash: hashPtr("h1")}))
	require.NoError(t, s.Tombstone(ctx, 1))

	entry, ok, err := s.Latest(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, entry.Deleted())
	assert.Nil(t, entry.BlockchainHash)
	assert.Equal(t, "deleted", entry.Data["action"])

	// The original entry survives in the history.
	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.StatusConfirmed, entries[0].Status)
	assert.Equal(t, ledger.StatusDeleted, entries[1].Status)
}

func TestFileStore_Stats(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
	assert.Nil(t, stats.LastUpdated)

	require.NoError(t, s.Append(ctx, ledger.Entry{DocID: 1, BlockchainHash: hashPtr("h1")}))
	require.NoError(t, s.Tombstone(ctx, 1))

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.ConfirmedEntries)
	require.NotNil(t, stats.LastUpdated)
}

func TestFileStore_Reset(t *testing.T) {
	ctx := context.Background()
	s, path := newFileStore(t)

	require.NoError(t, s.Append(ctx, ledger.Entry{DocID: 1, BlockchainHash: hashPtr("h1")}))
	require.NoError(t, s.Reset(ctx))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)

	// The on-disk file is an empty array, not removed.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []ledger.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Empty(t, entries)
}

func TestFileStore_PersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	s, path := newFileStore(t)

	require.NoError(t, s.Append(ctx, ledger.Entry{
		DocID:          7,
		BlockchainHash: hashPtr("h7"),
		Timestamp:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Data:           map[string]any{"name": "BSc"},
	}))

	reloaded, err := ledger.NewFileStore(path, nil, nil)
	require.NoError(t, err)

	entry, ok, err := reloaded.Latest(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "h7", *entry.BlockchainHash)
	assert.Equal(t, "BSc", entry.Data["name"])
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := ledger.NewFileStore(path, nil, nil)
	require.NoError(t, err)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	s, err := ledger.NewFileStore(path, nil, nil)
	require.NoError(t, err)

	entries, err := s.Entries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			assert.NoError(t, s.Append(ctx, ledger.Entry{DocID: id, BlockchainHash: hashPtr(fmt.Sprintf("h%d", id))}))
		}(int64(i))
	}
	wg.Wait()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, stats.TotalEntries)
}
