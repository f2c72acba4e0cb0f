package fraud

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestSQLiteLogStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "fraud.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewSQLiteLogStore(db)
	require.NoError(t, err)

	entry := LogEntry{
		AnalysisID: "a-1",
		Filename:   "doc.png",
		RiskLevel:  RiskHigh,
		RiskScore:  0.8,
		Issues:     []string{"Invalid image file"},
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, entry))

	entries, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.AnalysisID, entries[0].AnalysisID)
	assert.Equal(t, RiskHigh, entries[0].RiskLevel)
	assert.Equal(t, entry.Issues, entries[0].Issues)
}
