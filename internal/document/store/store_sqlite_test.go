package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/document"
	"veridoc/internal/document/store"
)

func openSQLite(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "documents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	rec := newRecord(1, document.TypeCertificate, "cert-1")
	rec.ExamName = "Finals"
	require.NoError(t, s.Save(ctx, rec))
	require.NotZero(t, rec.ID)

	found, err := s.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.InstituteID, found.InstituteID)
	assert.Equal(t, rec.DocType, found.DocType)
	assert.Equal(t, rec.Number, found.Number)
	assert.Equal(t, "Finals", found.ExamName)
	assert.Equal(t, rec.BlockchainHash, found.BlockchainHash)
}

func TestSQLiteStore_FindByNumber(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, s.Save(ctx, newRecord(1, document.TypeMarksheet, "UIN-42")))

	found, err := s.FindByNumber(ctx, "UIN-42")
	require.NoError(t, err)
	assert.Equal(t, "UIN-42", found.Number)

	_, err = s.FindByNumber(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLiteStore_ExistsByNumber(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	require.NoError(t, s.Save(ctx, newRecord(3, document.TypeCertificate, "deadbeef00000000")))

	exists, err := s.ExistsByNumber(ctx, 3, document.TypeCertificate, "DEADBEEF00000000")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.ExistsByNumber(ctx, 3, document.TypeDocument, "deadbeef00000000")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLiteStore_UpdateHashAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	rec := newRecord(1, document.TypeCertificate, "cert-1")
	require.NoError(t, s.Save(ctx, rec))

	require.NoError(t, s.UpdateHash(ctx, rec.ID, "healed"))
	found, err := s.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "healed", found.BlockchainHash)

	require.NoError(t, s.Delete(ctx, rec.ID))
	_, err = s.FindByID(ctx, rec.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, rec.ID), store.ErrNotFound)
}

func TestSQLiteStore_ListByInstitute(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	require.NoError(t, s.Save(ctx, newRecord(1, document.TypeCertificate, "a")))
	require.NoError(t, s.Save(ctx, newRecord(1, document.TypeMarksheet, "b")))
	require.NoError(t, s.Save(ctx, newRecord(2, document.TypeCertificate, "c")))

	docs, err := s.ListByInstitute(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
