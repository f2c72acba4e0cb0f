package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/document"
	"veridoc/internal/document/store"
)

func newRecord(instituteID int64, docType, number string) *document.Record {
	return &document.Record{
		InstituteID:    instituteID,
		DocType:        docType,
		Name:           "BSc Computer Science",
		Number:         number,
		IssueDate:      "2024-01-01",
		BlockchainHash: "abc123",
		Status:         document.StatusConfirmed,
	}
}

func TestMemoryStore_SaveAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	first := newRecord(1, document.TypeCertificate, "cert-1")
	require.NoError(t, s.Save(ctx, first))
	second := newRecord(1, document.TypeCertificate, "cert-2")
	require.NoError(t, s.Save(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func TestMemoryStore_FindByID(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	rec := newRecord(1, document.TypeCertificate, "cert-1")
	require.NoError(t, s.Save(ctx, rec))

	found, err := s.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Number, found.Number)

	_, err = s.FindByID(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryStore_ExistsByNumber_CaseInsensitiveScoped(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Save(ctx, newRecord(1, document.TypeCertificate, "abcdef0123456789")))

	exists, err := s.ExistsByNumber(ctx, 1, document.TypeCertificate, "  ABCDEF0123456789 ")
	require.NoError(t, err)
	assert.True(t, exists)

	// Different institute or type is a different scope.
	exists, err = s.ExistsByNumber(ctx, 2, document.TypeCertificate, "abcdef0123456789")
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = s.ExistsByNumber(ctx, 1, document.TypeMarksheet, "abcdef0123456789")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_UpdateHash(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	rec := newRecord(1, document.TypeCertificate, "cert-1")
	require.NoError(t, s.Save(ctx, rec))

	require.NoError(t, s.UpdateHash(ctx, rec.ID, "healed-hash"))
	found, err := s.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "healed-hash", found.BlockchainHash)

	assert.ErrorIs(t, s.UpdateHash(ctx, 999, "x"), store.ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	rec := newRecord(1, document.TypeCertificate, "cert-1")
	require.NoError(t, s.Save(ctx, rec))

	require.NoError(t, s.Delete(ctx, rec.ID))
	_, err := s.FindByID(ctx, rec.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
