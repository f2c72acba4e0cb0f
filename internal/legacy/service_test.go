package legacy_test

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/ledger"
	"veridoc/internal/legacy"
)

type fixture struct {
	svc    *legacy.Service
	ledger *ledger.FileStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	led, err := ledger.NewFileStore(filepath.Join(t.TempDir(), "ledger.json"), nil, nil)
	require.NoError(t, err)
	return &fixture{
		svc:    legacy.NewService(legacy.NewMemoryStore(), led, nil),
		ledger: led,
	}
}

func submitRequest() legacy.SubmitRequest {
	return legacy.SubmitRequest{
		UIN:         "UIN-1990-001",
		StudentName: "Alice",
		DocType:     "certificate",
		Institution: "State University",
		DocData:     map[string]any{"grade": "A", "year": "1990"},
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.Submit(ctx, submitRequest())
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.Equal(t, legacy.StatusPendingReview, rec.Status)
	assert.Empty(t, rec.CertID)
}

func TestSubmit_DuplicateUIN(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Submit(ctx, submitRequest())
	require.NoError(t, err)

	req := submitRequest()
	req.UIN = " uin-1990-001 "
	_, err = f.svc.Submit(ctx, req)
	assert.ErrorIs(t, err, legacy.ErrDuplicateUIN)
}

func TestSubmit_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req := submitRequest()
	req.UIN = ""
	_, err := f.svc.Submit(ctx, req)
	assert.Error(t, err)
}

func TestUpdateStatus_VerifyMintsCertID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.Submit(ctx, submitRequest())
	require.NoError(t, err)

	verified, err := f.svc.UpdateStatus(ctx, rec.ID, legacy.StatusVerified)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^LEGACY_\d+_[0-9A-F]{8}$`), verified.CertID)
	assert.Len(t, verified.BlockchainHash, 64)

	entry, ok, err := f.ledger.Latest(ctx, -rec.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, entry.BlockchainHash)
	assert.Equal(t, verified.BlockchainHash, *entry.BlockchainHash)
	assert.Equal(t, "legacy", entry.Data["source"])
}

func TestUpdateStatus_VerifyIsIdempotentOnCertID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.Submit(ctx, submitRequest())
	require.NoError(t, err)

	first, err := f.svc.UpdateStatus(ctx, rec.ID, legacy.StatusVerified)
	require.NoError(t, err)
	second, err := f.svc.UpdateStatus(ctx, rec.ID, legacy.StatusVerified)
	require.NoError(t, err)
	assert.Equal(t, first.CertID, second.CertID)

	entries, err := f.ledger.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdateStatus_Reject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.Submit(ctx, submitRequest())
	require.NoError(t, err)

	rejected, err := f.svc.UpdateStatus(ctx, rec.ID, legacy.StatusRejected)
	require.NoError(t, err)
	assert.Empty(t, rejected.CertID)

	entries, err := f.ledger.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateStatus(context.Background(), 1, "approved")
	assert.Error(t, err)
}

func TestDelete_TombstonesVerifiedRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.Submit(ctx, submitRequest())
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, rec.ID, legacy.StatusVerified)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, rec.ID))

	_, err = f.svc.SearchByUIN(ctx, rec.UIN)
	assert.ErrorIs(t, err, legacy.ErrNotFound)

	entry, ok, err := f.ledger.Latest(ctx, -rec.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, entry.Deleted())
}

func TestSearchByUIN(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.Submit(ctx, submitRequest())
	require.NoError(t, err)

	found, err := f.svc.SearchByUIN(ctx, "uin-1990-001")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, found.ID)
}
