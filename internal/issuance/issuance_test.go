package issuance_test

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/document"
	docstore "veridoc/internal/document/store"
	"veridoc/internal/institute"
	"veridoc/internal/issuance"
	"veridoc/internal/ledger"
)

type fixture struct {
	svc         *issuance.Service
	docs        *docstore.MemoryStore
	ledger      *ledger.FileStore
	instituteID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	docs := docstore.NewMemoryStore()
	led, err := ledger.NewFileStore(filepath.Join(t.TempDir(), "ledger.json"), nil, nil)
	require.NoError(t, err)

	institutes := institute.NewMemoryStore()
	inst := &institute.Record{Name: "Test University", Email: "admin@test.edu"}
	require.NoError(t, institutes.Save(context.Background(), inst))

	return &fixture{
		svc:         issuance.NewService(docs, led, institutes, nil),
		docs:        docs,
		ledger:      led,
		instituteID: inst.ID,
	}
}

func certificateRequest() issuance.Request {
	return issuance.Request{
		DocType:     document.TypeCertificate,
		Name:        "BSc",
		StudentRoll: "R1",
		StudentName: "Alice",
		IssueDate:   "2024-01-01",
	}
}

func TestIssue_Certificate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	receipt, err := f.svc.Issue(ctx, f.instituteID, certificateRequest())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), receipt.CertID)
	assert.Equal(t, receipt.CertID, receipt.Document.Number)
	assert.Equal(t, document.StatusConfirmed, receipt.Document.Status)
	assert.Len(t, receipt.Document.BlockchainHash, 64)

	assert.Equal(t, receipt.Document.ID, receipt.Proof.DocID)
	assert.Equal(t, receipt.Document.BlockchainHash, receipt.Proof.Hash)
	assert.Equal(t, "Test University", receipt.Proof.Institute)
	assert.Equal(t, receipt.CertID, receipt.Proof.CertID)

	entry, ok, err := f.ledger.Latest(ctx, receipt.Document.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, entry.BlockchainHash)
	assert.Equal(t, receipt.Document.BlockchainHash, *entry.BlockchainHash)
	assert.Equal(t, "alice", entry.Data["student_name"])
}

func TestIssue_CertificateDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Issue(ctx, f.instituteID, certificateRequest())
	require.NoError(t, err)

	// Same identity, even with different casing, derives the same id.
	req := certificateRequest()
	req.StudentName = "  ALICE "
	_, err = f.svc.Issue(ctx, f.instituteID, req)
	assert.ErrorIs(t, err, document.ErrDuplicateCertificate)
}

func TestIssue_MarksheetRequiresUIN(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req := certificateRequest()
	req.DocType = document.TypeMarksheet
	_, err := f.svc.Issue(ctx, f.instituteID, req)
	require.Error(t, err)

	req.UIN = " UIN-42 "
	receipt, err := f.svc.Issue(ctx, f.instituteID, req)
	require.NoError(t, err)
	assert.Equal(t, "UIN-42", receipt.Document.Number)
	assert.Empty(t, receipt.CertID)
	assert.Equal(t, "UIN-42", receipt.Proof.UIN)
}

func TestIssue_MarksheetDuplicateUIN(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req := certificateRequest()
	req.DocType = document.TypeMarksheet
	req.UIN = "UIN-42"
	_, err := f.svc.Issue(ctx, f.instituteID, req)
	require.NoError(t, err)

	req.StudentName = "Bob"
	_, err = f.svc.Issue(ctx, f.instituteID, req)
	assert.ErrorIs(t, err, issuance.ErrDuplicateUIN)
}

func TestIssue_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := map[string]func(*issuance.Request){
		"bad doc type":   func(r *issuance.Request) { r.DocType = "diploma" },
		"missing name":   func(r *issuance.Request) { r.Name = "  " },
		"missing roll":   func(r *issuance.Request) { r.StudentRoll = "" },
		"bad issue date": func(r *issuance.Request) { r.IssueDate = "01/01/2024" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := certificateRequest()
			mutate(&req)
			_, err := f.svc.Issue(ctx, f.instituteID, req)
			assert.Error(t, err)
		})
	}
}

func TestDelete_TombstonesLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	receipt, err := f.svc.Issue(ctx, f.instituteID, certificateRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.instituteID, receipt.Document.ID))

	_, err = f.docs.FindByID(ctx, receipt.Document.ID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	entry, ok, err := f.ledger.Latest(ctx, receipt.Document.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, entry.Deleted())
}

func TestDelete_OwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	receipt, err := f.svc.Issue(ctx, f.instituteID, certificateRequest())
	require.NoError(t, err)

	err = f.svc.Delete(ctx, f.instituteID+1, receipt.Document.ID)
	assert.Error(t, err)

	// Still present.
	_, err = f.docs.FindByID(ctx, receipt.Document.ID)
	assert.NoError(t, err)
}

func TestList_ScopedToInstitute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Issue(ctx, f.instituteID, certificateRequest())
	require.NoError(t, err)

	docs, err := f.svc.List(ctx, f.instituteID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	other, err := f.svc.List(ctx, f.instituteID+1)
	require.NoError(t, err)
	assert.Empty(t, other)
}
