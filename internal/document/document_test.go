package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func baseIdentity() Identity {
	return Identity{
		InstituteID: 1,
		DocType:     TypeCertificate,
		StudentRoll: "R1",
		StudentName: "Alice",
		Name:        "BSc",
		ExamName:    nil,
		IssueDate:   "2024-01-01",
	}
}

func TestDeriveCertID_Shape(t *testing.T) {
	id, err := DeriveCertID(baseIdentity())
	require.NoError(t, err)
	assert.Len(t, id, CertIDLength)
	assert.Regexp(t, "^[0-9a-f]{16}$", id)
}

func TestDeriveCertID_StableAcrossCalls(t *testing.T) {
	first, err := DeriveCertID(baseIdentity())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := DeriveCertID(baseIdentity())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDeriveCertID_NormalizationInvariance(t *testing.T) {
	// Case and surrounding whitespace must not cause divergence between
	// issuance and verification.
	noisy := baseIdentity()
	noisy.StudentName = "  ALICE "
	noisy.Name = "bsc  "

	clean, err := DeriveCertID(baseIdentity())
	require.NoError(t, err)
	fromNoisy, err := DeriveCertID(noisy)
	require.NoError(t, err)
	assert.Equal(t, clean, fromNoisy)
}

func TestDeriveCertID_FieldPerturbation(t *testing.T) {
	base, err := DeriveCertID(baseIdentity())
	require.NoError(t, err)

	perturbations := map[string]func(*Identity){
		"institute_id": func(i *Identity) { i.InstituteID = 2 },
		"doc_type":     func(i *Identity) { i.DocType = TypeMarksheet },
		"student_roll": func(i *Identity) { i.StudentRoll = "R2" },
		"student_name": func(i *Identity) { i.StudentName = "Bob" },
		"name":         func(i *Identity) { i.Name = "MSc" },
		"exam_name":    func(i *Identity) { i.ExamName = strptr("Finals") },
		"issue_date":   func(i *Identity) { i.IssueDate = "2024-01-02" },
	}
	for field, mutate := range perturbations {
		t.Run(field, func(t *testing.T) {
			id := baseIdentity()
			mutate(&id)
			changed, err := DeriveCertID(id)
			require.NoError(t, err)
			assert.NotEqual(t, base, changed, "changing %s must change the cert id", field)
		})
	}
}

func TestDeriveCertID_NullVsEmptyExamName(t *testing.T) {
	withNil := baseIdentity()
	withEmpty := baseIdentity()
	withEmpty.ExamName = strptr("")

	idNil, err := DeriveCertID(withNil)
	require.NoError(t, err)
	idEmpty, err := DeriveCertID(withEmpty)
	require.NoError(t, err)
	assert.NotEqual(t, idNil, idEmpty)
}
