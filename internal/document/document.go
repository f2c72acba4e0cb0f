// Package document holds the document record model and the deterministic
// certificate-id derivation used at issuance and verification time.
package document

import (
	"strings"
	"time"

	"veridoc/pkg/canonical"
	dErrors "veridoc/pkg/domain-errors"
)

// Document types accepted by the issuance pipeline.
const (
	TypeDocument    = "document"
	TypeCertificate = "certificate"
	TypeMarksheet   = "marksheet"
)

// Record statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusIssued    = "issued"
)

// CertIDLength is the hex prefix length of a derived certificate id. Short
// enough to scan off a printed document, long enough that accidental collision
// is negligible at target volumes. Collisions within an (institute, doc_type)
// scope are rejected at issuance, never re-hashed.
const CertIDLength = 16

// ErrDuplicateCertificate signals that a derived certificate id already exists
// for the same institute and document type.
var ErrDuplicateCertificate = dErrors.New(dErrors.CodeConflict, "certificate already exists for this institute and type")

// Record is the stored representation of an issued document. Number holds a
// user-supplied id, a normalized UIN, or the derived certificate id depending
// on DocType.
type Record struct {
	ID             int64     `json:"id"`
	InstituteID    int64     `json:"institute_id"`
	DocType        string    `json:"doc_type"`
	Name           string    `json:"name"`
	Number         string    `json:"number"`
	ExamName       string    `json:"exam_name,omitempty"`
	IssueDate      string    `json:"issue_date"` // ISO date, YYYY-MM-DD
	BlockchainHash string    `json:"blockchain_hash"`
	Status         string    `json:"status"`
	FilePath       string    `json:"file_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Identity is the fingerprint a certificate id is derived from. It must be
// reproducible from data available both at issuance and at verification time,
// so every text field is normalized identically on both paths.
type Identity struct {
	InstituteID int64
	DocType     string
	StudentRoll string
	StudentName string
	Name        string
	ExamName    *string // nil serializes as JSON null, distinct from ""
	IssueDate   string
}

// Fingerprint returns the normalized attribute map the certificate id hashes
// over. Key set and normalization are fixed: changing either breaks id
// stability for everything already issued.
func (id Identity) Fingerprint() map[string]any {
	var exam any
	if id.ExamName != nil {
		exam = normalize(*id.ExamName)
	}
	return map[string]any{
		"institute_id": id.InstituteID,
		"doc_type":     id.DocType,
		"student_roll": id.StudentRoll,
		"student_name": normalize(id.StudentName),
		"name":         normalize(id.Name),
		"exam_name":    exam,
		"issue_date":   id.IssueDate,
	}
}

// DeriveCertID computes the stable short identifier for an identity: the
// first CertIDLength hex characters of the canonical fingerprint hash.
func DeriveCertID(id Identity) (string, error) {
	digest, err := canonical.Hash(id.Fingerprint())
	if err != nil {
		return "", err
	}
	return digest[:CertIDLength], nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
