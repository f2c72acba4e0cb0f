// Package legacy manages pre-digital documents submitted for retroactive
// registration: holders upload their details, an institute reviews them, and a
// verified record gets a legacy certificate id and a ledger entry.
package legacy

import (
	"time"

	dErrors "veridoc/pkg/domain-errors"
)

// Review statuses.
const (
	StatusPendingReview = "pending_review"
	StatusVerified      = "verified"
	StatusRejected      = "rejected"
)

var (
	// ErrDuplicateUIN is returned when a UIN is already registered.
	ErrDuplicateUIN = dErrors.New(dErrors.CodeConflict, "a legacy document with this UIN already exists")
	// ErrNotFound is returned when a record id or UIN resolves to nothing.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "legacy document not found")
)

// Record is a legacy document under review.
type Record struct {
	ID             int64          `json:"id"`
	UIN            string         `json:"uin"`
	StudentName    string         `json:"student_name"`
	DocType        string         `json:"doc_type"`
	Institution    string         `json:"institution"`
	DocData        map[string]any `json:"doc_data,omitempty"`
	Status         string         `json:"status"`
	CertID         string         `json:"cert_id,omitempty"`
	BlockchainHash string         `json:"blockchain_hash,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
