// Package store persists document records. Stores are interface-driven so the
// issuance and verification services stay testable and the backing engine can
// swap between memory, sqlite, and postgres without rewiring business code.
package store

import (
	"context"

	"veridoc/internal/document"
	dErrors "veridoc/pkg/domain-errors"
)

// ErrNotFound keeps store-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "document not found")

// DocumentStore is the persistence boundary for document records.
type DocumentStore interface {
	// Save inserts rec and assigns rec.ID.
	Save(ctx context.Context, rec *document.Record) error
	FindByID(ctx context.Context, id int64) (*document.Record, error)
	// FindByNumber matches the stored number exactly (UIN or cert id).
	FindByNumber(ctx context.Context, number string) (*document.Record, error)
	// ExistsByNumber checks for a case-insensitive number match scoped to an
	// institute and document type.
	ExistsByNumber(ctx context.Context, instituteID int64, docType, number string) (bool, error)
	ListByInstitute(ctx context.Context, instituteID int64) ([]*document.Record, error)
	// List returns every record; the verification engine's cert-id fallback
	// scan iterates it. Acceptable at target scale.
	List(ctx context.Context) ([]*document.Record, error)
	// UpdateHash overwrites the stored blockchain hash (auto-heal path).
	UpdateHash(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
}
