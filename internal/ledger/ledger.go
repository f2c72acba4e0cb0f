// Package ledger implements the append-only issuance ledger: an ordered list
// of entries mirroring every document ever issued or deleted. The ledger is
// the source of truth for verification; the relational store is a queryable
// mirror that can be healed from it.
package ledger

import (
	"context"
	"time"
)

// Entry statuses.
const (
	StatusConfirmed = "confirmed"
	StatusDeleted   = "deleted"
)

// Entry is one ledger record. A deletion is recorded as a new entry with a
// nil hash and StatusDeleted, never by rewriting history.
type Entry struct {
	DocID          int64          `json:"doc_id"`
	BlockchainHash *string        `json:"blockchain_hash"`
	Timestamp      time.Time      `json:"timestamp"`
	Data           map[string]any `json:"data,omitempty"`
	Status         string         `json:"status"`
}

// Deleted reports whether this entry tombstones its document.
func (e *Entry) Deleted() bool {
	return e.Status == StatusDeleted
}

// Stats summarizes the ledger for the admin endpoint.
type Stats struct {
	TotalEntries     int        `json:"total_entries"`
	ConfirmedEntries int        `json:"confirmed_entries"`
	LastUpdated      *time.Time `json:"last_updated,omitempty"`
}

// Store is the ledger persistence contract.
type Store interface {
	// Append records a confirmed entry. A zero Timestamp is stamped with
	// the current UTC time.
	Append(ctx context.Context, entry Entry) error
	// Tombstone appends a deletion entry for docID. Prior entries are kept.
	Tombstone(ctx context.Context, docID int64) error
	// Latest returns the most recent entry for docID, tombstones included.
	Latest(ctx context.Context, docID int64) (*Entry, bool, error)
	// Entries returns a copy of the full ledger in append order.
	Entries(ctx context.Context) ([]Entry, error)
	// Stats summarizes the ledger.
	Stats(ctx context.Context) (Stats, error)
	// Reset discards every entry.
	Reset(ctx context.Context) error
}

// Sink receives a copy of every appended entry, e.g. a Kafka topic. Delivery
// is best effort and never fails the append.
type Sink interface {
	Publish(ctx context.Context, entry Entry) error
}
