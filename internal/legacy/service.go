package legacy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"veridoc/internal/ledger"
	"veridoc/pkg/canonical"
	dErrors "veridoc/pkg/domain-errors"
)

// Service drives the legacy registration flow.
type Service struct {
	store  Store
	ledger ledger.Store
	log    *slog.Logger
}

func NewService(store Store, led ledger.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, ledger: led, log: log}
}

// SubmitRequest carries a holder's registration of a pre-digital document.
type SubmitRequest struct {
	UIN         string         `json:"uin"`
	StudentName string         `json:"student_name"`
	DocType     string         `json:"doc_type"`
	Institution string         `json:"institution"`
	DocData     map[string]any `json:"doc_data,omitempty"`
}

// Submit registers a legacy document for review.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Record, error) {
	uin := strings.TrimSpace(req.UIN)
	if uin == "" || strings.TrimSpace(req.StudentName) == "" || strings.TrimSpace(req.Institution) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "uin, student_name and institution are required")
	}

	if _, err := s.store.FindByUIN(ctx, uin); err == nil {
		return nil, ErrDuplicateUIN
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	rec := &Record{
		UIN:         uin,
		StudentName: strings.TrimSpace(req.StudentName),
		DocType:     strings.TrimSpace(req.DocType),
		Institution: strings.TrimSpace(req.Institution),
		DocData:     req.DocData,
		Status:      StatusPendingReview,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns all legacy records.
func (s *Service) List(ctx context.Context) ([]*Record, error) {
	return s.store.List(ctx)
}

// SearchByUIN resolves a legacy record by its UIN.
func (s *Service) SearchByUIN(ctx context.Context, uin string) (*Record, error) {
	return s.store.FindByUIN(ctx, uin)
}

// UpdateStatus moves a record through review. Verifying a record mints its
// legacy certificate id, hashes its document data, and appends a ledger entry.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*Record, error) {
	switch status {
	case StatusPendingReview, StatusVerified, StatusRejected:
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "status must be pending_review, verified or rejected")
	}

	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Status = status

	if status == StatusVerified && rec.CertID == "" {
		hash, err := canonical.Hash(s.payload(rec))
		if err != nil {
			return nil, err
		}
		rec.BlockchainHash = hash
		rec.CertID = fmt.Sprintf("LEGACY_%d_%s", rec.ID, strings.ToUpper(hash[:8]))

		// Legacy entries live in the negative id space so they can never
		// shadow an issued document's ledger history.
		if err := s.ledger.Append(ctx, ledger.Entry{
			DocID:          -rec.ID,
			BlockchainHash: &hash,
			Data:           s.payload(rec),
		}); err != nil {
			return nil, fmt.Errorf("append ledger entry: %w", err)
		}
	}

	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a legacy record, tombstoning its ledger entry when it had
// been verified.
func (s *Service) Delete(ctx context.Context, id int64) error {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if rec.Status == StatusVerified {
		if err := s.ledger.Tombstone(ctx, -id); err != nil {
			return fmt.Errorf("tombstone ledger entry: %w", err)
		}
	}
	return nil
}

// payload is the map the legacy hash covers.
func (s *Service) payload(rec *Record) map[string]any {
	payload := map[string]any{
		"source":       "legacy",
		"uin":          strings.ToLower(rec.UIN),
		"student_name": strings.ToLower(rec.StudentName),
		"doc_type":     rec.DocType,
		"institution":  strings.ToLower(rec.Institution),
	}
	if rec.DocData != nil {
		payload["doc_data"] = rec.DocData
	}
	return payload
}
