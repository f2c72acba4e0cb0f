// Package issuance drives the document issuance flow: validate the request,
// derive the identity hash and certificate id, persist the record, and append
// the matching ledger entry.
package issuance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"veridoc/internal/artifact"
	"veridoc/internal/document"
	"veridoc/internal/document/store"
	"veridoc/internal/institute"
	"veridoc/internal/ledger"
	"veridoc/pkg/canonical"
	dErrors "veridoc/pkg/domain-errors"
)

// ErrDuplicateUIN signals a document or marksheet UIN already registered by
// this institute.
var ErrDuplicateUIN = dErrors.New(dErrors.CodeConflict, "a document with this UIN already exists for this institute")

// Request carries the fields an institute submits to issue a document.
type Request struct {
	DocType     string  `json:"doc_type"`
	Name        string  `json:"name"`
	StudentRoll string  `json:"student_roll"`
	StudentName string  `json:"student_name"`
	ExamName    *string `json:"exam_name,omitempty"`
	IssueDate   string  `json:"issue_date"`
	UIN         string  `json:"uin,omitempty"`
}

// Receipt is returned after a successful issuance.
type Receipt struct {
	Document *document.Record `json:"document"`
	CertID   string           `json:"cert_id,omitempty"`
	Proof    artifact.Proof   `json:"proof"`
}

// Service wires the issuance flow together.
type Service struct {
	docs       store.DocumentStore
	ledger     ledger.Store
	institutes institute.Store
	log        *slog.Logger
}

func NewService(docs store.DocumentStore, led ledger.Store, institutes institute.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{docs: docs, ledger: led, institutes: institutes, log: log}
}

// Issue validates the request, persists the document, and appends a ledger
// entry carrying the full identity payload.
func (s *Service) Issue(ctx context.Context, instituteID int64, req Request) (*Receipt, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var number string
	switch req.DocType {
	case document.TypeCertificate:
		id, err := document.DeriveCertID(identityOf(instituteID, req))
		if err != nil {
			return nil, err
		}
		exists, err := s.docs.ExistsByNumber(ctx, instituteID, req.DocType, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, document.ErrDuplicateCertificate
		}
		number = id
	default:
		uin := strings.TrimSpace(req.UIN)
		if uin == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "uin is required for documents and marksheets")
		}
		exists, err := s.docs.ExistsByNumber(ctx, instituteID, req.DocType, uin)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateUIN
		}
		number = uin
	}

	issuedAt := time.Now().UTC()
	payload := payloadOf(instituteID, req, number, issuedAt)
	hash, err := canonical.Hash(payload)
	if err != nil {
		return nil, err
	}

	rec := &document.Record{
		InstituteID:    instituteID,
		DocType:        req.DocType,
		Name:           strings.TrimSpace(req.Name),
		Number:         number,
		IssueDate:      req.IssueDate,
		BlockchainHash: hash,
		Status:         document.StatusConfirmed,
	}
	if req.ExamName != nil {
		rec.ExamName = *req.ExamName
	}
	if err := s.docs.Save(ctx, rec); err != nil {
		return nil, err
	}

	payload["doc_id"] = rec.ID
	if err := s.ledger.Append(ctx, ledger.Entry{
		DocID:          rec.ID,
		BlockchainHash: &hash,
		Timestamp:      issuedAt,
		Data:           payload,
		Status:         ledger.StatusConfirmed,
	}); err != nil {
		// The record exists but the ledger write failed; surface the
		// error so the caller retries rather than handing out an
		// unverifiable document.
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	proof := artifact.Proof{
		DocID:       rec.ID,
		Hash:        hash,
		Type:        rec.DocType,
		Institute:   s.instituteName(ctx, instituteID),
		StudentRoll: strings.TrimSpace(req.StudentRoll),
		StudentName: strings.TrimSpace(req.StudentName),
	}
	receipt := &Receipt{Document: rec, Proof: proof}
	if rec.DocType == document.TypeCertificate {
		receipt.CertID = number
		receipt.Proof.CertID = number
	} else {
		receipt.Proof.UIN = number
	}
	return receipt, nil
}

// Delete removes a document the institute owns and tombstones its ledger
// entries.
func (s *Service) Delete(ctx context.Context, instituteID, docID int64) error {
	rec, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		return err
	}
	if rec.InstituteID != instituteID {
		return dErrors.New(dErrors.CodeForbidden, "document belongs to another institute")
	}
	if err := s.docs.Delete(ctx, docID); err != nil {
		return err
	}
	if err := s.ledger.Tombstone(ctx, docID); err != nil {
		return fmt.Errorf("tombstone ledger entry: %w", err)
	}
	return nil
}

// List returns all documents issued by the institute.
func (s *Service) List(ctx context.Context, instituteID int64) ([]*document.Record, error) {
	return s.docs.ListByInstitute(ctx, instituteID)
}

// Get returns a single document the institute owns.
func (s *Service) Get(ctx context.Context, instituteID, docID int64) (*document.Record, error) {
	rec, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if rec.InstituteID != instituteID {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (s *Service) instituteName(ctx context.Context, instituteID int64) string {
	if s.institutes == nil {
		return ""
	}
	rec, err := s.institutes.FindByID(ctx, instituteID)
	if err != nil {
		if !errors.Is(err, institute.ErrNotFound) {
			s.log.Warn("institute lookup failed", slog.Int64("institute_id", instituteID), slog.String("error", err.Error()))
		}
		return ""
	}
	return rec.Name
}

func validate(req Request) error {
	switch req.DocType {
	case document.TypeDocument, document.TypeCertificate, document.TypeMarksheet:
	default:
		return dErrors.New(dErrors.CodeBadRequest, "doc_type must be document, certificate or marksheet")
	}
	if strings.TrimSpace(req.Name) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	if strings.TrimSpace(req.StudentRoll) == "" || strings.TrimSpace(req.StudentName) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "student_roll and student_name are required")
	}
	if _, err := time.Parse("2006-01-02", req.IssueDate); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "issue_date must be YYYY-MM-DD")
	}
	return nil
}

func identityOf(instituteID int64, req Request) document.Identity {
	return document.Identity{
		InstituteID: instituteID,
		DocType:     req.DocType,
		StudentRoll: req.StudentRoll,
		StudentName: req.StudentName,
		Name:        req.Name,
		ExamName:    req.ExamName,
		IssueDate:   req.IssueDate,
	}
}

// payloadOf builds the full map the identity hash covers. It extends the
// certificate fingerprint with the assigned number and issuance timestamp.
func payloadOf(instituteID int64, req Request, number string, issuedAt time.Time) map[string]any {
	payload := identityOf(instituteID, req).Fingerprint()
	payload["number"] = number
	payload["issued_at"] = issuedAt.Format(time.RFC3339)
	return payload
}
