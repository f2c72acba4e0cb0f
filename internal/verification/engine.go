package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"veridoc/internal/artifact"
	"veridoc/internal/document"
	"veridoc/internal/document/store"
	"veridoc/internal/institute"
	"veridoc/internal/ledger"
	"veridoc/internal/platform/redis"
	"veridoc/internal/verification/metrics"
)

// Verification methods, used for metrics labels and result details.
const (
	MethodDocID  = "doc_id"
	MethodCertID = "cert_id"
	MethodUpload = "upload"
)

var tracer = otel.Tracer("veridoc/verification")

// Engine resolves verification requests against the document store and the
// ledger. The ledger wins on conflict: a database hash that disagrees with the
// ledger is rewritten from it.
type Engine struct {
	docs       store.DocumentStore
	ledger     ledger.Store
	institutes institute.Store
	cache      *certIDCache
	metrics    *metrics.Metrics
	log        *slog.Logger
}

func NewEngine(docs store.DocumentStore, led ledger.Store, institutes institute.Store, cache *redis.Client, m *metrics.Metrics, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		docs:       docs,
		ledger:     led,
		institutes: institutes,
		cache:      newCertIDCache(cache),
		metrics:    m,
		log:        log,
	}
}

// VerifyByDocID verifies a document by its numeric database id.
func (e *Engine) VerifyByDocID(ctx context.Context, docIDStr string) *Result {
	return e.run(ctx, MethodDocID, func(ctx context.Context) *Result {
		docID, err := strconv.ParseInt(strings.TrimSpace(docIDStr), 10, 64)
		if err != nil {
			return invalid(MethodDocID, CodeInvalidDocID, "document id must be a number")
		}
		return e.verifyDoc(ctx, MethodDocID, docID)
	})
}

// VerifyByCertID verifies a certificate by its 16-character derived id.
func (e *Engine) VerifyByCertID(ctx context.Context, certID string) *Result {
	return e.run(ctx, MethodCertID, func(ctx context.Context) *Result {
		certID := strings.ToLower(strings.TrimSpace(certID))
		if certID == "" {
			return invalid(MethodCertID, CodeInvalidRequest, "certificate id is required")
		}

		if docID, ok := e.cache.Get(ctx, certID); ok {
			if res := e.verifyDoc(ctx, MethodCertID, docID); res.Valid() {
				return res
			}
			// Stale cache entry; fall through to the full lookup.
		}

		rec, err := e.docs.FindByNumber(ctx, certID)
		if err == nil {
			e.cache.Set(ctx, certID, rec.ID)
			return e.verifyDoc(ctx, MethodCertID, rec.ID)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return invalid(MethodCertID, CodeVerificationFailed, "certificate lookup failed")
		}

		// Fallback: re-derive ids from ledger identity payloads. Covers
		// records issued before the id was stored as the number.
		docID, found, err := e.scanLedgerForCertID(ctx, certID)
		if err != nil {
			return invalid(MethodCertID, CodeVerificationFailed, "certificate lookup failed")
		}
		if !found {
			return invalid(MethodCertID, CodeCertIDNotFound, "no certificate found for this id")
		}
		e.cache.Set(ctx, certID, docID)
		return e.verifyDoc(ctx, MethodCertID, docID)
	})
}

// VerifyUpload verifies an uploaded PDF through its embedded proof blob.
func (e *Engine) VerifyUpload(ctx context.Context, file []byte) *Result {
	return e.run(ctx, MethodUpload, func(ctx context.Context) *Result {
		proof, err := artifact.Extract(file)
		switch {
		case errors.Is(err, artifact.ErrNotPDF):
			return invalid(MethodUpload, CodeFileParseError, "could not parse uploaded file")
		case errors.Is(err, artifact.ErrProofMalformed):
			return invalid(MethodUpload, CodeQRDataMissingKeys, "proof data is malformed")
		case errors.Is(err, artifact.ErrProofNotFound):
			return invalid(MethodUpload, CodeQRDataNotFound, "file carries no proof data")
		case err != nil:
			return invalid(MethodUpload, CodeVerificationFailed, "file verification failed")
		}

		if proof.DocID > 0 {
			return e.verifyDoc(ctx, MethodUpload, proof.DocID)
		}
		if id := strings.TrimSpace(proof.CertID); id != "" {
			res := e.VerifyByCertID(ctx, id)
			if res.Details != nil {
				res.Details.Method = MethodUpload
			}
			return res
		}
		return invalid(MethodUpload, CodeQRDataMissingKeys, "proof data carries neither a document id nor a certificate id")
	})
}

// run wraps a verification with tracing, metrics, and panic containment. A
// panic inside the pipeline becomes a VERIFICATION_ERROR result rather than a
// dropped request.
func (e *Engine) run(ctx context.Context, method string, fn func(context.Context) *Result) (result *Result) {
	ctx, span := tracer.Start(ctx, "verification.Verify",
		trace.WithAttributes(attribute.String("verification.method", method)))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("verification panicked",
				slog.String("method", method),
				slog.Any("panic", r))
			result = invalid(method, CodeVerificationFailed, "verification failed unexpectedly")
		}
		outcome := StatusInvalid
		if result != nil && result.Valid() {
			outcome = StatusValid
		}
		e.metrics.ObserveVerification(method, outcome, time.Since(start).Seconds())
		span.SetAttributes(attribute.String("verification.outcome", outcome))
		span.End()
	}()
	return fn(ctx)
}

// verifyDoc is the shared core: load the record, compare its hash with the
// latest ledger entry, and heal the database from the ledger on mismatch.
func (e *Engine) verifyDoc(ctx context.Context, method string, docID int64) *Result {
	rec, err := e.docs.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			code := CodeDocNotFound
			if method == MethodCertID {
				code = CodeCertIDNotFound
			}
			return invalid(method, code, "no document found")
		}
		return invalid(method, CodeVerificationFailed, "document lookup failed")
	}

	details := &Details{Method: method, DatabaseHash: rec.BlockchainHash}
	entry, found, err := e.ledger.Latest(ctx, docID)
	if err != nil {
		return invalid(method, CodeVerificationFailed, "ledger lookup failed")
	}

	// No ledger entry, or an entry with no hash, leaves the database as the
	// only evidence. Tombstoned entries still have a live record only when
	// the delete half-failed; the record remains authoritative then.
	if found && entry.BlockchainHash != nil {
		details.LedgerHash = *entry.BlockchainHash
		if *entry.BlockchainHash != rec.BlockchainHash {
			if healErr := e.docs.UpdateHash(ctx, docID, *entry.BlockchainHash); healErr != nil {
				e.log.Error("failed to heal database hash from ledger",
					slog.Int64("doc_id", docID),
					slog.String("error", healErr.Error()))
				return &Result{
					Status:   StatusInvalid,
					Document: e.view(ctx, rec, entry),
					Details:  details,
					Error:    &ResultError{Code: CodeHashMismatch, Message: "stored hash disagrees with the ledger"},
				}
			}
			e.metrics.ObserveHeal()
			e.log.Warn("healed database hash from ledger", slog.Int64("doc_id", docID))
			rec.BlockchainHash = *entry.BlockchainHash
			details.DatabaseHash = rec.BlockchainHash
			details.Healed = true
		}
	}

	return &Result{
		Status:   StatusValid,
		Document: e.view(ctx, rec, entry),
		Details:  details,
	}
}

// view assembles the public document view, pulling student identity out of the
// ledger payload when available.
func (e *Engine) view(ctx context.Context, rec *document.Record, entry *ledger.Entry) *DocumentView {
	v := &DocumentView{
		ID:        rec.ID,
		DocType:   rec.DocType,
		Name:      rec.Name,
		Number:    rec.Number,
		ExamName:  rec.ExamName,
		IssueDate: rec.IssueDate,
		Status:    rec.Status,
	}
	if e.institutes != nil {
		if inst, err := e.institutes.FindByID(ctx, rec.InstituteID); err == nil {
			v.Institute = inst.Name
		}
	}
	if rec.DocType == document.TypeCertificate {
		v.CertID = rec.Number
	}
	if entry == nil || entry.Data == nil {
		return v
	}
	v.StudentRoll = dataString(entry.Data, "student_roll")
	v.StudentName = dataString(entry.Data, "student_name")
	if v.CertID == "" && rec.DocType == document.TypeCertificate {
		if id, err := deriveFromData(entry.Data); err == nil {
			v.CertID = id
		}
	}
	return v
}

// scanLedgerForCertID re-derives certificate ids from confirmed ledger
// payloads. Linear in ledger size; the Redis cache keeps repeat lookups off
// this path.
func (e *Engine) scanLedgerForCertID(ctx context.Context, certID string) (int64, bool, error) {
	entries, err := e.ledger.Entries(ctx)
	if err != nil {
		return 0, false, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if entry.Deleted() || entry.Data == nil {
			continue
		}
		if dataString(entry.Data, "doc_type") != document.TypeCertificate {
			continue
		}
		id, err := deriveFromData(entry.Data)
		if err != nil {
			continue
		}
		if id == certID {
			return entry.DocID, true, nil
		}
	}
	return 0, false, nil
}

// deriveFromData rebuilds the identity fingerprint from a ledger payload and
// derives its certificate id.
func deriveFromData(data map[string]any) (string, error) {
	var exam *string
	if raw, ok := data["exam_name"]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("unexpected exam_name type %T", raw)
		}
		exam = &s
	}
	identity := document.Identity{
		InstituteID: dataInt64(data, "institute_id"),
		DocType:     dataString(data, "doc_type"),
		StudentRoll: dataString(data, "student_roll"),
		StudentName: dataString(data, "student_name"),
		Name:        dataString(data, "name"),
		ExamName:    exam,
		IssueDate:   dataString(data, "issue_date"),
	}
	return document.DeriveCertID(identity)
}

func dataString(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// dataInt64 tolerates the float64 that JSON decoding produces for numbers.
func dataInt64(data map[string]any, key string) int64 {
	switch v := data[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
