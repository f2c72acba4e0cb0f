package http

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"veridoc/internal/artifact"
	"veridoc/internal/issuance"
	"veridoc/internal/platform/middleware"
	dErrors "veridoc/pkg/domain-errors"
)

// maxUploadBytes bounds multipart uploads.
const maxUploadBytes = 16 << 20

// issueDocument accepts either a JSON body or a multipart form with an
// optional "file" PDF. When a PDF is supplied the proof blob is embedded and
// the stamped copy stored for download.
func (h *Handlers) issueDocument(w http.ResponseWriter, r *http.Request) {
	instituteID := middleware.GetInstituteID(r.Context())

	req, pdf, err := h.parseIssueRequest(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	receipt, err := h.issuance.Issue(r.Context(), instituteID, req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	if len(pdf) > 0 {
		stamped, err := artifact.Embed(pdf, receipt.Proof)
		if err != nil {
			respondError(w, h.log, err)
			return
		}
		if err := h.writeArtifact(receipt.Document.ID, stamped); err != nil {
			h.log.Error("failed to store stamped document",
				"doc_id", receipt.Document.ID,
				"error", err.Error())
			respondError(w, h.log, dErrors.New(dErrors.CodeInternal, "failed to store the stamped document"))
			return
		}
	}

	respondJSON(w, http.StatusCreated, receipt)
}

func (h *Handlers) parseIssueRequest(r *http.Request) (issuance.Request, []byte, error) {
	var req issuance.Request
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := decodeJSON(r, &req); err != nil {
			return req, nil, err
		}
		return req, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return req, nil, dErrors.New(dErrors.CodeBadRequest, "could not parse multipart form")
	}
	req.DocType = r.FormValue("doc_type")
	req.Name = r.FormValue("name")
	req.StudentRoll = r.FormValue("student_roll")
	req.StudentName = r.FormValue("student_name")
	req.IssueDate = r.FormValue("issue_date")
	req.UIN = r.FormValue("uin")
	if exam := r.FormValue("exam_name"); exam != "" {
		req.ExamName = &exam
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return req, nil, nil // file is optional
	}
	defer func() { _ = file.Close() }()
	pdf, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return req, nil, dErrors.New(dErrors.CodeBadRequest, "could not read uploaded file")
	}
	return req, pdf, nil
}

func (h *Handlers) writeArtifact(docID int64, data []byte) error {
	if err := os.MkdirAll(h.cfg.OutputDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(h.artifactPath(docID), data, 0o644)
}

func (h *Handlers) artifactPath(docID int64) string {
	return filepath.Join(h.cfg.OutputDir, fmt.Sprintf("doc_%d.pdf", docID))
}

func (h *Handlers) listDocuments(w http.ResponseWriter, r *http.Request) {
	instituteID := middleware.GetInstituteID(r.Context())
	docs, err := h.issuance.List(r.Context(), instituteID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *Handlers) downloadDocument(w http.ResponseWriter, r *http.Request) {
	instituteID := middleware.GetInstituteID(r.Context())
	docID, err := pathID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	rec, err := h.issuance.Get(r.Context(), instituteID, docID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	path := h.artifactPath(rec.ID)
	if _, err := os.Stat(path); err != nil {
		respondError(w, h.log, dErrors.New(dErrors.CodeNotFound, "no stored file for this document"))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func (h *Handlers) deleteDocument(w http.ResponseWriter, r *http.Request) {
	instituteID := middleware.GetInstituteID(r.Context())
	docID, err := pathID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.issuance.Delete(r.Context(), instituteID, docID); err != nil {
		respondError(w, h.log, err)
		return
	}
	// Best effort: the stamped file is derivable and not authoritative.
	_ = os.Remove(h.artifactPath(docID))
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "id must be a number")
	}
	return id, nil
}
