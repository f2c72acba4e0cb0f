package http

import (
	"io"
	"net/http"
	"strings"

	"veridoc/internal/verification"
)

type verifyRequest struct {
	DocID  string `json:"doc_id,omitempty"`
	CertID string `json:"cert_id,omitempty"`
}

// verify handles all three verification modes. A multipart body verifies the
// uploaded file; a JSON body verifies by doc_id or cert_id. Invalid documents
// are 200 responses with status invalid, never transport errors.
func (h *Handlers) verify(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.verifyUpload(w, r)
		return
	}

	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusOK, invalidRequestResult("request body is not valid JSON"))
		return
	}

	var result *verification.Result
	switch {
	case req.DocID != "":
		result = h.verifier.VerifyByDocID(r.Context(), req.DocID)
	case req.CertID != "":
		result = h.verifier.VerifyByCertID(r.Context(), req.CertID)
	default:
		result = invalidRequestResult("provide doc_id, cert_id, or a file upload")
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) verifyUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondJSON(w, http.StatusOK, invalidRequestResult("could not parse multipart form"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusOK, invalidRequestResult("file field is required"))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondJSON(w, http.StatusOK, invalidRequestResult("could not read uploaded file"))
		return
	}
	respondJSON(w, http.StatusOK, h.verifier.VerifyUpload(r.Context(), data))
}

func invalidRequestResult(message string) *verification.Result {
	return &verification.Result{
		Status: verification.StatusInvalid,
		Error: &verification.ResultError{
			Code:    verification.CodeInvalidRequest,
			Message: message,
		},
	}
}
