package http

import (
	"io"
	"net/http"
	"strconv"

	"veridoc/internal/fraud"
	dErrors "veridoc/pkg/domain-errors"
)

// fraudDetect runs the analysis pipeline on an uploaded file plus its declared
// fields.
func (h *Handlers) fraudDetect(w http.ResponseWriter, r *http.Request) {
	data, filename, fields, err := h.parseFraudUpload(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	assessment := h.fraud.Analyze(r.Context(), data, filename, fields)
	respondJSON(w, http.StatusOK, assessment)
}

// fraudValidate cross-checks an upload against a registered legacy document:
// the declared fields come from the stored record, and the response carries
// both the record and the risk assessment.
func (h *Handlers) fraudValidate(w http.ResponseWriter, r *http.Request) {
	data, filename, fields, err := h.parseFraudUpload(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	uin := r.FormValue("uin")
	if uin == "" {
		respondError(w, h.log, dErrors.New(dErrors.CodeBadRequest, "uin is required"))
		return
	}

	rec, err := h.legacy.SearchByUIN(r.Context(), uin)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	fields.Institution = rec.Institution
	fields.StudentName = rec.StudentName
	assessment := h.fraud.Analyze(r.Context(), data, filename, fields)
	respondJSON(w, http.StatusOK, map[string]any{
		"record":     rec,
		"assessment": assessment,
	})
}

func (h *Handlers) fraudLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	entries, err := h.fraud.Logs(r.Context(), limit)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

func (h *Handlers) parseFraudUpload(r *http.Request) ([]byte, string, fraud.ContentFields, error) {
	var fields fraud.ContentFields
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", fields, dErrors.New(dErrors.CodeBadRequest, "could not parse multipart form")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fields, dErrors.New(dErrors.CodeBadRequest, "file field is required")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, "", fields, dErrors.New(dErrors.CodeBadRequest, "could not read uploaded file")
	}
	fields = fraud.ContentFields{
		Institution: r.FormValue("institution"),
		StudentName: r.FormValue("student_name"),
		Grade:       r.FormValue("grade"),
		Date:        r.FormValue("date"),
	}
	return data, header.Filename, fields, nil
}
