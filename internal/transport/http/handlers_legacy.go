package http

import (
	"net/http"

	"veridoc/internal/legacy"
	dErrors "veridoc/pkg/domain-errors"
)

func (h *Handlers) legacySubmit(w http.ResponseWriter, r *http.Request) {
	var req legacy.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	rec, err := h.legacy.Submit(r.Context(), req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func (h *Handlers) legacyList(w http.ResponseWriter, r *http.Request) {
	recs, err := h.legacy.List(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"documents": recs})
}

func (h *Handlers) legacySearch(w http.ResponseWriter, r *http.Request) {
	uin := r.URL.Query().Get("uin")
	if uin == "" {
		respondError(w, h.log, dErrors.New(dErrors.CodeBadRequest, "uin query parameter is required"))
		return
	}
	rec, err := h.legacy.SearchByUIN(r.Context(), uin)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

type legacyStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) legacyUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	var req legacyStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	rec, err := h.legacy.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *Handlers) legacyDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.legacy.Delete(r.Context(), id); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
