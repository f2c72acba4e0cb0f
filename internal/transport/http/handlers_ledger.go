package http

import (
	"net/http"

	dErrors "veridoc/pkg/domain-errors"
)

func (h *Handlers) ledgerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.Stats(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// ledgerReset wipes the ledger. Destructive, so it stays behind an explicit
// deployment opt-in.
func (h *Handlers) ledgerReset(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.AllowLedgerReset {
		respondError(w, h.log, dErrors.New(dErrors.CodeForbidden, "ledger reset is disabled on this deployment"))
		return
	}
	if err := h.ledger.Reset(r.Context()); err != nil {
		respondError(w, h.log, err)
		return
	}
	h.log.Warn("ledger reset")
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
