package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veridoc/internal/fraud"
	"veridoc/internal/institute"
	"veridoc/internal/issuance"
	"veridoc/internal/ledger"
	"veridoc/internal/legacy"
	"veridoc/internal/platform/config"
	"veridoc/internal/platform/middleware"
	"veridoc/internal/verification"
)

// Handlers bundles every service the routes need.
type Handlers struct {
	cfg        config.Server
	log        *slog.Logger
	institutes *institute.Service
	issuance   *issuance.Service
	verifier   *verification.Engine
	fraud      *fraud.Service
	legacy     *legacy.Service
	ledger     ledger.Store
}

func NewHandlers(
	cfg config.Server,
	log *slog.Logger,
	institutes *institute.Service,
	issuanceSvc *issuance.Service,
	verifier *verification.Engine,
	fraudSvc *fraud.Service,
	legacySvc *legacy.Service,
	led ledger.Store,
) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{
		cfg:        cfg,
		log:        log,
		institutes: institutes,
		issuance:   issuanceSvc,
		verifier:   verifier,
		fraud:      fraudSvc,
		legacy:     legacySvc,
		ledger:     led,
	}
}

// Router assembles the full route tree.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(h.log))
	r.Use(middleware.Logger(h.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Post("/verify", h.verify)

		r.Get("/ledger/stats", h.ledgerStats)
		r.Post("/ledger/reset", h.ledgerReset)

		r.Post("/fraud/detect", h.fraudDetect)
		r.Get("/fraud/logs", h.fraudLogs)
		r.Post("/fraud/validate", h.fraudValidate)

		r.Post("/legacy", h.legacySubmit)
		r.Get("/legacy", h.legacyList)
		r.Get("/legacy/search", h.legacySearch)

		// Institute-only routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.institutes, h.log))
			r.Post("/documents", h.issueDocument)
			r.Get("/documents", h.listDocuments)
			r.Get("/documents/{id}/download", h.downloadDocument)
			r.Delete("/documents/{id}", h.deleteDocument)

			r.Patch("/legacy/{id}/status", h.legacyUpdateStatus)
			r.Delete("/legacy/{id}", h.legacyDelete)
		})
	})

	return r
}
