// Package http wires the chi router and the JSON handlers for every public
// endpoint.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "veridoc/pkg/domain-errors"
)

// errorBody is the shared error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps a domain error onto the envelope. Unknown errors become an
// opaque 500 so internals never leak.
func respondError(w http.ResponseWriter, log *slog.Logger, err error) {
	code := dErrors.CodeOf(err)
	var body errorBody
	body.Error.Code = string(code)

	var de dErrors.Error
	if errors.As(err, &de) {
		body.Error.Message = de.Message
	} else {
		log.Error("unexpected handler error", slog.String("error", err.Error()))
		body.Error.Message = "internal error"
	}
	respondJSON(w, dErrors.ToHTTPStatus(code), body)
}

func badRequest(w http.ResponseWriter, log *slog.Logger, message string) {
	respondError(w, log, dErrors.New(dErrors.CodeBadRequest, message))
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON")
	}
	return nil
}
