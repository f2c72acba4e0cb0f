package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Write timeouts stay generous because artifact
// downloads and multipart verification uploads can run to several megabytes.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
