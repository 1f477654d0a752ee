// Package httpserver builds the HTTP server with project defaults.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server. WriteTimeout stays zero so SSE streams are not
// cut off; handlers bound their own work through request contexts.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
}
