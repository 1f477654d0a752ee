// Package requesttime pins one "now" per request so every timestamp taken
// while serving it agrees.
package requesttime

import (
	"net/http"
	"time"

	"ans/pkg/requestcontext"
)

// Middleware stamps requests with the wall clock.
var Middleware = WithClock(time.Now)

// WithClock stamps each request with clock(), in UTC.
func WithClock(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
