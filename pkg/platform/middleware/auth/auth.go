// Package auth authenticates callers from bearer tokens and stores their
// address in the request context.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
	"ans/pkg/platform/httputil"
	"ans/pkg/requestcontext"
)

// JWTValidator validates a bearer token.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims is what the middleware needs from a validated token.
type JWTClaims struct {
	Caller domain.Address
	JTI    string
}

// RequireCaller rejects requests without a valid bearer token with 401 and
// otherwise puts the caller address and token ID into the context.
func RequireCaller(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthenticated request - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthenticated request - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "invalid or expired token"))
				return
			}

			ctx = requestcontext.WithCaller(ctx, claims.Caller)
			ctx = requestcontext.WithTokenID(ctx, claims.JTI)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
