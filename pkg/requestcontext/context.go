// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets values; components and handlers read them:
//
//	caller, ok := requestcontext.Caller(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"

	"ans/pkg/domain"
)

type (
	callerKey      struct{}
	tokenIDKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	clientIPKey    struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyCaller      = callerKey{}
	ContextKeyTokenID     = tokenIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyClientIP    = clientIPKey{}
)

// -----------------------------------------------------------------------------
// Caller identity
// -----------------------------------------------------------------------------

// Caller returns the authenticated calling address. ok is false when the
// request carried no identity.
func Caller(ctx context.Context) (domain.Address, bool) {
	caller, ok := ctx.Value(ContextKeyCaller).(domain.Address)
	return caller, ok
}

// WithCaller injects the calling address.
func WithCaller(ctx context.Context, caller domain.Address) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// TokenID returns the jti of the token that authenticated the caller.
func TokenID(ctx context.Context) string {
	if jti, ok := ctx.Value(ContextKeyTokenID).(string); ok {
		return jti
	}
	return ""
}

// WithTokenID injects the token identifier.
func WithTokenID(ctx context.Context, jti string) context.Context {
	return context.WithValue(ctx, ContextKeyTokenID, jti)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP injects the client IP address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextKeyClientIP, ip)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() outside HTTP requests (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
