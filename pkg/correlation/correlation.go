// Package correlation threads a per-call correlation ID through context.Context
// so every log line and metric emitted while handling one keymaster call can
// be tied back together, whether that call came from cmd/keymasterctl or an
// in-process caller of pkg/keymaster directly.
package correlation

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// CorrelationIDKey is the context key correlation IDs are stored under.
const CorrelationIDKey contextKey = "correlation-id"

// WithCorrelationID returns a context carrying id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// FromContext retrieves the correlation ID stored in ctx, or "" if none.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// New generates a fresh correlation ID.
func New() string {
	return uuid.New().String()
}

// FromContextOrNew retrieves ctx's correlation ID, generating and attaching
// one if it doesn't already carry one.
func FromContextOrNew(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithCorrelationID(ctx, id), id
}
