// Package requestid provides request ID propagation via context.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header carrying the request ID.
const Header = "X-Request-ID"

type ctxKey struct{}

// WithRequestID returns a context with the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID from context, or "" when absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Ensure reuses an incoming request ID when one is supplied and generates a
// new one otherwise.
func Ensure(ctx context.Context, incoming string) (context.Context, string) {
	id := incoming
	if id == "" || len(id) > 128 {
		id = uuid.New().String()
	}
	return WithRequestID(ctx, id), id
}
