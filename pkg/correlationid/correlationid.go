package correlationid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to propagate the correlation ID.
const Header = "X-Correlation-Id"

type ctxKey struct{}

// New generates a new correlation ID.
func New() string {
	return uuid.NewString()
}

// NewContext returns a new context carrying the given correlation ID.
func NewContext(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, correlationID)
}

// FromContext extracts the correlation ID from the context.
func FromContext(ctx context.Context) (string, bool) {
	correlationID, ok := ctx.Value(ctxKey{}).(string)
	return correlationID, ok
}
