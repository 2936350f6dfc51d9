package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/retail-pos/internal/model"
)

// Principal identifies the authenticated caller of a request.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   model.Role
}

type principalCtxKey struct{}

// NewContext returns a context carrying the given principal.
func NewContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext extracts the principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok
}
