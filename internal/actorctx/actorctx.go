package actorctx

import (
	"context"

	"github.com/geocoder89/userdesk/internal/auth"
)

type ctxKey struct{}

// WithClaims attaches the verified caller of one request to its context.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

// ClaimsFrom returns the caller attached by WithClaims, or nil for an
// anonymous request.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ctxKey{}).(*auth.Claims)
	return claims
}
