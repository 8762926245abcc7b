package verdict

import "context"

type contextKey string

const (
	accountContextKey   contextKey = "verdict:account"
	principalContextKey contextKey = "verdict:principal"
)

// WithAccount returns a context carrying the given account scope. Store
// operations and checks performed with this context are confined to that
// account.
func WithAccount(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountContextKey, accountID)
}

// WithPrincipal returns a context carrying a resolved principal, typically
// set by middleware after authentication.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext returns the principal attached via WithPrincipal,
// or nil if none is present.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalContextKey).(*Principal); ok {
		return p
	}
	return nil
}
