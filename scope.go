package verdict

import (
	"context"

	"github.com/xraph/forge"
)

type accountScope struct {
	accountID string
}

// scopeFromContext extracts the account scope from forge.Scope or a
// standalone context. Falls back to the explicit account set via
// WithAccount when no Forge scope is present.
func scopeFromContext(ctx context.Context) accountScope {
	if s, ok := forge.ScopeFrom(ctx); ok {
		return accountScope{accountID: s.OrgID()}
	}
	if v, ok := ctx.Value(accountContextKey).(string); ok {
		return accountScope{accountID: v}
	}
	return accountScope{}
}
