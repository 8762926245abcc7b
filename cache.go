package verdict

import "context"

// Cache provides caching for authorization check results.
type Cache interface {
	// Get returns a cached check result, if available.
	Get(ctx context.Context, accountID string, req *CheckRequest) (*CheckResult, bool)

	// Set stores a check result in the cache.
	Set(ctx context.Context, accountID string, req *CheckRequest, result *CheckResult)

	// InvalidateAccount removes all cached results for an account.
	InvalidateAccount(ctx context.Context, accountID string)

	// InvalidatePrincipal removes all cached results for a specific principal.
	InvalidatePrincipal(ctx context.Context, accountID string, principalID string)
}
