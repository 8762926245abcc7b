// Package middleware provides HTTP authorization middleware for Verdict.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/stagewiki/verdict"
)

// Require enforces authorization for a single action on a resource type.
// The principal comes from the request context: a principal attached via
// verdict.WithPrincipal is checked directly, otherwise the authenticated
// user ID is resolved through the engine's identity resolvers. Requests
// with neither are denied.
func Require(eng *verdict.Engine, action verdict.Action, resourceType verdict.ResourceType) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			resourceID := ctx.Param("id")

			if p := verdict.PrincipalFromContext(ctx.Context()); p != nil {
				err := eng.Enforce(ctx.Context(), &verdict.CheckRequest{
					Principal: *p,
					Action:    action,
					Resource:  verdict.ResourceDescriptor{Type: resourceType, ID: resourceID},
				})
				if err != nil {
					return denyResponse(ctx)
				}
				return next(ctx)
			}

			userID := forge.UserIDFromContext(ctx.Context())
			if userID == "" {
				return denyResponse(ctx)
			}
			result, err := eng.CheckIdentity(ctx.Context(), accountIDFrom(ctx), userID, action, resourceType, resourceID)
			if err != nil || !result.Allowed {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if ANY of the checks pass.
func RequireAny(eng *verdict.Engine, checks ...verdict.CheckRequest) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			p := verdict.PrincipalFromContext(ctx.Context())
			if p == nil {
				return denyResponse(ctx)
			}
			for i := range checks {
				c := checks[i]
				c.Principal = *p
				result, err := eng.Check(ctx.Context(), &c)
				if err == nil && result.Allowed {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if ALL checks pass.
func RequireAll(eng *verdict.Engine, checks ...verdict.CheckRequest) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			p := verdict.PrincipalFromContext(ctx.Context())
			if p == nil {
				return denyResponse(ctx)
			}
			for i := range checks {
				c := checks[i]
				c.Principal = *p
				if err := eng.Enforce(ctx.Context(), &c); err != nil {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

// accountIDFrom extracts the tenant account from the Forge scope.
func accountIDFrom(ctx forge.Context) string {
	if s, ok := forge.ScopeFrom(ctx.Context()); ok {
		return s.OrgID()
	}
	return ""
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
