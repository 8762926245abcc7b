package verdict

import "context"

// PrincipalResolver loads a full principal (role, agency, group and talent
// representation) from an identity. Implementations typically back onto the
// wiki's account service.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, accountID, principalID string) (*Principal, error)
}

// ResourceResolver loads a resource descriptor (ownership attributes) for a
// resource reference. Implementations typically back onto the wiki's entity
// stores.
type ResourceResolver interface {
	ResolveResource(ctx context.Context, accountID string, resourceType ResourceType, resourceID string) (*ResourceDescriptor, error)
}

// PrincipalResolverFunc adapts a function to the PrincipalResolver interface.
type PrincipalResolverFunc func(ctx context.Context, accountID, principalID string) (*Principal, error)

func (f PrincipalResolverFunc) ResolvePrincipal(ctx context.Context, accountID, principalID string) (*Principal, error) {
	return f(ctx, accountID, principalID)
}

// ResourceResolverFunc adapts a function to the ResourceResolver interface.
type ResourceResolverFunc func(ctx context.Context, accountID string, resourceType ResourceType, resourceID string) (*ResourceDescriptor, error)

func (f ResourceResolverFunc) ResolveResource(ctx context.Context, accountID string, resourceType ResourceType, resourceID string) (*ResourceDescriptor, error) {
	return f(ctx, accountID, resourceType, resourceID)
}
