package comp

import "context"

// registryKey is an unexported context key type for the registry.
type registryKey struct{}

// WithRegistry returns a context carrying the registry. Create installs
// this before invoking Construct, so components can resolve cross-branch
// references and create owned children without a package-level global.
func WithRegistry(ctx context.Context, r *Registry) context.Context {
	return context.WithValue(ctx, registryKey{}, r)
}

// RegistryFrom extracts the registry from a construction context. It
// returns nil outside a construction call that carried one.
func RegistryFrom(ctx context.Context) *Registry {
	if r, ok := ctx.Value(registryKey{}).(*Registry); ok {
		return r
	}
	return nil
}

// Resolver returns the resolution function backed by this registry, in the
// shape the weak-reference repair pass consumes.
func (r *Registry) Resolver() Resolver {
	return r.Get
}
