package comp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/lumengo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Factory allocates a default, unconstructed instance of one concrete
// component implementation.
type Factory func() Component

// Module is implemented by packages contributing component factories. The
// application registers every linked module against a registry before any
// create call; plugin modules go through the same entry point.
type Module interface {
	Register(r *Registry) error
}

// Registry maps type keys to factories and owns the entry points for
// creating and resolving components in a single ownership tree.
//
// A Registry is an explicit value with a documented lifecycle: register all
// factories, bind a root, build the tree, and only tear the registry down
// after every component referencing it is destroyed. It is not safe for
// concurrent mutation; registration and tree construction are
// single-threaded phases.
type Registry struct {
	factories map[string]Factory
	root      Component
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under a type key of the form
// `<capability>::<implementation>`. Re-registration of an existing key
// fails with ErrDuplicateKey.
func (r *Registry) Register(key string, f Factory) error {
	if !strings.Contains(key, "::") {
		return fmt.Errorf("%w: malformed type key %q", ErrInvalidArgument, key)
	}
	if _, ok := r.factories[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	r.factories[key] = f
	return nil
}

// BindRoot installs c as the root of the ownership tree under the root
// locator. Resolution and creation fail with ErrUninitialized until a root
// is bound.
func (r *Registry) BindRoot(key string, c Component) {
	c.bind(key, RootLoc, nil)
	r.root = c
}

// ReleaseRoot detaches the root, returning the registry to its
// uninitialized state. The caller is responsible for having destroyed the
// tree first.
func (r *Registry) ReleaseRoot() {
	r.root = nil
}

// Root returns the bound root component, or nil.
func (r *Registry) Root() Component {
	return r.root
}

// ForeachRegistered enumerates all registered type keys in sorted order.
// The enumeration is duplicate-free; it exists so binding layers can
// discover every creatable capability without knowing concrete types.
func (r *Registry) ForeachRegistered(fn func(key string)) {
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn(k)
	}
}

// Create instantiates the implementation registered under key at the given
// locator, links it under the owner implied by the locator's parent path,
// and applies the configuration through the component's Construct step.
//
// A construct failure discards the instance and unlinks it; no
// half-constructed node is left in the tree. Already-linked siblings are
// unaffected.
func (r *Registry) Create(ctx context.Context, key, loc string, prop cty.Value) (Component, error) {
	c, parent, err := r.allocate(key, loc)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Constructing component.", "key", key, "loc", loc)
	if err := c.Construct(WithRegistry(ctx, r), prop); err != nil {
		parent.unlink(c)
		return nil, fmt.Errorf("construct %q at %q: %w", key, loc, err)
	}
	return c, nil
}

// CreateWithoutConstruct allocates and links an instance but skips the
// configuration step. The deserialization path uses this and supplies
// state through the component's binary Load instead.
func (r *Registry) CreateWithoutConstruct(key, loc string) (Component, error) {
	c, _, err := r.allocate(key, loc)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// allocate looks up the factory, builds a default instance and links it
// under the parent implied by the locator.
func (r *Registry) allocate(key, loc string) (Component, Component, error) {
	if r.root == nil {
		return nil, nil, ErrUninitialized
	}
	f, ok := r.factories[key]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownType, key)
	}
	parentLoc, name, err := SplitLast(loc)
	if err != nil {
		return nil, nil, err
	}
	parent, err := r.Get(parentLoc)
	if err != nil {
		return nil, nil, fmt.Errorf("owner of %q: %w", loc, err)
	}
	if idx, positional := indexSegment(name); positional {
		// Positional children are append-only: the index must equal the
		// current child count so locators never skip or collide.
		if idx != parent.NumUnderlying() {
			return nil, nil, fmt.Errorf("%w: positional locator %q expects index %d",
				ErrInvalidArgument, loc, parent.NumUnderlying())
		}
		name = ""
	}
	c := f()
	c.bind(key, loc, parent)
	if err := parent.addChild(name, c); err != nil {
		return nil, nil, err
	}
	return c, parent, nil
}

// Get resolves a locator to the live component holding it. A miss at any
// segment fails with ErrLocatorNotFound; Get never returns a nil component
// alongside a nil error.
func (r *Registry) Get(loc string) (Component, error) {
	if r.root == nil {
		return nil, ErrUninitialized
	}
	segs, err := SplitLoc(loc)
	if err != nil {
		return nil, err
	}
	cur := r.root
	for _, seg := range segs[1:] {
		next := cur.Underlying(seg)
		if next == nil {
			if idx, ok := indexSegment(seg); ok {
				next = cur.UnderlyingAt(idx)
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %q (segment %q)", ErrLocatorNotFound, loc, seg)
		}
		cur = next
	}
	return cur, nil
}

// GetAs resolves a locator and asserts the component to a concrete or
// interface type.
func GetAs[T Component](r *Registry, loc string) (T, error) {
	var zero T
	c, err := r.Get(loc)
	if err != nil {
		return zero, err
	}
	t, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("%w: component at %q has type %q", ErrInvalidArgument, loc, c.Key())
	}
	return t, nil
}
