package comp

import (
	"context"
	"fmt"

	"github.com/vk/lumengo/internal/serial"
	"github.com/zclconf/go-cty/cty"
)

// Component is the base capability implemented by every creatable,
// locatable, serializable object. Implementations embed Base, which
// supplies the bookkeeping half of the interface; they override Construct,
// Save, Load and UpdateWeakRefs as needed.
type Component interface {
	// Key returns the type key the instance was created from.
	Key() string

	// Loc returns the instance's locator in the ownership tree.
	Loc() string

	// Parent returns the owning component, or nil for the root.
	Parent() Component

	// Construct applies a configuration to a freshly allocated instance.
	// A non-nil error aborts creation; the instance is discarded and never
	// linked into the tree.
	Construct(ctx context.Context, prop cty.Value) error

	// Underlying returns the owned child registered under name, or nil.
	Underlying(name string) Component

	// UnderlyingAt returns the i-th owned child in insertion order, or nil.
	UnderlyingAt(i int) Component

	// NumUnderlying returns the number of owned children.
	NumUnderlying() int

	// ForeachUnderlying visits every owned child in insertion order.
	ForeachUnderlying(visit func(c Component))

	// Save writes the component's own persisted state. Owned children are
	// handled by the serialization engine, not here.
	Save(w *serial.Writer) error

	// Load reads back the state written by Save, field for field.
	Load(r *serial.Reader) error

	// UpdateWeakRefs re-resolves any cached cross-branch references by
	// locator. Invoked once per deserialization by the repair pass.
	UpdateWeakRefs(resolve Resolver) error

	// Bookkeeping used by the registry and the serialization engine.
	bind(key, loc string, parent Component)
	addChild(name string, c Component) error
	childName(i int) string
	unlink(c Component)
	clearChildren()
}

// Resolver resolves a locator to a live component during weak-reference
// repair.
type Resolver func(loc string) (Component, error)

// Releaser is implemented by components that hold resources needing
// explicit teardown when their subtree is destroyed.
type Releaser interface {
	Release()
}

// child is one slot in a component's ordered owned-children collection.
// name is empty for positionally addressed children.
type child struct {
	name string
	c    Component
}

// Base carries the component bookkeeping: type key, locator, owner, the
// ordered owned-children collection and the named-lookup table. It also
// provides no-op defaults for the construction, serialization and repair
// hooks so minimal components only implement what they use.
type Base struct {
	key      string
	loc      string
	parent   Component
	children []child
	named    map[string]int
}

// Key returns the type key the instance was created from.
func (b *Base) Key() string { return b.key }

// Loc returns the instance's locator.
func (b *Base) Loc() string { return b.loc }

// Parent returns the owning component, or nil for the root.
func (b *Base) Parent() Component { return b.parent }

// Construct is a no-op by default.
func (b *Base) Construct(ctx context.Context, prop cty.Value) error { return nil }

// Underlying returns the owned child registered under name, or nil.
func (b *Base) Underlying(name string) Component {
	if i, ok := b.named[name]; ok {
		return b.children[i].c
	}
	return nil
}

// UnderlyingAt returns the i-th owned child in insertion order, or nil.
func (b *Base) UnderlyingAt(i int) Component {
	if i < 0 || i >= len(b.children) {
		return nil
	}
	return b.children[i].c
}

// NumUnderlying returns the number of owned children.
func (b *Base) NumUnderlying() int { return len(b.children) }

// ForeachUnderlying visits every owned child in insertion order.
func (b *Base) ForeachUnderlying(visit func(c Component)) {
	for _, ch := range b.children {
		visit(ch.c)
	}
}

// Save writes no state by default.
func (b *Base) Save(w *serial.Writer) error { return nil }

// Load reads no state by default.
func (b *Base) Load(r *serial.Reader) error { return nil }

// UpdateWeakRefs does nothing by default.
func (b *Base) UpdateWeakRefs(resolve Resolver) error { return nil }

func (b *Base) bind(key, loc string, parent Component) {
	b.key = key
	b.loc = loc
	b.parent = parent
}

func (b *Base) addChild(name string, c Component) error {
	if name != "" {
		if _, ok := b.named[name]; ok {
			return fmt.Errorf("%w: %q under %q", ErrDuplicateName, name, b.loc)
		}
		if b.named == nil {
			b.named = make(map[string]int)
		}
		b.named[name] = len(b.children)
	}
	b.children = append(b.children, child{name: name, c: c})
	return nil
}

func (b *Base) childName(i int) string {
	if i < 0 || i >= len(b.children) {
		return ""
	}
	return b.children[i].name
}

// unlink removes a child by identity and reindexes the named table.
func (b *Base) unlink(c Component) {
	for i, ch := range b.children {
		if ch.c == c {
			b.children = append(b.children[:i], b.children[i+1:]...)
			if ch.name != "" {
				delete(b.named, ch.name)
			}
			for n, j := range b.named {
				if j > i {
					b.named[n] = j - 1
				}
			}
			return
		}
	}
}

func (b *Base) clearChildren() {
	b.children = nil
	b.named = nil
}

// Destroy tears down the subtree rooted at c depth-first, children in
// reverse insertion order, then unlinks c from its owner. Afterwards no
// descendant's locator resolves.
func Destroy(c Component) {
	destroyChildren(c)
	if p := c.Parent(); p != nil {
		p.unlink(c)
	}
	if rel, ok := c.(Releaser); ok {
		rel.Release()
	}
}

func destroyChildren(c Component) {
	for i := c.NumUnderlying() - 1; i >= 0; i-- {
		ch := c.UnderlyingAt(i)
		destroyChildren(ch)
		if rel, ok := ch.(Releaser); ok {
			rel.Release()
		}
	}
	c.clearChildren()
}
