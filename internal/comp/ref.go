package comp

import (
	"fmt"

	"github.com/vk/lumengo/internal/serial"
)

// Ref is a cross-branch reference to a component in another part of the
// ownership tree. Only the locator string is persisted; the resolved
// pointer is a cache that must be re-captured through the repair pass after
// any deserialization, because the referenced node is reconstructed at a
// fresh address.
type Ref[T Component] struct {
	loc    string
	target T
}

// NewRef builds an unresolved reference to loc.
func NewRef[T Component](loc string) Ref[T] {
	return Ref[T]{loc: loc}
}

// Loc returns the referenced locator.
func (r *Ref[T]) Loc() string { return r.loc }

// Target returns the cached resolved component. Zero until Resolve has run.
func (r *Ref[T]) Target() T { return r.target }

// Resolve re-captures the cached pointer by locator. A resolution miss or a
// type mismatch is returned to the caller; the cache is left untouched on
// failure.
func (r *Ref[T]) Resolve(resolve Resolver) error {
	c, err := resolve(r.loc)
	if err != nil {
		return err
	}
	t, ok := c.(T)
	if !ok {
		return fmt.Errorf("%w: component at %q has unexpected type %q", ErrInvalidArgument, r.loc, c.Key())
	}
	r.target = t
	return nil
}

// Save persists the locator string.
func (r *Ref[T]) Save(w *serial.Writer) {
	w.String(r.loc)
}

// Load restores the locator string, leaving the pointer cache empty until
// the repair pass runs.
func (r *Ref[T]) Load(rd *serial.Reader) {
	r.loc = rd.String()
	var zero T
	r.target = zero
}
