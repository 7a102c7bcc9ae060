// Package assets provides the asset group component owning all named
// assets under the root's assets subtree.
package assets

import "github.com/vk/lumengo/internal/comp"

// Group is a pure container: its state is its named children, which the
// serialization engine persists on its behalf.
type Group struct {
	comp.Base
}

// Module implements comp.Module for this package.
type Module struct{}

// Register registers the asset group factory.
func (m *Module) Register(r *comp.Registry) error {
	return r.Register("assets::default", func() comp.Component { return &Group{} })
}
