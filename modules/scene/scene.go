// Package scene provides the scene tree components: the scene node itself,
// the positional primitives group and the primitive, which associates mesh
// and material assets by locator reference.
package scene

import (
	"context"

	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/render"
	"github.com/vk/lumengo/internal/serial"
	"github.com/vk/lumengo/internal/vals"
	"github.com/zclconf/go-cty/cty"
)

// Scene owns the primitives group and, once built, the acceleration
// structure. Both are named children so their locators stay stable.
type Scene struct {
	comp.Base
}

// Group holds primitives as positional children, addressed by index
// (e.g. `$.scene.primitives.3`).
type Group struct {
	comp.Base
}

// Primitive is a scene object associating mesh and material assets. The
// assets commonly outlive and are shared across many primitives, so the
// primitive never owns them: it persists their locators and caches the
// resolved pointers, which the repair pass re-captures after any restore.
type Primitive struct {
	comp.Base
	transform render.Mat4
	mesh      comp.Ref[render.Mesh]
	material  comp.Ref[render.Material]
}

// Construct reads the mesh/material asset references and an optional
// 16-element transform, then resolves both references.
func (p *Primitive) Construct(ctx context.Context, prop cty.Value) error {
	meshName, err := vals.String(prop, "mesh")
	if err != nil {
		return err
	}
	matName, err := vals.String(prop, "material")
	if err != nil {
		return err
	}
	p.transform = render.Identity()
	if vals.Has(prop, "transform") {
		fs, err := vals.Floats(prop, "transform")
		if err != nil {
			return err
		}
		if len(fs) != 16 {
			return vals.ErrInvalidArgument
		}
		copy(p.transform[:], fs)
	}
	p.mesh = comp.NewRef[render.Mesh](comp.AssetLoc(meshName))
	p.material = comp.NewRef[render.Material](comp.AssetLoc(matName))
	return p.UpdateWeakRefs(comp.RegistryFrom(ctx).Resolver())
}

// UpdateWeakRefs re-resolves the cached mesh and material pointers.
func (p *Primitive) UpdateWeakRefs(resolve comp.Resolver) error {
	if err := p.mesh.Resolve(resolve); err != nil {
		return err
	}
	return p.material.Resolve(resolve)
}

// Save persists the transform and the referenced locators.
func (p *Primitive) Save(w *serial.Writer) error {
	w.Float64s(p.transform[:])
	p.mesh.Save(w)
	p.material.Save(w)
	return w.Err()
}

// Load restores the transform and locators; the pointer caches stay empty
// until the repair pass runs.
func (p *Primitive) Load(r *serial.Reader) error {
	copy(p.transform[:], r.Float64s())
	p.mesh.Load(r)
	p.material.Load(r)
	return r.Err()
}

// Transform returns the primitive's object-to-world transform.
func (p *Primitive) Transform() render.Mat4 { return p.transform }

// Mesh returns the cached mesh pointer.
func (p *Primitive) Mesh() render.Mesh { return p.mesh.Target() }

// Material returns the cached material pointer.
func (p *Primitive) Material() render.Material { return p.material.Target() }

// Module implements comp.Module for this package.
type Module struct{}

// Register registers the scene tree factories.
func (m *Module) Register(r *comp.Registry) error {
	if err := r.Register("scene::default", func() comp.Component { return &Scene{} }); err != nil {
		return err
	}
	if err := r.Register("scene::group", func() comp.Component { return &Group{} }); err != nil {
		return err
	}
	return r.Register("scene::primitive", func() comp.Component { return &Primitive{} })
}
