// Package material provides flat reference materials. Estimator quality is
// a non-goal; these exist to give primitives something to reference and the
// serializer something to persist.
package material

import (
	"context"

	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/render"
	"github.com/vk/lumengo/internal/serial"
	"github.com/vk/lumengo/internal/vals"
	"github.com/zclconf/go-cty/cty"
)

// Diffuse reflects a constant albedo.
type Diffuse struct {
	comp.Base
	albedo render.Vec3
}

var _ render.Material = (*Diffuse)(nil)

// Construct reads the required albedo triple.
func (d *Diffuse) Construct(ctx context.Context, prop cty.Value) error {
	a, err := vals.Vec3(prop, "albedo")
	if err != nil {
		return err
	}
	d.albedo = render.FromArray(a)
	return nil
}

// Albedo returns the surface color.
func (d *Diffuse) Albedo() render.Vec3 { return d.albedo }

// Emission returns zero; diffuse surfaces do not emit.
func (d *Diffuse) Emission() render.Vec3 { return render.Vec3{} }

// Save persists the albedo.
func (d *Diffuse) Save(w *serial.Writer) error {
	w.Float64(d.albedo.X)
	w.Float64(d.albedo.Y)
	w.Float64(d.albedo.Z)
	return w.Err()
}

// Load restores the albedo.
func (d *Diffuse) Load(r *serial.Reader) error {
	d.albedo = render.NewVec3(r.Float64(), r.Float64(), r.Float64())
	return r.Err()
}

// Emissive radiates a constant radiance.
type Emissive struct {
	comp.Base
	radiance render.Vec3
}

var _ render.Material = (*Emissive)(nil)

// Construct reads the required radiance triple.
func (e *Emissive) Construct(ctx context.Context, prop cty.Value) error {
	rad, err := vals.Vec3(prop, "radiance")
	if err != nil {
		return err
	}
	e.radiance = render.FromArray(rad)
	return nil
}

// Albedo returns zero; emitters do not reflect.
func (e *Emissive) Albedo() render.Vec3 { return render.Vec3{} }

// Emission returns the emitted radiance.
func (e *Emissive) Emission() render.Vec3 { return e.radiance }

// Save persists the radiance.
func (e *Emissive) Save(w *serial.Writer) error {
	w.Float64(e.radiance.X)
	w.Float64(e.radiance.Y)
	w.Float64(e.radiance.Z)
	return w.Err()
}

// Load restores the radiance.
func (e *Emissive) Load(r *serial.Reader) error {
	e.radiance = render.NewVec3(r.Float64(), r.Float64(), r.Float64())
	return r.Err()
}

// Module implements comp.Module for this package.
type Module struct{}

// Register registers the material factories.
func (m *Module) Register(r *comp.Registry) error {
	if err := r.Register("material::diffuse", func() comp.Component { return &Diffuse{} }); err != nil {
		return err
	}
	return r.Register("material::emissive", func() comp.Component { return &Emissive{} })
}
