// Package camera provides the pinhole camera component.
package camera

import (
	"context"
	"math"

	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/render"
	"github.com/vk/lumengo/internal/serial"
	"github.com/vk/lumengo/internal/vals"
	"github.com/zclconf/go-cty/cty"
)

// Pinhole generates primary rays through a virtual image plane one unit in
// front of the sensor position. It references its film asset by locator:
// the film supplies the aspect ratio, and the cached pointer is a repair
// client like any other cross-branch reference.
type Pinhole struct {
	comp.Base
	position render.Vec3
	center   render.Vec3
	up       render.Vec3
	vfov     float64

	film comp.Ref[render.Film]

	// Derived basis, rebuilt whenever the film reference is re-resolved.
	u, v, w render.Vec3
	tf      float64
	aspect  float64
}

var _ render.Camera = (*Pinhole)(nil)

// Construct reads position/center/up/vfov and the film asset reference.
func (c *Pinhole) Construct(ctx context.Context, prop cty.Value) error {
	pos, err := vals.Vec3(prop, "position")
	if err != nil {
		return err
	}
	center, err := vals.Vec3(prop, "center")
	if err != nil {
		return err
	}
	up, err := vals.Vec3(prop, "up")
	if err != nil {
		return err
	}
	vfov, err := vals.Float(prop, "vfov")
	if err != nil {
		return err
	}
	filmName, err := vals.String(prop, "film")
	if err != nil {
		return err
	}
	c.position = render.FromArray(pos)
	c.center = render.FromArray(center)
	c.up = render.FromArray(up)
	c.vfov = vfov
	c.film = comp.NewRef[render.Film](comp.AssetLoc(filmName))
	return c.UpdateWeakRefs(comp.RegistryFrom(ctx).Resolver())
}

// UpdateWeakRefs re-resolves the film pointer and recomputes the camera
// basis, since the aspect ratio is derived from the film.
func (c *Pinhole) UpdateWeakRefs(resolve comp.Resolver) error {
	if err := c.film.Resolve(resolve); err != nil {
		return err
	}
	c.aspect = c.film.Target().Aspect()
	c.tf = math.Tan(c.vfov * math.Pi / 180 * 0.5)
	c.w = c.position.Subtract(c.center).Normalize()
	c.u = c.up.Cross(c.w).Normalize()
	c.v = c.w.Cross(c.u)
	return nil
}

// PrimaryRay maps film coordinates in [0,1)^2 to a world-space ray.
func (c *Pinhole) PrimaryRay(u, v float64) render.Ray {
	rpx := 2*u - 1
	rpy := 2*v - 1
	d := render.NewVec3(c.aspect*c.tf*rpx, c.tf*rpy, 1).Normalize().Multiply(-1)
	dir := c.u.Multiply(d.X).Add(c.v.Multiply(d.Y)).Add(c.w.Multiply(d.Z))
	return render.Ray{Origin: c.position, Dir: dir}
}

// Film returns the cached film pointer.
func (c *Pinhole) Film() render.Film { return c.film.Target() }

// Save persists the raw camera parameters and the film locator. The basis
// is derived state and rebuilt by the repair pass.
func (c *Pinhole) Save(w *serial.Writer) error {
	for _, f := range []float64{
		c.position.X, c.position.Y, c.position.Z,
		c.center.X, c.center.Y, c.center.Z,
		c.up.X, c.up.Y, c.up.Z,
		c.vfov,
	} {
		w.Float64(f)
	}
	c.film.Save(w)
	return w.Err()
}

// Load restores the raw parameters and film locator.
func (c *Pinhole) Load(r *serial.Reader) error {
	c.position = render.NewVec3(r.Float64(), r.Float64(), r.Float64())
	c.center = render.NewVec3(r.Float64(), r.Float64(), r.Float64())
	c.up = render.NewVec3(r.Float64(), r.Float64(), r.Float64())
	c.vfov = r.Float64()
	c.film.Load(r)
	return r.Err()
}

// Module implements comp.Module for this package.
type Module struct{}

// Register registers the pinhole camera factory.
func (m *Module) Register(r *comp.Registry) error {
	return r.Register("camera::pinhole", func() comp.Component { return &Pinhole{} })
}
