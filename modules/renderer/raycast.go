// Package renderer provides the raycast renderer, which drives the worker
// pool over film pixels. It exists to exercise the runtime end to end;
// light-transport estimation is a non-goal.
package renderer

import (
	"context"
	"math"

	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/parallel"
	"github.com/vk/lumengo/internal/render"
	"github.com/vk/lumengo/internal/vals"
	"github.com/zclconf/go-cty/cty"
)

// Raycast shoots one primary ray per pixel and shades flat from the hit
// material. Renderers are transient: they are recreated per render call
// and never serialized with the scene.
type Raycast struct {
	comp.Base
	camera  comp.Ref[render.Camera]
	accel   comp.Ref[render.Accel]
	bg      render.Vec3
	workers int
}

var _ render.Renderer = (*Raycast)(nil)

// Construct resolves the camera reference and the scene's acceleration
// structure, which must have been built beforehand.
func (rc *Raycast) Construct(ctx context.Context, prop cty.Value) error {
	camName, err := vals.String(prop, "camera")
	if err != nil {
		return err
	}
	workers, err := vals.IntOr(prop, "workers", 0)
	if err != nil {
		return err
	}
	rc.bg = render.Vec3{}
	if vals.Has(prop, "bg") {
		bg, err := vals.Vec3(prop, "bg")
		if err != nil {
			return err
		}
		rc.bg = render.FromArray(bg)
	}
	rc.workers = int(workers)
	rc.camera = comp.NewRef[render.Camera](comp.AssetLoc(camName))
	rc.accel = comp.NewRef[render.Accel]("$.scene.accel")
	return rc.UpdateWeakRefs(comp.RegistryFrom(ctx).Resolver())
}

// UpdateWeakRefs re-resolves the camera and accel pointers.
func (rc *Raycast) UpdateWeakRefs(resolve comp.Resolver) error {
	if err := rc.camera.Resolve(resolve); err != nil {
		return err
	}
	return rc.accel.Resolve(resolve)
}

// Render dispatches one work item per pixel across the pool. Component
// state is only read during the loop; each worker writes exclusively to
// its own pixels.
func (rc *Raycast) Render(ctx context.Context) error {
	cam := rc.camera.Target()
	fl := cam.Film()
	w, h := fl.Size()
	accel := rc.accel.Target()

	return parallel.Foreach(ctx, int64(w*h), rc.workers, func(ctx context.Context, index int64, worker int) error {
		x := int(index) % w
		y := int(index) / w
		u := (float64(x) + 0.5) / float64(w)
		v := (float64(y) + 0.5) / float64(h)
		ray := cam.PrimaryRay(u, v)

		color := rc.bg
		if hit, ok := accel.Intersect(ray, 1e-6, math.Inf(1)); ok && hit.Material != nil {
			// Flat shading: albedo scaled by the cosine against the ray,
			// plus any emission.
			cos := math.Abs(hit.Normal.Dot(ray.Dir.Multiply(-1)))
			color = hit.Material.Albedo().Multiply(cos).Add(hit.Material.Emission())
		}
		fl.SetPixel(x, y, color)
		return nil
	})
}

// Module implements comp.Module for this package.
type Module struct{}

// Register registers the raycast renderer factory.
func (m *Module) Register(r *comp.Registry) error {
	return r.Register("renderer::raycast", func() comp.Component { return &Raycast{} })
}
