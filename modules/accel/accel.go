// Package accel provides the linear acceleration structure. A real BVH is
// an external concern; linear scan keeps the runtime exercised without the
// traversal mathematics.
package accel

import (
	"fmt"

	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/render"
	"github.com/vk/lumengo/modules/scene"
)

// Linear tests rays against every primitive triangle in turn. The cached
// primitive list is derived from the owning scene, so it is rebuilt both at
// Build time and by the repair pass after a restore.
type Linear struct {
	comp.Base
	prims []*scene.Primitive
}

var _ render.Accel = (*Linear)(nil)

// Build gathers the primitives from the owning scene's primitives group.
func (l *Linear) Build() error {
	sc := l.Parent()
	if sc == nil {
		return fmt.Errorf("%w: accel has no owning scene", comp.ErrUninitialized)
	}
	group := sc.Underlying("primitives")
	if group == nil {
		return fmt.Errorf("%w: %s", comp.ErrLocatorNotFound, comp.JoinLoc(sc.Loc(), "primitives"))
	}
	l.prims = l.prims[:0]
	group.ForeachUnderlying(func(c comp.Component) {
		if p, ok := c.(*scene.Primitive); ok {
			l.prims = append(l.prims, p)
		}
	})
	return nil
}

// UpdateWeakRefs rebuilds the primitive cache.
func (l *Linear) UpdateWeakRefs(resolve comp.Resolver) error {
	return l.Build()
}

// Intersect scans all triangles and returns the nearest hit in (tMin, tMax).
func (l *Linear) Intersect(ray render.Ray, tMin, tMax float64) (render.Hit, bool) {
	var nearest render.Hit
	found := false
	closest := tMax
	for _, p := range l.prims {
		m := p.Mesh()
		if m == nil {
			continue
		}
		xf := p.Transform()
		for i := 0; i < m.NumTriangles(); i++ {
			a, b, c := m.Triangle(i)
			hit, ok := intersectTriangle(ray, xf.TransformPoint(a), xf.TransformPoint(b), xf.TransformPoint(c), tMin, closest)
			if ok {
				nearest = hit
				nearest.Material = p.Material()
				closest = hit.T
				found = true
			}
		}
	}
	return nearest, found
}

// intersectTriangle is the Moller-Trumbore ray-triangle test.
func intersectTriangle(ray render.Ray, a, b, c render.Vec3, tMin, tMax float64) (render.Hit, bool) {
	const eps = 1e-9
	e1 := b.Subtract(a)
	e2 := c.Subtract(a)
	pv := ray.Dir.Cross(e2)
	det := e1.Dot(pv)
	if det > -eps && det < eps {
		return render.Hit{}, false
	}
	inv := 1 / det
	tv := ray.Origin.Subtract(a)
	u := tv.Dot(pv) * inv
	if u < 0 || u > 1 {
		return render.Hit{}, false
	}
	qv := tv.Cross(e1)
	v := ray.Dir.Dot(qv) * inv
	if v < 0 || u+v > 1 {
		return render.Hit{}, false
	}
	t := e2.Dot(qv) * inv
	if t <= tMin || t >= tMax {
		return render.Hit{}, false
	}
	n := e1.Cross(e2).Normalize()
	if n.Dot(ray.Dir) > 0 {
		n = n.Multiply(-1)
	}
	return render.Hit{T: t, Point: ray.At(t), Normal: n}, true
}

// Module implements comp.Module for this package.
type Module struct{}

// Register registers the linear accel factory.
func (m *Module) Register(r *comp.Registry) error {
	return r.Register("accel::linear", func() comp.Component { return &Linear{} })
}
