// Package render defines the abstract rendering capabilities the component
// runtime wires together, plus the small amount of vector math they share.
// Concrete implementations live under modules/ and are swappable at
// configuration time through their registered type keys.
package render

import (
	"context"

	"github.com/vk/lumengo/internal/comp"
)

// Ray is a half-line with an origin and a unit direction.
type Ray struct {
	Origin, Dir Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Multiply(t))
}

// Bound is an axis-aligned bounding box.
type Bound struct {
	Min, Max Vec3
}

// Merge returns the smallest bound enclosing both operands.
func (b Bound) Merge(other Bound) Bound {
	return Bound{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Contains reports whether p lies inside the bound.
func (b Bound) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Hit describes a ray-surface intersection.
type Hit struct {
	T        float64
	Point    Vec3
	Normal   Vec3
	Material Material
}

// Camera generates primary rays for film coordinates in [0,1)^2 and knows
// the film it targets.
type Camera interface {
	comp.Component
	PrimaryRay(u, v float64) Ray
	Film() Film
}

// Material describes a surface response. Reference implementations expose
// only a flat albedo and an emission term; estimator quality is a non-goal.
type Material interface {
	comp.Component
	Albedo() Vec3
	Emission() Vec3
}

// Mesh exposes triangle geometry.
type Mesh interface {
	comp.Component
	NumTriangles() int
	Triangle(i int) (a, b, c Vec3)
}

// Film receives pixel values during rendering. SetPixel calls for distinct
// pixels may come from different workers concurrently.
type Film interface {
	comp.Component
	Size() (w, h int)
	Aspect() float64
	SetPixel(x, y int, color Vec3)
	Pixel(x, y int) Vec3
}

// Volume describes participating media by bound, scalar density and color.
type Volume interface {
	comp.Component
	Bound() Bound
	HasScalar() bool
	MaxScalar() float64
	HasColor() bool
	Color(p Vec3) Vec3
	Scalar(p Vec3) float64
}

// Intersectable is anything a ray can be tested against.
type Intersectable interface {
	Intersect(ray Ray, tMin, tMax float64) (Hit, bool)
}

// Accel is an acceleration structure over the scene's primitives. Build is
// called once after scene construction and again by the weak-reference
// repair pass, since the cached primitive list is derived state.
type Accel interface {
	comp.Component
	Intersectable
	Build() error
}

// Renderer runs a rendering pass once the scene is complete.
type Renderer interface {
	comp.Component
	Render(ctx context.Context) error
}
