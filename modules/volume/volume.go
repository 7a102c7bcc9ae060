// Package volume provides participating-media components: analytic sphere
// and gaussian volumes plus the multi volume, which aggregates other volume
// assets by locator reference.
package volume

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/render"
	"github.com/vk/lumengo/internal/serial"
	"github.com/vk/lumengo/internal/vals"
	"github.com/zclconf/go-cty/cty"
)

// Sphere is a homogeneous spherical volume with an optional flat color.
type Sphere struct {
	comp.Base
	center render.Vec3
	radius float64
	scalar float64
	color  render.Vec3
	hasCol bool
}

var _ render.Volume = (*Sphere)(nil)

// Construct reads center, radius, density and an optional color.
func (s *Sphere) Construct(ctx context.Context, prop cty.Value) error {
	c, err := vals.Vec3(prop, "center")
	if err != nil {
		return err
	}
	radius, err := vals.Float(prop, "radius")
	if err != nil {
		return err
	}
	if radius <= 0 {
		return fmt.Errorf("%w: radius must be positive", vals.ErrInvalidArgument)
	}
	scalar, err := vals.FloatOr(prop, "scalar", 1)
	if err != nil {
		return err
	}
	s.center = render.FromArray(c)
	s.radius = radius
	s.scalar = scalar
	if vals.Has(prop, "color") {
		col, err := vals.Vec3(prop, "color")
		if err != nil {
			return err
		}
		s.color = render.FromArray(col)
		s.hasCol = true
	}
	return nil
}

// Bound returns the sphere's axis-aligned bound.
func (s *Sphere) Bound() render.Bound {
	r := render.NewVec3(s.radius, s.radius, s.radius)
	return render.Bound{Min: s.center.Subtract(r), Max: s.center.Add(r)}
}

// HasScalar reports that the sphere carries a density.
func (s *Sphere) HasScalar() bool { return true }

// MaxScalar returns the homogeneous density.
func (s *Sphere) MaxScalar() float64 { return s.scalar }

// HasColor reports whether a color was configured.
func (s *Sphere) HasColor() bool { return s.hasCol }

// Color returns the flat color.
func (s *Sphere) Color(p render.Vec3) render.Vec3 { return s.color }

// Scalar returns the density at p: homogeneous inside, zero outside.
func (s *Sphere) Scalar(p render.Vec3) float64 {
	if p.Subtract(s.center).Length() > s.radius {
		return 0
	}
	return s.scalar
}

// Save persists the sphere parameters.
func (s *Sphere) Save(w *serial.Writer) error {
	w.Float64s([]float64{
		s.center.X, s.center.Y, s.center.Z,
		s.radius, s.scalar,
		s.color.X, s.color.Y, s.color.Z,
	})
	w.Bool(s.hasCol)
	return w.Err()
}

// Load restores the sphere parameters.
func (s *Sphere) Load(r *serial.Reader) error {
	fs := r.Float64s()
	if r.Err() != nil {
		return r.Err()
	}
	if len(fs) != 8 {
		return fmt.Errorf("%w: sphere volume state", serial.ErrTruncated)
	}
	s.center = render.NewVec3(fs[0], fs[1], fs[2])
	s.radius, s.scalar = fs[3], fs[4]
	s.color = render.NewVec3(fs[5], fs[6], fs[7])
	s.hasCol = r.Bool()
	return r.Err()
}

// Gaussian is a volume whose density falls off as a gaussian around a mean
// position, truncated at three standard deviations for its bound.
type Gaussian struct {
	comp.Base
	mean   render.Vec3
	sigma  float64
	scalar float64
}

var _ render.Volume = (*Gaussian)(nil)

// Construct reads mean, sigma and the peak density.
func (g *Gaussian) Construct(ctx context.Context, prop cty.Value) error {
	mean, err := vals.Vec3(prop, "mean")
	if err != nil {
		return err
	}
	sigma, err := vals.Float(prop, "sigma")
	if err != nil {
		return err
	}
	if sigma <= 0 {
		return fmt.Errorf("%w: sigma must be positive", vals.ErrInvalidArgument)
	}
	scalar, err := vals.FloatOr(prop, "scalar", 1)
	if err != nil {
		return err
	}
	g.mean = render.FromArray(mean)
	g.sigma = sigma
	g.scalar = scalar
	return nil
}

// Bound returns the three-sigma truncation box.
func (g *Gaussian) Bound() render.Bound {
	r := render.NewVec3(3*g.sigma, 3*g.sigma, 3*g.sigma)
	return render.Bound{Min: g.mean.Subtract(r), Max: g.mean.Add(r)}
}

// HasScalar reports that the gaussian carries a density.
func (g *Gaussian) HasScalar() bool { return true }

// MaxScalar returns the peak density at the mean.
func (g *Gaussian) MaxScalar() float64 { return g.scalar }

// HasColor reports that gaussian volumes carry no color.
func (g *Gaussian) HasColor() bool { return false }

// Color returns zero.
func (g *Gaussian) Color(p render.Vec3) render.Vec3 { return render.Vec3{} }

// Scalar evaluates the gaussian falloff at p.
func (g *Gaussian) Scalar(p render.Vec3) float64 {
	d := p.Subtract(g.mean)
	return g.scalar * math.Exp(-d.Dot(d)/(2*g.sigma*g.sigma))
}

// Save persists the gaussian parameters.
func (g *Gaussian) Save(w *serial.Writer) error {
	w.Float64s([]float64{g.mean.X, g.mean.Y, g.mean.Z, g.sigma, g.scalar})
	return w.Err()
}

// Load restores the gaussian parameters.
func (g *Gaussian) Load(r *serial.Reader) error {
	fs := r.Float64s()
	if r.Err() != nil {
		return r.Err()
	}
	if len(fs) != 5 {
		return fmt.Errorf("%w: gaussian volume state", serial.ErrTruncated)
	}
	g.mean = render.NewVec3(fs[0], fs[1], fs[2])
	g.sigma, g.scalar = fs[3], fs[4]
	return r.Err()
}

// Module implements comp.Module for this package.
type Module struct{}

// Register registers the volume factories.
func (m *Module) Register(r *comp.Registry) error {
	if err := r.Register("volume::sphere", func() comp.Component { return &Sphere{} }); err != nil {
		return err
	}
	if err := r.Register("volume::gaussian", func() comp.Component { return &Gaussian{} }); err != nil {
		return err
	}
	return r.Register("volume::multi", func() comp.Component { return &Multi{} })
}
