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

// Multi aggregates other volume assets: one array supplies albedo, the
// other density, index-aligned. The aggregated volumes are referenced by
// locator and never owned; the cached pointers are re-captured by the
// repair pass, and the merged bound and summed max scalar are recomputed
// with them.
type Multi struct {
	comp.Base
	alb []comp.Ref[render.Volume]
	den []comp.Ref[render.Volume]

	bound     render.Bound
	maxScalar float64
}

var _ render.Volume = (*Multi)(nil)

// Construct reads the two reference arrays. They must be the same non-zero
// size, every albedo volume must carry color and every density volume must
// carry a scalar.
func (v *Multi) Construct(ctx context.Context, prop cty.Value) error {
	albNames, err := vals.Strings(prop, "volumes_alb")
	if err != nil {
		return err
	}
	denNames, err := vals.Strings(prop, "volumes_den")
	if err != nil {
		return err
	}
	if len(albNames) == 0 || len(denNames) == 0 || len(albNames) != len(denNames) {
		return fmt.Errorf("%w: volumes_alb and volumes_den need the same non-zero size",
			vals.ErrInvalidArgument)
	}
	v.alb = make([]comp.Ref[render.Volume], len(albNames))
	v.den = make([]comp.Ref[render.Volume], len(denNames))
	for i := range albNames {
		v.alb[i] = comp.NewRef[render.Volume](comp.AssetLoc(albNames[i]))
		v.den[i] = comp.NewRef[render.Volume](comp.AssetLoc(denNames[i]))
	}
	return v.UpdateWeakRefs(comp.RegistryFrom(ctx).Resolver())
}

// UpdateWeakRefs re-resolves every aggregated volume and rebuilds the
// derived bound and max scalar.
func (v *Multi) UpdateWeakRefs(resolve comp.Resolver) error {
	for i := range v.alb {
		if err := v.alb[i].Resolve(resolve); err != nil {
			return err
		}
		if !v.alb[i].Target().HasColor() {
			return fmt.Errorf("%w: volumes_alb[%d] has no color", vals.ErrInvalidArgument, i)
		}
		if err := v.den[i].Resolve(resolve); err != nil {
			return err
		}
		if !v.den[i].Target().HasScalar() {
			return fmt.Errorf("%w: volumes_den[%d] has no density", vals.ErrInvalidArgument, i)
		}
	}
	inf := math.Inf(1)
	v.bound = render.Bound{
		Min: render.NewVec3(inf, inf, inf),
		Max: render.NewVec3(-inf, -inf, -inf),
	}
	v.maxScalar = 0
	for i := range v.den {
		d := v.den[i].Target()
		v.bound = v.bound.Merge(d.Bound())
		v.maxScalar += d.MaxScalar()
	}
	return nil
}

// Bound returns the merged bound of all density volumes.
func (v *Multi) Bound() render.Bound { return v.bound }

// HasScalar reports that a multi volume always carries a density.
func (v *Multi) HasScalar() bool { return true }

// MaxScalar returns the sum of the aggregated max scalars.
func (v *Multi) MaxScalar() float64 { return v.maxScalar }

// HasColor reports that a multi volume always carries color.
func (v *Multi) HasColor() bool { return true }

// Color returns the density-weighted mix of the aggregated albedos at p.
func (v *Multi) Color(p render.Vec3) render.Vec3 {
	var sum render.Vec3
	var weight float64
	for i := range v.den {
		d := v.den[i].Target().Scalar(p)
		if d <= 0 {
			continue
		}
		sum = sum.Add(v.alb[i].Target().Color(p).Multiply(d))
		weight += d
	}
	if weight == 0 {
		return render.Vec3{}
	}
	return sum.Multiply(1 / weight)
}

// Scalar returns the summed density at p.
func (v *Multi) Scalar(p render.Vec3) float64 {
	var sum float64
	for i := range v.den {
		sum += v.den[i].Target().Scalar(p)
	}
	return sum
}

// Save persists the two locator arrays. The bound and max scalar are
// derived and rebuilt by the repair pass.
func (v *Multi) Save(w *serial.Writer) error {
	locs := func(refs []comp.Ref[render.Volume]) []string {
		out := make([]string, len(refs))
		for i := range refs {
			out[i] = refs[i].Loc()
		}
		return out
	}
	w.Strings(locs(v.alb))
	w.Strings(locs(v.den))
	return w.Err()
}

// Load restores the locator arrays with empty pointer caches.
func (v *Multi) Load(r *serial.Reader) error {
	refs := func(locs []string) []comp.Ref[render.Volume] {
		out := make([]comp.Ref[render.Volume], len(locs))
		for i, loc := range locs {
			out[i] = comp.NewRef[render.Volume](loc)
		}
		return out
	}
	v.alb = refs(r.Strings())
	v.den = refs(r.Strings())
	return r.Err()
}
