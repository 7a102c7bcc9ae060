// Package mesh provides the raw triangle mesh component built directly
// from configuration arrays. File-format loaders are external
// collaborators; they would feed the same construction path.
package mesh

import (
	"context"
	"fmt"

	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/render"
	"github.com/vk/lumengo/internal/serial"
	"github.com/vk/lumengo/internal/vals"
	"github.com/zclconf/go-cty/cty"
)

// Raw holds flat vertex and index arrays: `ps` is xyz triples, `ts` indexes
// vertices in groups of three.
type Raw struct {
	comp.Base
	ps []float64
	ts []int64
}

var _ render.Mesh = (*Raw)(nil)

// Construct validates and stores the vertex and triangle arrays.
func (r *Raw) Construct(ctx context.Context, prop cty.Value) error {
	ps, err := vals.Floats(prop, "ps")
	if err != nil {
		return err
	}
	if len(ps) == 0 || len(ps)%3 != 0 {
		return fmt.Errorf("%w: ps length %d is not a multiple of 3", vals.ErrInvalidArgument, len(ps))
	}
	tsf, err := vals.Floats(prop, "ts")
	if err != nil {
		return err
	}
	if len(tsf) == 0 || len(tsf)%3 != 0 {
		return fmt.Errorf("%w: ts length %d is not a multiple of 3", vals.ErrInvalidArgument, len(tsf))
	}
	numVerts := int64(len(ps) / 3)
	ts := make([]int64, len(tsf))
	for i, f := range tsf {
		ts[i] = int64(f)
		if ts[i] < 0 || ts[i] >= numVerts {
			return fmt.Errorf("%w: ts[%d]=%d out of range", vals.ErrInvalidArgument, i, ts[i])
		}
	}
	r.ps = ps
	r.ts = ts
	return nil
}

// NumTriangles returns the triangle count.
func (r *Raw) NumTriangles() int { return len(r.ts) / 3 }

// Triangle returns the i-th triangle's vertices.
func (r *Raw) Triangle(i int) (render.Vec3, render.Vec3, render.Vec3) {
	return r.vertex(r.ts[3*i]), r.vertex(r.ts[3*i+1]), r.vertex(r.ts[3*i+2])
}

func (r *Raw) vertex(i int64) render.Vec3 {
	return render.NewVec3(r.ps[3*i], r.ps[3*i+1], r.ps[3*i+2])
}

// Save persists the vertex and index arrays.
func (r *Raw) Save(w *serial.Writer) error {
	w.Float64s(r.ps)
	w.Int64s(r.ts)
	return w.Err()
}

// Load restores the vertex and index arrays.
func (r *Raw) Load(rd *serial.Reader) error {
	r.ps = rd.Float64s()
	r.ts = rd.Int64s()
	return rd.Err()
}

// Module implements comp.Module for this package.
type Module struct{}

// Register registers the raw mesh factory.
func (m *Module) Register(r *comp.Registry) error {
	return r.Register("mesh::raw", func() comp.Component { return &Raw{} })
}
