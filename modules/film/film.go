// Package film provides the bitmap film component rendering output is
// written to.
package film

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/render"
	"github.com/vk/lumengo/internal/serial"
	"github.com/vk/lumengo/internal/vals"
	"github.com/zclconf/go-cty/cty"
)

// Bitmap is a w*h float RGB buffer. Distinct pixels may be written by
// different render workers concurrently; no two workers write the same
// pixel.
type Bitmap struct {
	comp.Base
	w, h int
	buf  []float64
}

var _ render.Film = (*Bitmap)(nil)

// Construct allocates the buffer from required w and h.
func (f *Bitmap) Construct(ctx context.Context, prop cty.Value) error {
	w, err := vals.Int(prop, "w")
	if err != nil {
		return err
	}
	h, err := vals.Int(prop, "h")
	if err != nil {
		return err
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: film size %dx%d", vals.ErrInvalidArgument, w, h)
	}
	f.w, f.h = int(w), int(h)
	f.buf = make([]float64, 3*f.w*f.h)
	return nil
}

// Size returns the film dimensions.
func (f *Bitmap) Size() (int, int) { return f.w, f.h }

// Aspect returns the width over height ratio.
func (f *Bitmap) Aspect() float64 { return float64(f.w) / float64(f.h) }

// SetPixel stores an RGB value. Out-of-range coordinates are dropped.
func (f *Bitmap) SetPixel(x, y int, color render.Vec3) {
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return
	}
	i := 3 * (y*f.w + x)
	f.buf[i] = color.X
	f.buf[i+1] = color.Y
	f.buf[i+2] = color.Z
}

// Pixel returns the stored RGB value.
func (f *Bitmap) Pixel(x, y int) render.Vec3 {
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return render.Vec3{}
	}
	i := 3 * (y*f.w + x)
	return render.Vec3{X: f.buf[i], Y: f.buf[i+1], Z: f.buf[i+2]}
}

// Fingerprint hashes the buffer contents. Two films with equal dimensions
// and pixel data fingerprint identically, which is how round trips are
// compared without an image format.
func (f *Bitmap) Fingerprint() uint64 {
	d := xxhash.New()
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], uint64(f.w)<<32|uint64(f.h))
	_, _ = d.Write(scratch[:])
	for _, v := range f.buf {
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
		_, _ = d.Write(scratch[:])
	}
	return d.Sum64()
}

// Save persists dimensions and the full pixel buffer.
func (f *Bitmap) Save(w *serial.Writer) error {
	w.Int64(int64(f.w))
	w.Int64(int64(f.h))
	w.Float64s(f.buf)
	return w.Err()
}

// Load restores dimensions and pixel data.
func (f *Bitmap) Load(r *serial.Reader) error {
	f.w = int(r.Int64())
	f.h = int(r.Int64())
	f.buf = r.Float64s()
	if r.Err() == nil && len(f.buf) != 3*f.w*f.h {
		f.buf = make([]float64, 3*f.w*f.h)
	}
	return r.Err()
}

// Module implements comp.Module for this package.
type Module struct{}

// Register registers the bitmap film factory.
func (m *Module) Register(r *comp.Registry) error {
	return r.Register("film::bitmap", func() comp.Component { return &Bitmap{} })
}
