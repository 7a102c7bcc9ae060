package film_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/lumengo/internal/render"
	"github.com/vk/lumengo/internal/serial"
	"github.com/vk/lumengo/internal/vals"
	"github.com/vk/lumengo/modules/film"
)

func newBitmap(t *testing.T, prop string) *film.Bitmap {
	t.Helper()
	p, err := vals.FromJSON([]byte(prop))
	require.NoError(t, err)
	f := &film.Bitmap{}
	require.NoError(t, f.Construct(context.Background(), p))
	return f
}

func TestBitmapConstructAndPixels(t *testing.T) {
	f := newBitmap(t, `{"w": 4, "h": 3}`)

	w, h := f.Size()
	require.Equal(t, 4, w)
	require.Equal(t, 3, h)
	require.InDelta(t, 4.0/3.0, f.Aspect(), 1e-12)

	f.SetPixel(2, 1, render.NewVec3(0.1, 0.2, 0.3))
	require.Equal(t, render.NewVec3(0.1, 0.2, 0.3), f.Pixel(2, 1))
	require.Equal(t, render.Vec3{}, f.Pixel(0, 0))

	// Out-of-range writes and reads are dropped.
	f.SetPixel(-1, 0, render.NewVec3(1, 1, 1))
	f.SetPixel(4, 0, render.NewVec3(1, 1, 1))
	require.Equal(t, render.Vec3{}, f.Pixel(9, 9))
}

func TestBitmapRejectsBadSize(t *testing.T) {
	for _, prop := range []string{
		`{"w": 0, "h": 3}`,
		`{"w": 4, "h": -1}`,
		`{"w": 4}`,
	} {
		p, err := vals.FromJSON([]byte(prop))
		require.NoError(t, err)
		f := &film.Bitmap{}
		require.Error(t, f.Construct(context.Background(), p), prop)
	}
}

func TestBitmapFingerprintTracksContent(t *testing.T) {
	a := newBitmap(t, `{"w": 8, "h": 8}`)
	b := newBitmap(t, `{"w": 8, "h": 8}`)
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	a.SetPixel(3, 4, render.NewVec3(1, 0, 0))
	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	b.SetPixel(3, 4, render.NewVec3(1, 0, 0))
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	// Same buffer size, different dimensions.
	c := newBitmap(t, `{"w": 4, "h": 16}`)
	require.NotEqual(t, b.Fingerprint(), c.Fingerprint())
}

func TestBitmapSaveLoad(t *testing.T) {
	a := newBitmap(t, `{"w": 4, "h": 2}`)
	a.SetPixel(1, 1, render.NewVec3(0.5, 0.25, 0.125))

	var buf bytes.Buffer
	w := serial.NewWriter(&buf)
	require.NoError(t, a.Save(w))

	b := &film.Bitmap{}
	require.NoError(t, b.Load(serial.NewReader(&buf)))
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	r := serial.NewReader(bytes.NewReader(nil))
	require.ErrorIs(t, (&film.Bitmap{}).Load(r), serial.ErrTruncated)
}
