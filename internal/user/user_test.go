package user_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/user"
	"github.com/vk/lumengo/internal/vals"
	"github.com/vk/lumengo/modules/accel"
	"github.com/vk/lumengo/modules/assets"
	"github.com/vk/lumengo/modules/camera"
	"github.com/vk/lumengo/modules/film"
	"github.com/vk/lumengo/modules/material"
	"github.com/vk/lumengo/modules/mesh"
	"github.com/vk/lumengo/modules/renderer"
	"github.com/vk/lumengo/modules/scene"
)

func newUserContext(t *testing.T) (*user.Context, context.Context) {
	t.Helper()
	reg := comp.New()
	for _, m := range []comp.Module{
		&assets.Module{},
		&scene.Module{},
		&film.Module{},
		&camera.Module{},
		&material.Module{},
		&mesh.Module{},
		&accel.Module{},
		&renderer.Module{},
	} {
		require.NoError(t, m.Register(reg))
	}
	ctx := context.Background()
	u, err := user.New(ctx, reg)
	require.NoError(t, err)
	t.Cleanup(u.Shutdown)
	return u, ctx
}

// buildQuadScene assembles a one-quad scene in front of the camera:
// film, diffuse material, two-triangle mesh, pinhole camera and one
// primitive.
func buildQuadScene(t *testing.T, u *user.Context, ctx context.Context) {
	t.Helper()
	mk := func(name, key, prop string) {
		v, err := vals.FromJSON([]byte(prop))
		require.NoError(t, err)
		_, err = u.Asset(ctx, name, key, v)
		require.NoError(t, err, name)
	}
	mk("film1", "film::bitmap", `{"w": 16, "h": 12}`)
	mk("mat1", "material::diffuse", `{"albedo": [0.8, 0.2, 0.0]}`)
	mk("mesh1", "mesh::raw", `{
		"ps": [-1,-1,0, 1,-1,0, 1,1,0, -1,1,0],
		"ts": [0,1,2, 0,2,3]
	}`)
	mk("cam1", "camera::pinhole", `{
		"position": [0, 0, 5],
		"center": [0, 0, 0],
		"up": [0, 1, 0],
		"vfov": 45,
		"film": "film1"
	}`)

	pv, err := vals.FromJSON([]byte(`{"mesh": "mesh1", "material": "mat1"}`))
	require.NoError(t, err)
	p, err := u.Primitive(ctx, pv)
	require.NoError(t, err)
	require.Equal(t, "$.scene.primitives.0", p.Loc())
}

func TestAssetCreationAndLookup(t *testing.T) {
	u, ctx := newUserContext(t)

	v, err := vals.FromJSON([]byte(`{"w": 8, "h": 8}`))
	require.NoError(t, err)
	created, err := u.Asset(ctx, "film1", "film::bitmap", v)
	require.NoError(t, err)
	require.Equal(t, "$.assets.film1", created.Loc())

	byName, err := u.GetAsset("film1")
	require.NoError(t, err)
	require.Same(t, created, byName)

	byGlobal, err := u.GetAsset("global:$.assets.film1")
	require.NoError(t, err)
	require.Same(t, created, byGlobal)

	_, err = u.GetAsset("missing")
	require.ErrorIs(t, err, comp.ErrLocatorNotFound)
}

func TestPrimitivesAppendPositionally(t *testing.T) {
	u, ctx := newUserContext(t)
	buildQuadScene(t, u, ctx)

	pv, err := vals.FromJSON([]byte(`{"mesh": "mesh1", "material": "mat1"}`))
	require.NoError(t, err)
	p, err := u.Primitive(ctx, pv)
	require.NoError(t, err)
	require.Equal(t, "$.scene.primitives.1", p.Loc())
}

func TestBuildAndRenderWritesFilm(t *testing.T) {
	u, ctx := newUserContext(t)
	buildQuadScene(t, u, ctx)

	require.NoError(t, u.Build(ctx, "accel::linear", vals.Empty()))

	rv, err := vals.FromJSON([]byte(`{"camera": "cam1", "bg": [0, 0, 1], "workers": 2}`))
	require.NoError(t, err)
	require.NoError(t, u.Render(ctx, "renderer::raycast", rv))

	f, err := u.GetAsset("film1")
	require.NoError(t, err)
	bm := f.(*film.Bitmap)

	// The quad covers the film center; the corner only sees background.
	center := bm.Pixel(8, 6)
	require.Greater(t, center.X, 0.0)
	require.Equal(t, 0.0, center.Z)
	corner := bm.Pixel(0, 0)
	require.Equal(t, 1.0, corner.Z)
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	u, ctx := newUserContext(t)
	buildQuadScene(t, u, ctx)
	require.NoError(t, u.Build(ctx, "accel::linear", vals.Empty()))

	rv, err := vals.FromJSON([]byte(`{"camera": "cam1", "workers": 2}`))
	require.NoError(t, err)
	require.NoError(t, u.Render(ctx, "renderer::raycast", rv))

	f1, err := u.GetAsset("film1")
	require.NoError(t, err)
	before := f1.(*film.Bitmap).Fingerprint()

	var buf bytes.Buffer
	require.NoError(t, u.Serialize(&buf))
	require.NoError(t, u.Deserialize(ctx, bytes.NewReader(buf.Bytes())))

	// Restored film carries the exact pixel data.
	f2, err := u.GetAsset("film1")
	require.NoError(t, err)
	require.NotSame(t, f1.(*film.Bitmap), f2.(*film.Bitmap))
	require.Equal(t, before, f2.(*film.Bitmap).Fingerprint())

	// Rendering the restored scene reproduces the same image.
	require.NoError(t, u.Build(ctx, "accel::linear", vals.Empty()))
	require.NoError(t, u.Render(ctx, "renderer::raycast", rv))
	require.Equal(t, before, f2.(*film.Bitmap).Fingerprint())
}

func TestDeserializeRepairsPrimitiveReferences(t *testing.T) {
	u, ctx := newUserContext(t)
	buildQuadScene(t, u, ctx)

	var buf bytes.Buffer
	require.NoError(t, u.Serialize(&buf))
	require.NoError(t, u.Deserialize(ctx, bytes.NewReader(buf.Bytes())))

	p, err := u.Registry().Get("$.scene.primitives.0")
	require.NoError(t, err)
	m, err := u.GetAsset("mesh1")
	require.NoError(t, err)
	require.Same(t, m.(*mesh.Raw), p.(*scene.Primitive).Mesh().(*mesh.Raw))
}

func TestResetClearsTree(t *testing.T) {
	u, ctx := newUserContext(t)
	buildQuadScene(t, u, ctx)

	require.NoError(t, u.Reset(ctx))
	_, err := u.GetAsset("film1")
	require.ErrorIs(t, err, comp.ErrLocatorNotFound)

	// The fixed subtrees are back in place.
	g, err := u.Registry().Get("$.scene.primitives")
	require.NoError(t, err)
	require.Zero(t, g.NumUnderlying())
}

func TestShutdownInvalidatesContext(t *testing.T) {
	u, ctx := newUserContext(t)
	u.Shutdown()

	_, err := u.GetAsset("film1")
	require.ErrorIs(t, err, comp.ErrUninitialized)
	require.ErrorIs(t, u.Reset(ctx), comp.ErrUninitialized)
	require.ErrorIs(t, u.Serialize(&bytes.Buffer{}), comp.ErrUninitialized)

	// Shutdown is idempotent.
	u.Shutdown()
}
