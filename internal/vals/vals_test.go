package vals_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/lumengo/internal/vals"
	"github.com/zclconf/go-cty/cty"
)

func prop(t *testing.T, src string) cty.Value {
	t.Helper()
	v, err := vals.FromJSON([]byte(src))
	require.NoError(t, err)
	return v
}

func TestFromJSONRejectsMalformed(t *testing.T) {
	_, err := vals.FromJSON([]byte(`{"a":`))
	require.ErrorIs(t, err, vals.ErrInvalidArgument)
}

func TestScalarAccessors(t *testing.T) {
	p := prop(t, `{"name": "film1", "w": 1920, "ratio": 1.5, "on": true}`)

	s, err := vals.String(p, "name")
	require.NoError(t, err)
	require.Equal(t, "film1", s)

	i, err := vals.Int(p, "w")
	require.NoError(t, err)
	require.EqualValues(t, 1920, i)

	f, err := vals.Float(p, "ratio")
	require.NoError(t, err)
	require.Equal(t, 1.5, f)

	b, err := vals.Bool(p, "on")
	require.NoError(t, err)
	require.True(t, b)
}

func TestMissingKeyFails(t *testing.T) {
	p := prop(t, `{"a": 1}`)

	_, err := vals.String(p, "b")
	require.ErrorIs(t, err, vals.ErrInvalidArgument)
	_, err = vals.Int(p, "b")
	require.ErrorIs(t, err, vals.ErrInvalidArgument)
	_, err = vals.Floats(p, "b")
	require.ErrorIs(t, err, vals.ErrInvalidArgument)
}

func TestNullCountsAsAbsent(t *testing.T) {
	p := prop(t, `{"a": null}`)
	require.False(t, vals.Has(p, "a"))

	v, err := vals.IntOr(p, "a", 8)
	require.NoError(t, err)
	require.EqualValues(t, 8, v)
}

func TestOrVariantsUseDefaults(t *testing.T) {
	p := prop(t, `{"w": 320}`)

	w, err := vals.IntOr(p, "w", 100)
	require.NoError(t, err)
	require.EqualValues(t, 320, w)

	h, err := vals.IntOr(p, "h", 240)
	require.NoError(t, err)
	require.EqualValues(t, 240, h)

	s, err := vals.StringOr(p, "name", "default")
	require.NoError(t, err)
	require.Equal(t, "default", s)

	b, err := vals.BoolOr(p, "on", true)
	require.NoError(t, err)
	require.True(t, b)
}

func TestIntRejectsFraction(t *testing.T) {
	p := prop(t, `{"w": 1.5}`)
	_, err := vals.Int(p, "w")
	require.ErrorIs(t, err, vals.ErrInvalidArgument)
}

func TestSequenceAccessors(t *testing.T) {
	p := prop(t, `{"ps": [0, 1.5, -2], "names": ["a", "b"]}`)

	fs, err := vals.Floats(p, "ps")
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1.5, -2}, fs)

	ss, err := vals.Strings(p, "names")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ss)

	_, err = vals.Floats(p, "names")
	require.ErrorIs(t, err, vals.ErrInvalidArgument)
}

func TestVec3(t *testing.T) {
	p := prop(t, `{"eye": [0, 0, 5], "bad": [1, 2]}`)

	v, err := vals.Vec3(p, "eye")
	require.NoError(t, err)
	require.Equal(t, [3]float64{0, 0, 5}, v)

	_, err = vals.Vec3(p, "bad")
	require.ErrorIs(t, err, vals.ErrInvalidArgument)
}

func TestObj(t *testing.T) {
	p := prop(t, `{"film": {"w": 10, "h": 20}, "n": 1}`)

	film, err := vals.Obj(p, "film")
	require.NoError(t, err)
	w, err := vals.Int(film, "w")
	require.NoError(t, err)
	require.EqualValues(t, 10, w)

	_, err = vals.Obj(p, "n")
	require.ErrorIs(t, err, vals.ErrInvalidArgument)
}

func TestObjectBuilder(t *testing.T) {
	p := vals.Object(map[string]cty.Value{"k": cty.StringVal("v")})
	s, err := vals.String(p, "k")
	require.NoError(t, err)
	require.Equal(t, "v", s)

	require.False(t, vals.Has(vals.Empty(), "k"))
}
