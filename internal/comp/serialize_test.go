package comp_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/vals"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	reg := newTestRegistry(t, nil)
	ctx := context.Background()

	c, err := reg.Create(ctx, "test::comp::serializable", "$.x", propJSON(t, `{"v": 23}`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, comp.Save(&buf, c))

	// Restore into a fresh tree; state arrives via binary load, not
	// configuration.
	reg2 := newTestRegistry(t, nil)
	loaded, err := comp.Load(ctx, bytes.NewReader(buf.Bytes()), reg2, "$.x")
	require.NoError(t, err)

	s, ok := loaded.(*serializableComp)
	require.True(t, ok)
	require.EqualValues(t, 23, s.Value())
	require.Equal(t, "$.x", s.Loc())

	got, err := reg2.Get("$.x")
	require.NoError(t, err)
	require.Same(t, loaded, got)
}

func TestSaveLoadSubtreeWithNamedAndPositionalChildren(t *testing.T) {
	reg := newTestRegistry(t, nil)
	ctx := context.Background()

	_, err := reg.Create(ctx, "test::comp::group", "$.g", vals.Empty())
	require.NoError(t, err)
	_, err = reg.Create(ctx, "test::comp::serializable", "$.g.a", propJSON(t, `{"v": 1}`))
	require.NoError(t, err)
	_, err = reg.Create(ctx, "test::comp::group", "$.g.items", vals.Empty())
	require.NoError(t, err)
	_, err = reg.Create(ctx, "test::comp::serializable", "$.g.items.0", propJSON(t, `{"v": 2}`))
	require.NoError(t, err)

	g, err := reg.Get("$.g")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, comp.Save(&buf, g))

	reg2 := newTestRegistry(t, nil)
	_, err = comp.Load(ctx, bytes.NewReader(buf.Bytes()), reg2, "$.g")
	require.NoError(t, err)

	a, err := comp.GetAs[*serializableComp](reg2, "$.g.a")
	require.NoError(t, err)
	require.EqualValues(t, 1, a.Value())

	item, err := comp.GetAs[*serializableComp](reg2, "$.g.items.0")
	require.NoError(t, err)
	require.EqualValues(t, 2, item.Value())
}

func TestLoadUnregisteredKeyFails(t *testing.T) {
	reg := newTestRegistry(t, nil)
	ctx := context.Background()

	c, err := reg.Create(ctx, "test::comp::serializable", "$.x", propJSON(t, `{"v": 23}`))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, comp.Save(&buf, c))

	// A process that never registered the key cannot reconstruct it.
	bare := comp.New()
	bare.BindRoot("user::default", &testRoot{})
	_, err = comp.Load(ctx, bytes.NewReader(buf.Bytes()), bare, "$.x")
	require.ErrorIs(t, err, comp.ErrSerializationTypeMismatch)
}

func TestLoadTruncatedArchiveFails(t *testing.T) {
	reg := newTestRegistry(t, nil)
	ctx := context.Background()

	c, err := reg.Create(ctx, "test::comp::serializable", "$.x", propJSON(t, `{"v": 23}`))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, comp.Save(&buf, c))

	for _, cut := range []int{1, buf.Len() / 2, buf.Len() - 1} {
		reg2 := newTestRegistry(t, nil)
		_, err := comp.Load(ctx, bytes.NewReader(buf.Bytes()[:cut]), reg2, "$.x")
		require.ErrorIs(t, err, comp.ErrSerializationTruncated, "cut at %d", cut)
	}
}

func TestWeakRefRepairPointsAtNewInstance(t *testing.T) {
	reg := newTestRegistry(t, nil)
	ctx := context.Background()

	oldB, err := reg.Create(ctx, "test::comp::serializable", "$.b", propJSON(t, `{"v": 7}`))
	require.NoError(t, err)
	h, err := reg.Create(ctx, "test::comp::holder", "$.h", propJSON(t, `{"ref": "$.b"}`))
	require.NoError(t, err)
	require.Same(t, oldB, h.(*holderComp).Target())

	var buf bytes.Buffer
	require.NoError(t, comp.Save(&buf, oldB))
	require.NoError(t, comp.Save(&buf, h))

	reg2 := newTestRegistry(t, nil)
	r := bytes.NewReader(buf.Bytes())
	newB, err := comp.Load(ctx, r, reg2, "$.b")
	require.NoError(t, err)
	newH, err := comp.Load(ctx, r, reg2, "$.h")
	require.NoError(t, err)

	// Before repair the cache is empty; the raw pointer from before the
	// save/restore boundary must never be reused.
	require.Nil(t, newH.(*holderComp).Target())

	require.NoError(t, comp.RepairWeakRefs(reg2.Root(), reg2.Resolver()))
	require.Same(t, newB.(*serializableComp), newH.(*holderComp).Target())
	require.NotSame(t, oldB.(*serializableComp), newH.(*holderComp).Target())
}

func TestRepairFailsWhenReferenceMissing(t *testing.T) {
	reg := newTestRegistry(t, nil)
	ctx := context.Background()

	_, err := reg.Create(ctx, "test::comp::serializable", "$.b", propJSON(t, `{"v": 7}`))
	require.NoError(t, err)
	h, err := reg.Create(ctx, "test::comp::holder", "$.h", propJSON(t, `{"ref": "$.b"}`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, comp.Save(&buf, h))

	// Restore only the holder; its reference target does not exist.
	reg2 := newTestRegistry(t, nil)
	_, err = comp.Load(ctx, bytes.NewReader(buf.Bytes()), reg2, "$.h")
	require.NoError(t, err)
	err = comp.RepairWeakRefs(reg2.Root(), reg2.Resolver())
	require.ErrorIs(t, err, comp.ErrLocatorNotFound)
}

func TestCreateWithoutConstructSkipsConfiguration(t *testing.T) {
	reg := newTestRegistry(t, nil)

	// The failing component cannot be constructed, but allocation and
	// linking without construction succeed.
	c, err := reg.CreateWithoutConstruct("test::comp::failing", "$.f")
	require.NoError(t, err)
	require.Equal(t, "$.f", c.Loc())

	got, err := reg.Get("$.f")
	require.NoError(t, err)
	require.Same(t, c, got)
}
