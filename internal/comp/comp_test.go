package comp_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/serial"
	"github.com/vk/lumengo/internal/vals"
	"github.com/zclconf/go-cty/cty"
)

// testRoot stands in for the user context at the tree root.
type testRoot struct {
	comp.Base
}

// serializableComp carries one persisted integer, configured from `v`.
type serializableComp struct {
	comp.Base
	v int64
}

func (c *serializableComp) Construct(ctx context.Context, prop cty.Value) error {
	v, err := vals.Int(prop, "v")
	if err != nil {
		return err
	}
	c.v = v
	return nil
}

func (c *serializableComp) Save(w *serial.Writer) error {
	w.Int64(c.v)
	return w.Err()
}

func (c *serializableComp) Load(r *serial.Reader) error {
	c.v = r.Int64()
	return r.Err()
}

func (c *serializableComp) Value() int64 { return c.v }

// holderComp caches a resolved pointer to another component by locator.
type holderComp struct {
	comp.Base
	ref comp.Ref[*serializableComp]
}

func (c *holderComp) Construct(ctx context.Context, prop cty.Value) error {
	loc, err := vals.String(prop, "ref")
	if err != nil {
		return err
	}
	c.ref = comp.NewRef[*serializableComp](loc)
	return c.UpdateWeakRefs(comp.RegistryFrom(ctx).Resolver())
}

func (c *holderComp) UpdateWeakRefs(resolve comp.Resolver) error {
	return c.ref.Resolve(resolve)
}

func (c *holderComp) Save(w *serial.Writer) error {
	c.ref.Save(w)
	return w.Err()
}

func (c *holderComp) Load(r *serial.Reader) error {
	c.ref.Load(r)
	return r.Err()
}

func (c *holderComp) Target() *serializableComp { return c.ref.Target() }

// groupComp is a plain container node.
type groupComp struct {
	comp.Base
}

// releasingComp records its locator into a shared log on release so tests
// can assert teardown order.
type releasingComp struct {
	comp.Base
	log *[]string
}

func (c *releasingComp) Release() {
	*c.log = append(*c.log, c.Loc())
}

// failingComp always rejects its configuration.
type failingComp struct {
	comp.Base
}

func (c *failingComp) Construct(ctx context.Context, prop cty.Value) error {
	return fmt.Errorf("%w: always fails", comp.ErrInvalidArgument)
}

// newTestRegistry builds a registry with the test factories and a bound
// root.
func newTestRegistry(t *testing.T, releaseLog *[]string) *comp.Registry {
	t.Helper()
	reg := comp.New()
	require.NoError(t, reg.Register("test::comp::serializable", func() comp.Component { return &serializableComp{} }))
	require.NoError(t, reg.Register("test::comp::holder", func() comp.Component { return &holderComp{} }))
	require.NoError(t, reg.Register("test::comp::group", func() comp.Component { return &groupComp{} }))
	require.NoError(t, reg.Register("test::comp::failing", func() comp.Component { return &failingComp{} }))
	require.NoError(t, reg.Register("test::comp::releasing", func() comp.Component { return &releasingComp{log: releaseLog} }))
	reg.BindRoot("user::default", &testRoot{})
	return reg
}

// propJSON parses a JSON document into a property object.
func propJSON(t *testing.T, src string) cty.Value {
	t.Helper()
	v, err := vals.FromJSON([]byte(src))
	require.NoError(t, err)
	return v
}
