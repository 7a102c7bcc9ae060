// Package user provides the user-facing context: the root of the ownership
// tree and the high-level scene building, rendering and persistence API.
//
// The context is an explicit value, not a process global; callers create
// one after registering their modules and tear it down when done.
package user

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/ctxlog"
	"github.com/vk/lumengo/internal/render"
	"github.com/zclconf/go-cty/cty"
)

// Well-known locators of the fixed top-level tree structure.
const (
	assetsLoc     = "$.assets"
	sceneLoc      = "$.scene"
	primitivesLoc = "$.scene.primitives"
	accelLoc      = "$.scene.accel"
	rendererLoc   = "$.renderer"
)

// root is the tree's root component. Its owned children are the fixed
// top-level subtrees plus the transient renderer.
type root struct {
	comp.Base
}

// Context manages the object tree rooted at `$` and the public operations
// over it. All methods fail with ErrUninitialized after Shutdown.
type Context struct {
	reg         *comp.Registry
	initialized bool
}

// New binds a fresh root into the registry and installs the assets and
// scene subtrees. The registry must already hold every factory the caller
// intends to use.
func New(ctx context.Context, reg *comp.Registry) (*Context, error) {
	reg.BindRoot("user::default", &root{})
	u := &Context{reg: reg, initialized: true}
	if err := u.Reset(ctx); err != nil {
		reg.ReleaseRoot()
		return nil, err
	}
	return u, nil
}

func (u *Context) check() error {
	if u == nil || !u.initialized {
		return comp.ErrUninitialized
	}
	return nil
}

// Registry exposes the underlying registry for binding layers: generic
// create/get plus enumeration of registered keys.
func (u *Context) Registry() *comp.Registry {
	return u.reg
}

// Reset replaces the assets and scene subtrees with empty ones. The old
// subtrees are destroyed depth-first before the replacements are
// installed, so no locator ever refers to two live objects.
func (u *Context) Reset(ctx context.Context) error {
	if err := u.check(); err != nil {
		return err
	}
	rootC := u.reg.Root()
	for rootC.NumUnderlying() > 0 {
		comp.Destroy(rootC.UnderlyingAt(rootC.NumUnderlying() - 1))
	}
	if _, err := u.reg.Create(ctx, "assets::default", assetsLoc, cty.EmptyObjectVal); err != nil {
		return err
	}
	if _, err := u.reg.Create(ctx, "scene::default", sceneLoc, cty.EmptyObjectVal); err != nil {
		return err
	}
	_, err := u.reg.Create(ctx, "scene::group", primitivesLoc, cty.EmptyObjectVal)
	return err
}

// Asset creates an asset under `$.assets.<name>` from the implementation
// registered at key.
func (u *Context) Asset(ctx context.Context, name, key string, prop cty.Value) (comp.Component, error) {
	if err := u.check(); err != nil {
		return nil, err
	}
	return u.reg.Create(ctx, key, comp.JoinLoc(assetsLoc, name), prop)
}

// GetAsset resolves an asset by short name, or by full locator when the
// name carries the `global:` prefix.
func (u *Context) GetAsset(name string) (comp.Component, error) {
	if err := u.check(); err != nil {
		return nil, err
	}
	return u.reg.Get(comp.AssetLoc(name))
}

// Primitive appends a primitive to the scene, associating mesh and
// material assets named in prop.
func (u *Context) Primitive(ctx context.Context, prop cty.Value) (comp.Component, error) {
	if err := u.check(); err != nil {
		return nil, err
	}
	group, err := u.reg.Get(primitivesLoc)
	if err != nil {
		return nil, err
	}
	loc := comp.JoinLoc(primitivesLoc, strconv.Itoa(group.NumUnderlying()))
	return u.reg.Create(ctx, "scene::primitive", loc, prop)
}

// Build creates the acceleration structure over the current primitives,
// replacing any previous one.
func (u *Context) Build(ctx context.Context, accelKey string, prop cty.Value) error {
	if err := u.check(); err != nil {
		return err
	}
	if old, err := u.reg.Get(accelLoc); err == nil {
		comp.Destroy(old)
	}
	c, err := u.reg.Create(ctx, accelKey, accelLoc, prop)
	if err != nil {
		return err
	}
	accel, ok := c.(render.Accel)
	if !ok {
		return fmt.Errorf("%w: %q is not an acceleration structure", comp.ErrInvalidArgument, accelKey)
	}
	return accel.Build()
}

// Render creates a renderer from key and runs it over the built scene. The
// renderer is transient: it is replaced on the next call and is not part
// of the persisted state.
func (u *Context) Render(ctx context.Context, rendererKey string, prop cty.Value) error {
	if err := u.check(); err != nil {
		return err
	}
	if old, err := u.reg.Get(rendererLoc); err == nil {
		comp.Destroy(old)
	}
	c, err := u.reg.Create(ctx, rendererKey, rendererLoc, prop)
	if err != nil {
		return err
	}
	r, ok := c.(render.Renderer)
	if !ok {
		return fmt.Errorf("%w: %q is not a renderer", comp.ErrInvalidArgument, rendererKey)
	}
	ctxlog.FromContext(ctx).Info("Rendering.", "renderer", rendererKey)
	return r.Render(ctx)
}

// Serialize saves the assets and scene subtrees to a stream. Live
// instances are untouched; the transient renderer is excluded.
func (u *Context) Serialize(w io.Writer) error {
	if err := u.check(); err != nil {
		return err
	}
	assets, err := u.reg.Get(assetsLoc)
	if err != nil {
		return err
	}
	scene, err := u.reg.Get(sceneLoc)
	if err != nil {
		return err
	}
	if err := comp.Save(w, assets); err != nil {
		return err
	}
	return comp.Save(w, scene)
}

// Deserialize replaces the current tree with the archived one, replaying
// the registry-driven construction path, then runs the weak-reference
// repair pass to completion before returning.
func (u *Context) Deserialize(ctx context.Context, r io.Reader) error {
	if err := u.check(); err != nil {
		return err
	}
	rootC := u.reg.Root()
	for rootC.NumUnderlying() > 0 {
		comp.Destroy(rootC.UnderlyingAt(rootC.NumUnderlying() - 1))
	}
	if _, err := comp.Load(ctx, r, u.reg, assetsLoc); err != nil {
		return err
	}
	if _, err := comp.Load(ctx, r, u.reg, sceneLoc); err != nil {
		return err
	}
	return u.NotifyUpdateWeakRefs()
}

// NotifyUpdateWeakRefs walks the whole tree letting every component
// re-capture its cached locator-derived pointers.
func (u *Context) NotifyUpdateWeakRefs() error {
	if err := u.check(); err != nil {
		return err
	}
	return comp.RepairWeakRefs(u.reg.Root(), u.reg.Resolver())
}

// Shutdown destroys the tree and detaches the root. Later calls on the
// context fail with ErrUninitialized.
func (u *Context) Shutdown() {
	if u == nil || !u.initialized {
		return
	}
	rootC := u.reg.Root()
	for rootC.NumUnderlying() > 0 {
		comp.Destroy(rootC.UnderlyingAt(rootC.NumUnderlying() - 1))
	}
	u.reg.ReleaseRoot()
	u.initialized = false
}
