package comp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/vk/lumengo/internal/ctxlog"
	"github.com/vk/lumengo/internal/serial"
)

// recordVersion tags every archive record. The original system matched
// writer and reader purely by field order; the explicit tag closes that gap
// so version skew surfaces as ErrSerializationTypeMismatch instead of
// silent corruption.
const recordVersion uint16 = 1

// Save writes the subtree rooted at c into a self-describing archive:
// depth-first pre-order, one typed record per node, children in insertion
// order behind an explicit child count. The instance itself is untouched.
func Save(w io.Writer, c Component) error {
	sw := serial.NewWriter(w)
	if err := saveRecord(sw, c); err != nil {
		return err
	}
	return sw.Err()
}

func saveRecord(w *serial.Writer, c Component) error {
	w.Uint16(recordVersion)
	w.String(c.Key())
	if err := c.Save(w); err != nil {
		return fmt.Errorf("save state of %q: %w", c.Loc(), err)
	}
	n := c.NumUnderlying()
	w.Uint32(uint32(n))
	for i := 0; i < n; i++ {
		// Positional children persist an empty name; Load re-derives their
		// locator from the running index.
		w.String(c.childName(i))
		if err := saveRecord(w, c.UnderlyingAt(i)); err != nil {
			return err
		}
	}
	return nil
}

// Load reconstructs a subtree from an archive at the given locator,
// replaying the registry-driven construction path with state supplied by
// each component's binary reader instead of configuration. The locator's
// owner must already be live.
//
// The caller is responsible for running the weak-reference repair pass over
// the loaded tree before using it; Load itself resolves nothing.
func Load(ctx context.Context, r io.Reader, reg *Registry, loc string) (Component, error) {
	sr := serial.NewReader(r)
	c, err := loadRecord(ctx, sr, reg, loc)
	if err != nil {
		return nil, err
	}
	if err := sr.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func loadRecord(ctx context.Context, r *serial.Reader, reg *Registry, loc string) (Component, error) {
	ver := r.Uint16()
	key := r.String()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if ver != recordVersion {
		return nil, fmt.Errorf("%w: record version %d, want %d", ErrSerializationTypeMismatch, ver, recordVersion)
	}
	c, err := reg.CreateWithoutConstruct(key, loc)
	if err != nil {
		if errors.Is(err, ErrUnknownType) {
			return nil, fmt.Errorf("%w: key %q at %q is not registered", ErrSerializationTypeMismatch, key, loc)
		}
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Loaded component record.", "key", key, "loc", loc)
	if err := c.Load(r); err != nil {
		return nil, fmt.Errorf("load state of %q: %w", loc, err)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	n := r.Uint32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	for i := 0; i < int(n); i++ {
		name := r.String()
		if err := r.Err(); err != nil {
			return nil, err
		}
		childLoc := JoinLoc(loc, name)
		if name == "" {
			childLoc = JoinLoc(loc, strconv.Itoa(i))
		}
		if _, err := loadRecord(ctx, r, reg, childLoc); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RepairWeakRefs walks the subtree rooted at c once, letting every node
// re-resolve its cached cross-branch references by locator. It must run to
// completion after a deserialization before the tree is usable; it is never
// triggered implicitly by resolution.
func RepairWeakRefs(c Component, resolve Resolver) error {
	if err := c.UpdateWeakRefs(resolve); err != nil {
		return fmt.Errorf("repair refs of %q: %w", c.Loc(), err)
	}
	var walkErr error
	c.ForeachUnderlying(func(ch Component) {
		if walkErr == nil {
			walkErr = RepairWeakRefs(ch, resolve)
		}
	})
	return walkErr
}
