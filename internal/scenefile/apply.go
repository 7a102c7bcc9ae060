package scenefile

import (
	"context"
	"fmt"

	"github.com/vk/lumengo/internal/ctxlog"
	"github.com/vk/lumengo/internal/user"
	"github.com/vk/lumengo/internal/vals"
)

// Apply runs the directives against a user context in file order. A failed
// directive aborts the remainder; earlier directives stay applied, since
// the runtime never rolls back siblings.
func Apply(ctx context.Context, u *user.Context, directives []Directive) error {
	logger := ctxlog.FromContext(ctx)
	for i, d := range directives {
		var err error
		switch d.Kind {
		case KindAsset:
			logger.Debug("Applying asset directive.", "name", d.Name, "key", d.Key)
			_, err = u.Asset(ctx, d.Name, d.Key, d.Prop)
		case KindPrimitive:
			logger.Debug("Applying primitive directive.")
			_, err = u.Primitive(ctx, d.Prop)
		case KindBuild:
			logger.Debug("Applying build directive.", "key", d.Key)
			err = u.Build(ctx, d.Key, d.Prop)
		case KindRender:
			logger.Debug("Applying render directive.", "key", d.Key)
			err = u.Render(ctx, d.Key, d.Prop)
		default:
			err = fmt.Errorf("%w: unknown directive kind %d", vals.ErrInvalidArgument, d.Kind)
		}
		if err != nil {
			return fmt.Errorf("scene directive %d: %w", i, err)
		}
	}
	return nil
}
