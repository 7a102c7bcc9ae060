package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/vk/lumengo/internal/comp"
	"github.com/vk/lumengo/internal/ctxlog"
	"github.com/vk/lumengo/internal/scenefile"
	"github.com/vk/lumengo/internal/user"
	"github.com/zclconf/go-cty/cty"
)

// Run executes one job: optionally restore an archive, apply the scene
// description, report film fingerprints and optionally serialize the tree.
func (a *App) Run(ctx context.Context) error {
	jobLogger := a.logger.With("job", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, jobLogger)

	u, err := user.New(ctx, a.reg)
	if err != nil {
		return fmt.Errorf("init user context: %w", err)
	}
	defer u.Shutdown()

	if a.config.LoadPath != "" {
		if err := a.restore(ctx, u); err != nil {
			return err
		}
	}

	if a.config.ScenePath != "" {
		directives, err := scenefile.LoadPath(a.config.ScenePath)
		if err != nil {
			return err
		}
		if err := scenefile.Apply(ctx, u, a.withWorkers(directives)); err != nil {
			return err
		}
		jobLogger.Info("Scene directives applied.", "count", len(directives))
	}

	a.reportFilms(ctx, u)

	if a.config.SavePath != "" {
		if err := a.save(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// withWorkers injects the configured pool size into render directives that
// do not choose their own.
func (a *App) withWorkers(directives []scenefile.Directive) []scenefile.Directive {
	if a.config.Workers <= 0 {
		return directives
	}
	for i, d := range directives {
		if d.Kind != scenefile.KindRender {
			continue
		}
		attrs := map[string]cty.Value{
			"workers": cty.NumberIntVal(int64(a.config.Workers)),
		}
		if !d.Prop.IsNull() && d.Prop.Type().IsObjectType() {
			for k, v := range d.Prop.AsValueMap() {
				attrs[k] = v
			}
		}
		directives[i].Prop = cty.ObjectVal(attrs)
	}
	return directives
}

// reportFilms logs the fingerprint of every film asset so runs can be
// compared without an image format.
func (a *App) reportFilms(ctx context.Context, u *user.Context) {
	logger := ctxlog.FromContext(ctx)
	assets, err := u.Registry().Get("$.assets")
	if err != nil {
		return
	}
	assets.ForeachUnderlying(func(c comp.Component) {
		fp, ok := c.(interface{ Fingerprint() uint64 })
		if !ok {
			return
		}
		logger.Info("Film fingerprint.", "loc", c.Loc(), "fingerprint", fmt.Sprintf("%016x", fp.Fingerprint()))
	})
}

func (a *App) save(ctx context.Context, u *user.Context) error {
	f, err := os.Create(a.config.SavePath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()
	if err := u.Serialize(f); err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	ctxlog.FromContext(ctx).Info("Saved state to archive.", "path", a.config.SavePath)
	return f.Close()
}

func (a *App) restore(ctx context.Context, u *user.Context) error {
	f, err := os.Open(a.config.LoadPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()
	if err := u.Deserialize(ctx, f); err != nil {
		return fmt.Errorf("deserialize: %w", err)
	}
	ctxlog.FromContext(ctx).Info("Loaded state from archive.", "path", a.config.LoadPath)
	return nil
}
