package manifest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/larsks/crosshairs/internal/assets"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is how long the watcher waits for a directory to settle.
const DefaultDebounce = 500 * time.Millisecond

// Runner drives rebuilds: once, on a fixed interval, or on directory
// changes. All rebuilds happen on the goroutine calling Run.
type Runner struct {
	ScanInterval time.Duration
	Watch        bool
	Debounce     time.Duration

	builder *Builder
	types   []assets.Type
	out     io.Writer
}

// NewRunner creates a Runner that reports counts to out.
func NewRunner(builder *Builder, types []assets.Type, out io.Writer) *Runner {
	return &Runner{
		Debounce: DefaultDebounce,
		builder:  builder,
		types:    types,
		out:      out,
	}
}

// Run performs an initial rebuild of every type. If neither ScanInterval
// nor Watch is set it returns that rebuild's error; otherwise it keeps
// going until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.ScanInterval <= 0 && !r.Watch {
		return r.rebuildAll()
	}

	g, ctx := errgroup.WithContext(ctx)

	// The watcher is registered before the initial rebuild so that no
	// change made after that rebuild can be missed.
	var changes <-chan []assets.Type
	if r.Watch {
		w, err := newDirWatcher(r.builder.assetRoot, r.types, r.Debounce)
		if err != nil {
			return err
		}
		defer w.Close() //nolint:errcheck

		changes = w.Changes()
		g.Go(func() error {
			return w.Run(ctx)
		})
		slog.Info("watching asset directories", "root", r.builder.assetRoot)
	}

	if err := r.rebuildAll(); err != nil {
		slog.Warn("initial rebuild failed; continuing", "error", err)
	}

	var tick <-chan time.Time
	if r.ScanInterval > 0 {
		ticker := time.NewTicker(r.ScanInterval)
		defer ticker.Stop()
		tick = ticker.C
		slog.Info("rebuilding manifests periodically", "interval", r.ScanInterval)
	}

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
				r.rebuildAll() //nolint:errcheck
			case types := <-changes:
				for _, t := range types {
					r.rebuild(t) //nolint:errcheck
				}
			}
		}
	})

	return g.Wait()
}

func (r *Runner) rebuildAll() error {
	summary, err := r.builder.RebuildAll(r.types)
	for _, res := range summary.Results {
		if res.Err == nil {
			r.report(res.Type, res.Manifest)
		}
	}
	slog.Info("rebuilt manifests", "types", len(summary.Results), "assets", summary.Total(), "failed", err != nil)
	return err
}

func (r *Runner) rebuild(t assets.Type) error {
	m, err := r.builder.Rebuild(t)
	if err != nil {
		slog.Error("failed to rebuild manifest", "type", t.Name, "error", err)
		return err
	}
	r.report(t, m)
	return nil
}

func (r *Runner) report(t assets.Type, m *Manifest) {
	fmt.Fprintf(r.out, "Updated %d %s in manifest.\n", m.Count(), t.Name) //nolint:errcheck
}
