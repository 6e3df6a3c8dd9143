package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/larsks/crosshairs/internal/assets"
)

// dirWatcher reports asset types whose directories changed, after events
// have stopped arriving for the debounce period.
type dirWatcher struct {
	watcher  *fsnotify.Watcher
	types    []assets.Type
	byDir    map[string]assets.Type
	debounce time.Duration

	mutex   sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	closed  bool
	changes chan []assets.Type
}

func newDirWatcher(root string, types []assets.Type, debounce time.Duration) (*dirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &dirWatcher{
		watcher:  watcher,
		types:    types,
		byDir:    make(map[string]assets.Type, len(types)),
		debounce: debounce,
		pending:  make(map[string]bool),
		changes:  make(chan []assets.Type, 1),
	}

	for _, t := range types {
		dir := filepath.Clean(t.Dir(root))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			watcher.Close() //nolint:errcheck
			return nil, fmt.Errorf("%w %s: %w", ErrCreateDirectory, dir, err)
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close() //nolint:errcheck
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.byDir[dir] = t
	}

	return w, nil
}

// Changes delivers batches of changed asset types in configuration order.
func (w *dirWatcher) Changes() <-chan []assets.Type {
	return w.changes
}

// Run consumes filesystem events until ctx is cancelled.
func (w *dirWatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

func (w *dirWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !assets.IsSupported(filepath.Ext(name), true) {
		return
	}

	t, ok := w.byDir[filepath.Dir(event.Name)]
	if !ok {
		return
	}

	slog.Debug("asset directory changed", "type", t.Name, "event", event.String())

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return
	}

	w.pending[t.Name] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *dirWatcher) flush() {
	w.mutex.Lock()
	var changed []assets.Type
	for _, t := range w.types {
		if w.pending[t.Name] {
			changed = append(changed, t)
		}
	}
	w.pending = make(map[string]bool)
	w.mutex.Unlock()

	if len(changed) == 0 {
		return
	}

	select {
	case w.changes <- changed:
	default:
		// A batch is already queued; requeue so the next flush picks these up.
		w.mutex.Lock()
		defer w.mutex.Unlock()
		if w.closed {
			return
		}
		for _, t := range changed {
			w.pending[t.Name] = true
		}
		w.timer = time.AfterFunc(w.debounce, w.flush)
	}
}

// Close stops the watcher and any pending debounce timer. No timer is armed
// after Close returns.
func (w *dirWatcher) Close() error {
	w.mutex.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mutex.Unlock()
	return w.watcher.Close()
}
