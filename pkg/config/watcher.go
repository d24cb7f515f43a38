package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the quiet period before a reload runs.
const DefaultDebounceInterval = 250 * time.Millisecond

// Watcher reloads the global configuration when its file changes.
//
// The parent directory is watched rather than the file, so editors that
// save by renaming a temporary file over the original are handled.
type Watcher struct {
	path     string
	interval time.Duration
	logger   *slog.Logger
	onReload func(*Config)
	onError  func(error)

	mu    sync.Mutex
	timer *time.Timer
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the debounce interval.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.interval = d }
}

// WithReloadHook registers fn to run after every successful reload with the
// new snapshot.
func WithReloadHook(fn func(*Config)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// WithReloadErrorHook registers fn to run after every failed reload. The
// previous snapshot stays active.
func WithReloadErrorHook(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// NewWatcher creates a watcher for the configuration file at path.
func NewWatcher(path string, logger *slog.Logger, opts ...WatcherOption) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{path: path, interval: DefaultDebounceInterval, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done. Reload failures are logged and the previous
// snapshot is kept.
func (w *Watcher) Run(ctx context.Context) error {
	if w.path == "" {
		return errors.New("config watcher: no configuration file")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", w.path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", filepath.Dir(abs), err)
	}

	w.logger.Info("config watcher started", "path", abs, "debounce_ms", w.interval.Milliseconds())
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !w.relevant(event, abs) {
				continue
			}
			w.logger.Debug("config file event", "path", event.Name, "op", event.Op.String())
			w.trigger()

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event, abs string) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == abs
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.interval, w.reload)
}

func (w *Watcher) reload() {
	if err := ReloadConfig(w.path); err != nil {
		w.logger.Error("config reload failed", "path", w.path, "error", err)
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	w.logger.Info("config reloaded", "path", w.path)
	if w.onReload != nil {
		w.onReload(GetConfig())
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
