package audio

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/flashui/internal/watch"
)

// Watcher invalidates cached sounds when their files change on disk.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	cache    cacheInvalidator
	watchers map[string]*watch.FileWatcher
}

type cacheInvalidator interface {
	InvalidateCache(path string)
}

// NewWatcher creates a watcher that invalidates entries in cache.
func NewWatcher(cache cacheInvalidator, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:   logger,
		cache:    cache,
		watchers: make(map[string]*watch.FileWatcher),
	}
}

// Watch starts watching path. Watching a path twice is a no-op.
func (w *Watcher) Watch(path string) {
	if path == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watchers[path]; ok {
		return
	}

	fw, err := watch.NewFileWatcher(path, func() {
		w.logger.Debug("sound file changed, invalidating cache", "path", path)
		w.cache.InvalidateCache(path)
	}, w.logger)
	if err != nil {
		w.logger.Warn("failed to watch sound file", "path", path, "error", err)
		return
	}
	if err := fw.Start(); err != nil {
		w.logger.Warn("failed to watch sound file", "path", path, "error", err)
		return
	}
	w.watchers[path] = fw
}

// Stop stops watching every path.
func (w *Watcher) Stop() {
	w.mu.Lock()
	watchers := w.watchers
	w.watchers = make(map[string]*watch.FileWatcher)
	w.mu.Unlock()

	for path, fw := range watchers {
		if err := fw.Stop(); err != nil {
			w.logger.Debug("failed to stop sound watcher", "path", path, "error", err)
		}
	}
}

// Paths returns the number of watched paths.
func (w *Watcher) Paths() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watchers)
}
