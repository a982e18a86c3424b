package theme

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/flashui/internal/watch"
)

// Watcher reloads a user theme when its file changes.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	theme    *Theme
	fw       *watch.FileWatcher
	onChange func(css string)
}

// NewWatcher creates a watcher for t. onChange receives the new CSS and is
// called from the watcher goroutine.
func NewWatcher(t *Theme, onChange func(css string), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:   logger,
		theme:    t,
		onChange: onChange,
	}
}

// Start begins watching. Bundled themes are not watched.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fw != nil {
		return nil
	}
	if w.theme == nil || w.theme.IsBundled {
		w.logger.Debug("not watching bundled theme")
		return nil
	}

	fw, err := watch.NewFileWatcher(w.theme.Path, w.reload, w.logger)
	if err != nil {
		return fmt.Errorf("failed to watch theme %s: %w", w.theme.Name, err)
	}
	if err := fw.Start(); err != nil {
		return fmt.Errorf("failed to watch theme %s: %w", w.theme.Name, err)
	}
	w.fw = fw
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() {
	w.mu.Lock()
	fw := w.fw
	w.fw = nil
	w.mu.Unlock()

	if fw != nil {
		if err := fw.Stop(); err != nil {
			w.logger.Debug("failed to stop theme watcher", "error", err)
		}
	}
}

// IsRunning reports whether a file is being watched.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fw != nil
}

func (w *Watcher) reload() {
	w.mu.Lock()
	t := w.theme
	w.mu.Unlock()

	changed, err := t.Reload()
	if err != nil {
		w.logger.Warn("failed to reload theme", "path", t.Path, "error", err)
		return
	}
	if !changed {
		return
	}

	w.logger.Info("theme file changed, reloading", "name", t.Name)
	if w.onChange != nil {
		w.onChange(t.CSS)
	}
}
