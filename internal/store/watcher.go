package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmylchreest/flashui/internal/watch"
)

// StateWatcher reloads the shared state file when another process writes it
// and reports Do Not Disturb changes.
type StateWatcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	path     string
	watcher  *watch.FileWatcher
	current  *SharedState
	onChange func(state *SharedState)
}

// NewStateWatcher creates a watcher for the state file at path.
func NewStateWatcher(path string, logger *slog.Logger) (*StateWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	w := &StateWatcher{
		logger:  logger,
		path:    path,
		current: DefaultSharedState(),
	}
	fw, err := watch.NewFileWatcher(path, w.reload, logger)
	if err != nil {
		return nil, err
	}
	w.watcher = fw
	return w, nil
}

// SetChangeCallback sets the function called when the DnD state flips.
func (w *StateWatcher) SetChangeCallback(fn func(state *SharedState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start loads the current state and begins watching. The state directory is
// created if needed so the watch can be placed before the first write.
func (w *StateWatcher) Start() (*SharedState, error) {
	if err := os.MkdirAll(filepath.Dir(w.path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	state, err := LoadSharedState(w.path)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.current = state
	w.mu.Unlock()

	if err := w.watcher.Start(); err != nil {
		return state, err
	}
	w.logger.Debug("state watcher started", "path", w.path, "dnd", state.DnDEnabled)
	return state, nil
}

// Stop stops watching.
func (w *StateWatcher) Stop() {
	if err := w.watcher.Stop(); err != nil {
		w.logger.Debug("failed to stop state watcher", "error", err)
	}
}

// Current returns the last loaded state.
func (w *StateWatcher) Current() *SharedState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *StateWatcher) reload() {
	state, err := LoadSharedState(w.path)
	if err != nil {
		w.logger.Warn("failed to reload shared state", "error", err)
		return
	}

	w.mu.Lock()
	changed := state.DnDEnabled != w.current.DnDEnabled
	w.current = state
	fn := w.onChange
	w.mu.Unlock()

	if !changed {
		return
	}
	w.logger.Info("DnD state changed", "enabled", state.DnDEnabled)
	if fn != nil {
		fn(state)
	}
}
