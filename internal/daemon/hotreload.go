package daemon

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/flashui/internal/config"
	"github.com/jmylchreest/flashui/internal/watch"
)

// ConfigWatcher watches the config file and hands validated configs to the
// reload callback. Invalid edits keep the current config.
type ConfigWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	configPath string
	watcher    *watch.FileWatcher

	currentConfig *config.Config

	onReloadCallback func(newConfig *config.Config)
	onErrorCallback  func(err error)
}

// NewConfigWatcher creates a ConfigWatcher for path, or the default config
// path when empty.
func NewConfigWatcher(path string, logger *slog.Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = config.ConfigPath()
	}

	w := &ConfigWatcher{
		logger:     logger,
		configPath: path,
	}

	fw, err := watch.NewFileWatcher(path, w.reload, logger)
	if err != nil {
		return nil, err
	}
	w.watcher = fw
	return w, nil
}

// SetReloadCallback sets the callback invoked with each valid new config.
func (w *ConfigWatcher) SetReloadCallback(callback func(newConfig *config.Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReloadCallback = callback
}

// SetErrorCallback sets the callback invoked when a changed file fails to load.
func (w *ConfigWatcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onErrorCallback = callback
}

// Start begins watching, with initial as the current config.
func (w *ConfigWatcher) Start(initial *config.Config) error {
	w.mu.Lock()
	w.currentConfig = initial
	w.mu.Unlock()

	if err := w.watcher.Start(); err != nil {
		return err
	}
	w.logger.Debug("config watcher started", "path", w.configPath)
	return nil
}

// Stop stops watching.
func (w *ConfigWatcher) Stop() {
	if err := w.watcher.Stop(); err != nil {
		w.logger.Debug("failed to stop config watcher", "error", err)
	}
}

// Path returns the watched config path.
func (w *ConfigWatcher) Path() string {
	return w.configPath
}

// CurrentConfig returns the last valid configuration.
func (w *ConfigWatcher) CurrentConfig() *config.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.currentConfig
}

func (w *ConfigWatcher) reload() {
	w.mu.RLock()
	reloadCallback := w.onReloadCallback
	errorCallback := w.onErrorCallback
	w.mu.RUnlock()

	w.logger.Debug("config file changed", "path", w.configPath)

	newConfig, err := config.LoadConfig(w.configPath)
	if err != nil {
		w.logger.Warn("config file changed but validation failed", "error", err)
		if errorCallback != nil {
			errorCallback(err)
		}
		return
	}

	w.mu.Lock()
	w.currentConfig = newConfig
	w.mu.Unlock()

	w.logger.Info("config reloaded successfully")
	if reloadCallback != nil {
		reloadCallback(newConfig)
	}
}
