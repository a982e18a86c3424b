package audio

import (
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/flashui/internal/config"
	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/presenter"
)

// SoundPlayer plays and caches sound files.
type SoundPlayer interface {
	Play(path string) error
	Preload(path string) error
	SetVolume(volume float64)
	InvalidateCache(path string)
	ClearCache()
	Close()
}

// Manager plays a per-category cue when a flash notification is revealed.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  SoundPlayer
	watcher *Watcher
	enabled bool
	sounds  map[model.Category]string
}

// NewManager creates a manager around the beep player.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	return NewManagerWithPlayer(cfg, NewPlayer(logger), logger)
}

// NewManagerWithPlayer creates a manager around player.
func NewManagerWithPlayer(cfg *config.Config, player SoundPlayer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
		sounds:  make(map[model.Category]string),
	}
	m.loadSoundConfig(cfg)
	return m
}

// loadSoundConfig resolves the configured sound for every category. Missing
// files are skipped with a warning.
func (m *Manager) loadSoundConfig(cfg *config.Config) {
	sounds := make(map[model.Category]string)
	for _, category := range model.Categories {
		path := cfg.GetSoundForCategory(category)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "category", category, "path", path)
			continue
		}
		sounds[category] = path
	}

	m.mu.Lock()
	m.enabled = cfg.Audio.Enabled
	m.sounds = sounds
	m.mu.Unlock()

	m.player.SetVolume(float64(cfg.Audio.Volume) / 100.0)
}

// Start preloads and watches the configured sounds.
func (m *Manager) Start() {
	m.mu.RLock()
	enabled := m.enabled
	paths := make([]string, 0, len(m.sounds))
	for _, path := range m.sounds {
		paths = append(paths, path)
	}
	m.mu.RUnlock()

	if !enabled {
		m.logger.Debug("audio disabled")
		return
	}

	for _, path := range paths {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}
	m.logger.Info("audio manager started", "sounds", len(paths))
}

// Stop stops watching and closes the player.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// SoundFor returns the resolved sound path for a category.
func (m *Manager) SoundFor(category model.Category) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.sounds[category]
	return path, ok
}

// PlayForCategory plays the category's sound if audio is enabled.
func (m *Manager) PlayForCategory(category model.Category) error {
	m.mu.RLock()
	enabled := m.enabled
	path, ok := m.sounds[category]
	m.mu.RUnlock()

	if !enabled {
		return nil
	}
	if !ok {
		m.logger.Debug("no sound configured for category", "category", category)
		return nil
	}
	return m.player.Play(path)
}

// HandleEvent is a presenter subscriber that plays a cue on every reveal.
func (m *Manager) HandleEvent(ev presenter.Event) {
	if ev.Kind != presenter.EventTransition || ev.To != model.StateShown {
		return
	}
	if err := m.PlayForCategory(ev.Category); err != nil {
		m.logger.Warn("failed to play sound", "id", ev.ID, "category", ev.Category, "error", err)
	}
}

// UpdateConfig applies a reloaded configuration.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.player.ClearCache()
	m.loadSoundConfig(cfg)
	m.Start()
	m.logger.Debug("audio manager config updated")
}
