// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default timing and layout values. These are part of the observable behavior.
const (
	DefaultStagger        = 500 * time.Millisecond
	DefaultVisible        = 2500 * time.Millisecond
	DefaultReflow         = 50 * time.Millisecond
	DefaultTransition     = 400 * time.Millisecond
	DefaultSpacing        = 10
	DefaultFallbackHeight = 60
	DefaultDecorations    = 3
)

// Config represents the flashui configuration.
// Loaded from ~/.config/flashui/config.toml
type Config struct {
	Timing      TimingConfig     `toml:"timing"`
	Layout      LayoutConfig     `toml:"layout"`
	Decorations DecorationConfig `toml:"decorations"`
	TUI         TUIConfig        `toml:"tui"`
	Audio       AudioConfig      `toml:"audio"`
	Theme       ThemeConfig      `toml:"theme"`
	DnD         DnDConfig        `toml:"dnd"`
}

// TimingConfig holds the notification lifecycle timings.
type TimingConfig struct {
	Stagger    Duration `toml:"stagger"`    // Delay per ordinal index before reveal
	Visible    Duration `toml:"visible"`    // Time between reveal and hide
	Reflow     Duration `toml:"reflow"`     // Delay before restacking after a hide starts
	Transition Duration `toml:"transition"` // Host-side exit fade length
	Debug      bool     `toml:"debug"`      // Log on-screen time of each notification
}

// LayoutConfig holds stacking and placement settings.
type LayoutConfig struct {
	Spacing        int    `toml:"spacing"`         // Gap between stacked notifications
	FallbackHeight int    `toml:"fallback_height"` // Height used before a notification is laid out
	Position       string `toml:"position"`        // "top-right", "top-left", etc.
	OffsetX        int    `toml:"offset_x"`        // Pixels from screen edge
	OffsetY        int    `toml:"offset_y"`        // Pixels from screen edge
	Width          int    `toml:"width"`           // Notification width in pixels
	Monitor        int    `toml:"monitor"`         // 0 = compositor default, 1+ = specific monitor
}

// DecorationConfig holds the number of decorative children per notification.
type DecorationConfig struct {
	Blobs     int `toml:"blobs"`
	Particles int `toml:"particles"`
}

// TUIConfig holds terminal host settings.
type TUIConfig struct {
	ShowHelp     bool `toml:"show_help"`
	ExitWhenIdle bool `toml:"exit_when_idle"`
	LineHeight   int  `toml:"line_height"` // Pixels per terminal row when converting heights
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Timing: TimingConfig{
			Stagger:    Duration(DefaultStagger),
			Visible:    Duration(DefaultVisible),
			Reflow:     Duration(DefaultReflow),
			Transition: Duration(DefaultTransition),
			Debug:      false,
		},
		Layout: LayoutConfig{
			Spacing:        DefaultSpacing,
			FallbackHeight: DefaultFallbackHeight,
			Position:       string(PositionTopRight),
			OffsetX:        10,
			OffsetY:        10,
			Width:          350,
		},
		Decorations: DecorationConfig{
			Blobs:     DefaultDecorations,
			Particles: DefaultDecorations,
		},
		TUI: TUIConfig{
			ShowHelp:     true,
			ExitWhenIdle: false,
			LineHeight:   20,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
			Sounds:  SoundConfig{},
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
		DnD: DnDConfig{
			ErrorBypass: true,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "flashui", "config.toml")
}

// ConfigDir returns the directory holding the config file and user themes.
func ConfigDir() string {
	path := ConfigPath()
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed and writes atomically via a temp file.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timing.Stagger < 0 {
		return fmt.Errorf("timing.stagger cannot be negative, got %s", c.Timing.Stagger.Duration())
	}
	if c.Timing.Visible <= 0 {
		return fmt.Errorf("timing.visible must be positive, got %s", c.Timing.Visible.Duration())
	}
	if c.Timing.Reflow < 0 {
		return fmt.Errorf("timing.reflow cannot be negative, got %s", c.Timing.Reflow.Duration())
	}
	if c.Timing.Transition < 0 || c.Timing.Transition.Duration() > 10*time.Second {
		return fmt.Errorf("timing.transition must be between 0 and 10s, got %s", c.Timing.Transition.Duration())
	}

	if c.Layout.Spacing < 0 || c.Layout.Spacing > 200 {
		return fmt.Errorf("layout.spacing must be between 0 and 200, got %d", c.Layout.Spacing)
	}
	if c.Layout.FallbackHeight < 1 || c.Layout.FallbackHeight > 1000 {
		return fmt.Errorf("layout.fallback_height must be between 1 and 1000, got %d", c.Layout.FallbackHeight)
	}
	if c.Layout.Width < 100 || c.Layout.Width > 1000 {
		return fmt.Errorf("layout.width must be between 100 and 1000, got %d", c.Layout.Width)
	}
	if c.Layout.Monitor < 0 || c.Layout.Monitor > 16 {
		return fmt.Errorf("layout.monitor must be between 0 and 16, got %d", c.Layout.Monitor)
	}
	if !validPosition(c.Layout.Position) {
		return fmt.Errorf("invalid position %q, must be one of: %v", c.Layout.Position, ValidPositions())
	}

	if c.Decorations.Blobs < 0 || c.Decorations.Blobs > 9 {
		return fmt.Errorf("decorations.blobs must be between 0 and 9, got %d", c.Decorations.Blobs)
	}
	if c.Decorations.Particles < 0 || c.Decorations.Particles > 9 {
		return fmt.Errorf("decorations.particles must be between 0 and 9, got %d", c.Decorations.Particles)
	}

	if c.TUI.LineHeight < 1 {
		return fmt.Errorf("tui.line_height must be positive, got %d", c.TUI.LineHeight)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	if !validColorScheme(c.Theme.ColorScheme) {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	return nil
}
