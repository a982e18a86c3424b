package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/flashui/internal/model"
)

// Duration accepts "2500ms", "2.5s" or a bare millisecond count in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Try parsing as integer (milliseconds)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '500ms', '2.5s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText writes the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int {
	return int(time.Duration(d).Milliseconds())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// AudioConfig controls the per-category flash sounds.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-category sound file paths.
type SoundConfig struct {
	Info    string `toml:"info"`
	Success string `toml:"success"`
	Warning string `toml:"warning"`
	Error   string `toml:"error"`
}

// ThemeConfig names the stylesheet to load.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Theme name without .css extension
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// DnDConfig tunes how Do Not Disturb treats incoming flashes.
type DnDConfig struct {
	ErrorBypass bool `toml:"error_bypass"` // Error flashes still show while DnD is on
}

// ColorScheme selects light or dark styling.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes lists the accepted color_scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

func validColorScheme(s string) bool {
	for _, cs := range ValidColorSchemes() {
		if s == string(cs) {
			return true
		}
	}
	return false
}

// Position represents the screen corner the notification column is anchored to.
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopRight     Position = "top-right"
	PositionTopCenter    Position = "top-center"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomCenter Position = "bottom-center"
)

// ValidPositions lists the accepted anchor values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionTopCenter,
		PositionBottomLeft,
		PositionBottomRight,
		PositionBottomCenter,
	}
}

func validPosition(s string) bool {
	for _, p := range ValidPositions() {
		if s == string(p) {
			return true
		}
	}
	return false
}

// GetSoundForCategory returns the sound file path for the given category.
// Expands ~ to home directory.
func (c *Config) GetSoundForCategory(category model.Category) string {
	var path string
	switch category {
	case model.CategorySuccess:
		path = c.Audio.Sounds.Success
	case model.CategoryWarning:
		path = c.Audio.Sounds.Warning
	case model.CategoryError:
		path = c.Audio.Sounds.Error
	default:
		path = c.Audio.Sounds.Info
	}
	return ExpandPath(path)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
