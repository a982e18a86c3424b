package presenter

import (
	"time"

	"github.com/jmylchreest/flashui/internal/config"
)

// Options holds presenter timing and layout parameters.
type Options struct {
	Stagger        time.Duration // Reveal delay per ordinal index
	Visible        time.Duration // Time from reveal to hide
	Reflow         time.Duration // Delay from hide to restack
	Spacing        int
	FallbackHeight int
	Blobs          int
	Particles      int
	Debug          bool // Log on-screen time when a notification is removed
}

// DefaultOptions returns the default presenter options.
func DefaultOptions() Options {
	return Options{
		Stagger:        config.DefaultStagger,
		Visible:        config.DefaultVisible,
		Reflow:         config.DefaultReflow,
		Spacing:        config.DefaultSpacing,
		FallbackHeight: config.DefaultFallbackHeight,
		Blobs:          config.DefaultDecorations,
		Particles:      config.DefaultDecorations,
	}
}

// OptionsFromConfig builds Options from a loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	return Options{
		Stagger:        cfg.Timing.Stagger.Duration(),
		Visible:        cfg.Timing.Visible.Duration(),
		Reflow:         cfg.Timing.Reflow.Duration(),
		Spacing:        cfg.Layout.Spacing,
		FallbackHeight: cfg.Layout.FallbackHeight,
		Blobs:          cfg.Decorations.Blobs,
		Particles:      cfg.Decorations.Particles,
		Debug:          cfg.Timing.Debug,
	}
}
