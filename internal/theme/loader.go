package theme

import (
	"log/slog"
	"sync"
	"time"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Loader owns the GTK CSS provider for flash popups and keeps it in sync with
// the selected theme and the configured transition length.
type Loader struct {
	mu         sync.RWMutex
	logger     *slog.Logger
	provider   *gtk.CSSProvider
	themesDir  string
	theme      *Theme
	transition time.Duration
	watcher    *Watcher
	// invoke runs provider updates on the GTK thread.
	invoke func(func())
}

// NewLoader creates a loader. invoke schedules a function on the GTK main
// thread; hot reloads arrive on a watcher goroutine and go through it.
func NewLoader(transition time.Duration, invoke func(func()), logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if invoke == nil {
		invoke = func(fn func()) { fn() }
	}

	themesDir, err := ThemesDir()
	if err != nil {
		logger.Warn("failed to get themes directory", "error", err)
		themesDir = ""
	}

	return &Loader{
		logger:     logger,
		provider:   gtk.NewCSSProvider(),
		themesDir:  themesDir,
		transition: transition,
		invoke:     invoke,
	}
}

// LoadTheme resolves a theme by name and loads it into the provider. User
// themes shadow bundled ones; unknown names fall back to the default.
func (l *Loader) LoadTheme(name string) error {
	t, err := Resolve(name, l.themesDir)
	if err != nil {
		l.logger.Warn("failed to load theme, using fallback", "theme", name, "fallback", t.Name, "error", err)
	}

	l.mu.Lock()
	l.theme = t
	css := Stylesheet(t.CSS, l.transition)
	l.mu.Unlock()

	l.provider.LoadFromString(css)
	l.logger.Info("loaded theme", "name", t.Name, "bundled", t.IsBundled)
	return nil
}

// SetTransition updates the fade length and reloads the provider.
func (l *Loader) SetTransition(d time.Duration) {
	l.mu.Lock()
	l.transition = d
	t := l.theme
	l.mu.Unlock()

	if t != nil {
		l.provider.LoadFromString(Stylesheet(t.CSS, d))
	}
}

// Apply attaches the provider to a display. A nil display uses the default.
func (l *Loader) Apply(display *gdk.Display) {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		l.logger.Warn("no display available, cannot apply theme")
		return
	}

	gtk.StyleContextAddProviderForDisplay(
		display,
		l.provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
	l.logger.Debug("applied theme to display", "name", l.CurrentTheme())
}

// StartHotReload watches the current user theme and reloads it on change.
func (l *Loader) StartHotReload() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher != nil {
		l.watcher.Stop()
		l.watcher = nil
	}
	if l.theme == nil || l.theme.IsBundled {
		l.logger.Debug("not starting hot-reload for bundled theme")
		return
	}

	w := NewWatcher(l.theme, func(css string) {
		l.invoke(func() {
			l.mu.RLock()
			d := l.transition
			l.mu.RUnlock()
			l.provider.LoadFromString(Stylesheet(css, d))
			l.logger.Info("hot-reloaded theme", "name", l.CurrentTheme())
		})
	}, l.logger)
	if err := w.Start(); err != nil {
		l.logger.Warn("failed to start theme watcher", "error", err)
		return
	}
	l.watcher = w
}

// StopHotReload stops watching the theme.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

// CurrentTheme returns the name of the loaded theme.
func (l *Loader) CurrentTheme() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.theme == nil {
		return ""
	}
	return l.theme.Name
}
