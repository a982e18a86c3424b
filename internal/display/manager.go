package display

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/flashui/internal/config"
	"github.com/jmylchreest/flashui/internal/layout"
	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/presenter"
	"github.com/jmylchreest/flashui/internal/schedule"
	"github.com/jmylchreest/flashui/internal/surface"
)

// Manager is the GTK notification host. Element state and the exit
// transition timing live in an embedded surface.Document driven by the main
// loop scheduler; the Manager mirrors every change onto a Popup.
//
// All methods must be called on the GTK main thread.
type Manager struct {
	*surface.Document

	app    *gtk.Application
	logger *slog.Logger

	mu        sync.Mutex
	cfg       *config.Config
	anchor    layout.Anchor
	display   *gdk.Display
	monitor   *gdk.Monitor
	popups    map[string]*Popup
	onDismiss func(id string)
}

var _ presenter.Host = (*Manager)(nil)

// NewManager creates a GTK host. sched should be a MainLoopScheduler in
// production.
func NewManager(app *gtk.Application, sched schedule.Scheduler, cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return &Manager{
		Document: surface.NewDocument(sched, surface.Options{
			Transition: cfg.Timing.Transition.Duration(),
		}, logger),
		app:    app,
		logger: logger,
		cfg:    cfg,
		anchor: layout.AnchorFor(config.Position(cfg.Layout.Position)),
		popups: make(map[string]*Popup),
	}
}

// OnDismiss sets the function called when the user clicks a popup.
func (m *Manager) OnDismiss(fn func(id string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDismiss = fn
}

// EnsureContainer resolves the display and monitor the popups live on.
func (m *Manager) EnsureContainer() error {
	m.mu.Lock()
	if m.display == nil {
		display := gdk.DisplayGetDefault()
		if display == nil {
			m.mu.Unlock()
			return &DisplayError{Message: "no display available"}
		}
		m.display = display
		m.monitor = selectMonitor(display, m.cfg.Layout.Monitor, m.logger)
		m.logger.Debug("notification container ready", "monitor", m.cfg.Layout.Monitor)
	}
	m.mu.Unlock()

	return m.Document.EnsureContainer()
}

// Adopt builds the popup for n without presenting it.
func (m *Manager) Adopt(n *model.Notification) error {
	if err := m.Document.Adopt(n); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	popup := NewPopup(m.app, n, m.cfg, m.logger)
	popup.SetMonitor(m.monitor)
	id := n.ID
	popup.OnClick(func() {
		m.mu.Lock()
		fn := m.onDismiss
		m.mu.Unlock()
		if fn != nil {
			fn(id)
		}
	})
	m.popups[id] = popup
	return nil
}

// Decorate appends the decorative children.
func (m *Manager) Decorate(id string, decorations []model.Decoration) {
	m.Document.Decorate(id, decorations)
	if popup := m.popup(id); popup != nil {
		popup.Decorate(decorations)
	}
}

// SetClass toggles a class. Adding "show" presents the popup.
func (m *Manager) SetClass(id, class string, on bool) {
	m.Document.SetClass(id, class, on)

	popup := m.popup(id)
	if popup == nil {
		return
	}
	popup.SetClass(class, on)
	if class == presenter.ClassShow && on {
		popup.Present()
	}
}

// SetTop moves the popup to the given offset within the column.
func (m *Manager) SetTop(id string, px int) {
	m.Document.SetTop(id, px)

	m.mu.Lock()
	popup := m.popups[id]
	anchor := m.anchor
	offsetX, offsetY := m.cfg.Layout.OffsetX, m.cfg.Layout.OffsetY
	m.mu.Unlock()

	if popup != nil {
		popup.Place(anchor, anchor.Margins(offsetX, offsetY, px))
	}
}

// Height measures the popup. Unknown notifications report 0.
func (m *Manager) Height(id string) int {
	popup := m.popup(id)
	if popup == nil {
		return 0
	}
	return popup.Height()
}

// Remove destroys the popup.
func (m *Manager) Remove(id string) {
	m.Document.Remove(id)

	m.mu.Lock()
	popup := m.popups[id]
	delete(m.popups, id)
	m.mu.Unlock()

	if popup != nil {
		popup.Close()
	}
}

// UpdateConfig applies a reloaded configuration to popups already on screen.
// The exit transition length applies to hides started afterwards; the other
// timing changes take effect through the presenter's options.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.mu.Lock()
	oldPosition := m.cfg.Layout.Position
	m.cfg = cfg
	m.anchor = layout.AnchorFor(config.Position(cfg.Layout.Position))
	if m.display != nil {
		m.monitor = selectMonitor(m.display, cfg.Layout.Monitor, m.logger)
	}
	m.mu.Unlock()
	m.Document.SetTransition(cfg.Timing.Transition.Duration())

	m.logger.Debug("display manager config updated",
		"old_position", oldPosition,
		"new_position", cfg.Layout.Position,
	)

	for _, el := range m.Elements() {
		m.mu.Lock()
		popup := m.popups[el.ID]
		monitor := m.monitor
		m.mu.Unlock()
		if popup != nil {
			popup.SetMonitor(monitor)
		}
		m.SetTop(el.ID, el.Top)
	}
}

// ActiveIDs returns the IDs of every popup, sorted.
func (m *Manager) ActiveIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.popups))
	for id := range m.popups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ActiveCount returns the number of popups.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.popups)
}

// CloseAll destroys every popup without notifying the presenter. Used on
// shutdown after the presenter is closed.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	popups := m.popups
	m.popups = make(map[string]*Popup)
	m.mu.Unlock()

	for _, popup := range popups {
		popup.Close()
	}
}

func (m *Manager) popup(id string) *Popup {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.popups[id]
}

// DisplayError represents a display-related error.
type DisplayError struct {
	Message string
	Cause   error
}

func (e *DisplayError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DisplayError) Unwrap() error {
	return e.Cause
}
