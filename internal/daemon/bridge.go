package daemon

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/flashui/internal/dbus"
	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/presenter"
)

// FlashPresenter is the part of the presenter the bridge drives.
type FlashPresenter interface {
	Enqueue(n *model.Notification) error
	Dismiss(id string) bool
}

// Closer reports closed notifications back to D-Bus clients.
type Closer interface {
	CloseWithReason(id uint32, reason dbus.CloseReason) error
}

// Bridge turns D-Bus notifications into flashes and reports their end back
// over D-Bus. All methods must be called from one goroutine (the GTK main
// loop in flashuid).
type Bridge struct {
	presenter FlashPresenter
	closer    Closer
	states    *DisplayStateManager
	logger    *slog.Logger
	now       func() time.Time

	dnd         bool
	errorBypass bool
}

// NewBridge creates a bridge. closer may be nil when running as a monitor.
func NewBridge(p FlashPresenter, closer Closer, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		presenter: p,
		closer:    closer,
		states:    NewDisplayStateManager(),
		logger:    logger,
		now:       time.Now,
	}
}

// States exposes the flash/D-Bus ID mapping.
func (b *Bridge) States() *DisplayStateManager {
	return b.states
}

// SetDoNotDisturb turns flash suppression on or off. Flashes already on
// screen finish normally.
func (b *Bridge) SetDoNotDisturb(enabled bool) {
	b.dnd = enabled
}

// DoNotDisturb reports whether flashes are suppressed.
func (b *Bridge) DoNotDisturb() bool {
	return b.dnd
}

// SetErrorBypass lets error flashes through while Do Not Disturb is on.
func (b *Bridge) SetErrorBypass(bypass bool) {
	b.errorBypass = bypass
}

// HandleNotify flashes a D-Bus notification. A notification that replaces an
// earlier one dismisses the earlier flash first. While Do Not Disturb is on
// the notification is reported dismissed without being shown.
func (b *Bridge) HandleNotify(n *dbus.DBusNotification, id uint32) {
	flash, err := n.ToNotification()
	if err != nil {
		b.logger.Debug("ignoring notification", "dbus_id", id, "error", err)
		b.reportClosed(id, dbus.CloseReasonUndefined)
		return
	}

	if b.dnd && !(b.errorBypass && flash.Category == model.CategoryError) {
		b.logger.Debug("flash suppressed by DnD", "dbus_id", id, "category", flash.Category)
		b.reportClosed(id, dbus.CloseReasonDismissed)
		return
	}

	if previous := b.states.Register(flash.ID, id, b.now()); previous != "" {
		b.states.SetReason(previous, dbus.CloseReasonClosed)
		b.presenter.Dismiss(previous)
	}
	b.states.SetSuppressSound(flash.ID, n.SuppressSound())

	if err := b.presenter.Enqueue(flash); err != nil {
		b.logger.Warn("failed to enqueue flash", "dbus_id", id, "error", err)
		b.states.Remove(flash.ID)
		b.reportClosed(id, dbus.CloseReasonUndefined)
		return
	}

	b.logger.Debug("flash enqueued", "dbus_id", id, "id", flash.ID, "category", flash.Category)
}

// HandleClose ends the flash for a CloseNotification request. The server has
// already emitted the signal.
func (b *Bridge) HandleClose(id uint32) {
	flashID, ok := b.states.FlashIDByDBusID(id)
	if !ok {
		return
	}
	b.states.SetReason(flashID, dbus.CloseReasonClosed)
	b.presenter.Dismiss(flashID)
}

// HandleDismiss ends a flash the user clicked.
func (b *Bridge) HandleDismiss(flashID string) {
	b.states.SetReason(flashID, dbus.CloseReasonDismissed)
	b.presenter.Dismiss(flashID)
}

// HandleEvent is a presenter subscriber that keeps the mapping current and
// emits NotificationClosed when a flash is removed.
func (b *Bridge) HandleEvent(ev presenter.Event) {
	if ev.Kind != presenter.EventTransition {
		return
	}

	if ev.To != model.StateRemoved {
		b.states.SetState(ev.ID, ev.To, ev.At)
		return
	}

	state, ok := b.states.Remove(ev.ID)
	if !ok {
		return
	}

	reason := state.Reason
	if reason == 0 {
		reason = dbus.CloseReasonExpired
	}
	if state.DBusID != 0 {
		b.reportClosed(state.DBusID, reason)
	}
	b.logger.Debug("flash closed", "id", ev.ID, "dbus_id", state.DBusID, "reason", reason.String())
}

// SoundAllowed reports whether a flash may play its cue.
func (b *Bridge) SoundAllowed(flashID string) bool {
	state, ok := b.states.GetByFlashID(flashID)
	return !ok || !state.SuppressSound
}

// SoundFilter wraps an audio subscriber so suppress-sound is honoured.
func (b *Bridge) SoundFilter(next presenter.Subscriber) presenter.Subscriber {
	return func(ev presenter.Event) {
		if b.SoundAllowed(ev.ID) {
			next(ev)
		}
	}
}

func (b *Bridge) reportClosed(id uint32, reason dbus.CloseReason) {
	if b.closer == nil {
		return
	}
	if err := b.closer.CloseWithReason(id, reason); err != nil {
		b.logger.Debug("failed to report closed notification", "dbus_id", id, "error", err)
	}
}
