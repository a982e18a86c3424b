package daemon

import (
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/flashui/internal/dbus"
	"github.com/jmylchreest/flashui/internal/model"
)

// InternalNotifier flashes notices about flashuid itself (config reloads,
// theme and audio errors). Repeats of the same notice are rate limited.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	notifyHandler func(notification *dbus.DBusNotification) uint32

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration
	now            func() time.Time

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		now:            time.Now,
		enabled:        true,
	}
}

// SetNotifyHandler sets the function that delivers a notice, normally
// NotificationServer.NotifyInternal.
func (n *InternalNotifier) SetNotifyHandler(handler func(notification *dbus.DBusNotification) uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifyHandler = handler
}

// SetEnabled enables or disables internal notices.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notices with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends a notice unless one with the same key was sent within the
// minimum interval.
func (n *InternalNotifier) Notify(key, summary, body string, category model.Category) {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return
	}
	handler := n.notifyHandler
	if handler == nil {
		n.mu.Unlock()
		n.logger.Debug("internal notification skipped: no handler", "summary", summary)
		return
	}

	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "summary", summary)
		return
	}
	n.lastNotifyTime[key] = now
	n.mu.Unlock()

	msg := dbus.Message{AppName: "flashuid", Text: summary, Category: category}
	notification := &dbus.DBusNotification{
		AppName:       msg.AppName,
		Summary:       summary,
		Body:          body,
		Hints:         msg.Hints(),
		ExpireTimeout: -1,
	}
	notification.Hints["suppress-sound"] = godbus.MakeVariant(true)

	n.logger.Debug("sending internal notification", "key", key, "summary", summary, "category", category)
	_ = handler(notification)
}

// NotifyConfigReloaded flashes a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration reloaded", "", model.CategorySuccess)
}

// NotifyConfigError flashes a config reload that failed validation.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration error", err.Error(), model.CategoryError)
}

// NotifyThemeReloaded flashes a theme reload.
func (n *InternalNotifier) NotifyThemeReloaded(themeName string) {
	n.Notify("theme-reload", "Theme reloaded", themeName, model.CategoryInfo)
}

// NotifyThemeError flashes a theme that could not be loaded.
func (n *InternalNotifier) NotifyThemeError(err error) {
	n.Notify("theme-error", "Theme error", err.Error(), model.CategoryWarning)
}

// NotifyStartup flashes that the daemon is running.
func (n *InternalNotifier) NotifyStartup(version string) {
	n.Notify("startup", "flashuid started", "v"+version, model.CategoryInfo)
}
