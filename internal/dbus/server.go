package dbus

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name to claim.
	DBusBusName = "org.freedesktop.Notifications"
)

// NotificationHandler is called when a new notification is received.
type NotificationHandler func(notification *DBusNotification, id uint32)

// CloseHandler is called when CloseNotification is requested.
type CloseHandler func(id uint32)

// NotificationServer implements the subset of org.freedesktop.Notifications
// needed to turn desktop notifications into flashes.
type NotificationServer struct {
	conn   *dbus.Conn
	logger *slog.Logger

	nextID atomic.Uint32

	notifyHandler NotificationHandler
	closeHandler  CloseHandler

	mu         sync.RWMutex
	activeIDs  map[uint32]bool
	serverInfo ServerInfo
	running    bool
}

// NewNotificationServer returns a server that is not yet on the bus.
func NewNotificationServer(logger *slog.Logger) *NotificationServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationServer{
		logger:     logger,
		activeIDs:  make(map[uint32]bool),
		serverInfo: DefaultServerInfo(),
	}
}

// SetNotifyHandler installs the receiver of incoming notifications.
func (s *NotificationServer) SetNotifyHandler(handler NotificationHandler) {
	s.notifyHandler = handler
}

// SetCloseHandler installs the receiver of CloseNotification requests for
// live IDs.
func (s *NotificationServer) SetCloseHandler(handler CloseHandler) {
	s.closeHandler = handler
}

// SetServerInfo overrides what GetServerInformation reports.
func (s *NotificationServer) SetServerInfo(info ServerInfo) {
	s.serverInfo = info
}

// Start connects to the session bus and exports the notification service.
func (s *NotificationServer) Start() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return s.StartOn(conn)
}

// StartOn exports the notification service on an existing connection and
// claims the bus name.
func (s *NotificationServer) StartOn(conn *dbus.Conn) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("notification server is already started")
	}
	s.mu.Unlock()

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.running = true
	s.mu.Unlock()

	s.logger.Info("claimed notification bus name", "name", DBusBusName, "path", DBusPath)
	return nil
}

// Stop releases the bus name. The shared session connection stays open.
func (s *NotificationServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
	}

	s.logger.Info("released notification bus name", "name", DBusBusName)
	return nil
}

// GetCapabilities implements GetCapabilities() -> as.
func (s *NotificationServer) GetCapabilities() ([]string, *dbus.Error) {
	return ServerCapabilities, nil
}

// GetServerInformation implements GetServerInformation() -> (ssss).
func (s *NotificationServer) GetServerInformation() (string, string, string, string, *dbus.Error) {
	return s.serverInfo.Name, s.serverInfo.Vendor, s.serverInfo.Version, s.serverInfo.SpecVersion, nil
}

// Notify accepts a notification from a client and hands it to the notify
// handler.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (s *NotificationServer) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	// A flash cannot be updated in place; a replacement is a new flash
	// reusing the caller's ID.
	id := replacesID
	if id == 0 {
		id = s.nextID.Add(1)
	}

	s.logger.Debug("notification received",
		"app", appName,
		"id", id,
		"replaces", replacesID,
	)

	s.deliver(&DBusNotification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}, id)
	return id, nil
}

// CloseNotification withdraws a live notification. Unknown IDs are ignored.
// D-Bus method: CloseNotification(u) -> nothing
func (s *NotificationServer) CloseNotification(id uint32) *dbus.Error {
	s.logger.Debug("close requested", "id", id)

	s.mu.Lock()
	exists := s.activeIDs[id]
	delete(s.activeIDs, id)
	s.mu.Unlock()

	if !exists {
		return nil
	}

	if s.closeHandler != nil {
		s.closeHandler(id)
	}
	if err := s.EmitNotificationClosed(id, CloseReasonClosed); err != nil {
		s.logger.Warn("failed to report closed notification", "id", id, "error", err)
	}
	return nil
}

// MarkClosed forgets id and reports whether it was live.
func (s *NotificationServer) MarkClosed(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeIDs[id] {
		return false
	}
	delete(s.activeIDs, id)
	return true
}

// NotifyInternal delivers a notice raised by the daemon itself under a fresh
// ID, as if a client had sent it.
func (s *NotificationServer) NotifyInternal(notification *DBusNotification) uint32 {
	id := s.nextID.Add(1)
	s.logger.Debug("daemon notice", "id", id, "summary", notification.Summary)
	s.deliver(notification, id)
	return id
}

func (s *NotificationServer) deliver(n *DBusNotification, id uint32) {
	s.mu.Lock()
	s.activeIDs[id] = true
	s.mu.Unlock()

	if s.notifyHandler != nil {
		s.notifyHandler(n, id)
	}
}

// IsActive reports whether id is live.
func (s *NotificationServer) IsActive(id uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeIDs[id]
}

func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
	}
}
