package dbus

import (
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const notifyMatchRule = "type='method_call',interface='org.freedesktop.Notifications',member='Notify'"

// Monitor observes Notify calls addressed to another notification daemon so
// flashui can flash them without owning the bus name.
type Monitor struct {
	conn   *dbus.Conn
	logger *slog.Logger

	onNotify NotificationHandler
}

// NewMonitor creates a new notification monitor.
func NewMonitor(logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{logger: logger}
}

// SetNotifyHandler sets the callback for observed notifications.
func (m *Monitor) SetNotifyHandler(handler NotificationHandler) {
	m.onNotify = handler
}

// Start begins monitoring. A monitor needs a private connection because
// BecomeMonitor turns it read-only.
func (m *Monitor) Start() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	m.conn = conn

	err = conn.BusObject().Call(
		"org.freedesktop.DBus.Monitoring.BecomeMonitor", 0,
		[]string{notifyMatchRule}, uint32(0),
	).Err
	if err != nil {
		m.logger.Warn("BecomeMonitor not available, trying AddMatch", "error", err)
		if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, notifyMatchRule+",eavesdrop='true'").Err; err != nil {
			return fmt.Errorf("failed to add match rule (eavesdrop may require permissions): %w", err)
		}
	}

	m.logger.Info("started D-Bus notification monitor")
	go m.processMessages()
	return nil
}

func (m *Monitor) processMessages() {
	ch := make(chan *dbus.Message, 100)
	m.conn.Eavesdrop(ch)

	for msg := range ch {
		if !isNotifyCall(msg) {
			continue
		}

		notification, err := parseNotifyBody(msg.Body)
		if err != nil {
			m.logger.Warn("malformed Notify call", "error", err)
			continue
		}

		id := monitorID(notification)
		m.logger.Debug("observed notification", "app", notification.AppName, "summary", notification.Summary, "id", id)
		if m.onNotify != nil {
			m.onNotify(notification, id)
		}
	}
}

func isNotifyCall(msg *dbus.Message) bool {
	if msg.Type != dbus.TypeMethodCall {
		return false
	}
	iface, ok := msg.Headers[dbus.FieldInterface]
	if !ok || iface.Value() != DBusInterface {
		return false
	}
	member, ok := msg.Headers[dbus.FieldMember]
	return ok && member.Value() == "Notify"
}

var errMalformedNotify = errors.New("malformed Notify arguments")

// parseNotifyBody decodes Notify(susssasa{sv}i) arguments.
func parseNotifyBody(body []interface{}) (*DBusNotification, error) {
	if len(body) < 8 {
		return nil, fmt.Errorf("%w: %d arguments", errMalformedNotify, len(body))
	}

	n := &DBusNotification{}
	var ok bool
	if n.AppName, ok = body[0].(string); !ok {
		return nil, fmt.Errorf("%w: app_name", errMalformedNotify)
	}
	if n.ReplacesID, ok = body[1].(uint32); !ok {
		return nil, fmt.Errorf("%w: replaces_id", errMalformedNotify)
	}
	if n.AppIcon, ok = body[2].(string); !ok {
		return nil, fmt.Errorf("%w: app_icon", errMalformedNotify)
	}
	if n.Summary, ok = body[3].(string); !ok {
		return nil, fmt.Errorf("%w: summary", errMalformedNotify)
	}
	if n.Body, ok = body[4].(string); !ok {
		return nil, fmt.Errorf("%w: body", errMalformedNotify)
	}
	n.Actions, _ = body[5].([]string)
	n.Hints, _ = body[6].(map[string]dbus.Variant)
	n.ExpireTimeout, _ = body[7].(int32)
	return n, nil
}

// monitorID derives a stable pseudo-ID; the real ID is in the reply, which a
// monitor never sees.
func monitorID(n *DBusNotification) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(n.AppName))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(n.Summary))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(n.Body))
	return h.Sum32()
}

// Stop closes the private connection.
func (m *Monitor) Stop() error {
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
