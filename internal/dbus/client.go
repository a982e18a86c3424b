package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/flashui/internal/model"
)

// Message is a flash sent to the running notification server.
type Message struct {
	AppName  string
	Text     string
	Category model.Category
	// ReplacesID reuses an earlier notification ID; 0 allocates a new one.
	ReplacesID uint32
}

// Hints builds the Notify hints for a message.
func (m Message) Hints() map[string]dbus.Variant {
	category := m.Category
	if category == "" {
		category = model.CategoryInfo
	}

	urgency := byte(UrgencyNormal)
	if category == model.CategoryError {
		urgency = UrgencyCritical
	}

	return map[string]dbus.Variant{
		"category": dbus.MakeVariant(CategoryPrefix + string(category)),
		"urgency":  dbus.MakeVariant(urgency),
	}
}

// Send delivers a message over the session bus and returns the assigned ID.
func Send(ctx context.Context, msg Message) (uint32, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return 0, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return SendOn(ctx, conn, msg)
}

// SendOn delivers a message over an existing connection.
func SendOn(ctx context.Context, conn *dbus.Conn, msg Message) (uint32, error) {
	if msg.Text == "" {
		return 0, model.ErrEmptyText
	}
	appName := msg.AppName
	if appName == "" {
		appName = "flashui"
	}

	obj := conn.Object(DBusBusName, DBusPath)
	call := obj.CallWithContext(ctx, DBusInterface+".Notify", 0,
		appName, msg.ReplacesID, "", msg.Text, "", []string{}, msg.Hints(), int32(-1))
	if call.Err != nil {
		return 0, fmt.Errorf("failed to call Notify: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("failed to read notification id: %w", err)
	}
	return id, nil
}

// Close asks the server to close a notification.
func Close(ctx context.Context, id uint32) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	call := conn.Object(DBusBusName, DBusPath).CallWithContext(ctx, DBusInterface+".CloseNotification", 0, id)
	if call.Err != nil {
		return fmt.Errorf("failed to call CloseNotification: %w", call.Err)
	}
	return nil
}

// ServerInformation queries the running server's identity.
func ServerInformation(ctx context.Context) (ServerInfo, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return ServerInfo{}, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	var info ServerInfo
	call := conn.Object(DBusBusName, DBusPath).CallWithContext(ctx, DBusInterface+".GetServerInformation", 0)
	if err := call.Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion); err != nil {
		return ServerInfo{}, fmt.Errorf("failed to get server information: %w", err)
	}
	return info, nil
}
