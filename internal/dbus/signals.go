package dbus

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when a signal is emitted before Start.
var ErrNotConnected = errors.New("not connected to D-Bus")

// EmitNotificationClosed emits the NotificationClosed signal.
func (s *NotificationServer) EmitNotificationClosed(id uint32, reason CloseReason) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	if err := conn.Emit(DBusPath, DBusInterface+".NotificationClosed", id, uint32(reason)); err != nil {
		return fmt.Errorf("failed to emit NotificationClosed signal: %w", err)
	}

	s.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", reason.String())
	return nil
}

// CloseWithReason marks a notification closed and emits the signal.
// Inactive IDs are ignored so a flash closed by request is not reported twice.
func (s *NotificationServer) CloseWithReason(id uint32, reason CloseReason) error {
	if !s.MarkClosed(id) {
		return nil
	}
	return s.EmitNotificationClosed(id, reason)
}
