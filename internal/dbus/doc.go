// Package dbus implements the part of org.freedesktop.Notifications that
// flashuid needs: Notify, CloseNotification, GetCapabilities,
// GetServerInformation and the NotificationClosed signal. It also carries a
// small client used by "flashui send" and a passive monitor for running next
// to another notification daemon.
package dbus
