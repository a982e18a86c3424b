// Package daemon holds the toolkit-independent parts of flashuid: the bridge
// between D-Bus notifications and the presenter, the flash/D-Bus ID mapping,
// config hot reload and the daemon's own notices.
package daemon
