package display

import (
	"log/slog"
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
)

// selectMonitor returns the configured monitor. 0 means the compositor
// chooses (nil); numbers are 1-indexed and fall back to the first monitor
// when out of range.
func selectMonitor(display *gdk.Display, monitorNum int, logger *slog.Logger) *gdk.Monitor {
	if display == nil || monitorNum == 0 {
		return nil
	}

	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		logger.Warn("no monitors available")
		return nil
	}

	index := uint(monitorNum - 1)
	if index >= monitors.NItems() {
		logger.Warn("configured monitor not available, using first",
			"configured", monitorNum,
			"available", monitors.NItems(),
		)
		index = 0
	}

	return wrapMonitor(monitors.Item(index))
}

// wrapMonitor wraps a glib.Object as a gdk.Monitor. gotk4 does not export its
// own wrapper; gdk.Monitor embeds *glib.Object so the layouts match.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
