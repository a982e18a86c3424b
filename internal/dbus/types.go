package dbus

import (
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/flashui/internal/model"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the flash finished its visible period.
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the flash.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the flash was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined covers every other reason.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Urgency levels from the freedesktop urgency hint.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// CategoryPrefix marks a category hint addressed to flashui, e.g. "flash.success".
const CategoryPrefix = "flash."

// DBusNotification represents an incoming D-Bus Notify call.
type DBusNotification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Urgency extracts the urgency hint. Returns UrgencyNormal if not specified.
func (n *DBusNotification) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return int(b)
		}
	}
	return UrgencyNormal
}

// CategoryHint extracts the raw category hint, or "".
func (n *DBusNotification) CategoryHint() string {
	return n.stringHint("category")
}

// SuppressSound returns true if the suppress-sound hint is set.
func (n *DBusNotification) SuppressSound() bool {
	if v, ok := n.Hints["suppress-sound"]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}

func (n *DBusNotification) stringHint(key string) string {
	if v, ok := n.Hints[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// FlashCategory maps the notification onto a flash category.
//
// The category hint wins when it names a flash category, either prefixed
// ("flash.warning") or bare ("warning"). Freedesktop categories ending in
// ".error" (e.g. "transfer.error") map to error. Otherwise critical urgency
// maps to error and everything else to info.
func (n *DBusNotification) FlashCategory() model.Category {
	hint := strings.ToLower(strings.TrimSpace(n.CategoryHint()))
	if hint != "" {
		name := strings.TrimPrefix(hint, CategoryPrefix)
		if c, ok := model.ParseCategory(name); ok {
			return c
		}
		if strings.HasSuffix(hint, ".error") {
			return model.CategoryError
		}
	}

	if n.Urgency() == UrgencyCritical {
		return model.CategoryError
	}
	return model.CategoryInfo
}

// FlashText joins summary and body into the single flash line.
func (n *DBusNotification) FlashText() string {
	summary := strings.TrimSpace(n.Summary)
	body := strings.Join(strings.Fields(n.Body), " ")
	switch {
	case summary == "":
		return body
	case body == "":
		return summary
	default:
		return summary + ": " + body
	}
}

// ToNotification builds a pending flash notification from the call.
// Returns model.ErrEmptyText when both summary and body are blank.
func (n *DBusNotification) ToNotification() (*model.Notification, error) {
	text := n.FlashText()
	if text == "" {
		return nil, model.ErrEmptyText
	}

	source := n.AppName
	if source == "" {
		source = "dbus"
	}
	return model.NewNotification(source, text, n.FlashCategory())
}

// ServerCapabilities lists the capabilities advertised by flashuid.
var ServerCapabilities = []string{
	"body",  // Body text is shown after the summary
	"sound", // Per-category sound cues
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "flashuid",
		Vendor:      "flashui",
		Version:     "0.0.1",
		SpecVersion: "1.2",
	}
}
