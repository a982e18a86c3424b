package presenter

import (
	"github.com/jmylchreest/flashui/internal/model"
)

// Class names toggled on notifications.
const (
	ClassShow = "show"
	ClassHide = "hide"
)

// PropertyOpacity is the animated property whose completion ends a hide.
const PropertyOpacity = "opacity"

// Host is a rendering target holding a single notification container.
// All methods are called with the presenter's lock held and must not call
// back into the presenter synchronously.
type Host interface {
	// EnsureContainer locates the container, creating it if missing.
	EnsureContainer() error
	// Adopt moves the notification's element into the container.
	Adopt(n *model.Notification) error
	// Decorate appends decorative children to the notification's element.
	Decorate(id string, decorations []model.Decoration)
	// SetClass adds or removes a class on the notification's element.
	SetClass(id, class string, on bool)
	// SetTop sets the vertical offset of the notification's element.
	SetTop(id string, px int)
	// Height returns the measured height, or 0 if not laid out.
	Height(id string) int
	// Remove detaches the notification's element.
	Remove(id string)
}
