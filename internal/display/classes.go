package display

import (
	"strings"

	"github.com/jmylchreest/flashui/internal/config"
	"github.com/jmylchreest/flashui/internal/model"
)

// CSS class names used by the popup widgets. Themes style these.
const (
	classMessage  = "flash-message"
	classCategory = "flash-category"
	classText     = "flash-text"
	classDecor    = "flash-decorations"
)

// messageClasses returns the classes for a notification's outer box.
func messageClasses(n *model.Notification) []string {
	classes := []string{classMessage, n.Category.ClassName()}
	if n.Source != "" {
		if source := sanitizeClassName(n.Source); source != "" {
			classes = append(classes, "source-"+source)
		}
	}
	return classes
}

// decorationClasses splits a decoration's class list, e.g. ["blob", "b1"].
func decorationClasses(d model.Decoration) []string {
	return strings.Fields(d.ClassName())
}

// colorSchemeClass returns "light" or "dark" for the configured scheme,
// deferring to the system preference for "system".
func colorSchemeClass(scheme config.ColorScheme, systemDark bool) string {
	switch scheme {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		if systemDark {
			return "dark"
		}
		return "light"
	}
}

// sanitizeClassName converts a string to a valid CSS class name.
// Replaces spaces and special characters with hyphens, lowercases.
func sanitizeClassName(name string) string {
	var result strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			result.WriteRune(r)
			prevHyphen = false
		case r == '-' || r == '_' || r == ' ' || r == '.' || r == '/':
			if !prevHyphen && result.Len() > 0 {
				result.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(result.String(), "-")
}
