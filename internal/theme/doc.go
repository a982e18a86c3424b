// Package theme loads the CSS used by the GTK flash notification host.
// Themes are resolved from ~/.config/flashui/themes/ first, then from the
// bundled set. The exit transition duration is appended to every theme so
// the CSS fade matches the configured timing.
package theme
