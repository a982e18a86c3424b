// Package display is the GTK4 flash notification host. Each notification is
// a Wayland layer-shell window; the presenter's stacking offsets become
// layer-shell margins and the show/hide classes drive the theme's CSS fade.
package display
