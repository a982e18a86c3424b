package display

import (
	"log/slog"
	"sort"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/flashui/internal/config"
	"github.com/jmylchreest/flashui/internal/layout"
	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/surface"
)

// layerNamespace identifies flashui surfaces to the compositor.
const layerNamespace = "flashui"

// decorationSpread is the horizontal range, in pixels, decorations are
// scattered across.
const decorationSpread = 240

// Popup is the layer-shell window for one flash notification. It is built
// hidden when the notification is adopted and presented on reveal.
type Popup struct {
	id     string
	seed   int64
	width  int
	logger *slog.Logger

	window      *gtk.Window
	box         *gtk.Box
	categoryLbl *gtk.Label
	textLbl     *gtk.Label
	decorBox    *gtk.Box

	onClick func()

	presented bool
	closed    bool
}

// NewPopup builds the widgets for n. Nothing is shown until Present.
func NewPopup(app *gtk.Application, n *model.Notification, cfg *config.Config, logger *slog.Logger) *Popup {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Popup{
		id:     n.ID,
		seed:   n.Seed,
		width:  cfg.Layout.Width,
		logger: logger,
	}

	p.window = gtk.NewWindow()
	p.window.SetApplication(app)
	p.window.SetDecorated(false)
	p.window.SetResizable(false)
	p.window.SetDefaultSize(p.width, -1)
	p.window.SetSizeRequest(p.width, -1)
	p.window.AddCSSClass(surface.ContainerClass)
	p.window.AddCSSClass(colorSchemeClass(config.ColorScheme(cfg.Theme.ColorScheme), adw.StyleManagerGetDefault().Dark()))

	layershell.InitForWindow(p.window)
	layershell.SetLayer(p.window, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(p.window, 0)
	layershell.SetKeyboardMode(p.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(p.window, layerNamespace)

	p.buildUI(n)
	p.connectSignals()

	return p
}

func (p *Popup) buildUI(n *model.Notification) {
	p.box = gtk.NewBox(gtk.OrientationVertical, 4)
	for _, class := range messageClasses(n) {
		p.box.AddCSSClass(class)
	}

	p.categoryLbl = gtk.NewLabel(string(n.Category))
	p.categoryLbl.AddCSSClass(classCategory)
	p.categoryLbl.SetXAlign(0)
	p.box.Append(p.categoryLbl)

	p.textLbl = gtk.NewLabel(n.Text)
	p.textLbl.AddCSSClass(classText)
	p.textLbl.SetXAlign(0)
	p.textLbl.SetWrap(true)
	p.textLbl.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
	p.textLbl.SetMaxWidthChars(48)
	p.box.Append(p.textLbl)

	p.decorBox = gtk.NewBox(gtk.OrientationHorizontal, 0)
	p.decorBox.AddCSSClass(classDecor)
	p.decorBox.SetCanTarget(false)
	p.box.Append(p.decorBox)

	p.window.SetChild(p.box)
}

func (p *Popup) connectSignals() {
	click := gtk.NewGestureClick()
	click.SetButton(gdk.BUTTON_PRIMARY)
	click.ConnectReleased(func(nPress int, x, y float64) {
		if p.onClick != nil {
			p.onClick()
		}
	})
	p.window.AddController(click)
}

// OnClick sets the function called when the popup is clicked.
func (p *Popup) OnClick(fn func()) {
	p.onClick = fn
}

// Decorate appends the decorative children, scattered by the popup's seed.
func (p *Popup) Decorate(decorations []model.Decoration) {
	positions := layout.Scatter(p.seed, len(decorations), decorationSpread)
	sort.Ints(positions)

	prev := 0
	for i, d := range decorations {
		child := gtk.NewBox(gtk.OrientationHorizontal, 0)
		for _, class := range decorationClasses(d) {
			child.AddCSSClass(class)
		}
		child.SetVAlign(gtk.AlignCenter)
		if i < len(positions) {
			child.SetMarginStart(positions[i] - prev)
			prev = positions[i]
		}
		p.decorBox.Append(child)
	}
}

// SetClass toggles a class on the message box.
func (p *Popup) SetClass(class string, on bool) {
	if p.closed {
		return
	}
	if on {
		p.box.AddCSSClass(class)
	} else {
		p.box.RemoveCSSClass(class)
	}
}

// SetMonitor pins the popup to a monitor. nil leaves the choice to the compositor.
func (p *Popup) SetMonitor(monitor *gdk.Monitor) {
	if monitor == nil || p.closed {
		return
	}
	layershell.SetMonitor(p.window, monitor)
}

// Place sets the layer-shell anchors and margins.
func (p *Popup) Place(anchor layout.Anchor, margins layout.Margins) {
	if p.closed {
		return
	}
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeTop, anchor.Top)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeBottom, anchor.Bottom)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeLeft, anchor.Left)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeRight, anchor.Right)

	layershell.SetMargin(p.window, layershell.LayerShellEdgeTop, margins.Top)
	layershell.SetMargin(p.window, layershell.LayerShellEdgeBottom, margins.Bottom)
	layershell.SetMargin(p.window, layershell.LayerShellEdgeLeft, margins.Left)
	layershell.SetMargin(p.window, layershell.LayerShellEdgeRight, margins.Right)
}

// Present maps the window. Later calls do nothing.
func (p *Popup) Present() {
	if p.presented || p.closed {
		return
	}
	p.presented = true
	p.window.Present()
}

// Height returns the natural height of the window at its configured width.
func (p *Popup) Height() int {
	if p.closed {
		return 0
	}
	_, natural, _, _ := p.window.Measure(gtk.OrientationVertical, p.width)
	return natural
}

// Close destroys the window.
func (p *Popup) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.window.Destroy()
	p.logger.Debug("closed popup", "id", p.id)
}
