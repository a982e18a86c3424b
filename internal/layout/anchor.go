package layout

import (
	"github.com/jmylchreest/flashui/internal/config"
)

// Anchor describes which screen edges the notification column is attached to.
type Anchor struct {
	Top    bool
	Bottom bool
	Left   bool
	Right  bool
}

// Margins are pixel distances from the anchored edges.
type Margins struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// AnchorFor returns the anchor for a configured position. Unknown positions
// fall back to top-right. Centered positions anchor neither left nor right.
func AnchorFor(position config.Position) Anchor {
	switch position {
	case config.PositionTopLeft:
		return Anchor{Top: true, Left: true}
	case config.PositionTopCenter:
		return Anchor{Top: true}
	case config.PositionBottomLeft:
		return Anchor{Bottom: true, Left: true}
	case config.PositionBottomRight:
		return Anchor{Bottom: true, Right: true}
	case config.PositionBottomCenter:
		return Anchor{Bottom: true}
	default:
		return Anchor{Top: true, Right: true}
	}
}

// Margins returns the margins for an item placed at offset top within the
// column. Bottom-anchored columns grow upwards, so the offset is applied to
// the bottom margin.
func (a Anchor) Margins(offsetX, offsetY, top int) Margins {
	var m Margins
	if a.Bottom {
		m.Bottom = offsetY + top
	} else {
		m.Top = offsetY + top
	}
	if a.Left {
		m.Left = offsetX
	}
	if a.Right {
		m.Right = offsetX
	}
	return m
}

// IsBottom returns true if the column is attached to the bottom edge.
func (a Anchor) IsBottom() bool {
	return a.Bottom
}
