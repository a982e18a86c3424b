// Package layout computes where flash notifications sit inside their container
// and where the container sits on screen.
package layout

// Item is one visible notification in display order.
type Item struct {
	ID     string
	Height int // Measured height; zero or negative means not laid out yet
}

// Placement is the computed vertical offset for an Item.
type Placement struct {
	ID     string
	Top    int
	Height int // Height used for the computation, after fallback
}

// Stack places items top to bottom. Each item gets the running offset, then
// the offset grows by its height plus spacing. Heights that are zero or
// negative are replaced with fallback.
func Stack(items []Item, spacing, fallback int) []Placement {
	placements := make([]Placement, 0, len(items))
	offset := 0
	for _, item := range items {
		h := item.Height
		if h <= 0 {
			h = fallback
		}
		placements = append(placements, Placement{
			ID:     item.ID,
			Top:    offset,
			Height: h,
		})
		offset += h + spacing
	}
	return placements
}

// Extent returns the total height occupied by placements, excluding the
// trailing spacing.
func Extent(placements []Placement) int {
	if len(placements) == 0 {
		return 0
	}
	last := placements[len(placements)-1]
	return last.Top + last.Height
}

// Stacker holds the stacking parameters.
type Stacker struct {
	spacing  int
	fallback int
}

// NewStacker creates a stacker. Negative spacing is treated as zero and a
// non-positive fallback as one.
func NewStacker(spacing, fallback int) *Stacker {
	if spacing < 0 {
		spacing = 0
	}
	if fallback < 1 {
		fallback = 1
	}
	return &Stacker{spacing: spacing, fallback: fallback}
}

// Stack places items with the stacker's parameters.
func (s *Stacker) Stack(items []Item) []Placement {
	return Stack(items, s.spacing, s.fallback)
}

// Spacing returns the gap between items.
func (s *Stacker) Spacing() int {
	return s.spacing
}

// Fallback returns the height used for items that are not laid out.
func (s *Stacker) Fallback() int {
	return s.fallback
}
