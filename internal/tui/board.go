package tui

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/flashui/internal/layout"
	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/presenter"
	"github.com/jmylchreest/flashui/internal/schedule"
	"github.com/jmylchreest/flashui/internal/surface"
)

const (
	defaultBoardWidth = 40
	minBoardWidth     = 16
)

// Styles holds the lipgloss styles for notification cards.
type Styles struct {
	Card     lipgloss.Style
	Hiding   lipgloss.Style
	Header   lipgloss.Style
	Blob     lipgloss.Style
	Particle lipgloss.Style
	Colors   map[model.Category]lipgloss.Color
}

// DefaultStyles returns the default card styles.
func DefaultStyles() Styles {
	return Styles{
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
		Hiding: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			BorderForeground(lipgloss.Color("8")),
		Header:   lipgloss.NewStyle().Bold(true),
		Blob:     lipgloss.NewStyle().Faint(true),
		Particle: lipgloss.NewStyle().Faint(true),
		Colors: map[model.Category]lipgloss.Color{
			model.CategoryInfo:    lipgloss.Color("12"),
			model.CategorySuccess: lipgloss.Color("10"),
			model.CategoryWarning: lipgloss.Color("11"),
			model.CategoryError:   lipgloss.Color("9"),
		},
	}
}

// Board is a terminal notification host. It keeps the element state in a
// surface.Document and measures heights from the rendered cards.
type Board struct {
	*surface.Document

	mu         sync.RWMutex
	width      int
	lineHeight int
	styles     Styles
}

// NewBoard creates a board. lineHeight converts rendered rows to pixels.
func NewBoard(sched schedule.Scheduler, docOpts surface.Options, lineHeight int, logger *slog.Logger) *Board {
	if lineHeight < 1 {
		lineHeight = 1
	}
	return &Board{
		Document:   surface.NewDocument(sched, docOpts, logger),
		width:      defaultBoardWidth,
		lineHeight: lineHeight,
		styles:     DefaultStyles(),
	}
}

// SetWidth sets the card width in columns.
func (b *Board) SetWidth(width int) {
	if width < minBoardWidth {
		width = minBoardWidth
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width = width
}

// Width returns the card width in columns.
func (b *Board) Width() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.width
}

// Height returns the rendered height of a card in pixels, or 0 if the
// notification is not on the board.
func (b *Board) Height(id string) int {
	el, ok := b.Element(id)
	if !ok {
		return 0
	}
	return lipgloss.Height(b.renderCard(el)) * b.lineHeight
}

// Cards returns the elements that are on screen, ordered by offset.
// Elements still waiting for their reveal are not included.
func (b *Board) Cards() []surface.Element {
	var cards []surface.Element
	for _, el := range b.Elements() {
		if el.HasClass(presenter.ClassShow) || el.HasClass(presenter.ClassHide) {
			cards = append(cards, el)
		}
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Top < cards[j].Top
	})
	return cards
}

// Render draws every on-screen card top to bottom.
func (b *Board) Render() string {
	cards := b.Cards()
	if len(cards) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(cards))
	for _, el := range cards {
		rendered = append(rendered, b.renderCard(el))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func (b *Board) renderCard(el surface.Element) string {
	b.mu.RLock()
	width := b.width
	styles := b.styles
	b.mu.RUnlock()

	color, ok := styles.Colors[el.Category]
	if !ok {
		color = styles.Colors[model.CategoryInfo]
	}

	inner := width - styles.Card.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}

	header := styles.Header.Foreground(color).Render(string(el.Category))
	body := lipgloss.NewStyle().Width(inner).Render(el.Text)
	decorations := renderDecorations(el, inner, styles)

	card := styles.Card.BorderForeground(color).Width(inner + styles.Card.GetHorizontalPadding())
	if el.HasClass(presenter.ClassHide) {
		card = card.Inherit(styles.Hiding).BorderForeground(lipgloss.Color("8"))
	}

	return card.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, decorations))
}

// renderDecorations scatters blob and particle glyphs across one row, with
// positions derived from the element's seed.
func renderDecorations(el surface.Element, width int, styles Styles) string {
	if len(el.Decorations) == 0 || width < 1 {
		return ""
	}

	row := []rune(strings.Repeat(" ", width))
	positions := layout.Scatter(el.Seed, len(el.Decorations), width)
	for i, d := range el.Decorations {
		if i >= len(positions) {
			break
		}
		glyph := '·'
		if d.Kind == model.DecorationBlob {
			glyph = '●'
		}
		row[positions[i]] = glyph
	}

	var sb strings.Builder
	for _, r := range row {
		switch r {
		case '●':
			sb.WriteString(styles.Blob.Render(string(r)))
		case '·':
			sb.WriteString(styles.Particle.Render(string(r)))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
