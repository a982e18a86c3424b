package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/flashui/internal/config"
)

func TestStack(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  []Placement
	}{
		{
			name:  "empty",
			items: nil,
			want:  []Placement{},
		},
		{
			name:  "single",
			items: []Item{{ID: "a", Height: 40}},
			want:  []Placement{{ID: "a", Top: 0, Height: 40}},
		},
		{
			name: "cumulative height plus spacing",
			items: []Item{
				{ID: "a", Height: 40},
				{ID: "b", Height: 50},
				{ID: "c", Height: 30},
			},
			want: []Placement{
				{ID: "a", Top: 0, Height: 40},
				{ID: "b", Top: 50, Height: 50},
				{ID: "c", Top: 110, Height: 30},
			},
		},
		{
			name: "zero and negative heights use fallback",
			items: []Item{
				{ID: "a", Height: 0},
				{ID: "b", Height: -5},
				{ID: "c", Height: 40},
			},
			want: []Placement{
				{ID: "a", Top: 0, Height: 60},
				{ID: "b", Top: 70, Height: 60},
				{ID: "c", Top: 140, Height: 40},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stack(tt.items, 10, 60))
		})
	}
}

func TestStack_OffsetsStrictlyIncreasing(t *testing.T) {
	items := []Item{{ID: "a", Height: 1}, {ID: "b"}, {ID: "c", Height: 100}, {ID: "d", Height: 3}}
	placements := Stack(items, 0, 1)
	for i := 1; i < len(placements); i++ {
		assert.Greater(t, placements[i].Top, placements[i-1].Top)
	}
}

func TestStack_PreservesOrder(t *testing.T) {
	items := []Item{{ID: "z"}, {ID: "a"}, {ID: "m"}}
	placements := Stack(items, 10, 60)
	ids := make([]string, len(placements))
	for i, p := range placements {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids)
}

func TestExtent(t *testing.T) {
	assert.Equal(t, 0, Extent(nil))
	placements := Stack([]Item{{ID: "a", Height: 40}, {ID: "b", Height: 50}}, 10, 60)
	assert.Equal(t, 100, Extent(placements))
}

func TestStacker(t *testing.T) {
	s := NewStacker(10, 60)
	assert.Equal(t, 10, s.Spacing())
	assert.Equal(t, 60, s.Fallback())
	assert.Equal(t, Stack([]Item{{ID: "a"}, {ID: "b"}}, 10, 60), s.Stack([]Item{{ID: "a"}, {ID: "b"}}))

	clamped := NewStacker(-3, 0)
	assert.Equal(t, 0, clamped.Spacing())
	assert.Equal(t, 1, clamped.Fallback())
}

func TestAnchorFor(t *testing.T) {
	tests := []struct {
		position config.Position
		want     Anchor
	}{
		{config.PositionTopLeft, Anchor{Top: true, Left: true}},
		{config.PositionTopRight, Anchor{Top: true, Right: true}},
		{config.PositionTopCenter, Anchor{Top: true}},
		{config.PositionBottomLeft, Anchor{Bottom: true, Left: true}},
		{config.PositionBottomRight, Anchor{Bottom: true, Right: true}},
		{config.PositionBottomCenter, Anchor{Bottom: true}},
		{config.Position("nowhere"), Anchor{Top: true, Right: true}},
	}

	for _, tt := range tests {
		t.Run(string(tt.position), func(t *testing.T) {
			assert.Equal(t, tt.want, AnchorFor(tt.position))
		})
	}
}

func TestAnchor_Margins(t *testing.T) {
	top := AnchorFor(config.PositionTopRight)
	assert.Equal(t, Margins{Top: 80, Right: 10}, top.Margins(10, 10, 70))
	assert.False(t, top.IsBottom())

	bottom := AnchorFor(config.PositionBottomLeft)
	assert.Equal(t, Margins{Bottom: 80, Left: 10}, bottom.Margins(10, 10, 70))
	assert.True(t, bottom.IsBottom())

	center := AnchorFor(config.PositionTopCenter)
	assert.Equal(t, Margins{Top: 10}, center.Margins(10, 10, 0))
}
