package model

import "strconv"

// DecorationKind identifies a decorative child element.
type DecorationKind string

const (
	DecorationBlob     DecorationKind = "blob"
	DecorationParticle DecorationKind = "particle"
)

// Decoration is a purely visual child element appended to a notification.
type Decoration struct {
	Kind    DecorationKind `json:"kind" yaml:"kind"`
	Ordinal int            `json:"ordinal" yaml:"ordinal"`
}

// ClassName returns the class list for the decoration, e.g. "blob b1" or "particle p3".
func (d Decoration) ClassName() string {
	short := "b"
	if d.Kind == DecorationParticle {
		short = "p"
	}
	return string(d.Kind) + " " + short + strconv.Itoa(d.Ordinal)
}

// NewDecorations returns blobs then particles, numbered from 1.
func NewDecorations(blobs, particles int) []Decoration {
	if blobs < 0 {
		blobs = 0
	}
	if particles < 0 {
		particles = 0
	}

	decorations := make([]Decoration, 0, blobs+particles)
	for i := 1; i <= blobs; i++ {
		decorations = append(decorations, Decoration{Kind: DecorationBlob, Ordinal: i})
	}
	for i := 1; i <= particles; i++ {
		decorations = append(decorations, Decoration{Kind: DecorationParticle, Ordinal: i})
	}
	return decorations
}
