package presenter

import (
	"time"

	"github.com/jmylchreest/flashui/internal/model"
)

// EventKind distinguishes lifecycle transitions from restacking moves.
type EventKind string

const (
	EventTransition EventKind = "transition"
	EventMove       EventKind = "move"
)

// Event describes a change to one notification.
// For moves, From and To are both the current state.
type Event struct {
	Kind     EventKind      `json:"kind" yaml:"kind"`
	ID       string         `json:"id" yaml:"id"`
	Index    int            `json:"index" yaml:"index"`
	Text     string         `json:"text" yaml:"text"`
	Category model.Category `json:"category" yaml:"category"`
	From     model.State    `json:"from" yaml:"from"`
	To       model.State    `json:"to" yaml:"to"`
	Offset   int            `json:"offset" yaml:"offset"`
	At       time.Time      `json:"at" yaml:"at"`
}

// Subscriber receives events after the presenter has released its lock.
type Subscriber func(Event)
