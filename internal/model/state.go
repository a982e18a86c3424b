package model

import "fmt"

// State is the lifecycle state of a notification in the presenter.
type State int

const (
	// StatePending means the notification is claimed and waiting for its reveal.
	StatePending State = iota
	// StateShown means the notification is visible and counting down.
	StateShown
	// StateHiding means the exit transition is running.
	StateHiding
	// StateRemoved means the notification has been detached. Terminal.
	StateRemoved
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateShown:
		return "shown"
	case StateHiding:
		return "hiding"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so states serialize by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pending":
		*s = StatePending
	case "shown":
		*s = StateShown
	case "hiding":
		*s = StateHiding
	case "removed":
		*s = StateRemoved
	default:
		return fmt.Errorf("unknown state %q", string(text))
	}
	return nil
}

// Visible reports whether the notification takes part in stacking.
func (s State) Visible() bool {
	return s == StateShown
}

// CanTransition reports whether moving from s to next is a legal lifecycle edge.
// pending may skip straight to removed when dismissed before its reveal.
func (s State) CanTransition(next State) bool {
	switch s {
	case StatePending:
		return next == StateShown || next == StateRemoved
	case StateShown:
		return next == StateHiding
	case StateHiding:
		return next == StateRemoved
	default:
		return false
	}
}
