package presenter

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/flashui/internal/model"
)

var (
	// ErrClosed is returned when claiming notifications after Close.
	ErrClosed = errors.New("presenter is closed")
	// ErrAlreadyClaimed is returned for a notification that is tracked or not pending.
	ErrAlreadyClaimed = errors.New("notification already claimed")
	// ErrNilNotification is returned when claiming a nil notification.
	ErrNilNotification = errors.New("notification is nil")
)

// TransitionError indicates a lifecycle edge that the state machine does not allow.
type TransitionError struct {
	ID   string
	From model.State
	To   model.State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no transition from state '%s' to '%s' for notification %s", e.From, e.To, e.ID)
}

// NewTransitionError creates a TransitionError.
func NewTransitionError(id string, from, to model.State) *TransitionError {
	return &TransitionError{
		ID:   id,
		From: from,
		To:   to,
	}
}

// IsTransitionError reports whether err is or wraps a TransitionError.
func IsTransitionError(err error) bool {
	var e *TransitionError
	return errors.As(err, &e)
}
