package daemon

import (
	"sync"
	"time"

	"github.com/jmylchreest/flashui/internal/dbus"
	"github.com/jmylchreest/flashui/internal/model"
)

// DisplayState tracks one D-Bus notification while it is flashed.
// It maps between the flash ULID and the D-Bus notification ID.
type DisplayState struct {
	FlashID       string
	DBusID        uint32
	State         model.State
	Reason        dbus.CloseReason // Why it is closing; zero until decided
	SuppressSound bool
	CreatedAt     time.Time
	ShownAt       time.Time
	ClosedAt      time.Time
}

// DisplayStateManager manages the mapping between flash IDs and D-Bus IDs.
type DisplayStateManager struct {
	mu sync.RWMutex

	byFlashID map[string]*DisplayState
	byDBusID  map[uint32]string
}

// NewDisplayStateManager creates a new DisplayStateManager.
func NewDisplayStateManager() *DisplayStateManager {
	return &DisplayStateManager{
		byFlashID: make(map[string]*DisplayState),
		byDBusID:  make(map[uint32]string),
	}
}

// Register adds a pending flash for a D-Bus ID. If the D-Bus ID was already
// mapped (replaces_id), the previous flash ID is returned so the caller can
// retire it. A zero D-Bus ID registers a flash with no D-Bus counterpart.
func (m *DisplayStateManager) Register(flashID string, dbusID uint32, now time.Time) (previous string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byFlashID[flashID] = &DisplayState{
		FlashID:   flashID,
		DBusID:    dbusID,
		State:     model.StatePending,
		CreatedAt: now,
	}
	if dbusID == 0 {
		return ""
	}

	if old, exists := m.byDBusID[dbusID]; exists && old != flashID {
		previous = old
		if state := m.byFlashID[old]; state != nil {
			// The replaced flash must not close the D-Bus ID that now belongs
			// to its successor.
			state.DBusID = 0
		}
	}
	m.byDBusID[dbusID] = flashID
	return previous
}

// SetSuppressSound records the suppress-sound hint for a flash.
func (m *DisplayStateManager) SetSuppressSound(flashID string, suppress bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state := m.byFlashID[flashID]; state != nil {
		state.SuppressSound = suppress
	}
}

// GetByFlashID returns a copy of the display state for a flash ID.
func (m *DisplayStateManager) GetByFlashID(flashID string) (DisplayState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.byFlashID[flashID]
	if !ok {
		return DisplayState{}, false
	}
	return *state, true
}

// GetByDBusID returns a copy of the display state for a D-Bus ID.
func (m *DisplayStateManager) GetByDBusID(dbusID uint32) (DisplayState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	flashID, ok := m.byDBusID[dbusID]
	if !ok {
		return DisplayState{}, false
	}
	state, ok := m.byFlashID[flashID]
	if !ok {
		return DisplayState{}, false
	}
	return *state, true
}

// FlashIDByDBusID returns the flash ID for a D-Bus ID.
func (m *DisplayStateManager) FlashIDByDBusID(dbusID uint32) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byDBusID[dbusID]
	return id, ok
}

// SetState records a lifecycle transition.
func (m *DisplayStateManager) SetState(flashID string, state model.State, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.byFlashID[flashID]
	if !exists {
		return
	}
	s.State = state
	switch state {
	case model.StateShown:
		s.ShownAt = at
	case model.StateRemoved:
		s.ClosedAt = at
	}
}

// SetReason records why a flash is closing. The first reason wins.
func (m *DisplayStateManager) SetReason(flashID string, reason dbus.CloseReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, exists := m.byFlashID[flashID]; exists && s.Reason == 0 {
		s.Reason = reason
	}
}

// Remove deletes a flash and returns its final state.
func (m *DisplayStateManager) Remove(flashID string) (DisplayState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, exists := m.byFlashID[flashID]
	if !exists {
		return DisplayState{}, false
	}
	delete(m.byFlashID, flashID)
	if current, ok := m.byDBusID[state.DBusID]; ok && current == flashID {
		delete(m.byDBusID, state.DBusID)
	}
	return *state, true
}

// Count returns the number of tracked flashes.
func (m *DisplayStateManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byFlashID)
}

// ActiveCount returns the number of flashes currently on screen.
func (m *DisplayStateManager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, state := range m.byFlashID {
		if state.State == model.StateShown || state.State == model.StateHiding {
			count++
		}
	}
	return count
}
