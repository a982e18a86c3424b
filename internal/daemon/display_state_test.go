package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/flashui/internal/dbus"
	"github.com/jmylchreest/flashui/internal/model"
)

func TestDisplayStateManager_Register(t *testing.T) {
	m := NewDisplayStateManager()

	assert.Empty(t, m.Register("flash-1", 10, epoch))

	state, ok := m.GetByFlashID("flash-1")
	require.True(t, ok)
	assert.Equal(t, uint32(10), state.DBusID)
	assert.Equal(t, model.StatePending, state.State)
	assert.Equal(t, epoch, state.CreatedAt)

	byDBus, ok := m.GetByDBusID(10)
	require.True(t, ok)
	assert.Equal(t, "flash-1", byDBus.FlashID)

	id, ok := m.FlashIDByDBusID(10)
	assert.True(t, ok)
	assert.Equal(t, "flash-1", id)

	_, ok = m.GetByDBusID(11)
	assert.False(t, ok)
}

func TestDisplayStateManager_Replacement(t *testing.T) {
	m := NewDisplayStateManager()
	m.Register("flash-1", 10, epoch)

	previous := m.Register("flash-2", 10, epoch)
	assert.Equal(t, "flash-1", previous)

	id, _ := m.FlashIDByDBusID(10)
	assert.Equal(t, "flash-2", id)

	old, ok := m.GetByFlashID("flash-1")
	require.True(t, ok)
	assert.Zero(t, old.DBusID, "replaced flash no longer owns the D-Bus ID")

	// Removing the replaced flash keeps the successor's mapping.
	m.Remove("flash-1")
	id, ok = m.FlashIDByDBusID(10)
	assert.True(t, ok)
	assert.Equal(t, "flash-2", id)
}

func TestDisplayStateManager_StateAndReason(t *testing.T) {
	m := NewDisplayStateManager()
	m.Register("flash-1", 1, epoch)
	m.Register("flash-2", 2, epoch)

	shownAt := epoch.Add(500 * time.Millisecond)
	m.SetState("flash-1", model.StateShown, shownAt)
	m.SetState("flash-2", model.StateShown, shownAt)
	m.SetState("flash-2", model.StateHiding, shownAt)
	m.SetState("missing", model.StateShown, shownAt)
	assert.Equal(t, 2, m.ActiveCount())
	assert.Equal(t, 2, m.Count())

	m.SetReason("flash-1", dbus.CloseReasonDismissed)
	m.SetReason("flash-1", dbus.CloseReasonClosed)
	m.SetState("flash-1", model.StateRemoved, shownAt.Add(time.Second))

	state, ok := m.Remove("flash-1")
	require.True(t, ok)
	assert.Equal(t, dbus.CloseReasonDismissed, state.Reason, "first reason wins")
	assert.Equal(t, shownAt, state.ShownAt)
	assert.Equal(t, shownAt.Add(time.Second), state.ClosedAt)

	_, ok = m.Remove("flash-1")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Count())
}

func TestDisplayStateManager_SuppressSound(t *testing.T) {
	m := NewDisplayStateManager()
	m.Register("flash-1", 1, epoch)
	m.SetSuppressSound("flash-1", true)
	m.SetSuppressSound("missing", true)

	state, _ := m.GetByFlashID("flash-1")
	assert.True(t, state.SuppressSound)
}

func TestDisplayStateManager_ZeroDBusIDNeverReplaces(t *testing.T) {
	m := NewDisplayStateManager()
	assert.Empty(t, m.Register("flash-1", 0, epoch))
	assert.Empty(t, m.Register("flash-2", 0, epoch))
	assert.Equal(t, 2, m.Count())

	_, ok := m.FlashIDByDBusID(0)
	assert.False(t, ok)
}
