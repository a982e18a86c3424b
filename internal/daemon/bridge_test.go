package daemon

import (
	"sync"
	"testing"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/flashui/internal/dbus"
	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/presenter"
	"github.com/jmylchreest/flashui/internal/schedule"
	"github.com/jmylchreest/flashui/internal/surface"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type closed struct {
	id     uint32
	reason dbus.CloseReason
}

type fakeCloser struct {
	mu    sync.Mutex
	calls []closed
}

func (f *fakeCloser) CloseWithReason(id uint32, reason dbus.CloseReason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, closed{id, reason})
	return nil
}

func (f *fakeCloser) all() []closed {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]closed(nil), f.calls...)
}

type bridgeFixture struct {
	bridge *Bridge
	p      *presenter.Presenter
	sched  *schedule.Manual
	closer *fakeCloser
}

func newBridgeFixture(t *testing.T) *bridgeFixture {
	t.Helper()
	sched := schedule.NewManual(epoch)
	doc := surface.NewDocument(sched, surface.Options{Transition: 400 * time.Millisecond, DefaultHeight: 40}, nil)
	p := presenter.New(doc, sched, presenter.DefaultOptions(), nil)
	doc.OnAnimationFinished(p.AnimationFinished)
	t.Cleanup(p.Close)

	closer := &fakeCloser{}
	b := NewBridge(p, closer, nil)
	b.now = sched.Now
	p.Subscribe(b.HandleEvent)
	return &bridgeFixture{bridge: b, p: p, sched: sched, closer: closer}
}

func (f *bridgeFixture) advanceTo(at time.Duration) {
	f.sched.AdvanceTo(epoch.Add(at))
}

func notification(summary string, hints map[string]godbus.Variant) *dbus.DBusNotification {
	return &dbus.DBusNotification{AppName: "test", Summary: summary, Hints: hints}
}

func TestBridge_ExpiredFlashReportsExpired(t *testing.T) {
	f := newBridgeFixture(t)

	f.bridge.HandleNotify(notification("hello", map[string]godbus.Variant{
		"category": godbus.MakeVariant("flash.success"),
	}), 1)

	flashID, ok := f.bridge.States().FlashIDByDBusID(1)
	require.True(t, ok)

	snap := f.p.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, model.CategorySuccess, snap[0].Category)
	assert.Equal(t, "hello", snap[0].Text)

	f.advanceTo(0)
	state, _ := f.bridge.States().GetByFlashID(flashID)
	assert.Equal(t, model.StateShown, state.State)
	assert.Equal(t, 1, f.bridge.States().ActiveCount())

	// 2500ms visible plus the 400ms fade.
	f.advanceTo(2899 * time.Millisecond)
	assert.Empty(t, f.closer.all())

	f.advanceTo(2900 * time.Millisecond)
	assert.Equal(t, []closed{{1, dbus.CloseReasonExpired}}, f.closer.all())
	assert.Equal(t, 0, f.bridge.States().Count())
}

func TestBridge_CloseRequestReportsClosed(t *testing.T) {
	f := newBridgeFixture(t)
	f.bridge.HandleNotify(notification("one", nil), 1)
	f.advanceTo(100 * time.Millisecond)

	f.bridge.HandleClose(1)
	f.advanceTo(500 * time.Millisecond)

	assert.Equal(t, []closed{{1, dbus.CloseReasonClosed}}, f.closer.all())
	assert.True(t, f.p.Idle())
}

func TestBridge_ClosePendingRemovesImmediately(t *testing.T) {
	f := newBridgeFixture(t)
	f.bridge.HandleNotify(notification("one", nil), 1)
	f.bridge.HandleNotify(notification("two", nil), 2)
	f.advanceTo(100 * time.Millisecond)

	f.bridge.HandleClose(2)
	assert.Equal(t, []closed{{2, dbus.CloseReasonClosed}}, f.closer.all())
	assert.Equal(t, 1, f.p.Len())
}

func TestBridge_CloseUnknownIsIgnored(t *testing.T) {
	f := newBridgeFixture(t)
	f.bridge.HandleClose(77)
	assert.Empty(t, f.closer.all())
}

func TestBridge_UserDismissReportsDismissed(t *testing.T) {
	f := newBridgeFixture(t)
	f.bridge.HandleNotify(notification("one", nil), 3)
	f.advanceTo(0)

	flashID, _ := f.bridge.States().FlashIDByDBusID(3)
	f.bridge.HandleDismiss(flashID)
	f.advanceTo(400 * time.Millisecond)

	assert.Equal(t, []closed{{3, dbus.CloseReasonDismissed}}, f.closer.all())
}

func TestBridge_ReplacementRetiresPreviousFlash(t *testing.T) {
	f := newBridgeFixture(t)
	f.bridge.HandleNotify(notification("first", nil), 1)
	f.bridge.HandleNotify(notification("blocker", nil), 2)
	f.bridge.HandleNotify(notification("queued", nil), 5)
	firstID, _ := f.bridge.States().FlashIDByDBusID(5)

	// Replaces the still-pending flash for ID 5.
	f.bridge.HandleNotify(notification("replacement", nil), 5)
	secondID, _ := f.bridge.States().FlashIDByDBusID(5)
	assert.NotEqual(t, firstID, secondID)

	_, tracked := f.bridge.States().GetByFlashID(firstID)
	assert.False(t, tracked)
	assert.Empty(t, f.closer.all(), "retiring the replaced flash does not close the D-Bus ID")

	var texts []string
	for _, n := range f.p.Snapshot() {
		texts = append(texts, n.Text)
	}
	assert.Equal(t, []string{"first", "blocker", "replacement"}, texts)
}

func TestBridge_EmptyNotificationClosedImmediately(t *testing.T) {
	f := newBridgeFixture(t)
	f.bridge.HandleNotify(notification("   ", nil), 9)

	assert.Equal(t, []closed{{9, dbus.CloseReasonUndefined}}, f.closer.all())
	assert.True(t, f.p.Idle())
	assert.Equal(t, 0, f.bridge.States().Count())
}

func TestBridge_SoundFilter(t *testing.T) {
	f := newBridgeFixture(t)

	var played []string
	f.p.Subscribe(f.bridge.SoundFilter(func(ev presenter.Event) {
		if ev.Kind == presenter.EventTransition && ev.To == model.StateShown {
			played = append(played, ev.Text)
		}
	}))

	f.bridge.HandleNotify(notification("loud", nil), 1)
	f.bridge.HandleNotify(notification("quiet", map[string]godbus.Variant{
		"suppress-sound": godbus.MakeVariant(true),
	}), 2)
	f.advanceTo(time.Second)

	assert.Equal(t, []string{"loud"}, played)
	assert.True(t, f.bridge.SoundAllowed("untracked"))
}

func TestBridge_NilCloser(t *testing.T) {
	sched := schedule.NewManual(epoch)
	doc := surface.NewDocument(sched, surface.Options{}, nil)
	p := presenter.New(doc, sched, presenter.DefaultOptions(), nil)
	t.Cleanup(p.Close)

	b := NewBridge(p, nil, nil)
	p.Subscribe(b.HandleEvent)

	assert.NotPanics(t, func() {
		b.HandleNotify(notification("", nil), 1)
		b.HandleNotify(notification("x", nil), 2)
		b.HandleClose(2)
	})
}

func TestBridge_DoNotDisturb(t *testing.T) {
	f := newBridgeFixture(t)
	f.bridge.SetDoNotDisturb(true)
	assert.True(t, f.bridge.DoNotDisturb())

	f.bridge.HandleNotify(notification("muted", nil), 1)
	assert.Equal(t, []closed{{1, dbus.CloseReasonDismissed}}, f.closer.all())
	assert.True(t, f.p.Idle())

	errHint := map[string]godbus.Variant{"category": godbus.MakeVariant("flash.error")}
	f.bridge.HandleNotify(notification("still muted", errHint), 2)
	assert.Len(t, f.closer.all(), 2)

	f.bridge.SetErrorBypass(true)
	f.bridge.HandleNotify(notification("disk full", errHint), 3)
	assert.Len(t, f.closer.all(), 2)
	require.Equal(t, 1, f.p.Len())

	f.bridge.SetDoNotDisturb(false)
	f.bridge.HandleNotify(notification("back", nil), 4)
	assert.Equal(t, 2, f.p.Len())
}
