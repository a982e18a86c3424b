package presenter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/schedule"
	"github.com/jmylchreest/flashui/internal/surface"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

const transition = 400 * time.Millisecond

type fixture struct {
	p     *Presenter
	doc   *surface.Document
	sched *schedule.Manual
}

func newFixture(t *testing.T, opts Options, docOpts surface.Options) *fixture {
	t.Helper()
	sched := schedule.NewManual(epoch)
	doc := surface.NewDocument(sched, docOpts, nil)
	p := New(doc, sched, opts, nil)
	doc.OnAnimationFinished(p.AnimationFinished)
	t.Cleanup(p.Close)
	return &fixture{p: p, doc: doc, sched: sched}
}

func newDefaultFixture(t *testing.T) *fixture {
	return newFixture(t, DefaultOptions(), surface.Options{Transition: transition})
}

func makeNotifications(t *testing.T, texts ...string) []*model.Notification {
	t.Helper()
	out := make([]*model.Notification, 0, len(texts))
	for _, text := range texts {
		n, err := model.NewNotification("test", text, model.CategoryInfo)
		require.NoError(t, err)
		out = append(out, n)
	}
	return out
}

// advanceTo moves the virtual clock to epoch+at.
func (f *fixture) advanceTo(at time.Duration) {
	f.sched.AdvanceTo(epoch.Add(at))
}

func (f *fixture) state(t *testing.T, id string) model.State {
	t.Helper()
	for _, n := range f.p.Snapshot() {
		if n.ID == id {
			return n.State
		}
	}
	return model.StateRemoved
}

func (f *fixture) top(t *testing.T, id string) int {
	t.Helper()
	el, ok := f.doc.Element(id)
	require.True(t, ok, "element %s not in document", id)
	return el.Top
}

func TestPresenter_ThreeNotificationScenario(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "first", "second", "third")
	f.doc.SetHeight(ns[0].ID, 40)
	f.doc.SetHeight(ns[1].ID, 50)
	f.doc.SetHeight(ns[2].ID, 30)

	require.NoError(t, f.p.Load(context.Background(), ns))
	for i, n := range ns {
		assert.Equal(t, i, n.Index)
		assert.Equal(t, model.StatePending, f.state(t, n.ID))
	}

	f.advanceTo(0)
	assert.Equal(t, model.StateShown, f.state(t, ns[0].ID))
	assert.Equal(t, 0, f.top(t, ns[0].ID))
	assert.Equal(t, model.StatePending, f.state(t, ns[1].ID))

	f.advanceTo(499 * time.Millisecond)
	assert.Equal(t, model.StatePending, f.state(t, ns[1].ID))

	f.advanceTo(500 * time.Millisecond)
	assert.Equal(t, model.StateShown, f.state(t, ns[1].ID))
	assert.Equal(t, 50, f.top(t, ns[1].ID))

	f.advanceTo(1000 * time.Millisecond)
	assert.Equal(t, model.StateShown, f.state(t, ns[2].ID))
	assert.Equal(t, 110, f.top(t, ns[2].ID))

	f.advanceTo(2499 * time.Millisecond)
	assert.Equal(t, model.StateShown, f.state(t, ns[0].ID))

	f.advanceTo(2500 * time.Millisecond)
	assert.Equal(t, model.StateHiding, f.state(t, ns[0].ID))
	el, _ := f.doc.Element(ns[0].ID)
	assert.True(t, el.HasClass(ClassHide))
	assert.False(t, el.HasClass(ClassShow))
	assert.Equal(t, 50, f.top(t, ns[1].ID), "restack waits for the reflow delay")

	f.advanceTo(2550 * time.Millisecond)
	assert.Equal(t, 0, f.top(t, ns[1].ID))
	assert.Equal(t, 60, f.top(t, ns[2].ID))

	f.advanceTo(2900 * time.Millisecond)
	assert.Equal(t, model.StateRemoved, f.state(t, ns[0].ID))
	_, ok := f.doc.Element(ns[0].ID)
	assert.False(t, ok)

	f.advanceTo(3000 * time.Millisecond)
	assert.Equal(t, model.StateHiding, f.state(t, ns[1].ID))

	f.advanceTo(3050 * time.Millisecond)
	assert.Equal(t, 0, f.top(t, ns[2].ID))

	f.advanceTo(3500 * time.Millisecond)
	assert.Equal(t, model.StateHiding, f.state(t, ns[2].ID))

	f.advanceTo(3900 * time.Millisecond)
	assert.True(t, f.p.Idle())
	assert.Empty(t, f.doc.Elements())
	assert.Equal(t, 0, f.sched.Pending())
}

func TestPresenter_RevealNoEarlierThanStagger(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a", "b", "c", "d", "e")
	require.NoError(t, f.p.Load(context.Background(), ns))

	shownAt := make(map[string]time.Time)
	f.p.Subscribe(func(ev Event) {
		if ev.Kind == EventTransition && ev.To == model.StateShown {
			shownAt[ev.ID] = ev.At
		}
	})

	f.sched.RunUntilIdle(1000)
	require.Len(t, shownAt, len(ns))
	for i, n := range ns {
		assert.Equal(t, epoch.Add(time.Duration(i)*500*time.Millisecond), shownAt[n.ID])
	}
}

func TestPresenter_VisibleDurationIsExact(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a", "b")
	require.NoError(t, f.p.Load(context.Background(), ns))

	shown := make(map[string]time.Time)
	hidden := make(map[string]time.Time)
	f.p.Subscribe(func(ev Event) {
		if ev.Kind != EventTransition {
			return
		}
		switch ev.To {
		case model.StateShown:
			shown[ev.ID] = ev.At
		case model.StateHiding:
			hidden[ev.ID] = ev.At
		}
	})

	f.sched.RunUntilIdle(1000)
	for _, n := range ns {
		assert.Equal(t, 2500*time.Millisecond, hidden[n.ID].Sub(shown[n.ID]))
	}
}

func TestPresenter_ZeroHeightUsesFallback(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a", "b", "c")
	require.NoError(t, f.p.Load(context.Background(), ns))

	f.advanceTo(time.Second)
	assert.Equal(t, 0, f.top(t, ns[0].ID))
	assert.Equal(t, 70, f.top(t, ns[1].ID))
	assert.Equal(t, 140, f.top(t, ns[2].ID))

	for _, n := range f.p.Snapshot() {
		assert.Equal(t, 0, n.Height, "height records the measurement, not the fallback")
	}
}

func TestPresenter_OffsetsStrictlyIncreasing(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a", "b", "c", "d")
	heights := []int{25, 0, 90, 12}
	for i, n := range ns {
		f.doc.SetHeight(n.ID, heights[i])
	}
	require.NoError(t, f.p.Load(context.Background(), ns))
	f.advanceTo(1500 * time.Millisecond)

	snap := f.p.Snapshot()
	require.Len(t, snap, 4)
	expected := 0
	for i, n := range snap {
		require.Equal(t, model.StateShown, n.State)
		assert.Equal(t, expected, n.Offset)
		if i > 0 {
			assert.Greater(t, n.Offset, snap[i-1].Offset)
		}
		h := heights[i]
		if h == 0 {
			h = 60
		}
		expected += h + 10
	}
}

func TestPresenter_NonOpacitySignalIgnored(t *testing.T) {
	f := newFixture(t, DefaultOptions(), surface.Options{Transition: time.Hour})
	ns := makeNotifications(t, "a", "b")
	require.NoError(t, f.p.Load(context.Background(), ns))
	f.advanceTo(2500 * time.Millisecond)
	require.Equal(t, model.StateHiding, f.state(t, ns[0].ID))

	before := f.doc.Mutations()
	f.p.AnimationFinished(ns[0].ID, "transform")
	f.p.AnimationFinished(ns[0].ID, "")
	assert.Equal(t, before, f.doc.Mutations())
	assert.Equal(t, model.StateHiding, f.state(t, ns[0].ID))

	f.p.AnimationFinished(ns[0].ID, PropertyOpacity)
	assert.Equal(t, model.StateRemoved, f.state(t, ns[0].ID))
}

func TestPresenter_OpacitySignalIgnoredUnlessHiding(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a", "b")
	require.NoError(t, f.p.Load(context.Background(), ns))
	f.advanceTo(0)

	f.p.AnimationFinished(ns[0].ID, PropertyOpacity)
	f.p.AnimationFinished(ns[1].ID, PropertyOpacity)
	f.p.AnimationFinished("unknown", PropertyOpacity)

	assert.Equal(t, model.StateShown, f.state(t, ns[0].ID))
	assert.Equal(t, model.StatePending, f.state(t, ns[1].ID))
}

func TestPresenter_RemovalCompactsWithoutReordering(t *testing.T) {
	f := newFixture(t, DefaultOptions(), surface.Options{Transition: time.Hour})
	ns := makeNotifications(t, "a", "b", "c")
	for _, n := range ns {
		f.doc.SetHeight(n.ID, 20)
	}
	require.NoError(t, f.p.Load(context.Background(), ns))
	f.advanceTo(time.Second)

	// Hide the middle one early, then let it finish.
	require.True(t, f.p.Dismiss(ns[1].ID))
	f.advanceTo(time.Second + 50*time.Millisecond)
	f.p.AnimationFinished(ns[1].ID, PropertyOpacity)

	snap := f.p.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, ns[0].ID, snap[0].ID)
	assert.Equal(t, 0, snap[0].Offset)
	assert.Equal(t, ns[2].ID, snap[1].ID)
	assert.Equal(t, 30, snap[1].Offset)
}

func TestPresenter_ContainerAndDecorations(t *testing.T) {
	f := newDefaultFixture(t)
	assert.False(t, f.doc.HasContainer())

	ns := makeNotifications(t, "a")
	require.NoError(t, f.p.Load(context.Background(), ns))
	assert.True(t, f.doc.HasContainer())

	el, ok := f.doc.Element(ns[0].ID)
	require.True(t, ok)
	var classes []string
	for _, d := range el.Decorations {
		classes = append(classes, d.ClassName())
	}
	assert.Equal(t, []string{"blob b1", "blob b2", "blob b3", "particle p1", "particle p2", "particle p3"}, classes)
	assert.NotZero(t, el.Seed)
}

func TestPresenter_LoadEmpty(t *testing.T) {
	f := newDefaultFixture(t)
	require.NoError(t, f.p.Load(context.Background(), nil))
	assert.Equal(t, 0, f.sched.Pending())
	assert.True(t, f.p.Idle())
}

func TestPresenter_LoadErrors(t *testing.T) {
	t.Run("invalid notification", func(t *testing.T) {
		f := newDefaultFixture(t)
		ns := makeNotifications(t, "ok")
		bad := &model.Notification{ID: "x", Category: model.CategoryInfo}
		err := f.p.Load(context.Background(), append(ns, bad))
		assert.ErrorIs(t, err, model.ErrEmptyText)
		assert.True(t, f.p.Idle(), "nothing is claimed when validation fails")
	})

	t.Run("nil notification", func(t *testing.T) {
		f := newDefaultFixture(t)
		err := f.p.Load(context.Background(), []*model.Notification{nil})
		assert.ErrorIs(t, err, ErrNilNotification)
	})

	t.Run("duplicate in batch", func(t *testing.T) {
		f := newDefaultFixture(t)
		ns := makeNotifications(t, "a")
		err := f.p.Load(context.Background(), []*model.Notification{ns[0], ns[0]})
		assert.ErrorIs(t, err, ErrAlreadyClaimed)
	})

	t.Run("already claimed", func(t *testing.T) {
		f := newDefaultFixture(t)
		ns := makeNotifications(t, "a")
		require.NoError(t, f.p.Load(context.Background(), ns))
		assert.ErrorIs(t, f.p.Load(context.Background(), ns), ErrAlreadyClaimed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		f := newDefaultFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, f.p.Load(ctx, makeNotifications(t, "a")), context.Canceled)
	})

	t.Run("closed", func(t *testing.T) {
		f := newDefaultFixture(t)
		f.p.Close()
		assert.ErrorIs(t, f.p.Load(context.Background(), makeNotifications(t, "a")), ErrClosed)
		assert.ErrorIs(t, f.p.Enqueue(makeNotifications(t, "b")[0]), ErrClosed)
	})
}

type failingHost struct {
	*surface.Document
	containerErr error
	adoptErr     error
	failAdoptAt  int // 1-based Adopt call that fails, 0 for every call
	adopts       int
}

func (h *failingHost) EnsureContainer() error {
	if h.containerErr != nil {
		return h.containerErr
	}
	return h.Document.EnsureContainer()
}

func (h *failingHost) Adopt(n *model.Notification) error {
	h.adopts++
	if h.adoptErr != nil && (h.failAdoptAt == 0 || h.adopts == h.failAdoptAt) {
		return h.adoptErr
	}
	return h.Document.Adopt(n)
}

func TestPresenter_HostErrorsWrapped(t *testing.T) {
	boom := errors.New("boom")
	sched := schedule.NewManual(epoch)

	host := &failingHost{Document: surface.NewDocument(sched, surface.Options{}, nil), containerErr: boom}
	p := New(host, sched, DefaultOptions(), nil)
	err := p.Load(context.Background(), makeNotifications(t, "a"))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to ensure notification container")

	host = &failingHost{Document: surface.NewDocument(sched, surface.Options{}, nil), adoptErr: boom}
	p = New(host, sched, DefaultOptions(), nil)
	err = p.Load(context.Background(), makeNotifications(t, "a"))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to adopt notification")
}

func TestPresenter_LoadRollsBackOnHostError(t *testing.T) {
	boom := errors.New("boom")
	sched := schedule.NewManual(epoch)
	doc := surface.NewDocument(sched, surface.Options{Transition: transition}, nil)
	host := &failingHost{Document: doc, adoptErr: boom, failAdoptAt: 2}
	p := New(host, sched, DefaultOptions(), nil)
	doc.OnAnimationFinished(p.AnimationFinished)
	t.Cleanup(p.Close)

	ns := makeNotifications(t, "a", "b", "c")
	err := p.Load(context.Background(), ns)
	require.ErrorIs(t, err, boom)

	assert.True(t, p.Idle())
	assert.Equal(t, 0, sched.Pending(), "reveal timers were cancelled")
	assert.Empty(t, doc.Elements())
	for _, n := range ns {
		assert.Equal(t, model.StatePending, n.State)
		assert.Equal(t, 0, n.Index)
		assert.Zero(t, n.Seed)
		assert.Nil(t, n.Decorations)
	}

	sched.RunUntilIdle(100)
	for _, m := range doc.Mutations() {
		assert.NotEqual(t, surface.MutationAddClass, m.Kind, "nothing from the failed batch is shown")
	}

	// The same batch loads cleanly once the host recovers.
	host.adoptErr = nil
	require.NoError(t, p.Load(context.Background(), ns))
	for i, n := range ns {
		assert.Equal(t, i, n.Index)
	}
	assert.Equal(t, 3, p.Len())
}

func TestPresenter_EnqueueHostErrorLeavesNotificationUntouched(t *testing.T) {
	boom := errors.New("boom")
	sched := schedule.NewManual(epoch)
	host := &failingHost{Document: surface.NewDocument(sched, surface.Options{}, nil), adoptErr: boom}
	p := New(host, sched, DefaultOptions(), nil)

	n := makeNotifications(t, "a")[0]
	require.ErrorIs(t, p.Enqueue(n), boom)
	assert.Zero(t, n.Seed)
	assert.Nil(t, n.Decorations)
	assert.True(t, p.Idle())
}

func TestPresenter_PendingNotificationsAreStacked(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a", "b", "c")
	require.NoError(t, f.p.Load(context.Background(), ns))

	for i, n := range ns {
		assert.Equal(t, model.StatePending, f.state(t, n.ID))
		assert.Equal(t, i*70, f.top(t, n.ID))
	}

	// The slot is already taken before the reveal adds the show class.
	var sawTop, sawShow bool
	for _, m := range f.doc.Mutations() {
		if m.ID != ns[2].ID {
			continue
		}
		switch m.Kind {
		case surface.MutationSetTop:
			assert.False(t, sawShow, "set-top after show")
			sawTop = true
		case surface.MutationAddClass:
			sawShow = true
		}
	}
	assert.True(t, sawTop)

	f.advanceTo(0)
	assert.Equal(t, model.StateShown, f.state(t, ns[0].ID))
	assert.Equal(t, 70, f.top(t, ns[1].ID))
	assert.Equal(t, 140, f.top(t, ns[2].ID))

	require.True(t, f.p.Dismiss(ns[1].ID))
	assert.Equal(t, 70, f.top(t, ns[2].ID), "removing a pending notification closes its gap")

	late := makeNotifications(t, "late")[0]
	require.NoError(t, f.p.Enqueue(late))
	assert.Equal(t, model.StatePending, f.state(t, late.ID))
	assert.Equal(t, 140, f.top(t, late.ID))
}

func TestPresenter_EnqueueContinuesCascade(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a", "b")
	require.NoError(t, f.p.Load(context.Background(), ns))

	f.advanceTo(100 * time.Millisecond)
	late := makeNotifications(t, "late")[0]
	require.NoError(t, f.p.Enqueue(late))
	assert.Equal(t, 2, late.Index)

	f.advanceTo(999 * time.Millisecond)
	assert.Equal(t, model.StatePending, f.state(t, late.ID))
	f.advanceTo(1000 * time.Millisecond)
	assert.Equal(t, model.StateShown, f.state(t, late.ID))
	assert.Equal(t, 140, f.top(t, late.ID))
}

func TestPresenter_EnqueueAfterCascadeIsImmediate(t *testing.T) {
	f := newDefaultFixture(t)
	require.NoError(t, f.p.Load(context.Background(), makeNotifications(t, "a")))
	f.advanceTo(10 * time.Second)
	require.True(t, f.p.Idle())

	n := makeNotifications(t, "b")[0]
	require.NoError(t, f.p.Enqueue(n))
	f.advanceTo(10 * time.Second)
	assert.Equal(t, model.StateShown, f.state(t, n.ID))
	assert.Equal(t, 0, f.top(t, n.ID))
}

func TestPresenter_EnqueueWithoutLoad(t *testing.T) {
	f := newDefaultFixture(t)
	n := makeNotifications(t, "solo")[0]
	require.NoError(t, f.p.Enqueue(n))
	assert.True(t, f.doc.HasContainer())
	assert.Equal(t, 0, n.Index)

	f.advanceTo(0)
	assert.Equal(t, model.StateShown, f.state(t, n.ID))
}

func TestPresenter_DismissPending(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a", "b")
	require.NoError(t, f.p.Load(context.Background(), ns))

	require.True(t, f.p.Dismiss(ns[1].ID))
	assert.Equal(t, model.StateRemoved, f.state(t, ns[1].ID))
	_, ok := f.doc.Element(ns[1].ID)
	assert.False(t, ok)

	f.advanceTo(time.Second)
	for _, m := range f.doc.Mutations() {
		if m.ID == ns[1].ID {
			assert.NotEqual(t, surface.MutationAddClass, m.Kind, "dismissed notification was never shown")
		}
	}
}

func TestPresenter_DismissShown(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a")
	require.NoError(t, f.p.Load(context.Background(), ns))
	f.advanceTo(time.Second)

	require.True(t, f.p.Dismiss(ns[0].ID))
	assert.Equal(t, model.StateHiding, f.state(t, ns[0].ID))
	assert.False(t, f.p.Dismiss(ns[0].ID), "already hiding")
	assert.False(t, f.p.Dismiss("unknown"))

	f.advanceTo(time.Second + transition)
	assert.True(t, f.p.Idle())
	assert.Equal(t, 0, f.sched.Pending(), "visible countdown was cancelled")
}

func TestPresenter_SubscribeEvents(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a")

	var events []Event
	unsubscribe := f.p.Subscribe(func(ev Event) { events = append(events, ev) })
	require.NoError(t, f.p.Load(context.Background(), ns))
	f.sched.RunUntilIdle(100)

	require.Len(t, events, 3)
	assert.Equal(t, []model.State{model.StatePending, model.StateShown, model.StateHiding}, []model.State{events[0].From, events[1].From, events[2].From})
	assert.Equal(t, []model.State{model.StateShown, model.StateHiding, model.StateRemoved}, []model.State{events[0].To, events[1].To, events[2].To})
	assert.Equal(t, epoch, events[0].At)
	assert.Equal(t, epoch.Add(2500*time.Millisecond), events[1].At)
	assert.Equal(t, epoch.Add(2900*time.Millisecond), events[2].At)
	assert.Equal(t, "a", events[0].Text)

	unsubscribe()
	require.NoError(t, f.p.Load(context.Background(), makeNotifications(t, "b")))
	f.sched.RunUntilIdle(100)
	assert.Len(t, events, 3)
}

func TestPresenter_MoveEventsOnCompaction(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a", "b")
	require.NoError(t, f.p.Load(context.Background(), ns))

	var moves []Event
	f.p.Subscribe(func(ev Event) {
		if ev.Kind == EventMove {
			moves = append(moves, ev)
		}
	})

	f.advanceTo(2550 * time.Millisecond)
	require.Len(t, moves, 1)
	assert.Equal(t, ns[1].ID, moves[0].ID)
	assert.Equal(t, 0, moves[0].Offset)
	assert.Equal(t, epoch.Add(2550*time.Millisecond), moves[0].At)
}

func TestPresenter_SubscriberMayCallPresenter(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a", "b")
	require.NoError(t, f.p.Load(context.Background(), ns))

	f.p.Subscribe(func(ev Event) {
		if ev.To == model.StateShown {
			_ = f.p.Snapshot()
			f.p.Dismiss(ev.ID)
		}
	})

	f.advanceTo(0)
	assert.Equal(t, model.StateHiding, f.state(t, ns[0].ID))
}

func TestPresenter_TransitionRejectsIllegalEdges(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a")
	require.NoError(t, f.p.Load(context.Background(), ns))

	f.p.mu.Lock()
	e := f.p.registry.get(ns[0].ID)
	err := f.p.transition(e, model.StateHiding)
	f.p.mu.Unlock()

	require.Error(t, err)
	assert.True(t, IsTransitionError(err))
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, model.StatePending, te.From)
	assert.Equal(t, model.StateHiding, te.To)
	assert.Equal(t, model.StatePending, f.state(t, ns[0].ID))
}

func TestPresenter_DebugTiming(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	sched := schedule.NewManual(epoch)
	doc := surface.NewDocument(sched, surface.Options{Transition: transition}, nil)
	opts := DefaultOptions()
	opts.Debug = true
	p := New(doc, sched, opts, logger)
	doc.OnAnimationFinished(p.AnimationFinished)

	require.NoError(t, p.Load(context.Background(), makeNotifications(t, "a", "b")))
	sched.RunUntilIdle(100)

	// Timed from the load, so the second includes its stagger wait.
	assert.Contains(t, buf.String(), "appeared for 2.9 sec")
	assert.Contains(t, buf.String(), "appeared for 3.4 sec")
}

func TestPresenter_CloseStopsTimers(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a", "b")
	require.NoError(t, f.p.Load(context.Background(), ns))
	f.advanceTo(0)

	f.p.Close()
	f.advanceTo(10 * time.Second)
	assert.Equal(t, model.StatePending, f.state(t, ns[1].ID))
	assert.Equal(t, model.StateShown, f.state(t, ns[0].ID))
}

func TestPresenter_SetOptionsRestacks(t *testing.T) {
	f := newDefaultFixture(t)
	ns := makeNotifications(t, "a", "b")
	require.NoError(t, f.p.Load(context.Background(), ns))
	f.advanceTo(500 * time.Millisecond)
	assert.Equal(t, 70, f.top(t, ns[1].ID))

	opts := f.p.Options()
	opts.Spacing = 20
	f.p.SetOptions(opts)
	assert.Equal(t, 80, f.top(t, ns[1].ID))
}

func TestPresenter_RealScheduler(t *testing.T) {
	sched := schedule.NewRealScheduler()
	doc := surface.NewDocument(sched, surface.Options{Transition: time.Millisecond}, nil)
	opts := DefaultOptions()
	opts.Stagger = time.Millisecond
	opts.Visible = 5 * time.Millisecond
	opts.Reflow = time.Millisecond
	p := New(doc, sched, opts, nil)
	doc.OnAnimationFinished(p.AnimationFinished)
	defer p.Close()

	var mu sync.Mutex
	removed := 0
	p.Subscribe(func(ev Event) {
		if ev.To == model.StateRemoved {
			mu.Lock()
			removed++
			mu.Unlock()
		}
	})

	require.NoError(t, p.Load(context.Background(), makeNotifications(t, "a", "b", "c")))
	require.Eventually(t, p.Idle, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, removed)
}
