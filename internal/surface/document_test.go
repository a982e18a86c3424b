package surface

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/schedule"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newNotification(t *testing.T, text string) *model.Notification {
	t.Helper()
	n, err := model.NewNotification("test", text, model.CategorySuccess)
	require.NoError(t, err)
	return n
}

func TestDocument_AdoptRequiresContainer(t *testing.T) {
	doc := NewDocument(schedule.NewManual(epoch), Options{}, nil)
	n := newNotification(t, "hello")

	assert.ErrorIs(t, doc.Adopt(n), ErrNoContainer)

	require.NoError(t, doc.EnsureContainer())
	require.NoError(t, doc.EnsureContainer())
	require.NoError(t, doc.Adopt(n))
	assert.True(t, doc.HasContainer())

	creates := 0
	for _, m := range doc.Mutations() {
		if m.Kind == MutationCreateContainer {
			creates++
		}
	}
	assert.Equal(t, 1, creates)
}

func TestDocument_ElementLifecycle(t *testing.T) {
	doc := NewDocument(schedule.NewManual(epoch), Options{}, nil)
	n := newNotification(t, "saved")
	require.NoError(t, doc.EnsureContainer())
	require.NoError(t, doc.Adopt(n))

	doc.Decorate(n.ID, model.NewDecorations(1, 1))
	doc.SetClass(n.ID, "show", true)
	doc.SetTop(n.ID, 70)

	el, ok := doc.Element(n.ID)
	require.True(t, ok)
	assert.Equal(t, "saved", el.Text)
	assert.Equal(t, []string{"flash-success", "show"}, el.Classes)
	assert.True(t, el.HasClass("show"))
	assert.Equal(t, 70, el.Top)
	assert.Len(t, el.Decorations, 2)

	doc.SetClass(n.ID, "show", false)
	el, _ = doc.Element(n.ID)
	assert.False(t, el.HasClass("show"))

	doc.Remove(n.ID)
	_, ok = doc.Element(n.ID)
	assert.False(t, ok)
	assert.Empty(t, doc.Elements())

	kinds := make([]MutationKind, 0)
	for _, m := range doc.Mutations() {
		kinds = append(kinds, m.Kind)
	}
	assert.Equal(t, []MutationKind{
		MutationCreateContainer,
		MutationAdopt,
		MutationDecorate,
		MutationDecorate,
		MutationAddClass,
		MutationSetTop,
		MutationRemoveClass,
		MutationRemove,
	}, kinds)
}

func TestDocument_RedundantClassChangesNotRecorded(t *testing.T) {
	doc := NewDocument(schedule.NewManual(epoch), Options{}, nil)
	n := newNotification(t, "x")
	require.NoError(t, doc.EnsureContainer())
	require.NoError(t, doc.Adopt(n))

	before := len(doc.Mutations())
	doc.SetClass(n.ID, "show", false)
	doc.SetClass("missing", "show", true)
	assert.Len(t, doc.Mutations(), before)
}

func TestDocument_Height(t *testing.T) {
	doc := NewDocument(schedule.NewManual(epoch), Options{DefaultHeight: 42}, nil)
	a := newNotification(t, "a")
	b := newNotification(t, "b")

	doc.SetHeight(b.ID, 80)
	assert.Equal(t, 0, doc.Height(a.ID), "unknown elements are not laid out")

	require.NoError(t, doc.EnsureContainer())
	require.NoError(t, doc.Adopt(a))
	require.NoError(t, doc.Adopt(b))
	assert.Equal(t, 42, doc.Height(a.ID))
	assert.Equal(t, 80, doc.Height(b.ID))
}

func TestDocument_TransitionSignals(t *testing.T) {
	sched := schedule.NewManual(epoch)
	doc := NewDocument(sched, Options{Transition: 400 * time.Millisecond}, nil)
	n := newNotification(t, "bye")
	require.NoError(t, doc.EnsureContainer())
	require.NoError(t, doc.Adopt(n))

	var got []string
	doc.OnAnimationFinished(func(id, property string) {
		assert.Equal(t, n.ID, id)
		got = append(got, property)
	})

	doc.SetClass(n.ID, "hide", true)
	sched.Advance(399 * time.Millisecond)
	assert.Empty(t, got)

	sched.Advance(time.Millisecond)
	assert.Equal(t, []string{"transform", "opacity"}, got)
}

func TestDocument_NoSignalAfterRemove(t *testing.T) {
	sched := schedule.NewManual(epoch)
	doc := NewDocument(sched, Options{Transition: 100 * time.Millisecond, Properties: []string{"opacity"}}, nil)
	n := newNotification(t, "gone")
	require.NoError(t, doc.EnsureContainer())
	require.NoError(t, doc.Adopt(n))

	called := false
	doc.OnAnimationFinished(func(string, string) { called = true })

	doc.SetClass(n.ID, "hide", true)
	doc.Remove(n.ID)
	sched.Advance(time.Second)
	assert.False(t, called)
}

func TestDocument_ElementsInAdoptionOrder(t *testing.T) {
	doc := NewDocument(schedule.NewManual(epoch), Options{}, nil)
	require.NoError(t, doc.EnsureContainer())

	var ids []string
	for _, text := range []string{"one", "two", "three"} {
		n := newNotification(t, text)
		require.NoError(t, doc.Adopt(n))
		ids = append(ids, n.ID)
	}

	var got []string
	for _, el := range doc.Elements() {
		got = append(got, el.ID)
	}
	assert.Equal(t, ids, got)
}

func TestDocument_SetTransition(t *testing.T) {
	sched := schedule.NewManual(epoch)
	doc := NewDocument(sched, Options{Transition: 400 * time.Millisecond}, nil)

	var got []string
	doc.OnAnimationFinished(func(id, property string) { got = append(got, property) })
	require.NoError(t, doc.EnsureContainer())
	n := newNotification(t, "hello")
	require.NoError(t, doc.Adopt(n))

	doc.SetTransition(100 * time.Millisecond)
	doc.SetClass(n.ID, "hide", true)

	sched.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"transform", "opacity"}, got)
}
