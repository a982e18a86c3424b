package display

import (
	"sync"
	"time"

	"github.com/diamondburned/gotk4/pkg/core/glib"

	"github.com/jmylchreest/flashui/internal/schedule"
)

// MainLoopScheduler runs delayed tasks on the GLib main loop, so presenter
// timers and the host's transition signals execute on the GTK thread.
type MainLoopScheduler struct{}

// NewMainLoopScheduler creates a main loop scheduler.
func NewMainLoopScheduler() *MainLoopScheduler {
	return &MainLoopScheduler{}
}

// Now returns the wall-clock time.
func (MainLoopScheduler) Now() time.Time {
	return time.Now()
}

// AfterFunc adds a one-shot GLib timeout. Non-positive delays become an idle
// callback.
func (MainLoopScheduler) AfterFunc(d time.Duration, fn func()) schedule.Timer {
	t := &mainLoopTimer{}
	run := func() bool {
		t.mu.Lock()
		if t.done {
			t.mu.Unlock()
			return false
		}
		t.done = true
		t.mu.Unlock()

		fn()
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if d <= 0 {
		t.handle = glib.IdleAdd(run)
	} else {
		t.handle = glib.TimeoutAdd(uint(d.Milliseconds()), run)
	}
	return t
}

// Invoke runs fn on the main loop as soon as it is idle. Code outside the GTK
// thread uses it to reach the presenter and the popups.
func Invoke(fn func()) {
	glib.IdleAdd(func() bool {
		fn()
		return false
	})
}

type mainLoopTimer struct {
	mu     sync.Mutex
	handle glib.SourceHandle
	done   bool
}

func (t *mainLoopTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	glib.SourceRemove(t.handle)
	return true
}
