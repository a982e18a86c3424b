package presenter

import (
	"sort"
	"time"

	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/schedule"
)

// entry tracks a claimed notification and its outstanding timers.
type entry struct {
	n       *model.Notification
	timer   schedule.Timer // Reveal while pending, hide while shown
	reflow  schedule.Timer
	placed    bool // Has received an offset
	claimedAt time.Time
	shownAt   time.Time
}

func (e *entry) stopTimers() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.reflow != nil {
		e.reflow.Stop()
		e.reflow = nil
	}
}

// registry holds the claimed notifications keyed by ID, iterable in index order.
// It is not safe for concurrent use; the presenter serializes access.
type registry struct {
	byID  map[string]*entry
	order []*entry
}

func newRegistry() *registry {
	return &registry{
		byID: make(map[string]*entry),
	}
}

func (r *registry) add(e *entry) {
	r.byID[e.n.ID] = e
	r.order = append(r.order, e)
	sort.SliceStable(r.order, func(i, j int) bool {
		return r.order[i].n.Index < r.order[j].n.Index
	})
}

func (r *registry) get(id string) *entry {
	return r.byID[id]
}

func (r *registry) remove(id string) {
	if _, exists := r.byID[id]; !exists {
		return
	}
	delete(r.byID, id)
	for i, e := range r.order {
		if e.n.ID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// visible returns the entries that are not hiding, pending or shown, in
// index order.
func (r *registry) visible() []*entry {
	var out []*entry
	for _, e := range r.order {
		if e.n.State == model.StatePending || e.n.State == model.StateShown {
			out = append(out, e)
		}
	}
	return out
}

func (r *registry) all() []*entry {
	return r.order
}

func (r *registry) len() int {
	return len(r.byID)
}
