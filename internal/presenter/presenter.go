// Package presenter drives the lifecycle of flash notifications: staggered
// reveal, a fixed visible duration, an exit transition and removal, and
// stacking of the notifications that are visible at the same time.
//
// The presenter never measures or draws anything itself. It talks to a Host
// and schedules work on a schedule.Scheduler, so the same protocol runs in a
// terminal, in GTK popups, or on virtual time in tests.
package presenter

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/flashui/internal/layout"
	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/schedule"
)

// Presenter owns every claimed notification until it is removed.
type Presenter struct {
	mu       sync.Mutex
	host     Host
	sched    schedule.Scheduler
	opts     Options
	stacker  *layout.Stacker
	logger   *slog.Logger
	registry *registry

	containerReady bool
	nextIndex      int
	lastRevealAt   time.Time
	closed         bool

	subMu       sync.Mutex
	subscribers map[int]Subscriber
	nextSubID   int
}

// New creates a presenter bound to host. A nil scheduler uses the wall clock.
func New(host Host, sched schedule.Scheduler, opts Options, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	if sched == nil {
		sched = schedule.NewRealScheduler()
	}
	return &Presenter{
		host:        host,
		sched:       sched,
		opts:        opts,
		stacker:     layout.NewStacker(opts.Spacing, opts.FallbackHeight),
		logger:      logger,
		registry:    newRegistry(),
		subscribers: make(map[int]Subscriber),
	}
}

// Load claims notifications in the order given. Each one is adopted into the
// container, decorated, placed in the stack, and revealed after its position
// times the stagger. Loading an empty slice is valid and schedules nothing.
//
// Load is all or nothing: if the host rejects any notification, every
// notification claimed by this call is taken back out of the host and left
// as it was passed in.
func (p *Presenter) Load(ctx context.Context, notifications []*model.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}

	seen := make(map[string]bool, len(notifications))
	for i, n := range notifications {
		if err := p.checkClaimable(n); err != nil {
			p.mu.Unlock()
			return fmt.Errorf("failed to load notification %d: %w", i, err)
		}
		if seen[n.ID] {
			p.mu.Unlock()
			return fmt.Errorf("failed to load notification %d: %w: %s", i, ErrAlreadyClaimed, n.ID)
		}
		seen[n.ID] = true
	}

	if len(notifications) == 0 {
		p.mu.Unlock()
		return nil
	}

	if err := p.ensureContainer(); err != nil {
		p.mu.Unlock()
		return err
	}

	startIndex := p.nextIndex
	saved := make([]claimFields, len(notifications))
	for i, n := range notifications {
		saved[i] = fieldsOf(n)
	}

	claimed := make([]*entry, 0, len(notifications))
	for i, n := range notifications {
		e, err := p.claim(n, time.Duration(i)*p.opts.Stagger)
		if err != nil {
			p.unclaim(claimed, saved)
			saved[i].restore(n)
			p.nextIndex = startIndex
			p.mu.Unlock()
			return err
		}
		claimed = append(claimed, e)
	}

	last := p.sched.Now().Add(time.Duration(len(notifications)-1) * p.opts.Stagger)
	if last.After(p.lastRevealAt) {
		p.lastRevealAt = last
	}
	events := p.restack(nil)
	p.mu.Unlock()

	p.emit(events)
	p.logger.Debug("loaded flash notifications", "count", len(notifications))
	return nil
}

// Enqueue claims a notification that arrives after the initial load. It takes
// the next ordinal index and is revealed one stagger after the most recently
// scheduled reveal, or immediately if that has passed.
func (p *Presenter) Enqueue(n *model.Notification) error {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if err := p.checkClaimable(n); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	if err := p.ensureContainer(); err != nil {
		p.mu.Unlock()
		return err
	}

	now := p.sched.Now()
	revealAt := now
	if !p.lastRevealAt.IsZero() {
		if next := p.lastRevealAt.Add(p.opts.Stagger); next.After(now) {
			revealAt = next
		}
	}
	saved := fieldsOf(n)
	if _, err := p.claim(n, revealAt.Sub(now)); err != nil {
		saved.restore(n)
		p.mu.Unlock()
		return err
	}
	p.lastRevealAt = revealAt
	events := p.restack(nil)
	p.mu.Unlock()

	p.emit(events)
	return nil
}

// AnimationFinished is called by the host when a transition on a notification
// completes. Only an opacity transition on a hiding notification removes it;
// anything else is ignored.
func (p *Presenter) AnimationFinished(id, property string) {
	p.mu.Lock()

	if property != PropertyOpacity {
		p.mu.Unlock()
		p.logger.Debug("ignoring animation signal", "id", id, "property", property)
		return
	}

	e := p.registry.get(id)
	if e == nil || e.n.State != model.StateHiding {
		p.mu.Unlock()
		p.logger.Debug("ignoring animation signal for notification not hiding", "id", id)
		return
	}

	var events []Event
	events = p.remove(e, events)
	p.mu.Unlock()

	p.emit(events)
}

// Dismiss ends a notification early. A pending notification is removed
// without being shown; a shown notification starts hiding immediately.
// Returns false if the notification is unknown or already hiding.
func (p *Presenter) Dismiss(id string) bool {
	p.mu.Lock()

	e := p.registry.get(id)
	if e == nil {
		p.mu.Unlock()
		return false
	}

	var events []Event
	switch e.n.State {
	case model.StatePending:
		events = p.remove(e, events)
	case model.StateShown:
		events = p.hide(e, events)
	default:
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()

	p.emit(events)
	return true
}

// Snapshot returns copies of every tracked notification in index order.
func (p *Presenter) Snapshot() []model.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]model.Notification, 0, p.registry.len())
	for _, e := range p.registry.all() {
		out = append(out, *e.n.Clone())
	}
	return out
}

// Len returns the number of notifications not yet removed.
func (p *Presenter) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registry.len()
}

// Idle returns true when nothing is tracked.
func (p *Presenter) Idle() bool {
	return p.Len() == 0
}

// Subscribe registers fn for every event and returns a function that removes it.
func (p *Presenter) Subscribe(fn Subscriber) func() {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn

	return func() {
		p.subMu.Lock()
		defer p.subMu.Unlock()
		delete(p.subscribers, id)
	}
}

// SetOptions replaces the timing and layout options. Timers already
// scheduled keep their original deadlines.
func (p *Presenter) SetOptions(opts Options) {
	p.mu.Lock()
	p.opts = opts
	p.stacker = layout.NewStacker(opts.Spacing, opts.FallbackHeight)
	events := p.restack(nil)
	p.mu.Unlock()

	p.emit(events)
}

// Options returns the current options.
func (p *Presenter) Options() Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opts
}

// Close cancels every outstanding timer. Notifications already hiding can
// still be removed through AnimationFinished.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	for _, e := range p.registry.all() {
		e.stopTimers()
	}
}

func (p *Presenter) checkClaimable(n *model.Notification) error {
	if n == nil {
		return ErrNilNotification
	}
	if err := n.Validate(); err != nil {
		return err
	}
	if n.State != model.StatePending || p.registry.get(n.ID) != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyClaimed, n.ID)
	}
	return nil
}

func (p *Presenter) ensureContainer() error {
	if p.containerReady {
		return nil
	}
	if err := p.host.EnsureContainer(); err != nil {
		return fmt.Errorf("failed to ensure notification container: %w", err)
	}
	p.containerReady = true
	return nil
}

// claimFields are the notification fields claim overwrites.
type claimFields struct {
	index       int
	seed        int64
	decorations []model.Decoration
}

func fieldsOf(n *model.Notification) claimFields {
	return claimFields{index: n.Index, seed: n.Seed, decorations: n.Decorations}
}

func (c claimFields) restore(n *model.Notification) {
	n.Index = c.index
	n.Seed = c.seed
	n.Decorations = c.decorations
}

// claim adopts n into the container and schedules its reveal after delay.
// On error n is not tracked, but its claim fields may have been overwritten.
func (p *Presenter) claim(n *model.Notification, delay time.Duration) (*entry, error) {
	n.Index = p.nextIndex
	n.Seed = seedFor(n.ID)
	n.Decorations = model.NewDecorations(p.opts.Blobs, p.opts.Particles)

	if err := p.host.Adopt(n); err != nil {
		return nil, fmt.Errorf("failed to adopt notification %s: %w", n.ID, err)
	}
	p.host.Decorate(n.ID, n.Decorations)
	p.nextIndex++

	e := &entry{n: n, claimedAt: p.sched.Now()}
	p.registry.add(e)

	id := n.ID
	e.timer = p.sched.AfterFunc(delay, func() { p.reveal(id) })

	p.logger.Debug("claimed flash notification",
		"id", id,
		"index", n.Index,
		"category", n.Category,
		"reveal_in", delay,
	)
	return e, nil
}

// unclaim takes freshly claimed entries back out of the host and registry
// without emitting events. saved holds their fields from before the claim,
// in the same order. Caller holds the lock.
func (p *Presenter) unclaim(entries []*entry, saved []claimFields) {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		e.stopTimers()
		p.host.Remove(e.n.ID)
		p.registry.remove(e.n.ID)
		saved[i].restore(e.n)
	}
}

func (p *Presenter) reveal(id string) {
	p.mu.Lock()

	e := p.registry.get(id)
	if p.closed || e == nil || e.n.State != model.StatePending {
		p.mu.Unlock()
		return
	}

	var events []Event
	events = p.transitionLogged(e, model.StateShown, events)
	e.shownAt = p.sched.Now()
	events = p.restack(events)
	events = p.finalize(events)

	e.timer = p.sched.AfterFunc(p.opts.Visible, func() {
		p.mu.Lock()
		cur := p.registry.get(id)
		if p.closed || cur == nil || cur.n.State != model.StateShown {
			p.mu.Unlock()
			return
		}
		evs := p.hide(cur, nil)
		p.mu.Unlock()
		p.emit(evs)
	})
	p.mu.Unlock()

	p.emit(events)
}

// hide starts the exit transition of a shown entry. Caller holds the lock.
func (p *Presenter) hide(e *entry, events []Event) []Event {
	e.stopTimers()
	events = p.transitionLogged(e, model.StateHiding, events)

	e.reflow = p.sched.AfterFunc(p.opts.Reflow, func() {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		evs := p.restack(nil)
		p.mu.Unlock()
		p.emit(evs)
	})
	return p.finalize(events)
}

// remove moves an entry to removed and forgets it. Caller holds the lock.
func (p *Presenter) remove(e *entry, events []Event) []Event {
	e.stopTimers()
	events = p.transitionLogged(e, model.StateRemoved, events)
	p.registry.remove(e.n.ID)

	events = p.restack(events)

	// Measured from the claim, so the stagger wait is included.
	if p.opts.Debug && !e.shownAt.IsZero() {
		elapsed := p.sched.Now().Sub(e.claimedAt)
		p.logger.Info("flash notification appeared for "+humanize.FtoaWithDigits(elapsed.Seconds(), 2)+" sec",
			"id", e.n.ID,
			"index", e.n.Index,
		)
	}
	return events
}

// transition moves e to state to, applying its class side effects.
// It is the only place a notification's state changes.
func (p *Presenter) transition(e *entry, to model.State) error {
	from := e.n.State
	if !from.CanTransition(to) {
		return NewTransitionError(e.n.ID, from, to)
	}
	e.n.State = to

	id := e.n.ID
	switch to {
	case model.StateShown:
		p.host.SetClass(id, ClassShow, true)
	case model.StateHiding:
		p.host.SetClass(id, ClassShow, false)
		p.host.SetClass(id, ClassHide, true)
	case model.StateRemoved:
		p.host.Remove(id)
	}
	return nil
}

// transitionLogged applies a transition and records its event. Illegal edges
// are logged and leave the entry untouched.
func (p *Presenter) transitionLogged(e *entry, to model.State, events []Event) []Event {
	from := e.n.State
	if err := p.transition(e, to); err != nil {
		p.logger.Warn("rejected flash notification transition", "error", err)
		return events
	}
	return append(events, p.event(EventTransition, e, from))
}

// restack recomputes offsets for every pending or shown notification in index
// order, so a pending element already sits in its slot when it is revealed.
// Caller holds the lock. It is idempotent.
func (p *Presenter) restack(events []Event) []Event {
	visible := p.registry.visible()
	items := make([]layout.Item, len(visible))
	for i, e := range visible {
		items[i] = layout.Item{ID: e.n.ID, Height: p.host.Height(e.n.ID)}
	}

	for i, placement := range p.stacker.Stack(items) {
		e := visible[i]
		moved := e.placed && e.n.Offset != placement.Top
		e.n.Height = items[i].Height
		e.n.Offset = placement.Top
		p.host.SetTop(e.n.ID, placement.Top)
		if moved {
			events = append(events, p.event(EventMove, e, e.n.State))
		}
		e.placed = true
	}
	return events
}

// finalize copies current offsets into transition events recorded during the
// same operation.
func (p *Presenter) finalize(events []Event) []Event {
	for i := range events {
		if e := p.registry.get(events[i].ID); e != nil {
			events[i].Offset = e.n.Offset
		}
	}
	return events
}

func (p *Presenter) event(kind EventKind, e *entry, from model.State) Event {
	return Event{
		Kind:     kind,
		ID:       e.n.ID,
		Index:    e.n.Index,
		Text:     e.n.Text,
		Category: e.n.Category,
		From:     from,
		To:       e.n.State,
		Offset:   e.n.Offset,
		At:       p.sched.Now(),
	}
}

func (p *Presenter) emit(events []Event) {
	if len(events) == 0 {
		return
	}

	p.subMu.Lock()
	subs := make([]Subscriber, 0, len(p.subscribers))
	for i := 0; i < p.nextSubID; i++ {
		if fn, ok := p.subscribers[i]; ok {
			subs = append(subs, fn)
		}
	}
	p.subMu.Unlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// seedFor derives a stable decoration seed from a notification ID.
func seedFor(id string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return int64(h.Sum64() >> 1)
}
