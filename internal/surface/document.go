// Package surface provides an in-memory notification host. It records every
// mutation the presenter makes, reports configurable element heights, and
// emulates exit transitions by emitting animation-finished signals after a
// delay.
package surface

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/schedule"
)

// ErrNoContainer is returned by Adopt when EnsureContainer has not been called.
var ErrNoContainer = errors.New("notification container does not exist")

// ContainerClass is the class name of the container element.
const ContainerClass = "flash-container"

// DefaultTransitionProperties are the properties reported when a hide
// transition completes, in order.
var DefaultTransitionProperties = []string{"transform", "opacity"}

// MutationKind identifies a recorded document change.
type MutationKind string

const (
	MutationCreateContainer MutationKind = "create-container"
	MutationAdopt           MutationKind = "adopt"
	MutationDecorate        MutationKind = "decorate"
	MutationAddClass        MutationKind = "add-class"
	MutationRemoveClass     MutationKind = "remove-class"
	MutationSetTop          MutationKind = "set-top"
	MutationRemove          MutationKind = "remove"
)

// Mutation is one recorded document change.
type Mutation struct {
	Kind  MutationKind `json:"kind" yaml:"kind"`
	ID    string       `json:"id,omitempty" yaml:"id,omitempty"`
	Class string       `json:"class,omitempty" yaml:"class,omitempty"`
	Top   int          `json:"top,omitempty" yaml:"top,omitempty"`
	At    time.Time    `json:"at" yaml:"at"`
}

// Element is the document's view of one notification.
type Element struct {
	ID          string
	Text        string
	Category    model.Category
	Seed        int64
	Classes     []string // Sorted
	Top         int
	Height      int // Explicit height, 0 if unset
	Decorations []model.Decoration
}

// HasClass reports whether the element carries class.
func (e Element) HasClass(class string) bool {
	for _, c := range e.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Options configures a Document.
type Options struct {
	// Transition is the delay between setting the trigger class and the
	// animation-finished signals.
	Transition time.Duration
	// Properties are reported in order when a transition completes.
	// Defaults to DefaultTransitionProperties.
	Properties []string
	// TriggerClass starts a transition when added. Defaults to "hide".
	TriggerClass string
	// DefaultHeight is reported for elements without an explicit height.
	// Zero means elements are reported as not laid out.
	DefaultHeight int
}

type element struct {
	Element
	classes map[string]bool
}

// Document is an in-memory Host. It is safe for concurrent use.
type Document struct {
	mu        sync.Mutex
	sched     schedule.Scheduler
	opts      Options
	logger    *slog.Logger
	container bool
	elements  map[string]*element
	order     []string
	heights   map[string]int
	mutations []Mutation
	sink      func(id, property string)
}

// NewDocument creates an empty document. A nil scheduler uses the wall clock.
func NewDocument(sched schedule.Scheduler, opts Options, logger *slog.Logger) *Document {
	if logger == nil {
		logger = slog.Default()
	}
	if sched == nil {
		sched = schedule.NewRealScheduler()
	}
	if len(opts.Properties) == 0 {
		opts.Properties = DefaultTransitionProperties
	}
	if opts.TriggerClass == "" {
		opts.TriggerClass = "hide"
	}
	return &Document{
		sched:    sched,
		opts:     opts,
		logger:   logger,
		elements: make(map[string]*element),
		heights:  make(map[string]int),
	}
}

// OnAnimationFinished sets the function receiving transition completions.
func (d *Document) OnAnimationFinished(fn func(id, property string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sink = fn
}

// EnsureContainer creates the container on first use.
func (d *Document) EnsureContainer() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.container {
		return nil
	}
	d.container = true
	d.record(Mutation{Kind: MutationCreateContainer, Class: ContainerClass})
	d.logger.Debug("created notification container")
	return nil
}

// Adopt places the notification's element in the container.
func (d *Document) Adopt(n *model.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.container {
		return ErrNoContainer
	}
	if _, exists := d.elements[n.ID]; !exists {
		d.order = append(d.order, n.ID)
	}
	d.elements[n.ID] = &element{
		Element: Element{
			ID:       n.ID,
			Text:     n.Text,
			Category: n.Category,
			Seed:     n.Seed,
		},
		classes: map[string]bool{n.Category.ClassName(): true},
	}
	d.record(Mutation{Kind: MutationAdopt, ID: n.ID})
	return nil
}

// Decorate appends decorations to an element.
func (d *Document) Decorate(id string, decorations []model.Decoration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.elements[id]
	if !ok {
		return
	}
	el.Decorations = append(el.Decorations, decorations...)
	for _, dec := range decorations {
		d.record(Mutation{Kind: MutationDecorate, ID: id, Class: dec.ClassName()})
	}
}

// SetClass toggles a class. Adding the trigger class schedules the
// animation-finished signals.
func (d *Document) SetClass(id, class string, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.elements[id]
	if !ok || el.classes[class] == on {
		return
	}

	if on {
		el.classes[class] = true
		d.record(Mutation{Kind: MutationAddClass, ID: id, Class: class})
		if class == d.opts.TriggerClass {
			d.scheduleTransition(id)
		}
		return
	}
	delete(el.classes, class)
	d.record(Mutation{Kind: MutationRemoveClass, ID: id, Class: class})
}

// SetTop sets an element's vertical offset.
func (d *Document) SetTop(id string, px int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.elements[id]
	if !ok {
		return
	}
	el.Top = px
	d.record(Mutation{Kind: MutationSetTop, ID: id, Top: px})
}

// Height returns the explicit height of an element, the default height, or
// 0 if the element is not in the document.
func (d *Document) Height(id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.elements[id]; !ok {
		return 0
	}
	if h, ok := d.heights[id]; ok {
		return h
	}
	return d.opts.DefaultHeight
}

// Remove detaches an element.
func (d *Document) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.elements[id]; !ok {
		return
	}
	delete(d.elements, id)
	delete(d.heights, id)
	for i, eid := range d.order {
		if eid == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.record(Mutation{Kind: MutationRemove, ID: id})
}

// SetHeight sets the measured height of an element. It may be called before
// the element is adopted.
func (d *Document) SetHeight(id string, h int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.heights[id] = h
}

// SetTransition changes the exit transition length for hides started later.
func (d *Document) SetTransition(t time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opts.Transition = t
}

// HasContainer reports whether the container exists.
func (d *Document) HasContainer() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.container
}

// Element returns a copy of the element with the given ID.
func (d *Document) Element(id string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.elements[id]
	if !ok {
		return Element{}, false
	}
	return el.snapshot(d.heights[id]), true
}

// Elements returns copies of the container's children in insertion order.
func (d *Document) Elements() []Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Element, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.elements[id].snapshot(d.heights[id]))
	}
	return out
}

// Mutations returns the recorded mutations in order.
func (d *Document) Mutations() []Mutation {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Mutation, len(d.mutations))
	copy(out, d.mutations)
	return out
}

func (d *Document) record(m Mutation) {
	m.At = d.sched.Now()
	d.mutations = append(d.mutations, m)
}

func (d *Document) scheduleTransition(id string) {
	properties := append([]string(nil), d.opts.Properties...)
	d.sched.AfterFunc(d.opts.Transition, func() {
		d.mu.Lock()
		_, present := d.elements[id]
		sink := d.sink
		d.mu.Unlock()

		if !present || sink == nil {
			return
		}
		for _, property := range properties {
			sink(id, property)
		}
	})
}

func (e *element) snapshot(height int) Element {
	out := e.Element
	out.Height = height
	out.Classes = make([]string, 0, len(e.classes))
	for c := range e.classes {
		out.Classes = append(out.Classes, c)
	}
	sort.Strings(out.Classes)
	out.Decorations = append([]model.Decoration(nil), e.Decorations...)
	return out
}
