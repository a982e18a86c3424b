package schedule

import (
	"container/heap"
	"sync"
	"time"
)

// Manual is a virtual-time Scheduler. Tasks only run from Advance or RunUntilIdle,
// on the caller's goroutine, in due-time order (FIFO for equal due times).
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	tasks taskHeap
}

// NewManual creates a manual scheduler starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc queues fn to run once virtual time reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTask{
		due:   m.now.Add(d),
		seq:   m.seq,
		fn:    fn,
		owner: m,
	}
	heap.Push(&m.tasks, t)
	return t
}

// Advance moves virtual time forward by d, running every task that becomes due,
// including tasks scheduled by those tasks inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	if target.After(m.now) {
		m.now = target
	}
	m.mu.Unlock()
}

// AdvanceTo moves virtual time to t, running tasks due at or before t.
// It is a no-op if t is in the past.
func (m *Manual) AdvanceTo(t time.Time) {
	now := m.Now()
	if t.Before(now) {
		return
	}
	m.Advance(t.Sub(now))
}

// RunUntilIdle runs tasks until none remain, jumping virtual time to each due
// time. It stops after limit tasks to guard against self-rescheduling loops
// and returns the number of tasks run.
func (m *Manual) RunUntilIdle(limit int) int {
	ran := 0
	for ran < limit {
		m.mu.Lock()
		if m.tasks.Len() == 0 {
			m.mu.Unlock()
			return ran
		}
		t := heap.Pop(&m.tasks).(*manualTask)
		t.index = -1
		if t.due.After(m.now) {
			m.now = t.due
		}
		m.mu.Unlock()

		t.fn()
		ran++
	}
	return ran
}

// Pending returns the number of queued tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks.Len()
}

// NextDue returns the due time of the earliest queued task.
func (m *Manual) NextDue() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tasks.Len() == 0 {
		return time.Time{}, false
	}
	return m.tasks[0].due, true
}

// popDue removes and returns the earliest task due at or before target,
// moving virtual time to its due time.
func (m *Manual) popDue(target time.Time) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tasks.Len() == 0 || m.tasks[0].due.After(target) {
		return nil
	}
	t := heap.Pop(&m.tasks).(*manualTask)
	t.index = -1
	if t.due.After(m.now) {
		m.now = t.due
	}
	return t
}

type manualTask struct {
	due   time.Time
	seq   uint64
	fn    func()
	index int
	owner *Manual
}

// Stop removes the task from the queue if it has not run yet.
func (t *manualTask) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()

	if t.index < 0 {
		return false
	}
	heap.Remove(&t.owner.tasks, t.index)
	t.index = -1
	return true
}

type taskHeap []*manualTask

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*manualTask)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
