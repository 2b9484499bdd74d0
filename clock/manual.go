package clock

import (
	"sync"
	"time"
)

// Manual is a deterministic Clock and Scheduler for tests.
// Time stands still until Advance or Set is called. Scheduled callbacks
// fire during Advance, in due-time order; callbacks sharing a due time
// fire in the order they were scheduled.
type Manual struct {
	mu    sync.Mutex
	now   int64
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	due       int64
	seq       int
	fn        func()
	cancelled bool
}

// NewManual creates a Manual clock starting at zero milliseconds.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the current manual time in milliseconds.
func (m *Manual) Now() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to the given millisecond reading without firing
// any scheduled callbacks. Time never moves backwards.
func (m *Manual) Set(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ms > m.now {
		m.now = ms
	}
}

// ScheduleAfter registers fn to fire once the clock has advanced d past
// the current reading. Non-positive delays are due immediately but still
// wait for the next Advance call.
func (m *Manual) ScheduleAfter(d time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	delay := d.Milliseconds()
	if delay < 0 {
		delay = 0
	}

	task := &manualTask{
		due: m.now + delay,
		seq: m.seq,
		fn:  fn,
	}
	m.seq++
	m.tasks = append(m.tasks, task)
	return manualHandle{m: m, task: task}
}

// Advance moves the clock forward by d, firing every due callback in
// order. Callbacks run without the internal lock held, so they may
// schedule further work; work that falls due within the same advance
// window also fires.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d.Milliseconds()

	for {
		task := m.popDueLocked(target)
		if task == nil {
			break
		}
		if task.due > m.now {
			m.now = task.due
		}
		m.mu.Unlock()
		task.fn()
		m.mu.Lock()
	}

	if target > m.now {
		m.now = target
	}
	m.mu.Unlock()
}

// popDueLocked removes and returns the earliest task due at or before
// target, preferring lower sequence numbers on ties. Returns nil when
// nothing is due. Caller must hold the lock.
func (m *Manual) popDueLocked(target int64) *manualTask {
	best := -1
	for i, t := range m.tasks {
		if t.cancelled || t.due > target {
			continue
		}
		if best == -1 || t.due < m.tasks[best].due ||
			(t.due == m.tasks[best].due && t.seq < m.tasks[best].seq) {
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	task := m.tasks[best]
	m.tasks = append(m.tasks[:best], m.tasks[best+1:]...)
	return task
}

// Pending returns the number of scheduled callbacks that have not fired
// or been cancelled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			count++
		}
	}
	return count
}

type manualHandle struct {
	m    *Manual
	task *manualTask
}

func (h manualHandle) Cancel() bool {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if h.task.cancelled {
		return false
	}
	for i, t := range h.m.tasks {
		if t == h.task {
			h.task.cancelled = true
			h.m.tasks = append(h.m.tasks[:i], h.m.tasks[i+1:]...)
			return true
		}
	}
	return false
}
