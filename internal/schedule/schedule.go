// Package schedule runs fire-once delayed tasks that can be cancelled.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a pending task. It reports whether the task was stopped before running.
type Cancel func() bool

// Scheduler runs fn once after delay.
type Scheduler interface {
	After(delay time.Duration, fn func()) Cancel
}

// Timers schedules on real time via time.AfterFunc.
type Timers struct{}

func (Timers) After(delay time.Duration, fn func()) Cancel {
	t := time.AfterFunc(delay, fn)
	return t.Stop
}

// Manual is a virtual-clock scheduler. Tasks run only when Advance passes their due time.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*task
}

type task struct {
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
	done      bool
}

// NewManual returns a scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) After(delay time.Duration, fn func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &task{due: m.now + delay, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if t.done || t.cancelled {
			return false
		}
		t.cancelled = true
		return true
	}
}

// Advance moves the virtual clock forward and runs every task that became due, in due order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*task
	pending := m.tasks[:0]
	for _, t := range m.tasks {
		switch {
		case t.cancelled:
		case t.due <= m.now:
			t.done = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	m.tasks = pending
	m.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.fn()
	}
}

// Pending returns how many tasks are waiting.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}
