// Package controller validates user input and drives the ledger, the banners and the theme.
package controller

import (
	"sync"
	"time"

	"budgetboard/internal/schedule"
)

// DefaultNoticeDelay is how long a transient notification stays visible.
const DefaultNoticeDelay = 3 * time.Second

// Kind is the style of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notice is the observable state of a banner.
type Notice struct {
	Text    string
	Kind    Kind
	Visible bool
}

// Banner is one transient message slot. Hiding clears visibility only; the text stays.
//
// Every Show arms its own hide timer. Timers are not coalesced, so an earlier timer can hide
// a later message.
type Banner struct {
	mu      sync.Mutex
	notice  Notice
	sched   schedule.Scheduler
	delay   time.Duration
	seq     int
	pending map[int]schedule.Cancel
}

// NewBanner creates a hidden banner. A nil scheduler uses real timers; a non-positive delay
// uses DefaultNoticeDelay.
func NewBanner(sched schedule.Scheduler, delay time.Duration) *Banner {
	if sched == nil {
		sched = schedule.Timers{}
	}
	if delay <= 0 {
		delay = DefaultNoticeDelay
	}
	return &Banner{sched: sched, delay: delay, pending: make(map[int]schedule.Cancel)}
}

// Delay returns the self-dismiss delay.
func (b *Banner) Delay() time.Duration {
	return b.delay
}

// Show makes text visible and schedules it to hide after the delay.
func (b *Banner) Show(text string, kind Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.notice = Notice{Text: text, Kind: kind, Visible: true}
	b.seq++
	id := b.seq
	b.pending[id] = b.sched.After(b.delay, func() { b.expire(id) })
}

// Warn shows msg as an error notice.
func (b *Banner) Warn(msg string) {
	b.Show(msg, KindError)
}

func (b *Banner) expire(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, id)
	b.notice.Visible = false
}

// Shown counts the Show calls so far.
func (b *Banner) Shown() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// Current returns the banner state.
func (b *Banner) Current() Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notice
}

// Close cancels every pending hide timer.
func (b *Banner) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, cancel := range b.pending {
		cancel()
		delete(b.pending, id)
	}
}
