package view

import (
	"context"
	"sync/atomic"

	"budgetboard/internal/ledger"
	applog "budgetboard/internal/log"
)

// Sink receives every freshly computed dashboard.
type Sink interface {
	Render(ctx context.Context, d Dashboard)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, d Dashboard)

func (f SinkFunc) Render(ctx context.Context, d Dashboard) { f(ctx, d) }

// Latest keeps the most recent dashboard for readers on other goroutines.
type Latest struct {
	current atomic.Pointer[Dashboard]
}

func (l *Latest) Render(_ context.Context, d Dashboard) {
	l.current.Store(&d)
}

// Load returns the last rendered dashboard, if any.
func (l *Latest) Load() (Dashboard, bool) {
	d := l.current.Load()
	if d == nil {
		return Dashboard{}, false
	}
	return *d, true
}

// Synchronizer recomputes the dashboard on every ledger event and pushes it to its sinks.
type Synchronizer struct {
	formatter *Formatter
	sinks     []Sink
	logger    *applog.Logger
}

// NewSynchronizer creates a synchronizer. A nil formatter means en-US.
func NewSynchronizer(f *Formatter, logger *applog.Logger, sinks ...Sink) *Synchronizer {
	if f == nil {
		f = DefaultFormatter()
	}
	if logger == nil {
		logger = applog.Default(applog.ComponentView)
	}
	return &Synchronizer{formatter: f, sinks: sinks, logger: logger}
}

// Formatter returns the formatter used for projections.
func (s *Synchronizer) Formatter() *Formatter {
	return s.formatter
}

// Refresh projects snap and pushes the result to every sink.
func (s *Synchronizer) Refresh(ctx context.Context, snap ledger.Snapshot) Dashboard {
	d := Project(snap, s.formatter)
	for _, sink := range s.sinks {
		sink.Render(ctx, d)
	}
	s.logger.DebugContext(ctx, "Dashboard refreshed",
		applog.FieldRevision, d.Revision,
		applog.FieldCount, len(d.Table))
	return d
}

// LedgerChanged implements ledger.Observer
func (s *Synchronizer) LedgerChanged(ctx context.Context, ev ledger.Event) {
	s.Refresh(ctx, ev.Snapshot)
}
