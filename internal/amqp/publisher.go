package amqp

import (
	"context"
	"sync/atomic"
	"time"

	"budgetboard/internal/ledger"
	applog "budgetboard/internal/log"
)

// DefaultBuffer is the publisher queue length.
const DefaultBuffer = 64

// Sender delivers one encoded message.
type Sender interface {
	Publish(ctx context.Context, body []byte) error
}

// Publisher is a ledger observer that forwards mutations to a Sender on its own goroutine.
// LedgerChanged never blocks the ledger: when the buffer is full the event is dropped.
type Publisher struct {
	sender  Sender
	events  chan LedgerEvent
	now     func() time.Time
	logger  *applog.Logger
	dropped atomic.Int64
	sent    atomic.Int64
}

func NewPublisher(sender Sender, buffer int, logger *applog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = applog.Default(applog.ComponentAMQP)
	}
	return &Publisher{
		sender: sender,
		events: make(chan LedgerEvent, buffer),
		now:    time.Now,
		logger: logger,
	}
}

// LedgerChanged implements ledger.Observer. Refresh events carry no mutation and are skipped.
func (p *Publisher) LedgerChanged(ctx context.Context, ev ledger.Event) {
	if ev.Op == ledger.OpRefresh {
		return
	}
	msg := NewLedgerEvent(ev, p.now())
	select {
	case p.events <- msg:
	default:
		p.dropped.Add(1)
		p.logger.WarnContext(ctx, "Event buffer full, dropping ledger event",
			applog.FieldOperation, msg.Op,
			applog.FieldRevision, msg.Revision)
	}
}

// Run publishes queued events until ctx is done.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "Ledger event publisher started")
	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "Ledger event publisher stopped",
				"pending", len(p.events),
				"dropped", p.dropped.Load())
			return nil
		case msg := <-p.events:
			p.publish(ctx, msg)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, msg LedgerEvent) {
	body, err := msg.ToJSON()
	if err != nil {
		p.logger.ErrorType(ctx, "Failed to marshal ledger event", applog.ErrorTypeInternal, err)
		return
	}
	if err := p.sender.Publish(ctx, body); err != nil {
		p.logger.ErrorType(ctx, "Failed to publish ledger event", applog.ErrorTypeNetwork, err,
			applog.FieldOperation, msg.Op,
			applog.FieldRevision, msg.Revision)
		return
	}
	p.sent.Add(1)
	p.logger.DebugContext(ctx, "Published ledger event",
		applog.FieldOperation, msg.Op,
		applog.FieldRevision, msg.Revision)
}

// Dropped returns how many events were discarded because the buffer was full.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Sent returns how many events were delivered.
func (p *Publisher) Sent() int64 {
	return p.sent.Load()
}
