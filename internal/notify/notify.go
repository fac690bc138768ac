// Package notify forwards published status changes to an external sink
// without ever blocking the status aggregator.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/iliamunaev/virtual-cafe/internal/model"
	"github.com/iliamunaev/virtual-cafe/internal/status"
)

// Sink delivers encoded status messages.
type Sink interface {
	Publish(ctx context.Context, body []byte) error
	Close() error
}

// LogSink writes messages to a logger. It is used when no broker is
// configured.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(_ context.Context, body []byte) error {
	s.log.Debug("status change", "message", string(body))
	return nil
}

func (s *LogSink) Close() error { return nil }

// Counts is the JSON form of model.Counts.
type Counts struct {
	Tea    int `json:"tea"`
	Coffee int `json:"coffee"`
}

func countsOf(c model.Counts) Counts {
	return Counts{Tea: c[model.Tea], Coffee: c[model.Coffee]}
}

// Message is one status change as published.
type Message struct {
	EventID   string    `json:"event_id"`
	Customer  string    `json:"customer"`
	Status    string    `json:"status"`
	Waiting   Counts    `json:"waiting"`
	Brewing   Counts    `json:"brewing"`
	Tray      Counts    `json:"tray"`
	Timestamp time.Time `json:"timestamp"`
}

const publishTimeout = 5 * time.Second

// Notifier buffers status events and publishes them from Run.
type Notifier struct {
	sink    Sink
	events  chan status.Event
	dropped atomic.Int64
	log     *slog.Logger
}

// New returns a Notifier with room for buffer pending events.
func New(sink Sink, buffer int, log *slog.Logger) *Notifier {
	if sink == nil {
		panic("notify.New: nil sink")
	}
	if buffer < 1 {
		buffer = 256
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Notifier{
		sink:   sink,
		events: make(chan status.Event, buffer),
		log:    log.With("component", "notifier"),
	}
}

// Notify queues e. It never blocks: when the buffer is full the event is
// dropped and counted.
func (n *Notifier) Notify(e status.Event) {
	select {
	case n.events <- e:
	default:
		n.dropped.Add(1)
		n.log.Warn("status event dropped", "customer", e.Customer)
	}
}

// Dropped returns the number of events lost to a full buffer.
func (n *Notifier) Dropped() int64 { return n.dropped.Load() }

// Run publishes queued events until ctx is done, then closes the sink.
func (n *Notifier) Run(ctx context.Context) error {
	defer func() {
		if err := n.sink.Close(); err != nil {
			n.log.Error("close sink", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-n.events:
			n.publish(ctx, e)
		}
	}
}

func (n *Notifier) publish(ctx context.Context, e status.Event) {
	body, err := json.Marshal(Message{
		EventID:   uuid.NewString(),
		Customer:  e.Customer,
		Status:    e.Text,
		Waiting:   countsOf(e.Waiting),
		Brewing:   countsOf(e.Brewing),
		Tray:      countsOf(e.Tray),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		n.log.Error("encode status event", "customer", e.Customer, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := n.sink.Publish(ctx, body); err != nil {
		n.log.Error("publish status event", "customer", e.Customer, "err", err)
	}
}
