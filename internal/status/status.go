// Package status maintains the per-customer status text shown by
// "order status". Recompute scans all three stages under one global lock
// and republishes only when the text changed.
package status

import (
	"fmt"
	"strings"
	"sync"

	"github.com/iliamunaev/virtual-cafe/internal/model"
)

// Counter reports how many items of a customer a stage holds.
type Counter interface {
	Count(customer string) model.Counts
}

// Event describes one published status change. Text is empty when the
// customer no longer has anything in the pipeline.
type Event struct {
	Customer string
	Text     string
	Waiting  model.Counts
	Brewing  model.Counts
	Tray     model.Counts
}

// Aggregator owns the published status map.
type Aggregator struct {
	mu        sync.Mutex
	waiting   Counter
	brewing   Counter
	tray      Counter
	published map[string]string
	onChange  func(Event)
}

// New creates an Aggregator over the three stages. onChange, if not nil,
// is called with the lock held for every published change, so it must
// not block.
func New(waiting, brewing, tray Counter, onChange func(Event)) *Aggregator {
	if waiting == nil || brewing == nil || tray == nil {
		panic("status.New: nil stage")
	}
	if onChange == nil {
		onChange = func(Event) {}
	}
	return &Aggregator{
		waiting:   waiting,
		brewing:   brewing,
		tray:      tray,
		published: make(map[string]string),
		onChange:  onChange,
	}
}

// Recompute rebuilds the status of customer and publishes it if it
// differs from the last published text. It reports whether it did.
func (a *Aggregator) Recompute(customer string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	ev := Event{
		Customer: customer,
		Waiting:  a.waiting.Count(customer),
		Brewing:  a.brewing.Count(customer),
		Tray:     a.tray.Count(customer),
	}
	ev.Text = Format(customer, ev.Waiting, ev.Brewing, ev.Tray)

	if a.published[customer] == ev.Text {
		return false
	}
	if ev.Text == "" {
		delete(a.published, customer)
	} else {
		a.published[customer] = ev.Text
	}
	a.onChange(ev)
	return true
}

// Status returns the last published text for customer.
func (a *Aggregator) Status(customer string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.published[customer]
	return s, ok
}

// Format renders the status block, one line per non-empty stage.
// It returns "" when every stage is empty.
func Format(customer string, waiting, brewing, tray model.Counts) string {
	if waiting.Total()+brewing.Total()+tray.Total() == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order status for %s:\n", customer)
	line := func(c model.Counts, where string) {
		if c.Total() > 0 {
			fmt.Fprintf(&b, "- %d tea(s) and %d coffee(s) %s\n", c[model.Tea], c[model.Coffee], where)
		}
	}
	line(waiting, "in waiting area")
	line(brewing, "currently being prepared")
	line(tray, "in the tray area")
	return b.String()
}
