// Package tracker provides lightweight counters for running brews.
package tracker

import (
	"sync/atomic"

	"github.com/iliamunaev/virtual-cafe/internal/model"
)

// Tracker counts running brews per kind and remembers the highest
// concurrency each kind reached.
type Tracker struct {
	running [model.NumKinds]atomic.Int64
	peak    [model.NumKinds]atomic.Int64
}

// Inc marks one more brew of kind k as running.
func (t *Tracker) Inc(k model.Kind) {
	n := t.running[k].Add(1)
	for {
		p := t.peak[k].Load()
		if n <= p || t.peak[k].CompareAndSwap(p, n) {
			return
		}
	}
}

// Dec marks one brew of kind k as finished.
func (t *Tracker) Dec(k model.Kind) {
	if t.running[k].Add(-1) < 0 {
		panic("tracker: running count below zero for " + k.String())
	}
}

// Running returns the running count for kind k.
func (t *Tracker) Running(k model.Kind) int64 { return t.running[k].Load() }

// Peak returns the highest running count kind k has reached.
func (t *Tracker) Peak(k model.Kind) int64 { return t.peak[k].Load() }

// Total returns the running count over all kinds.
func (t *Tracker) Total() int64 {
	var n int64
	for _, k := range model.Kinds {
		n += t.running[k].Load()
	}
	return n
}
