package stage

import (
	"sync"

	"github.com/iliamunaev/virtual-cafe/internal/model"
)

// Area is an unordered multiset of stage records keyed by customer and kind.
// Brewing and Tray are both Areas.
type Area struct {
	mu     sync.Mutex
	counts map[string]model.Counts
	total  int
}

// NewArea creates an empty area.
func NewArea() *Area {
	return &Area{counts: make(map[string]model.Counts)}
}

// Push adds one record.
func (a *Area) Push(r model.StageRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pushLocked(r)
}

func (a *Area) pushLocked(r model.StageRecord) {
	c := a.counts[r.Customer]
	c[r.Kind]++
	a.counts[r.Customer] = c
	a.total++
}

// MoveTo removes r from a and adds it to dst in one step, holding both
// locks. It reports whether r was present in a. Callers must always move
// in the same direction between two areas.
func (a *Area) MoveTo(dst *Area, r model.StageRecord) bool {
	if a == dst {
		panic("stage: move within one area")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.removeLocked(r) {
		return false
	}

	dst.mu.Lock()
	defer dst.mu.Unlock()
	dst.pushLocked(r)
	return true
}

func (a *Area) removeLocked(r model.StageRecord) bool {
	c, ok := a.counts[r.Customer]
	if !ok || c[r.Kind] == 0 {
		return false
	}
	c[r.Kind]--
	if c.Total() == 0 {
		delete(a.counts, r.Customer)
	} else {
		a.counts[r.Customer] = c
	}
	a.total--
	return true
}

// PopAll removes every record of customer and returns the removed counts.
func (a *Area) PopAll(customer string) model.Counts {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.counts[customer]
	delete(a.counts, customer)
	a.total -= c.Total()
	return c
}

// Count returns the records of customer per kind.
func (a *Area) Count(customer string) model.Counts {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[customer]
}

// Len returns the total number of records.
func (a *Area) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}
