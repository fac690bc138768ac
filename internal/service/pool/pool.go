// Package pool provides a capacity-bounded admission pool.
package pool

// Pool admits at most cap concurrent holders. It never queues:
// callers that fail TryAcquire are expected to retry later.
type Pool struct {
	sem chan struct{}
}

// New creates a pool with at least one slot
// and at most 128 slots.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	if size > 128 {
		size = 128
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// TryAcquire reserves one slot if one is free and reports whether it did.
// The check and the reservation are a single channel send, so concurrent
// callers can never over-admit.
func (p *Pool) TryAcquire() bool {
	select {
	case p.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees a slot taken by a successful TryAcquire.
// Releasing an empty pool is a logic error and panics.
func (p *Pool) Release() {
	select {
	case <-p.sem:
	default:
		panic("pool: release without matching acquire")
	}
}

// InUse returns the number of held slots.
func (p *Pool) InUse() int { return len(p.sem) }

// Cap returns the pool capacity.
func (p *Pool) Cap() int { return cap(p.sem) }
