// Package stage provides the concurrency-safe containers that hold items
// at each lifecycle stage: the Waiting queue and the Brewing and Tray areas.
package stage

import (
	"sync"

	"github.com/iliamunaev/virtual-cafe/internal/model"
)

// Waiting is a FIFO of orders, at most one entry per customer.
type Waiting struct {
	mu     sync.Mutex
	orders []*model.Order
	index  map[string]*model.Order
}

// NewWaiting creates an empty queue.
func NewWaiting() *Waiting {
	return &Waiting{index: make(map[string]*model.Order)}
}

// Push queues items for customer. If the customer already has a waiting
// entry the items are merged into it and its position is kept.
func (w *Waiting) Push(customer string, items []model.Kind) {
	if len(items) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if o, ok := w.index[customer]; ok {
		o.Add(items...)
		return
	}
	o := model.NewOrder(customer, items)
	w.orders = append(w.orders, o)
	w.index[customer] = o
}

// AdmitHead pops the head order and offers each of its items to admit.
// Items admit rejects are re-enqueued at the tail. The whole step runs
// under the queue lock so a waiting item is never missing from every stage.
//
// admit must not call back into w.
func (w *Waiting) AdmitHead(admit func(customer string, k model.Kind) bool) (customer string, admitted []model.Kind, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.orders) == 0 {
		return "", nil, false
	}
	head := w.orders[0]
	w.orders[0] = nil
	w.orders = w.orders[1:]
	delete(w.index, head.Customer)

	var residual []model.Kind
	for _, k := range head.Items {
		if admit(head.Customer, k) {
			admitted = append(admitted, k)
		} else {
			residual = append(residual, k)
		}
	}

	if len(residual) > 0 {
		head.Items = residual
		w.orders = append(w.orders, head)
		w.index[head.Customer] = head
	}
	return head.Customer, admitted, true
}

// Count returns the waiting items of customer per kind.
func (w *Waiting) Count(customer string) model.Counts {
	w.mu.Lock()
	defer w.mu.Unlock()

	if o, ok := w.index[customer]; ok {
		return o.Count()
	}
	return model.Counts{}
}

// Len returns the number of waiting orders.
func (w *Waiting) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.orders)
}

// Items returns the total number of waiting items.
func (w *Waiting) Items() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for _, o := range w.orders {
		n += len(o.Items)
	}
	return n
}
