package cafe

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/iliamunaev/virtual-cafe/internal/model"
)

// Run drives the scheduler until ctx is done: one pass over the waiting
// queue per tick, plus an extra pass whenever an order arrives or a brew
// frees a slot. On shutdown it waits for in-flight brews, which abandon
// their work as soon as ctx is canceled.
func (c *Cafe) Run(ctx context.Context) error {
	t := time.NewTicker(c.tick)
	defer t.Stop()

	c.log.Info("scheduler started", "tick", c.tick)
	for {
		select {
		case <-ctx.Done():
			c.log.Info("scheduler stopping", "brewing", c.brewing.Len())
			if err := c.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				c.log.Error("brew worker failed", "err", err)
			}
			return nil
		case <-t.C:
		case <-c.wake:
		}
		c.Tick(ctx)
	}
}

// Tick makes one pass over the waiting queue and returns the number of
// items it admitted into Brewing. Each waiting order is offered to the
// pools once; leftovers go back to the tail of the queue.
func (c *Cafe) Tick(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}

	total := 0
	for range c.waiting.Len() {
		customer, admitted, ok := c.waiting.AdmitHead(c.admit)
		if !ok {
			break
		}
		c.status.Recompute(customer)
		for _, k := range admitted {
			c.dispatch(ctx, customer, k)
		}
		total += len(admitted)
	}
	return total
}

// Wait blocks until every dispatched brew has returned.
func (c *Cafe) Wait() error {
	return c.brews.Wait()
}

// admit runs under the waiting queue lock. It must not touch the status
// aggregator.
func (c *Cafe) admit(customer string, k model.Kind) bool {
	if !c.pools[k].TryAcquire() {
		return false
	}
	c.brewing.Push(model.StageRecord{Customer: customer, Kind: k})
	return true
}

func (c *Cafe) dispatch(ctx context.Context, customer string, k model.Kind) {
	c.tracker.Inc(k)
	c.brews.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("brew worker panicked",
					"customer", customer,
					"kind", k.String(),
					"panic", r,
					"stack", string(debug.Stack()),
				)
				err = fmt.Errorf("brew %s for %s: panic: %v", k, customer, r)
			}
		}()
		return c.brew(ctx, customer, k)
	})
}

// brew holds one pool slot for the brew duration of k, then moves the
// item from Brewing onto the Tray.
func (c *Cafe) brew(ctx context.Context, customer string, k model.Kind) error {
	log := c.log.With("customer", customer, "kind", k.String())
	log.Debug("brew started", "duration", c.brewTime[k])

	if err := sleepOrDone(ctx, c.brewTime[k]); err != nil {
		c.tracker.Dec(k)
		log.Warn("brew abandoned", "err", err)
		return fmt.Errorf("brew %s for %s: %w", k, customer, err)
	}

	// Brewing to Tray is one step so a status scan never misses the item.
	rec := model.StageRecord{Customer: customer, Kind: k}
	if !c.brewing.MoveTo(c.tray, rec) {
		panic(fmt.Sprintf("cafe: %s for %s missing from brewing", k, customer))
	}
	c.tracker.Dec(k)
	c.pools[k].Release()

	log.Debug("brew finished")
	c.status.Recompute(customer)
	c.wakeUp()
	return nil
}

func (c *Cafe) wakeUp() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
