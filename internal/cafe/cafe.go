// Package cafe owns the order pipeline: the stage queues, the admission
// pools, the scheduler loop that moves orders from Waiting into Brewing,
// and the brew workers that move finished items onto the Tray.
//
// All state lives in a Cafe value, so independent instances can run side
// by side (one per test, for example).
package cafe

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliamunaev/virtual-cafe/internal/apperr"
	"github.com/iliamunaev/virtual-cafe/internal/model"
	"github.com/iliamunaev/virtual-cafe/internal/service/pool"
	"github.com/iliamunaev/virtual-cafe/internal/service/tracker"
	"github.com/iliamunaev/virtual-cafe/internal/stage"
	"github.com/iliamunaev/virtual-cafe/internal/status"
)

// Config holds the pipeline parameters.
type Config struct {
	TeaCapacity    int
	CoffeeCapacity int
	TeaBrew        time.Duration
	CoffeeBrew     time.Duration
	Tick           time.Duration
}

// DefaultConfig returns the cafe's standard settings.
func DefaultConfig() Config {
	return Config{
		TeaCapacity:    2,
		CoffeeCapacity: 2,
		TeaBrew:        30 * time.Second,
		CoffeeBrew:     45 * time.Second,
		Tick:           100 * time.Millisecond,
	}
}

// Cafe is a single in-memory order pipeline.
type Cafe struct {
	waiting *stage.Waiting
	brewing *stage.Area
	tray    *stage.Area

	pools    [model.NumKinds]*pool.Pool
	brewTime [model.NumKinds]time.Duration
	tick     time.Duration

	tracker *tracker.Tracker
	status  *status.Aggregator
	log     *slog.Logger

	wake  chan struct{}
	brews errgroup.Group

	mu       sync.Mutex
	sessions map[string]struct{}
}

// New builds a Cafe. Non-positive settings fall back to DefaultConfig.
// onChange receives every published status change and may be nil.
func New(cfg Config, log *slog.Logger, onChange func(status.Event)) *Cafe {
	def := DefaultConfig()
	if cfg.TeaBrew <= 0 {
		cfg.TeaBrew = def.TeaBrew
	}
	if cfg.CoffeeBrew <= 0 {
		cfg.CoffeeBrew = def.CoffeeBrew
	}
	if cfg.Tick <= 0 {
		cfg.Tick = def.Tick
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	c := &Cafe{
		waiting:  stage.NewWaiting(),
		brewing:  stage.NewArea(),
		tray:     stage.NewArea(),
		tick:     cfg.Tick,
		tracker:  &tracker.Tracker{},
		log:      log.With("component", "cafe"),
		wake:     make(chan struct{}, 1),
		sessions: make(map[string]struct{}),
	}
	c.pools[model.Tea] = pool.New(cfg.TeaCapacity)
	c.pools[model.Coffee] = pool.New(cfg.CoffeeCapacity)
	c.brewTime[model.Tea] = cfg.TeaBrew
	c.brewTime[model.Coffee] = cfg.CoffeeBrew
	c.status = status.New(c.waiting, c.brewing, c.tray, onChange)
	return c
}

// Join registers an active session for name. Names are unique among
// active sessions.
func (c *Cafe) Join(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.ErrEmptyName
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[name]; ok {
		return fmt.Errorf("join %q: %w", name, apperr.ErrNameInUse)
	}
	c.sessions[name] = struct{}{}
	c.log.Info("customer joined", "customer", name)
	return nil
}

// Leave ends the session of name. Items already ordered stay in the
// pipeline and can be collected by a later session with the same name.
func (c *Cafe) Leave(name string) {
	c.mu.Lock()
	_, ok := c.sessions[name]
	delete(c.sessions, name)
	c.mu.Unlock()

	if ok {
		c.log.Info("customer left", "customer", name, "pending", c.pending(name))
	}
}

// PlaceOrder queues items for customer and wakes the scheduler.
func (c *Cafe) PlaceOrder(customer string, items []model.Kind) error {
	if len(items) == 0 {
		return fmt.Errorf("place order: %w", apperr.ErrMalformedOrder)
	}
	for _, k := range items {
		if k < 0 || k >= model.NumKinds {
			return fmt.Errorf("place order: %w", apperr.ErrUnknownItem)
		}
	}

	c.waiting.Push(customer, items)
	c.status.Recompute(customer)
	c.log.Info("order placed", "customer", customer, "items", model.JoinKinds(items))
	c.wakeUp()
	return nil
}

// OrderStatus returns the published status text of customer.
func (c *Cafe) OrderStatus(customer string) (string, error) {
	s, ok := c.status.Status(customer)
	if !ok {
		return "", fmt.Errorf("order status %q: %w", customer, apperr.ErrUnknownCustomer)
	}
	return s, nil
}

// Collect takes every tray item of customer. Tray removal relies on the
// tray's own lock, not the status lock, so it never blocks brew workers
// on status computation.
func (c *Cafe) Collect(customer string) (model.Counts, error) {
	got := c.tray.PopAll(customer)
	if got.Total() == 0 {
		return got, fmt.Errorf("collect %q: %w", customer, apperr.ErrNotReady)
	}
	c.status.Recompute(customer)
	c.log.Info("order collected", "customer", customer, "items", got.Summary())
	return got, nil
}

// Snapshot is the per-stage item count of one customer.
type Snapshot struct {
	Waiting model.Counts
	Brewing model.Counts
	Tray    model.Counts
}

// Total returns the item count over all stages.
func (s Snapshot) Total() model.Counts {
	return s.Waiting.Plus(s.Brewing).Plus(s.Tray)
}

// Inspect returns the current stage counts of customer. The stages are
// read one after another, so the result is only exact when the pipeline
// is idle.
func (c *Cafe) Inspect(customer string) Snapshot {
	return Snapshot{
		Waiting: c.waiting.Count(customer),
		Brewing: c.brewing.Count(customer),
		Tray:    c.tray.Count(customer),
	}
}

func (c *Cafe) pending(customer string) int {
	return c.Inspect(customer).Total().Total()
}

// KindStats describes the admission pool of one kind.
type KindStats struct {
	Kind     string `json:"kind"`
	InUse    int    `json:"in_use"`
	Capacity int    `json:"capacity"`
	Running  int64  `json:"running"`
	Peak     int64  `json:"peak"`
}

// Stats is a point-in-time view of the whole pipeline.
type Stats struct {
	Pools          []KindStats `json:"pools"`
	WaitingOrders  int         `json:"waiting_orders"`
	WaitingItems   int         `json:"waiting_items"`
	BrewingItems   int         `json:"brewing_items"`
	TrayItems      int         `json:"tray_items"`
	RunningBrews   int64       `json:"running_brews"`
	ActiveSessions int         `json:"active_sessions"`
}

// Stats reports pool occupancy and queue depths.
func (c *Cafe) Stats() Stats {
	st := Stats{
		Pools:         make([]KindStats, 0, model.NumKinds),
		WaitingOrders: c.waiting.Len(),
		WaitingItems:  c.waiting.Items(),
		BrewingItems:  c.brewing.Len(),
		TrayItems:     c.tray.Len(),
		RunningBrews:  c.tracker.Total(),
	}
	for _, k := range model.Kinds {
		st.Pools = append(st.Pools, KindStats{
			Kind:     k.String(),
			InUse:    c.pools[k].InUse(),
			Capacity: c.pools[k].Cap(),
			Running:  c.tracker.Running(k),
			Peak:     c.tracker.Peak(k),
		})
	}
	c.mu.Lock()
	st.ActiveSessions = len(c.sessions)
	c.mu.Unlock()
	return st
}
