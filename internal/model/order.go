// Package model defines the entities that move through the cafe pipeline.
// It keeps item kinds, waiting orders and stage records in one place for reuse.
package model

import (
	"fmt"
	"strings"
)

// Kind is an item kind the cafe can brew.
type Kind int

const (
	Tea Kind = iota
	Coffee

	// NumKinds is the number of kinds; valid kinds are [0, NumKinds).
	NumKinds = 2
)

// Kinds lists every kind in display order.
var Kinds = []Kind{Tea, Coffee}

// String returns the lowercase name used in replies and logs.
func (k Kind) String() string {
	switch k {
	case Tea:
		return "tea"
	case Coffee:
		return "coffee"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts singular and plural item names, case-insensitive.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tea", "teas":
		return Tea, true
	case "coffee", "coffees":
		return Coffee, true
	default:
		return 0, false
	}
}

// Order is a customer's list of items not yet admitted for brewing.
type Order struct {
	Customer string
	Items    []Kind
}

// NewOrder creates an order holding a copy of items.
func NewOrder(customer string, items []Kind) *Order {
	return &Order{Customer: customer, Items: append([]Kind(nil), items...)}
}

// Add appends items to the order.
func (o *Order) Add(items ...Kind) {
	o.Items = append(o.Items, items...)
}

// Count returns the number of pending items per kind.
func (o *Order) Count() Counts {
	var c Counts
	for _, k := range o.Items {
		c[k]++
	}
	return c
}

// JoinKinds renders kinds comma separated.
func JoinKinds(items []Kind) string {
	parts := make([]string, len(items))
	for i, k := range items {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

// StageRecord is one admitted item in the Brewing or Tray area.
// Items lose their identity once admitted; only customer and kind are kept.
type StageRecord struct {
	Customer string
	Kind     Kind
}

// Counts holds a number per kind, indexed by Kind.
type Counts [NumKinds]int

// Total returns the sum over all kinds.
func (c Counts) Total() int {
	return c[Tea] + c[Coffee]
}

// Plus returns the element-wise sum.
func (c Counts) Plus(o Counts) Counts {
	return Counts{c[Tea] + o[Tea], c[Coffee] + o[Coffee]}
}

// Summary renders non-zero counts as "1 tea(s), 2 coffee(s)".
func (c Counts) Summary() string {
	parts := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		if c[k] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s(s)", c[k], k))
		}
	}
	return strings.Join(parts, ", ")
}
