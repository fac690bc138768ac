// Package handler turns parsed customer commands into cafe operations and
// shapes the text replies.
package handler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/iliamunaev/virtual-cafe/internal/apperr"
	"github.com/iliamunaev/virtual-cafe/internal/model"
	"github.com/iliamunaev/virtual-cafe/internal/protocol"
)

type orderService interface {
	PlaceOrder(customer string, items []model.Kind) error
	OrderStatus(customer string) (string, error)
	Collect(customer string) (model.Counts, error)
}

// Handler answers the commands of one connected customer at a time.
// It is safe for concurrent use.
type Handler struct {
	orders   orderService
	maxItems int
	log      *slog.Logger
}

// New returns a Handler backed by c.
//
// It panics if c is nil. A non-positive maxItems selects
// protocol.DefaultMaxItems.
func New(c orderService, maxItems int, log *slog.Logger) *Handler {
	if c == nil {
		panic("handler.New: nil cafe")
	}
	if maxItems <= 0 {
		maxItems = protocol.DefaultMaxItems
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{orders: c, maxItems: maxItems, log: log.With("component", "handler")}
}

// Handle executes one request line for customer. quit reports that the
// session should end after reply is sent.
func (h *Handler) Handle(customer, line string) (reply string, quit bool) {
	cmd, err := protocol.Parse(line, h.maxItems)
	if err != nil {
		h.log.Debug("rejected command", "customer", customer, "kind", apperr.Kind(err), "err", err)
		if errors.Is(err, apperr.ErrInvalidCommand) {
			return protocol.InvalidPrompt, false
		}
		return protocol.ParseError, false
	}

	switch cmd.Op {
	case protocol.OpOrder:
		if err := h.orders.PlaceOrder(customer, cmd.Items); err != nil {
			h.log.Warn("order rejected", "customer", customer, "err", err)
			return protocol.ParseError, false
		}
		return protocol.OrderReceived(customer, cmd.Items), false

	case protocol.OpStatus:
		s, err := h.orders.OrderStatus(customer)
		if err != nil {
			return protocol.NoActiveOrders(customer), false
		}
		return strings.TrimSuffix(s, "\n"), false

	case protocol.OpCollect:
		got, err := h.orders.Collect(customer)
		if err != nil {
			return protocol.NotReady, false
		}
		return protocol.Collected(got), false

	case protocol.OpExit:
		return protocol.Goodbye, true
	}
	return protocol.InvalidPrompt, false
}
