// Package protocol implements the line-oriented customer protocol: command
// parsing and the fixed reply texts sent back to clients.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iliamunaev/virtual-cafe/internal/apperr"
	"github.com/iliamunaev/virtual-cafe/internal/model"
)

// Op identifies a customer command.
type Op int

const (
	OpInvalid Op = iota
	OpOrder
	OpStatus
	OpCollect
	OpExit
)

func (o Op) String() string {
	switch o {
	case OpOrder:
		return "order"
	case OpStatus:
		return "order status"
	case OpCollect:
		return "collect"
	case OpExit:
		return "exit"
	default:
		return "invalid"
	}
}

// DefaultMaxItems bounds the number of items in a single order command.
const DefaultMaxItems = 50

// Command is one parsed request line.
type Command struct {
	Op    Op
	Items []model.Kind // set for OpOrder
}

// Parse decodes one request line. Keywords are case-insensitive and
// surrounding whitespace is ignored. An order line has the form
// "order N kind [and N kind ...]" with at most maxItems items in total;
// maxItems <= 0 selects DefaultMaxItems.
func Parse(line string, maxItems int) (Command, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	fields := strings.Fields(strings.ToLower(line))
	switch {
	case len(fields) == 0:
		return Command{}, apperr.ErrInvalidCommand
	case len(fields) == 2 && fields[0] == "order" && fields[1] == "status":
		return Command{Op: OpStatus}, nil
	case fields[0] == "order":
		items, err := parseItems(fields[1:], maxItems)
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpOrder, Items: items}, nil
	case len(fields) == 1 && fields[0] == "collect":
		return Command{Op: OpCollect}, nil
	case len(fields) == 1 && fields[0] == "exit":
		return Command{Op: OpExit}, nil
	default:
		return Command{}, apperr.ErrInvalidCommand
	}
}

// parseItems expands "N kind and N kind" into a flat item list, in
// command order.
func parseItems(fields []string, maxItems int) ([]model.Kind, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty order: %w", apperr.ErrMalformedOrder)
	}

	var items []model.Kind
	for i := 0; i < len(fields); {
		if i > 0 {
			if fields[i] != "and" {
				return nil, fmt.Errorf("expected \"and\", got %q: %w", fields[i], apperr.ErrMalformedOrder)
			}
			i++
		}
		if i+2 > len(fields) {
			return nil, fmt.Errorf("incomplete clause: %w", apperr.ErrMalformedOrder)
		}

		n, err := strconv.Atoi(fields[i])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad quantity %q: %w", fields[i], apperr.ErrMalformedOrder)
		}
		k, ok := model.ParseKind(fields[i+1])
		if !ok {
			return nil, fmt.Errorf("item %q: %w", fields[i+1], apperr.ErrUnknownItem)
		}
		if len(items)+n > maxItems {
			return nil, fmt.Errorf("more than %d items: %w", maxItems, apperr.ErrMalformedOrder)
		}
		for range n {
			items = append(items, k)
		}
		i += 2
	}
	return items, nil
}
