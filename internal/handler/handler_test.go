package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliamunaev/virtual-cafe/internal/apperr"
	"github.com/iliamunaev/virtual-cafe/internal/cafe"
	"github.com/iliamunaev/virtual-cafe/internal/model"
)

// The real cafe must satisfy the handler's dependency.
var _ orderService = (*cafe.Cafe)(nil)

// --- stubs for unit tests ---

type stubCafe struct {
	placed    [][]model.Kind
	status    string
	statusErr error
	collected model.Counts
	collErr   error
}

func (s *stubCafe) PlaceOrder(_ string, items []model.Kind) error {
	s.placed = append(s.placed, items)
	return nil
}

func (s *stubCafe) OrderStatus(string) (string, error) { return s.status, s.statusErr }

func (s *stubCafe) Collect(string) (model.Counts, error) { return s.collected, s.collErr }

func TestHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		stub      *stubCafe
		line      string
		wantReply string
		wantQuit  bool
	}{
		{
			name:      "order",
			stub:      &stubCafe{},
			line:      "order 2 tea and 1 coffee",
			wantReply: "Order received for alice: tea, tea, coffee",
		},
		{
			name:      "malformed_order",
			stub:      &stubCafe{},
			line:      "order 1 latte",
			wantReply: "Error parsing order. Ensure the format is correct.",
		},
		{
			name:      "status",
			stub:      &stubCafe{status: "Order status for alice:\n- 1 tea(s) and 0 coffee(s) in the tray area\n"},
			line:      "order status",
			wantReply: "Order status for alice:\n- 1 tea(s) and 0 coffee(s) in the tray area",
		},
		{
			name:      "no_status",
			stub:      &stubCafe{statusErr: apperr.ErrUnknownCustomer},
			line:      "order status",
			wantReply: "There are no active orders for alice",
		},
		{
			name:      "collect",
			stub:      &stubCafe{collected: model.Counts{1, 2}},
			line:      "collect",
			wantReply: "You have collected: 1 tea(s), 2 coffee(s)",
		},
		{
			name:      "collect_not_ready",
			stub:      &stubCafe{collErr: apperr.ErrNotReady},
			line:      "collect",
			wantReply: "Your order is not ready for collection. Please Wait.",
		},
		{
			name:      "exit",
			stub:      &stubCafe{},
			line:      "exit",
			wantReply: "I am now exiting the cafe",
			wantQuit:  true,
		},
		{
			name:      "invalid",
			stub:      &stubCafe{},
			line:      "make me a sandwich",
			wantReply: "Please enter a valid Command. Please try again.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := New(tt.stub, 0, nil)
			reply, quit := h.Handle("alice", tt.line)
			assert.Equal(t, tt.wantReply, reply)
			assert.Equal(t, tt.wantQuit, quit)
		})
	}
}

func TestHandleOrderForwardsItems(t *testing.T) {
	t.Parallel()

	stub := &stubCafe{}
	h := New(stub, 0, nil)
	h.Handle("alice", "order 1 coffee and 1 tea")

	require.Len(t, stub.placed, 1)
	assert.Equal(t, []model.Kind{model.Coffee, model.Tea}, stub.placed[0])
}

func TestHandleMaxItems(t *testing.T) {
	t.Parallel()

	stub := &stubCafe{}
	h := New(stub, 2, nil)
	reply, _ := h.Handle("alice", "order 3 tea")
	assert.Equal(t, "Error parsing order. Ensure the format is correct.", reply)
	assert.Empty(t, stub.placed)
}

func TestNew_NilCafePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for nil cafe")
		}
	}()
	New(nil, 0, nil)
}

func TestHandleAgainstCafe(t *testing.T) {
	t.Parallel()

	c := cafe.New(cafe.Config{
		TeaCapacity:    2,
		CoffeeCapacity: 2,
		TeaBrew:        time.Millisecond,
		CoffeeBrew:     time.Millisecond,
		Tick:           time.Millisecond,
	}, nil, nil)
	h := New(c, 0, nil)

	reply, _ := h.Handle("bob", "order 1 tea")
	assert.Equal(t, "Order received for bob: tea", reply)

	reply, _ = h.Handle("bob", "collect")
	assert.Equal(t, "Your order is not ready for collection. Please Wait.", reply)

	c.Tick(context.Background())
	require.NoError(t, c.Wait())

	reply, _ = h.Handle("bob", "order status")
	assert.Equal(t, "Order status for bob:\n- 1 tea(s) and 0 coffee(s) in the tray area", reply)

	reply, _ = h.Handle("bob", "collect")
	assert.Equal(t, "You have collected: 1 tea(s)", reply)

	reply, _ = h.Handle("bob", "order status")
	assert.Equal(t, "There are no active orders for bob", reply)
}
