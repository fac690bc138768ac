package stage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliamunaev/virtual-cafe/internal/model"
)

func admitAll(string, model.Kind) bool  { return true }
func admitNone(string, model.Kind) bool { return false }

func TestWaitingMergesPerCustomer(t *testing.T) {
	t.Parallel()

	w := NewWaiting()
	w.Push("alice", []model.Kind{model.Tea})
	w.Push("bob", []model.Kind{model.Coffee})
	w.Push("alice", []model.Kind{model.Coffee, model.Tea})
	w.Push("carol", nil)

	assert.Equal(t, 2, w.Len())
	assert.Equal(t, 4, w.Items())
	assert.Equal(t, model.Counts{2, 1}, w.Count("alice"))
	assert.Equal(t, model.Counts{0, 1}, w.Count("bob"))
	assert.Equal(t, model.Counts{}, w.Count("carol"))
}

func TestWaitingAdmitHeadFIFO(t *testing.T) {
	t.Parallel()

	w := NewWaiting()
	w.Push("alice", []model.Kind{model.Tea})
	w.Push("bob", []model.Kind{model.Coffee})

	customer, admitted, ok := w.AdmitHead(admitAll)
	require.True(t, ok)
	assert.Equal(t, "alice", customer)
	assert.Equal(t, []model.Kind{model.Tea}, admitted)

	customer, _, ok = w.AdmitHead(admitAll)
	require.True(t, ok)
	assert.Equal(t, "bob", customer)

	_, _, ok = w.AdmitHead(admitAll)
	assert.False(t, ok)
	assert.Equal(t, 0, w.Len())
}

func TestWaitingAdmitHeadRequeuesResidual(t *testing.T) {
	t.Parallel()

	w := NewWaiting()
	w.Push("alice", []model.Kind{model.Tea, model.Coffee, model.Coffee})
	w.Push("bob", []model.Kind{model.Tea})

	onlyTea := func(_ string, k model.Kind) bool { return k == model.Tea }
	customer, admitted, ok := w.AdmitHead(onlyTea)
	require.True(t, ok)
	assert.Equal(t, "alice", customer)
	assert.Equal(t, []model.Kind{model.Tea}, admitted)

	// the residual goes to the tail, behind bob
	assert.Equal(t, model.Counts{0, 2}, w.Count("alice"))
	customer, _, _ = w.AdmitHead(admitNone)
	assert.Equal(t, "bob", customer)
	customer, _, _ = w.AdmitHead(admitNone)
	assert.Equal(t, "alice", customer)
}

func TestWaitingLaterOrderMergesIntoResidual(t *testing.T) {
	t.Parallel()

	w := NewWaiting()
	w.Push("alice", []model.Kind{model.Coffee})

	_, _, ok := w.AdmitHead(admitNone)
	require.True(t, ok)
	w.Push("alice", []model.Kind{model.Tea})

	assert.Equal(t, 1, w.Len())
	assert.Equal(t, model.Counts{1, 1}, w.Count("alice"))
}

func TestWaitingConcurrentPush(t *testing.T) {
	t.Parallel()

	w := NewWaiting()
	const goroutines = 8
	const perGoroutine = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Go(func() {
			for j := 0; j < perGoroutine; j++ {
				w.Push("alice", []model.Kind{model.Tea})
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, w.Len())
	assert.Equal(t, goroutines*perGoroutine, w.Count("alice")[model.Tea])
}
