package tracker

import (
	"sync"
	"testing"

	"github.com/iliamunaev/virtual-cafe/internal/model"
)

func TestTrackerIncDec(t *testing.T) {
	t.Parallel()

	tr := &Tracker{}
	tr.Inc(model.Tea)
	tr.Inc(model.Tea)
	tr.Inc(model.Coffee)
	if got := tr.Running(model.Tea); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := tr.Total(); got != 3 {
		t.Fatalf("expected total 3, got %d", got)
	}

	tr.Dec(model.Tea)
	tr.Dec(model.Tea)
	if got := tr.Running(model.Tea); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := tr.Peak(model.Tea); got != 2 {
		t.Fatalf("expected peak 2, got %d", got)
	}
	if got := tr.Peak(model.Coffee); got != 1 {
		t.Fatalf("expected coffee peak 1, got %d", got)
	}
}

func TestTrackerDecBelowZeroPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic when running count goes negative")
		}
	}()
	(&Tracker{}).Dec(model.Coffee)
}

func TestTrackerConcurrent(t *testing.T) {
	t.Parallel()

	tr := &Tracker{}
	const goroutines = 10
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				tr.Inc(model.Coffee)
				tr.Dec(model.Coffee)
			}
		}()
	}
	wg.Wait()

	if got := tr.Total(); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if p := tr.Peak(model.Coffee); p < 1 || p > goroutines {
		t.Fatalf("expected peak in [1,%d], got %d", goroutines, p)
	}
}
