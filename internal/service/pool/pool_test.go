package pool

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func BenchmarkPoolParallel(b *testing.B) {
	for _, cap := range []int{1, 2, 8, 64, 128} {
		b.Run(fmt.Sprintf("cap=%d", cap), func(b *testing.B) {
			p := New(cap)
			b.ReportAllocs()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					if p.TryAcquire() {
						p.Release()
					}
				}
			})
		})
	}
}

func FuzzPoolAcquireRelease(f *testing.F) {
	f.Add(1, 3)
	f.Fuzz(func(t *testing.T, n, attempts int) {
		if attempts < 0 || attempts > 1000 {
			attempts = 1000
		}
		p := New(n)

		admitted := 0
		for i := 0; i < attempts; i++ {
			if p.TryAcquire() {
				admitted++
			}
		}
		if admitted > p.Cap() {
			t.Fatalf("admitted %d over capacity %d", admitted, p.Cap())
		}
		for i := 0; i < admitted; i++ {
			p.Release()
		}
		if p.InUse() != 0 {
			t.Fatalf("expected empty pool, got %d in use", p.InUse())
		}
	})
}

var poolSizesTests = []struct {
	in  int
	out int
}{
	{in: -1, out: 1},
	{in: 0, out: 1},
	{in: -129, out: 1},

	{in: 1, out: 1},
	{in: 2, out: 2},
	{in: 127, out: 127},
	{in: 128, out: 128},

	{in: 129, out: 128},
	{in: 1000, out: 128},
}

func TestNewPoolSize(t *testing.T) {
	for _, tt := range poolSizesTests {
		tt := tt
		t.Run(fmt.Sprintf("size=%d", tt.in), func(t *testing.T) {
			pool := New(tt.in)
			if pool == nil {
				t.Fatalf("New(%d) returned pool == nil", tt.in)
			}
			if got := pool.Cap(); got != tt.out {
				t.Errorf("New(%d): got %d, want %d", tt.in, got, tt.out)
			}
		})
	}
}

// TestPoolTryAcquireRelease verifies that a full pool rejects admission
// and admits again after a release.
func TestPoolTryAcquireRelease(t *testing.T) {
	for _, size := range []int{1, 2, 8, 128} {
		size := size
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			pool := New(size)

			for i := 0; i < size; i++ {
				if !pool.TryAcquire() {
					t.Fatalf("prefill acquire #%d rejected", i+1)
				}
			}
			if pool.InUse() != size {
				t.Fatalf("expected %d in use, got %d", size, pool.InUse())
			}
			if pool.TryAcquire() {
				t.Fatal("expected acquire on a full pool to be rejected")
			}

			pool.Release()
			if !pool.TryAcquire() {
				t.Fatal("expected acquire to succeed after release")
			}
		})
	}
}

func TestPoolReleaseWithoutAcquirePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on release of an empty pool")
		}
	}()
	New(1).Release()
}

// TestPoolConcurrentAdmission hammers TryAcquire from many goroutines and
// checks that the number of concurrent holders never exceeds capacity.
func TestPoolConcurrentAdmission(t *testing.T) {
	t.Parallel()

	const size = 2
	pool := New(size)

	var holders, maxHolders atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Go(func() {
			for i := 0; i < 500; i++ {
				if !pool.TryAcquire() {
					continue
				}
				n := holders.Add(1)
				for {
					m := maxHolders.Load()
					if n <= m || maxHolders.CompareAndSwap(m, n) {
						break
					}
				}
				holders.Add(-1)
				pool.Release()
			}
		})
	}
	wg.Wait()

	if got := maxHolders.Load(); got > size {
		t.Fatalf("expected at most %d concurrent holders, got %d", size, got)
	}
	if pool.InUse() != 0 {
		t.Fatalf("expected empty pool, got %d in use", pool.InUse())
	}
}
