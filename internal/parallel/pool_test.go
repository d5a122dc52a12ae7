package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// Pool Creation Tests
// =============================================================================

func TestPool_Create(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
}

func TestPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewPool(n)
		want := runtime.GOMAXPROCS(0)
		if pool.Workers() != want {
			t.Errorf("NewPool(%d).Workers() = %d, want %d (GOMAXPROCS)", n, pool.Workers(), want)
		}
		pool.Close()
	}
}

// =============================================================================
// ForEach Tests
// =============================================================================

func TestPool_ForEach(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	const n = 100
	var counter atomic.Int64
	pool.ForEach(n, func(int) {
		counter.Add(1)
	})

	if counter.Load() != n {
		t.Errorf("counter = %d, want %d", counter.Load(), n)
	}
}

func TestPool_ForEach_EveryIndexOnce(t *testing.T) {
	pool := NewPool(3)
	defer pool.Close()

	// Each index writes only its own slot, the same ownership rule the
	// frame kernels follow.
	hits := make([]int, 257)
	pool.ForEach(len(hits), func(i int) {
		hits[i]++
	})

	for i, h := range hits {
		if h != 1 {
			t.Errorf("index %d executed %d times, want 1", i, h)
		}
	}
}

func TestPool_ForEach_Empty(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	// Should not panic or block
	pool.ForEach(0, func(int) { t.Error("called for empty batch") })
	pool.ForEach(-1, func(int) { t.Error("called for negative batch") })
	pool.ForEach(10, nil)
}

func TestPool_ForEach_AfterClose(t *testing.T) {
	pool := NewPool(2)
	pool.Close()

	var counter atomic.Int64
	pool.ForEach(10, func(int) { counter.Add(1) })

	if counter.Load() != 10 {
		t.Errorf("counter after Close = %d, want 10 (runs on caller)", counter.Load())
	}
}

func TestPool_ForEach_Concurrent(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	var counter atomic.Int64
	const goroutines, perBatch = 10, 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			pool.ForEach(perBatch, func(int) { counter.Add(1) })
		}()
	}
	wg.Wait()

	if counter.Load() != goroutines*perBatch {
		t.Errorf("counter = %d, want %d", counter.Load(), goroutines*perBatch)
	}
}

func TestPool_ForEach_UnevenWork(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	var slow, fast atomic.Int64
	start := time.Now()
	pool.ForEach(100, func(i int) {
		if i%10 == 0 {
			time.Sleep(5 * time.Millisecond)
			slow.Add(1)
			return
		}
		fast.Add(1)
	})

	if slow.Load() != 10 || fast.Load() != 90 {
		t.Errorf("slow=%d fast=%d, want 10 and 90", slow.Load(), fast.Load())
	}
	t.Logf("elapsed %v", time.Since(start))
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestPool_CloseIdempotent(t *testing.T) {
	pool := NewPool(2)
	pool.Close()
	pool.Close()

	var counter atomic.Int64
	pool.ForEach(4, func(int) { counter.Add(1) })
	if counter.Load() != 4 {
		t.Errorf("counter after double Close = %d, want 4", counter.Load())
	}
}

func TestPool_NoGoroutineLeak(t *testing.T) {
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	baseline := runtime.NumGoroutine()

	for range 5 {
		pool := NewPool(4)
		pool.ForEach(100, func(int) {})
		pool.Close()
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	if final := runtime.NumGoroutine(); final > baseline+2 {
		t.Errorf("goroutine count: baseline=%d, final=%d (leak detected)", baseline, final)
	}
}

func TestForEachSequential_Order(t *testing.T) {
	var got []int
	ForEachSequential(5, func(i int) { got = append(got, i) })

	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v, want ascending", got)
		}
	}
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

func BenchmarkPool_ForEach(b *testing.B) {
	pool := NewPool(0)
	defer pool.Close()

	out := make([]float64, 1024)
	b.ResetTimer()
	for range b.N {
		pool.ForEach(len(out), func(i int) {
			out[i] = float64(i) * 0.5
		})
	}
}
