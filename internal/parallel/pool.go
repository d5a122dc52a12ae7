package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of goroutines that executes fork-join batches.
//
// Each worker owns a queue. A batch submitted with ForEach is spread
// round-robin across the queues; an idle worker steals from its peers so a
// few expensive tiles (deep interior regions) do not leave the rest of the
// pool waiting.
//
// Thread safety: Pool is safe for concurrent use. Batches submitted from
// different goroutines interleave but each ForEach call only returns once its
// own items have completed.
type Pool struct {
	workers int
	queues  []chan job
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// job is one index of a ForEach batch.
type job struct {
	fn    func(int)
	index int
	batch *sync.WaitGroup
}

func (j job) run() {
	defer j.batch.Done()
	j.fn(j.index)
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan job, workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan job, queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case j := <-own:
			j.run()
		default:
			if j, ok := p.steal(id); ok {
				j.run()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case j := <-own:
				j.run()
			}
		}
	}
}

// drain runs whatever is left in a queue at shutdown so no batch is left
// waiting on an item that will never execute.
func (p *Pool) drain(queue chan job) {
	for {
		select {
		case j := <-queue:
			j.run()
		default:
			return
		}
	}
}

// steal takes one item from another worker's queue.
func (p *Pool) steal(id int) (job, bool) {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case j := <-p.queues[i]:
			return j, true
		default:
		}
	}
	return job{}, false
}

// ForEach calls fn(i) for every i in [0, n) across the workers and returns
// when all calls have finished. Calls for distinct indices may run
// concurrently, so fn must only touch state owned by its index.
//
// After Close, ForEach runs the batch on the calling goroutine.
func (p *Pool) ForEach(n int, fn func(i int)) {
	if n <= 0 || fn == nil {
		return
	}
	if !p.running.Load() {
		for i := range n {
			fn(i)
		}
		return
	}

	var batch sync.WaitGroup
	batch.Add(n)
	for i := range n {
		j := job{fn: fn, index: i, batch: &batch}
		select {
		case p.queues[i%p.workers] <- j:
		case <-p.done:
			j.run()
		}
	}
	batch.Wait()
}

// Close stops the workers after the queued work has run.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// ForEachSequential is the single-goroutine counterpart of Pool.ForEach.
// It visits indices in ascending order.
func ForEachSequential(n int, fn func(i int)) {
	for i := range n {
		fn(i)
	}
}
