// Package parallel runs independent CPU work, such as image decoding,
// across a fixed set of goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs submitted functions on a fixed number of goroutines.
// Each worker owns a queue and takes work from the other queues when its
// own is empty.
//
// WorkerPool is safe for concurrent use.
type WorkerPool struct {
	queues []chan func()
	done   chan struct{}
	wg     sync.WaitGroup
	open   atomic.Bool
}

// NewWorkerPool starts workers goroutines. A non-positive count uses
// GOMAXPROCS.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	depth := max(workers*4, 8)

	p := &WorkerPool{
		queues: make([]chan func(), workers),
		done:   make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), depth)
	}
	p.open.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.run(i)
	}
	return p
}

func (p *WorkerPool) run(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case fn := <-own:
			fn()
			continue
		default:
		}
		if fn := p.steal(id); fn != nil {
			fn()
			continue
		}
		select {
		case fn := <-own:
			fn()
		case <-p.done:
			for {
				select {
				case fn := <-own:
					fn()
				default:
					return
				}
			}
		}
	}
}

func (p *WorkerPool) steal(id int) func() {
	for i := range p.queues {
		if i == id {
			continue
		}
		select {
		case fn := <-p.queues[i]:
			return fn
		default:
		}
	}
	return nil
}

// ExecuteAll runs every function and waits for all of them. Work is dealt
// round-robin over the workers. After Close, ExecuteAll runs nothing.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 || !p.open.Load() {
		return
	}
	var pending sync.WaitGroup
	pending.Add(len(work))
	for i, fn := range work {
		wrapped := func() {
			defer pending.Done()
			fn()
		}
		select {
		case p.queues[i%len(p.queues)] <- wrapped:
		case <-p.done:
			pending.Done()
		}
	}
	pending.Wait()
}

// Submit queues fn on the shortest queue without waiting for it.
func (p *WorkerPool) Submit(fn func()) {
	if fn == nil || !p.open.Load() {
		return
	}
	best := 0
	for i := 1; i < len(p.queues); i++ {
		if len(p.queues[i]) < len(p.queues[best]) {
			best = i
		}
	}
	select {
	case p.queues[best] <- fn:
	case <-p.done:
	}
}

// Close stops accepting work, runs what is queued and waits for the
// workers to exit. Close is idempotent.
func (p *WorkerPool) Close() {
	if !p.open.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *WorkerPool) Workers() int { return len(p.queues) }

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool { return p.open.Load() }

// Map calls fn(i) for every i in [0, n) on a temporary pool of at most
// workers goroutines and returns the first error by index.
func Map(n, workers int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pool := NewWorkerPool(min(n, workers))
	defer pool.Close()

	errs := make([]error, n)
	work := make([]func(), n)
	for i := range work {
		work[i] = func() { errs[i] = fn(i) }
	}
	pool.ExecuteAll(work)

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
