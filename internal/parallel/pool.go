// Package parallel runs data-parallel loops over image rows on a fixed set
// of worker goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a pool of goroutines that execute submitted functions.
//
// WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queue   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers. If workers
// is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &WorkerPool{
		workers: workers,
		queue:   make(chan func(), max(workers*4, 8)),
		done:    make(chan struct{}),
	}
	p.running.Store(true)
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case fn := <-p.queue:
			fn()
		case <-p.done:
			return
		}
	}
}

// ExecuteAll runs every function and waits for all of them. After Close the
// functions run on the calling goroutine.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !p.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(work))
	for _, fn := range work {
		task := func() {
			defer wg.Done()
			fn()
		}
		p.queue <- task
	}
	wg.Wait()
}

// Rows calls fn over disjoint bands [y0, y1) covering [0, height). Bands
// hold at least minRows rows; a height below twice minRows runs inline.
func (p *WorkerPool) Rows(height, minRows int, fn func(y0, y1 int)) {
	minRows = max(minRows, 1)
	bands := min(p.workers, height/minRows)
	if bands < 2 {
		if height > 0 {
			fn(0, height)
		}
		return
	}
	work := make([]func(), bands)
	for i := range bands {
		y0, y1 := i*height/bands, (i+1)*height/bands
		work[i] = func() { fn(y0, y1) }
	}
	p.ExecuteAll(work)
}

// Close stops the workers. It must not run concurrently with ExecuteAll
// and is safe to call more than once.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int { return p.workers }

// IsRunning reports whether the pool still dispatches to workers.
func (p *WorkerPool) IsRunning() bool { return p.running.Load() }
