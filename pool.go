package luma

import (
	"sync"
	"sync/atomic"
)

// Pool runs pixel-producing work on a fixed set of background workers.
// Submission never blocks: when the queue is full the task is refused and
// the caller either runs it inline or drops it. Viewports use a Pool to
// generate hotspot content in parallel, sprite schedulers use one to
// pre-extract upcoming frames. A single Pool can be shared by both.
type Pool struct {
	tasks   chan func()
	quit    chan struct{}
	wg      sync.WaitGroup
	stopped atomic.Bool
	dropped atomic.Uint64
}

// NewPool starts workers goroutines consuming a queue of depth tasks.
func NewPool(workers, depth int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if depth < 1 {
		depth = workers
	}
	p := &Pool{
		tasks: make(chan func(), depth),
		quit:  make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.tasks:
			task()
		}
	}
}

// TrySubmit queues task for execution. It reports false without blocking
// when the queue is full or the pool is closed.
func (p *Pool) TrySubmit(task func()) bool {
	if p.stopped.Load() {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		p.dropped.Add(1)
		return false
	}
}

// Dropped reports how many submissions were refused because the queue was
// full.
func (p *Pool) Dropped() uint64 {
	return p.dropped.Load()
}

// Close stops the workers and waits for running tasks to finish. Queued
// tasks that have not started may be discarded. Close is idempotent.
func (p *Pool) Close() {
	if p.stopped.CompareAndSwap(false, true) {
		close(p.quit)
		p.wg.Wait()
	}
}
