package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// MinBandRows is the smallest band handed to a worker. Shorter passes run
// on the calling goroutine.
const MinBandRows = 16

// Pool is a fixed set of worker goroutines.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	jobs    chan func()
	wg      sync.WaitGroup
	running atomic.Bool
	mu      sync.RWMutex // guards jobs against Close
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		jobs:    make(chan func(), workers*4),
	}
	p.running.Store(true)
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}

// Rows calls fn over [y0, y1) split into contiguous bands and returns when
// every band is done. Bands are at least MinBandRows tall. After Close, or
// when the range fits one band, fn runs on the calling goroutine.
func (p *Pool) Rows(y0, y1 int, fn func(y0, y1 int)) {
	n := y1 - y0
	if n <= 0 {
		return
	}
	bands := min(p.workers, (n+MinBandRows-1)/MinBandRows)

	p.mu.RLock()
	defer p.mu.RUnlock()
	if bands <= 1 || !p.running.Load() {
		fn(y0, y1)
		return
	}

	var done sync.WaitGroup
	done.Add(bands)
	for i := range bands {
		lo := y0 + n*i/bands
		hi := y0 + n*(i+1)/bands
		p.jobs <- func() {
			defer done.Done()
			fn(lo, hi)
		}
	}
	done.Wait()
}

// Close stops the workers once queued bands are finished.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	p.mu.Lock()
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
