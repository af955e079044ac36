package workpool

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

var (
	// ErrSaturated is returned by Submit when the queue has no free slot.
	ErrSaturated = errors.New("worker pool saturated")
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("worker pool closed")
)

// Config controls pool sizing. Zero values pick defaults.
type Config struct {
	Workers   int
	QueueSize int
}

// Job is a unit of work executed on a pool goroutine.
type Job func() (any, error)

type task struct {
	job Job
	fut *Future
}

// Future carries the result of one submitted job.
type Future struct {
	done  chan struct{}
	value any
	err   error
}

// Wait blocks until the job finishes or ctx is done. A context error leaves
// the job running; its result is discarded.
func (f *Future) Wait(ctx context.Context) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Pool is a bounded worker pool.
type Pool struct {
	cfg       Config
	queue     chan task
	done      chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	rejected  atomic.Uint64
	completed atomic.Uint64
	closeOnce sync.Once
}

// New starts cfg.Workers goroutines. Workers defaults to GOMAXPROCS and
// QueueSize defaults to four slots per worker.
func New(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.Workers * 4
	}

	p := &Pool{
		cfg:   cfg,
		queue: make(chan task, cfg.QueueSize),
		done:  make(chan struct{}),
	}

	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.run()
	}

	return p
}

func (p *Pool) run() {
	defer p.wg.Done()

	for {
		select {
		case t := <-p.queue:
			p.execute(t)
		case <-p.done:
			for {
				select {
				case t := <-p.queue:
					p.execute(t)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) execute(t task) {
	defer func() {
		if r := recover(); r != nil {
			t.fut.err = errors.New("worker pool job panicked")
		}
		p.completed.Add(1)
		close(t.fut.done)
	}()
	t.fut.value, t.fut.err = t.job()
}

// Submit enqueues job without blocking.
func (p *Pool) Submit(job Job) (*Future, error) {
	if p == nil {
		return nil, ErrClosed
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}

	fut := &Future{done: make(chan struct{})}
	select {
	case p.queue <- task{job: job, fut: fut}:
		return fut, nil
	default:
		p.rejected.Add(1)
		return nil, ErrSaturated
	}
}

// Close stops accepting work, runs whatever is already queued and waits for
// the workers to exit. It is safe to call more than once.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.done)
		p.wg.Wait()
	})
}

// Rejected reports how many submissions failed with ErrSaturated.
func (p *Pool) Rejected() uint64 {
	if p == nil {
		return 0
	}
	return p.rejected.Load()
}

// Completed reports how many jobs have finished.
func (p *Pool) Completed() uint64 {
	if p == nil {
		return 0
	}
	return p.completed.Load()
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int {
	return p.cfg.Workers
}
