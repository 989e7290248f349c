package taskqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 5

func nop() {}

// Processor performs the actual work for one task. Returning a non-nil
// error reports the attempt as failed; the queue then decides whether the
// task is retried.
type Processor func(*Task) error

// Pool runs a fixed number of workers that poll a Queue for tasks, invoke
// the Processor, and report the outcome back. Create a new pool via
// NewPool.
type Pool struct {
	q          *Queue
	p          Processor
	logger     Logger
	newBackoff func() backoff.BackOff

	mu          sync.Mutex // guards the following block
	concurrency int
	started     bool
	cancel      context.CancelFunc
	eg          *errgroup.Group

	testTaskProcessed func() // testing hook
	testTaskFailed    func() // testing hook
	testWorkerIdle    func() // testing hook
}

// NewPool creates a new pool reading from q. Pass options to configure it.
func NewPool(q *Queue, p Processor, options ...PoolOption) *Pool {
	pl := &Pool{
		q:                 q,
		p:                 p,
		logger:            stdLogger{},
		newBackoff:        newIdleBackoff,
		concurrency:       defaultConcurrency,
		testTaskProcessed: nop,
		testTaskFailed:    nop,
		testWorkerIdle:    nop,
	}
	for _, opt := range options {
		opt(pl)
	}
	return pl
}

// -- Configuration --

// PoolOption is the signature of an options provider.
type PoolOption func(*Pool)

// SetConcurrency sets the number of workers that poll the queue at the
// same time. Concurrency must be greater or equal to 1 and is 5 by
// default.
func SetConcurrency(n int) PoolOption {
	return func(p *Pool) {
		if n < 1 {
			n = 1
		}
		p.concurrency = n
	}
}

// SetPoolLogger specifies the logger the workers report errors to.
func SetPoolLogger(logger Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// SetIdleBackoff specifies the factory for the per-worker schedule used
// to pause between polls of an empty queue.
func SetIdleBackoff(fn func() backoff.BackOff) PoolOption {
	return func(p *Pool) {
		if fn != nil {
			p.newBackoff = fn
		}
	}
}

// -- Start and Stop --

// Start runs the pool. Use Stop to shut it down.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return errors.New("taskqueue: pool already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.eg, ctx = errgroup.WithContext(ctx)
	for i := 0; i < p.concurrency; i++ {
		p.eg.Go(func() error {
			return p.run(ctx)
		})
	}
	p.started = true
	return nil
}

// Stop stops the pool and waits for all workers to return. A worker busy
// in the Processor finishes its current task first.
func (p *Pool) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = false
	cancel, eg := p.cancel, p.eg
	p.mu.Unlock()

	cancel()
	return eg.Wait()
}

// run is the main loop of a single worker.
func (p *Pool) run(ctx context.Context) error {
	b := p.newBackoff()
	for {
		if ctx.Err() != nil {
			return nil
		}
		task := p.q.Dequeue()
		if task == nil {
			p.testWorkerIdle() // testing hook
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(b.NextBackOff()):
			}
			continue
		}
		b.Reset()
		p.process(task)
	}
}

// process runs a single task and reports its outcome to the queue.
func (p *Pool) process(task *Task) {
	err := p.p(task)
	if err != nil {
		p.logger.Printf("taskqueue: task %v failed with: %v", task.ID, err)
		p.q.Complete(task.ID, false, err.Error())
		p.testTaskFailed() // testing hook
	} else {
		p.q.Complete(task.ID, true, "")
	}
	p.testTaskProcessed() // testing hook
}
