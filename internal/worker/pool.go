package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type indexedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result Result
}

// Pool runs jobs on a fixed number of workers and returns results in submission order.
// Submit must be called from a single goroutine.
type Pool struct {
	workers     int
	jobQueue    chan indexedJob
	results     chan indexedResult
	collected   []Result
	collectDone chan struct{}
	submitted   int
	started     atomic.Bool
	wg          sync.WaitGroup
	ctx         context.Context
	cancelFunc  context.CancelFunc
	closeOnce   sync.Once
}

// NewPool creates a pool whose jobs stop when ctx is cancelled
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:     workers,
		jobQueue:    make(chan indexedJob, workers*2),
		results:     make(chan indexedResult, workers*2),
		collectDone: make(chan struct{}),
		ctx:         ctx,
		cancelFunc:  cancel,
	}
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	if !p.started.CompareAndSwap(false, true) {
		return
	}

	go p.collect()
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case ij, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := ij.job.Execute(p.ctx)
			p.results <- indexedResult{index: ij.index, result: result}
		}
	}
}

// collect drains results as they arrive so workers never wait on Wait
func (p *Pool) collect() {
	defer close(p.collectDone)
	for r := range p.results {
		for len(p.collected) <= r.index {
			p.collected = append(p.collected, nil)
		}
		p.collected[r.index] = r.result
	}
}

// Submit queues a job. It returns false once the pool has been cancelled.
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- indexedJob{index: p.submitted, job: job}:
		p.submitted++
		return true
	}
}

// Wait waits for all submitted jobs and returns their results in submission order.
// Jobs skipped because the pool was cancelled have no result. No Submit may follow.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	return p.finish()
}

// Shutdown cancels outstanding jobs and waits for running ones
func (p *Pool) Shutdown() []Result {
	p.cancelFunc()
	return p.finish()
}

func (p *Pool) finish() []Result {
	p.wg.Wait()
	p.closeOnce.Do(func() {
		close(p.results)
	})
	if p.started.Load() {
		<-p.collectDone
	}

	results := make([]Result, 0, len(p.collected))
	for _, r := range p.collected {
		if r != nil {
			results = append(results, r)
		}
	}
	return results
}
