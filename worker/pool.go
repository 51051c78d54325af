package worker

import (
	"context"
	"log"
	"runtime"
	"sync"

	"context-spotlight/rules"
)

// Job is one capture-and-match request anchored at the gesture position.
type Job struct {
	X, Y float64
}

// Result is the outcome delivered to the UI boundary.
type Result struct {
	X, Y    float64
	Text    string
	Process string
	Actions []rules.Rule
}

// RunFunc performs the capture-and-match pipeline for one job.
type RunFunc func(ctx context.Context, j Job) (Result, error)

// ResultCallback is invoked on completion from a worker goroutine. The event
// loop should pass a closure that posts back into the loop safely.
type ResultCallback func(res Result, err error)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict
// back-pressure): a second job submitted while one is queued is dropped.
type Pool struct {
	jobs chan queued
	run  RunFunc
	wg   sync.WaitGroup
}

type queued struct {
	ctx context.Context
	job Job
	cb  ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0.
func New(size int, run RunFunc) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan queued, 1), run: run}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for q := range p.jobs {
				res, err := p.runWithContext(q.ctx, q.job)
				q.cb(res, err)
			}
		}()
	}
}

// Submit enqueues a job if the single-slot queue is free. Returns false if
// dropped.
func (p *Pool) Submit(ctx context.Context, j Job, cb ResultCallback) bool {
	select {
	case p.jobs <- queued{ctx: ctx, job: j, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

// runWithContext honors a ctx deadline around the pipeline without requiring
// the pipeline itself to poll ctx.
func (p *Pool) runWithContext(ctx context.Context, j Job) (Result, error) {
	if _, ok := ctx.Deadline(); !ok {
		return p.run(ctx, j)
	}
	resCh := make(chan struct {
		res Result
		err error
	}, 1)
	go func() {
		res, err := p.run(ctx, j)
		resCh <- struct {
			res Result
			err error
		}{res, err}
	}()
	select {
	case r := <-resCh:
		return r.res, r.err
	case <-ctx.Done():
		log.Printf("Worker: job timed out: %v", ctx.Err())
		return Result{}, ctx.Err()
	}
}
