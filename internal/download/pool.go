package download

import (
	"context"
	"sync"

	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/shared"
)

// Handler runs one job to completion.
type Handler func(ctx context.Context, job models.DownloadJob) Result

// Pool runs submitted jobs on a fixed number of workers. Jobs wait in an
// unbounded queue, so Submit never waits for a worker.
// Submit and Wait must be called from a single goroutine.
type Pool struct {
	ctx     context.Context
	handle  Handler
	in      chan models.DownloadJob
	jobs    chan models.DownloadJob
	results chan Result
	done    chan struct{}
	wg      sync.WaitGroup
	seen    map[string]bool
	out     []Result
	onDone  func(Result)
}

// NewPool starts workers (clamped to [1, shared.MaxWorkers]) that call handle for each job.
// onDone, when non-nil, is called from the collector goroutine as each job finishes.
func NewPool(ctx context.Context, workers int, handle Handler, onDone func(Result)) *Pool {
	workers = max(1, min(workers, shared.MaxWorkers))

	p := &Pool{
		ctx:     ctx,
		handle:  handle,
		in:      make(chan models.DownloadJob),
		jobs:    make(chan models.DownloadJob),
		results: make(chan Result, workers),
		done:    make(chan struct{}),
		seen:    make(map[string]bool),
		onDone:  onDone,
	}

	go p.dispatch()
	for range workers {
		p.wg.Add(1)
		go p.worker()
	}

	go func() {
		defer close(p.done)
		for res := range p.results {
			p.out = append(p.out, res)
			if p.onDone != nil {
				p.onDone(res)
			}
		}
	}()

	return p
}

// dispatch moves submitted jobs to idle workers in submission order and
// closes jobs once in is closed and the queue is empty.
func (p *Pool) dispatch() {
	defer close(p.jobs)

	var queue []models.DownloadJob
	in := p.in
	for in != nil || len(queue) > 0 {
		var next chan models.DownloadJob
		var head models.DownloadJob
		if len(queue) > 0 {
			next, head = p.jobs, queue[0]
		}

		select {
		case job, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, job)
		case next <- head:
			queue = queue[1:]
		}
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		if err := p.ctx.Err(); err != nil {
			p.results <- Result{Job: job, Err: err}
			continue
		}
		p.results <- p.handle(p.ctx, job)
	}
}

// Submit queues job. A destination that was already submitted to this pool is
// ignored and Submit reports false.
func (p *Pool) Submit(job models.DownloadJob) bool {
	if p.seen[job.Destination] {
		return false
	}
	p.seen[job.Destination] = true
	p.in <- job
	return true
}

// Wait stops accepting jobs, waits for every submitted job and returns their results in completion order.
func (p *Pool) Wait() []Result {
	close(p.in)
	p.wg.Wait()
	close(p.results)
	<-p.done
	return p.out
}
