package worker

import (
	"context"
	"log"
	"sync"

	"github.com/Nebual/ncscreenier/frame"
	"github.com/Nebual/ncscreenier/session"
)

// ResultCallback is invoked when a pipeline finishes (from a worker
// goroutine). The event loop passes a closure that posts the status back
// into the loop safely.
type ResultCallback func(st session.Status)

// Pool runs post-selection pipelines off the UI goroutine. The queue holds a
// single job: combined with the event loop's busy flag this guarantees at
// most one pipeline per capture invocation.
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx    context.Context
	frame  *frame.Frame
	region frame.Region
	deps   session.Deps
	cb     ResultCallback
}

// New creates a pool with n workers; n<=0 means one worker (captures are
// strictly sequential anyway).
func New(n int) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(n)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				log.Printf("Worker: processing %dx%d selection", j.region.Width, j.region.Height)
				st := session.Process(j.ctx, j.frame, j.region, j.deps)
				j.cb(st)
			}
		}()
	}
}

// Submit enqueues a pipeline job if the single-slot queue is free. Returns
// false if dropped under back-pressure.
func (p *Pool) Submit(ctx context.Context, f *frame.Frame, region frame.Region, deps session.Deps, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, frame: f, region: region, deps: deps, cb: cb}:
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
