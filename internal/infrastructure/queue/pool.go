package queue

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/devconnector/directory-api/internal/api/metrics"
)

const channelBuffer = 256

type job struct {
	fn   func()
	done chan struct{}
	err  error
}

// Pool runs CPU-bound jobs (password hashing) on a fixed set of worker
// goroutines so a burst of logins cannot take every core away from the
// request handlers.
type Pool struct {
	workers int
	jobs    chan *job
	log     zerolog.Logger
}

// NewPool creates a Pool with numWorkers workers.
// If numWorkers <= 0, one worker per CPU is used.
func NewPool(numWorkers int, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{
		workers: numWorkers,
		jobs:    make(chan *job, channelBuffer),
		log:     log,
	}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.runWorker(ctx, i)
	}
}

// Do runs fn on a worker and waits for it to finish. It returns ctx.Err() if
// ctx ends first; fn may still run later and must only touch its own state.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	j := &job{fn: fn, done: make(chan struct{})}

	select {
	case p.jobs <- j:
		metrics.HashPoolPending.Set(float64(len(p.jobs)))
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-j.done:
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			metrics.HashPoolPending.Set(float64(len(p.jobs)))
			p.run(id, j)
		}
	}
}

func (p *Pool) run(id int, j *job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			j.err = fmt.Errorf("pool job panicked: %v", r)
			p.log.Error().Int("worker_id", id).Interface("panic", r).Msg("pool job panicked")
		}
	}()
	j.fn()
}
