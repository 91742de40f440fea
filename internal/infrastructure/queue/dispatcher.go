package queue

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// ErrStopped is returned by Run once the dispatcher has shut down.
var ErrStopped = errors.New("dispatcher stopped")

type job struct {
	fn   func()
	done chan struct{}
}

// Dispatcher runs CPU-bound jobs on a fixed set of workers so that a burst
// of requests cannot occupy more cores than configured.
type Dispatcher struct {
	jobs    chan job
	workers int
	log     zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers workers.
// If numWorkers <= 0, runtime.NumCPU() is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Dispatcher{
		jobs:    make(chan job),
		workers: numWorkers,
		log:     log,
		stop:    make(chan struct{}),
	}
}

// Start launches all worker goroutines. Workers exit when ctx is cancelled
// or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(d.workers)
	for i := 0; i < d.workers; i++ {
		go d.runWorker(ctx, i)
	}
	d.log.Debug().Int("workers", d.workers).Msg("dispatcher started")
}

// Stop signals the workers to exit and waits for them.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
	d.wg.Wait()
}

// Run executes fn on a worker and blocks until it has finished. If ctx ends
// before a worker picks the job up, fn is never executed. Once picked up,
// fn always runs to completion; Run still returns early on ctx cancellation.
func (d *Dispatcher) Run(ctx context.Context, fn func()) error {
	j := job{fn: fn, done: make(chan struct{})}

	select {
	case d.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stop:
		return ErrStopped
	}

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stop:
		// the worker may still finish this job; the caller gives up on it
		select {
		case <-j.done:
			return nil
		default:
			return ErrStopped
		}
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stop:
			return
		case j := <-d.jobs:
			d.exec(id, j)
		}
	}
}

func (d *Dispatcher) exec(id int, j job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Int("worker_id", id).Msg("job panicked")
		}
	}()
	j.fn()
}
