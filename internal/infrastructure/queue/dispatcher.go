// Package queue serializes backend writes that must not overtake each
// other, such as two quick toggles of the same task.
package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrStopped is returned by Do once the dispatcher has been stopped.
var ErrStopped = errors.New("dispatcher stopped")

type job struct {
	ctx    context.Context
	key    string
	run    func(ctx context.Context) error
	result chan error
}

// Dispatcher routes jobs to a fixed set of workers using consistent hashing
// on the job key, guaranteeing per-key ordering.
type Dispatcher struct {
	workers []chan job
	log     zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		log:     log,
		stop:    make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Stop ends the workers and waits for the running jobs to return. Jobs
// still queued are abandoned; their callers get ErrStopped.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
	d.wg.Wait()
}

// Do runs fn on the worker responsible for key and waits for its result.
// Calls with the same key run one at a time, in submission order.
func (d *Dispatcher) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, key: key, run: fn, result: make(chan error, 1)}

	select {
	case d.workers[d.shardIndex(key)] <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stop:
		return ErrStopped
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stop:
		// the job may still be running; its result is dropped
		select {
		case err := <-j.result:
			return err
		default:
			return ErrStopped
		}
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stop:
			return
		case j := <-ch:
			if err := j.ctx.Err(); err != nil {
				j.result <- err
				continue
			}
			err := j.run(j.ctx)
			if err != nil {
				d.log.Debug().Err(err).
					Str("key", j.key).
					Int("worker_id", id).
					Msg("job failed")
			}
			j.result <- err
		}
	}
}
