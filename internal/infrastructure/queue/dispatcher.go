package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 8
	channelBuffer  = 64
)

// ErrStopped is returned for work submitted after the dispatcher's context
// ended, and for queued work that had not started by then.
var ErrStopped = errors.New("dispatcher stopped")

type job struct {
	ctx  context.Context
	key  string
	fn   func(context.Context) error
	done chan error
}

// Dispatcher runs keyed work on a fixed set of workers, hashing the key to
// pick the worker. Work for the same key therefore runs one at a time in
// submission order, while different keys proceed in parallel.
type Dispatcher struct {
	workers []chan job
	stopped chan struct{}
	mu      sync.RWMutex // guards closed and sends on workers
	closed  bool
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		stopped: make(chan struct{}),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Once ctx is cancelled no new work is
// accepted; a job already running is left to finish and its caller gets its
// result, while queued jobs that have not started get ErrStopped.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(i, ch)
	}
	go func() {
		<-ctx.Done()
		close(d.stopped)

		d.mu.Lock()
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
		d.mu.Unlock()
	}()
}

// Do runs fn on the worker owning key and waits for it to finish. It returns
// early with ctx.Err() if ctx ends before the job is queued. Once queued, the
// job always reports back.
func (d *Dispatcher) Do(ctx context.Context, key string, fn func(context.Context) error) error {
	j := job{ctx: ctx, key: key, fn: fn, done: make(chan error, 1)}

	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrStopped
	}
	select {
	case d.workers[d.shardIndex(key)] <- j:
	case <-ctx.Done():
		d.mu.RUnlock()
		return ctx.Err()
	case <-d.stopped:
		d.mu.RUnlock()
		return ErrStopped
	}
	d.mu.RUnlock()

	return <-j.done
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan job) {
	for j := range ch {
		select {
		case <-d.stopped:
			j.done <- ErrStopped
			continue
		default:
		}
		if err := j.ctx.Err(); err != nil {
			j.done <- err
			continue
		}
		err := j.fn(j.ctx)
		if err != nil {
			d.log.Debug().Err(err).
				Str("key", j.key).
				Int("worker_id", id).
				Msg("keyed job failed")
		}
		j.done <- err
	}
}
