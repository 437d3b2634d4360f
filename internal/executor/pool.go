package executor

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	// ErrQueueClosed indicates a send was attempted after every worker had
	// already exited, so the item can never be delivered. Senders must treat
	// this as fatal for the batch.
	ErrQueueClosed = errors.New("executor: work queue closed, all workers exited")

	// ErrProducerReleased indicates a send on a producer handle that was
	// already released. This is a caller bug, not a batch failure.
	ErrProducerReleased = errors.New("executor: producer handle already released")
)

// Handler is the caller-supplied processing function invoked once per item,
// on whatever worker goroutine dequeued it. It must be safe to call
// concurrently with itself on distinct items. A non-nil return ends that
// worker's consumption loop and becomes the pool's fatal error if it is the
// first one recorded. Failures the caller wants to absorb per item must be
// handled inside the Handler (typically via a shared atomic counter) with a
// nil return.
type Handler[T any] func(item T) error

// Pool runs a caller-supplied handler concurrently across a fixed number of
// worker goroutines fed from a shared queue. Items enter the queue through
// producer handles obtained via Producer; the queue closes once every handle
// has been released, after which the workers drain the remaining items and
// exit. Complete joins the workers and reports the first fatal error.
//
// A Pool serves exactly one batch: create it, send, release all handles,
// call Complete, discard it.
type Pool[T any] struct {
	name    string
	handler Handler[T]
	logger  *slog.Logger

	queue chan T

	// live producer handles; the queue closes on the 1 -> 0 transition
	producers atomic.Int64
	closeOnce sync.Once

	// worker lifecycle
	workers     int
	workersWG   sync.WaitGroup
	liveWorkers atomic.Int32
	workersDone chan struct{}

	// completion state, first error wins
	mu       sync.Mutex
	firstErr error

	completeOnce sync.Once
	result       error
}

// Option configures a Pool.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	queueSize int
}

// WithLogger sets the logger used for worker lifecycle debug output.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithQueueSize sets the queue buffer size. Defaults to the worker count.
// A bounded queue applies backpressure: Send blocks while it is full.
func WithQueueSize(size int) Option {
	return func(o *options) {
		if size >= 0 {
			o.queueSize = size
		}
	}
}

// New creates a pool with the given worker count and handler, and starts the
// workers immediately. The name is used only for logging. workers must be
// >= 1; smaller values default to 1 (a single-worker pool is the valid fully
// serial case).
func New[T any](name string, workers int, handler Handler[T], opts ...Option) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}

	o := options{queueSize: workers}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	p := &Pool[T]{
		name:        name,
		handler:     handler,
		logger:      o.logger,
		queue:       make(chan T, o.queueSize),
		workers:     workers,
		workersDone: make(chan struct{}),
	}
	p.liveWorkers.Store(int32(workers))

	p.workersWG.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}

	p.logger.Debug("worker pool started", "pool", p.name, "workers", workers, "queue_size", o.queueSize)

	return p
}

// Producer returns a new handle on the sending side of the queue. Handles are
// cheap and may be created from any goroutine, but only before the queue has
// closed; each must be released exactly once. Creating a handle after all
// previous handles were released is a caller contract violation.
func (p *Pool[T]) Producer() *Producer[T] {
	p.producers.Add(1)
	return &Producer[T]{pool: p}
}

// Complete blocks until every worker has exited (queue released and drained,
// or all workers stopped on fatal errors), then returns the recorded
// completion state: nil on a clean batch, otherwise the first fatal error
// observed by any worker.
//
// If no producer handle is outstanding, Complete closes the queue itself so
// that a pool that never sent anything terminates promptly. With handles
// still live it blocks until the caller releases them; releasing every
// handle before calling Complete is the caller's contract.
//
// Complete is idempotent: subsequent calls return the same terminal state.
func (p *Pool[T]) Complete() error {
	p.completeOnce.Do(func() {
		if p.producers.Load() == 0 {
			p.closeQueue()
		}
		p.workersWG.Wait()

		p.mu.Lock()
		p.result = p.firstErr
		p.mu.Unlock()

		p.logger.Debug("worker pool completed", "pool", p.name, "first_error", p.result)
	})
	return p.result
}

// WorkerCount returns the fixed number of workers in the pool.
func (p *Pool[T]) WorkerCount() int {
	return p.workers
}

func (p *Pool[T]) worker(id int) {
	defer p.workersWG.Done()
	defer func() {
		// the last worker out signals consumer-side closure to producers
		if p.liveWorkers.Add(-1) == 0 {
			close(p.workersDone)
		}
	}()

	p.logger.Debug("worker started", "pool", p.name, "worker_id", id)

	for item := range p.queue {
		if err := p.handler(item); err != nil {
			p.recordError(err)
			p.logger.Debug("worker stopping on handler error", "pool", p.name, "worker_id", id, "error", err)
			return
		}
	}

	p.logger.Debug("worker finished", "pool", p.name, "worker_id", id)
}

// recordError stores the first fatal error; later errors are dropped.
func (p *Pool[T]) recordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.firstErr == nil {
		p.firstErr = err
	}
}

func (p *Pool[T]) closeQueue() {
	p.closeOnce.Do(func() { close(p.queue) })
}

// Producer is an independently owned handle on the sending side of a pool's
// queue. Multiple handles may exist at once; the queue closes only when every
// handle has been released.
type Producer[T any] struct {
	pool     *Pool[T]
	released atomic.Bool
}

// Send enqueues an item for processing by exactly one worker. It blocks while
// the queue is full. It fails with ErrQueueClosed once every worker has
// exited (for example after fatal handler errors in all of them), because the
// batch can no longer make progress; callers must propagate that, not swallow
// it.
func (pr *Producer[T]) Send(item T) error {
	if pr.released.Load() {
		return ErrProducerReleased
	}

	select {
	case <-pr.pool.workersDone:
		return ErrQueueClosed
	default:
	}

	select {
	case pr.pool.queue <- item:
		return nil
	case <-pr.pool.workersDone:
		return ErrQueueClosed
	}
}

// Clone returns a new independent handle on the same queue.
func (pr *Producer[T]) Clone() *Producer[T] {
	return pr.pool.Producer()
}

// Release drops this handle. When the last handle is released the queue
// closes and the workers exit after draining it. Release is idempotent per
// handle; a released handle refuses further sends.
func (pr *Producer[T]) Release() {
	if !pr.released.CompareAndSwap(false, true) {
		return
	}
	if pr.pool.producers.Add(-1) == 0 {
		pr.pool.closeQueue()
	}
}
