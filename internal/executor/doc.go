// Package executor provides a generic fixed-size worker pool for parallelizing
// a uniform per-item operation over a stream of work items.
//
// The pool is payload-agnostic: it moves each item into exactly one worker's
// handler invocation and imposes no ordering on processing. Items enter
// through producer handles, which may be cloned freely and released
// independently; the queue closes once every handle has been released, which
// is the only shutdown signal the workers need.
//
// # Basic Usage
//
// Create a pool, send items through a producer handle, release the handle,
// and wait at the completion barrier:
//
//	pool := executor.New("file conversion", 4, func(path string) error {
//	    return convert(path)
//	})
//
//	producer := pool.Producer()
//	for _, path := range paths {
//	    if err := producer.Send(path); err != nil {
//	        producer.Release()
//	        return err
//	    }
//	}
//	producer.Release()
//
//	if err := pool.Complete(); err != nil {
//	    return err
//	}
//
// # Failure Semantics
//
// A handler error is fatal for the worker that observed it: that worker stops
// pulling items, while the remaining workers keep draining the queue. The
// first such error is what Complete returns. Per-item failures that should
// not end a worker must be absorbed inside the handler, reported through
// caller-owned state (a shared atomic counter is the intended pattern), and
// followed by a nil return. The pool never retries and never touches the
// caller's items beyond handing them to the handler.
//
// # Concurrency Guarantees
//
// The pool guarantees:
//   - Each item is delivered to exactly one worker
//   - Bounded concurrency (a fixed worker count set at construction)
//   - Complete returns once all workers have exited; no goroutine leaks
//   - First-error-wins completion state, safe under concurrent workers
//   - Send fails with ErrQueueClosed instead of blocking forever once all
//     workers have exited
package executor
