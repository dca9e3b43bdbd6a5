package runner

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
)

// TaskFunc processes one task on a worker goroutine.
//
// w identifies the calling worker; use it with Local to reach state owned by
// that worker. Returned errors, and panics, become the task's ResultItem.Err.
type TaskFunc[T any] func(ctx context.Context, w *Worker, task Task) (T, error)

// Runner fans tasks out across a bounded worker pool and streams one
// ResultItem per task as soon as it is ready.
//
// Results arrive in completion order, not submission order. A Runner may
// serve several Submit calls, concurrently or in sequence; each call gets
// its own workers.
type Runner[T any] struct {
	fn       TaskFunc[T]
	jobs     int
	progress func(done, total int)

	mu        sync.Mutex
	stop      chan struct{}
	cancelled bool

	completed atomic.Int64
}

// New creates a Runner executing fn for every submitted task.
func New[T any](fn TaskFunc[T], opts ...Option) *Runner[T] {
	cfg := settings{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Runner[T]{
		fn:       fn,
		jobs:     cfg.jobs,
		progress: cfg.progress,
		stop:     make(chan struct{}),
	}
}

// Jobs returns the configured pool size, resolving "auto" to runtime.NumCPU().
func (r *Runner[T]) Jobs() int {
	if r.jobs <= 0 {
		return runtime.NumCPU()
	}
	return r.jobs
}

// Submit starts processing tasks and returns the result stream.
//
// The pool is min(Jobs(), len(tasks)) workers pulling from a shared queue.
// The channel is closed once every task has produced a result, or once the
// run stops because of Cancel or ctx; results of tasks still in flight at
// that point are discarded. After Cancel, Submit returns an already-closed
// channel until Reset is called.
func (r *Runner[T]) Submit(ctx context.Context, tasks []Task) <-chan ResultItem[T] {
	out := make(chan ResultItem[T])

	r.mu.Lock()
	stop, cancelled := r.stop, r.cancelled
	r.mu.Unlock()

	if cancelled || len(tasks) == 0 {
		close(out)
		return out
	}

	tasks = slices.Clone(tasks)
	jobs := min(r.Jobs(), len(tasks))

	run := &run[T]{
		runner: r,
		ctx:    ctx,
		stop:   stop,
		queue:  make(chan Task),
		out:    out,
		total:  len(tasks),
	}

	var wg sync.WaitGroup
	for id := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run.work(NewWorker(id))
		}()
	}

	// Feed work in a separate goroutine.
	go run.feed(tasks)

	// Close out when all workers are done.
	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Cancel stops every active run from dequeuing further tasks. Tasks already
// executing run to completion, but their results are discarded.
func (r *Runner[T]) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancelled {
		return
	}
	r.cancelled = true
	close(r.stop)
}

// Cancelled reports whether Cancel was called since the last Reset.
func (r *Runner[T]) Cancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// Reset re-arms a cancelled Runner so Submit accepts work again, and zeroes
// the completed counter.
func (r *Runner[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancelled {
		r.stop = make(chan struct{})
		r.cancelled = false
	}
	r.completed.Store(0)
}

// Completed returns the number of results delivered since the last Reset.
// It only grows between resets.
func (r *Runner[T]) Completed() int64 {
	return r.completed.Load()
}

// run is the state of one Submit call.
type run[T any] struct {
	runner *Runner[T]
	ctx    context.Context
	stop   <-chan struct{}
	queue  chan Task
	out    chan<- ResultItem[T]
	total  int
	done   atomic.Int64
}

func (rn *run[T]) halted() bool {
	select {
	case <-rn.stop:
		return true
	case <-rn.ctx.Done():
		return true
	default:
		return false
	}
}

func (rn *run[T]) feed(tasks []Task) {
	defer close(rn.queue)

	for _, task := range tasks {
		select {
		case <-rn.stop:
			return
		case <-rn.ctx.Done():
			return
		case rn.queue <- task:
		}
	}
}

// work processes tasks until the queue drains or the run halts.
func (rn *run[T]) work(w *Worker) {
	defer w.Close()

	for task := range rn.queue {
		if rn.halted() {
			return
		}

		item := rn.execute(w, task)

		// Discard the in-flight result if the run stopped meanwhile.
		if rn.halted() {
			return
		}

		select {
		case <-rn.stop:
			return
		case <-rn.ctx.Done():
			return
		case rn.out <- item:
		}

		rn.runner.completed.Add(1)
		done := rn.done.Add(1)
		if rn.runner.progress != nil {
			rn.runner.progress(int(done), rn.total)
		}
	}
}

// execute runs the task function, converting a panic into ErrTaskFailure so
// one bad file never takes the worker down.
func (rn *run[T]) execute(w *Worker, task Task) (item ResultItem[T]) {
	item.SourcePath = task.Path

	defer func() {
		if rec := recover(); rec != nil {
			var zero T
			item.Payload = zero
			item.Err = fmt.Errorf("%w: %s: panic: %v", ErrTaskFailure, task.Path, rec)
		}
	}()

	payload, err := rn.runner.fn(rn.ctx, w, task)
	if err != nil {
		item.Err = err
		return item
	}

	item.Payload = payload
	return item
}
