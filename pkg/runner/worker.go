package runner

// Worker identifies one goroutine of a Runner pool and owns that goroutine's
// worker-local values.
//
// A Worker is only ever used by the goroutine it was handed to, so its
// locals need no synchronization. Locals are released, in reverse creation
// order, when the worker exits.
type Worker struct {
	id       int
	locals   map[any]any
	releases []func()
}

// NewWorker returns a standalone worker for callers that process work on
// their own goroutine. Call Close when done to release its locals.
func NewWorker(id int) *Worker {
	return &Worker{id: id}
}

// ID returns this worker's identity.
//
// IDs are zero-based and unique within a single Submit call (0..jobs-1).
// They may be reused across separate calls.
func (w *Worker) ID() int {
	return w.id
}

// Close releases every worker-local value. It is safe to call more than once.
func (w *Worker) Close() {
	for i := len(w.releases) - 1; i >= 0; i-- {
		w.releases[i]()
	}
	w.releases = nil
	w.locals = nil
}

// Local is a worker-confined slot: each Worker that calls Get receives its
// own lazily constructed value, and no two workers ever observe the same one.
//
// Use it for state that is expensive to build and unsafe to share, such as
// detectors with mutable scratch buffers.
type Local[T any] struct {
	newFn     func() T
	releaseFn func(T)
}

// NewLocal creates a slot whose values are built by newFn on first use per
// worker. releaseFn, if non-nil, runs when the owning worker exits.
func NewLocal[T any](newFn func() T, releaseFn func(T)) *Local[T] {
	return &Local[T]{newFn: newFn, releaseFn: releaseFn}
}

// Get returns w's value for this slot, constructing it on the first call.
func (l *Local[T]) Get(w *Worker) T {
	if value, ok := w.locals[l]; ok {
		return value.(T) //nolint:forcetypeassert // Only Get stores under key l.
	}

	value := l.newFn()
	if w.locals == nil {
		w.locals = make(map[any]any)
	}
	w.locals[l] = value

	if l.releaseFn != nil {
		w.releases = append(w.releases, func() {
			l.releaseFn(value)
		})
	}

	return value
}
