// Package dispatch runs best-effort background tasks for remote sync.
// Tasks run at most once; failures are logged and counted, never returned.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/semiha11/Fincio/internal/metrics"
	"github.com/sirupsen/logrus"
)

type job struct {
	name string
	task func(ctx context.Context) error
}

// Queue is a bounded task queue drained by a fixed set of workers.
type Queue struct {
	log     *logrus.Logger
	tasks   chan job
	timeout time.Duration
	workers int

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
	wg     sync.WaitGroup
}

// NewQueue creates a queue holding up to size pending tasks.
func NewQueue(log *logrus.Logger, size, workers int, timeout time.Duration) *Queue {
	if size <= 0 {
		size = 256
	}
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		log:     log,
		tasks:   make(chan job, size),
		timeout: timeout,
		workers: workers,
		timers:  make(map[string]*time.Timer),
	}
}

// Start launches the workers. They exit when Stop is called.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx)
	}
}

func (q *Queue) work(ctx context.Context) {
	defer q.wg.Done()
	for j := range q.tasks {
		q.run(ctx, j)
	}
}

func (q *Queue) run(ctx context.Context, j job) {
	taskCtx := ctx
	if q.timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	if err := j.task(taskCtx); err != nil {
		q.log.WithError(err).WithField("task", j.name).Warn("Remote sync task failed")
		metrics.SyncTasks.WithLabelValues(j.name, "error").Inc()
		return
	}
	metrics.SyncTasks.WithLabelValues(j.name, "ok").Inc()
}

// Go enqueues task without blocking. A full or stopped queue drops it.
func (q *Queue) Go(name string, task func(ctx context.Context) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueueLocked(job{name: name, task: task})
}

func (q *Queue) enqueueLocked(j job) {
	if q.closed {
		metrics.SyncDropped.Inc()
		q.log.WithField("task", j.name).Debug("Dropping task, queue stopped")
		return
	}
	select {
	case q.tasks <- j:
	default:
		metrics.SyncDropped.Inc()
		q.log.WithField("task", j.name).Warn("Dropping task, queue full")
	}
}

// Debounce enqueues task once no further call with the same key arrives
// within delay. Only the latest task for a key runs.
func (q *Queue) Debounce(key string, delay time.Duration, task func(ctx context.Context) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.debounceLocked(key, delay, task)
}

func (q *Queue) debounceLocked(key string, delay time.Duration, task func(ctx context.Context) error) {
	if q.closed {
		metrics.SyncDropped.Inc()
		return
	}
	if t, ok := q.timers[key]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		// a newer call replaced this timer after it fired
		if q.timers[key] != t {
			return
		}
		delete(q.timers, key)
		q.enqueueLocked(job{name: key, task: task})
	})
	q.timers[key] = t
}

// Stop cancels pending debounced tasks, drains queued ones and waits for workers.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for key, t := range q.timers {
		t.Stop()
		delete(q.timers, key)
	}
	close(q.tasks)
	q.mu.Unlock()
	q.wg.Wait()
}
