package scheduler

import (
	"sync"

	"github.com/emberforge/ember/pkg/log"
	"github.com/emberforge/ember/pkg/metrics"
)

// QueueName identifies one of the scheduler's fixed queues.
type QueueName string

const (
	Main     QueueName = "main"
	Graphics QueueName = "graphics"
	TaskPool QueueName = "task_pool"

	minPoolWorkers = 2
	maxPoolWorkers = 8
)

// Task is a unit of work submitted to a queue.
type Task func()

// queue is a single FIFO task channel drained by one or more workers that
// block until woken by submission (a buffered channel stands in for the
// condition-variable wait the reference scheduler uses).
type queue struct {
	name    QueueName
	tasks   chan Task
	wg      sync.WaitGroup
	stopped chan struct{}
}

func newQueue(name QueueName, workers int) *queue {
	q := &queue{
		name:    name,
		tasks:   make(chan Task, 256),
		stopped: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *queue) worker() {
	defer q.wg.Done()
	logger := log.With("scheduler")
	for {
		select {
		case t, ok := <-q.tasks:
			if !ok {
				return
			}
			metrics.SchedulerQueueDepth.WithLabelValues(string(q.name)).Set(float64(len(q.tasks)))
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Error(nil, "task panicked", log.Fields{"queue": q.name, "panic": r})
					}
				}()
				t()
			}()
		case <-q.stopped:
			return
		}
	}
}

// submit enqueues t, returning false if the queue has been closed.
func (q *queue) submit(t Task) bool {
	select {
	case <-q.stopped:
		return false
	default:
	}
	select {
	case q.tasks <- t:
		metrics.SchedulerQueueDepth.WithLabelValues(string(q.name)).Set(float64(len(q.tasks)))
		return true
	case <-q.stopped:
		return false
	}
}

// close stops accepting new tasks and blocks until every worker has
// returned from whatever task it was running.
func (q *queue) close() {
	close(q.stopped)
	close(q.tasks)
	q.wg.Wait()
}

// Scheduler owns the engine's three fixed task queues: a single-worker
// "main" queue, a single-worker "graphics" queue, and a shared "task pool"
// queue drained by a configurable number of workers, clamped to [2, 8].
type Scheduler struct {
	main     *queue
	graphics *queue
	pool     *queue
	poolSize int
}

// New creates a Scheduler with the task pool sized to poolSize, clamped to
// [2, 8].
func New(poolSize int) *Scheduler {
	if poolSize < minPoolWorkers {
		poolSize = minPoolWorkers
	}
	if poolSize > maxPoolWorkers {
		poolSize = maxPoolWorkers
	}
	metrics.SchedulerWorkersTotal.Set(float64(poolSize))
	return &Scheduler{
		main:     newQueue(Main, 1),
		graphics: newQueue(Graphics, 1),
		pool:     newQueue(TaskPool, poolSize),
		poolSize: poolSize,
	}
}

// PoolSize returns the configured task-pool worker count.
func (s *Scheduler) PoolSize() int { return s.poolSize }

// Submit enqueues t on the named queue. It returns false if that queue (or
// the whole scheduler) has been closed.
func (s *Scheduler) Submit(name QueueName, t Task) bool {
	switch name {
	case Main:
		return s.main.submit(t)
	case Graphics:
		return s.graphics.submit(t)
	default:
		return s.pool.submit(t)
	}
}

// Close stops all queues and blocks until every worker has returned from
// its current task (the "destroying a task thread pool" contract).
func (s *Scheduler) Close() {
	var wg sync.WaitGroup
	for _, q := range []*queue{s.main, s.graphics, s.pool} {
		wg.Add(1)
		go func(q *queue) {
			defer wg.Done()
			q.close()
		}(q)
	}
	wg.Wait()
}
