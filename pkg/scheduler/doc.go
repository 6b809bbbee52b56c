/*
Package scheduler runs the engine's three fixed task queues: "main",
"graphics", and a shared "task pool". Each queue is drained by one or more
worker goroutines that block until a task is submitted. Each queue buffers
up to 256 pending tasks; submission waits only while that buffer is full,
and returns false once the queue is closed.

# Architecture

	┌─────────── Scheduler ───────────┐
	│  main      (1 worker)           │
	│  graphics  (1 worker)           │
	│  task_pool (2..8 workers)       │
	└──────────────────────────────────┘

The task pool's worker count is configurable at construction and clamped to
[2, 8] regardless of what is requested — matching the reference engine's
thread pool sizing contract. The main and graphics queues each run a single
worker, since their whole purpose is to serialize work relative to other
queues (frame-loop work on main, render submission on graphics), not to
parallelize it.

# Ordering

Tasks submitted to the same queue run in submission order; that is the only
ordering guarantee the scheduler makes. Tasks on different queues carry no
relative ordering — the task pool in particular interleaves tasks from
however many workers it has. Callers that need a batch of operations to
apply atomically (e.g. an ECS command batch) must submit the whole batch as
a single task.

# Shutdown

Close stops every queue and blocks until each of their workers has returned
from whatever task it was running when Close was called — it does not
interrupt a task mid-execution. Once closed, Submit returns false instead of
enqueueing.

# Usage

	sched := scheduler.New(4)
	defer sched.Close()

	sched.Submit(scheduler.TaskPool, func() {
		// background work, e.g. packing a hailstorm cluster
	})
*/
package scheduler
