package aio

import (
	"sync"
	"time"

	"github.com/emberforge/ember/pkg/errs"
	"github.com/emberforge/ember/pkg/log"
	"github.com/emberforge/ember/pkg/memory"
)

// Options configures a Port at open time.
type Options struct {
	// WorkerLimit is the number of goroutines performing blocking I/O on
	// behalf of submitted requests.
	WorkerLimit int
}

// PollOptions configures a single ProcessEvents call.
type PollOptions struct {
	// MaxEvents caps how many completions one call delivers. Zero or
	// negative means unbounded (drain until no completion is ready).
	MaxEvents int
	// TimeoutMS is how long to wait for the first completion. Subsequent
	// completions in the same call are polled with a zero timeout, so a
	// caller drains everything currently available without re-blocking.
	TimeoutMS int
}

type completion struct {
	req    *Request
	result Result
}

// Port is the engine's async I/O port: a shared submission queue plus a
// worker pool, and a completion channel drained by ProcessEvents. A Port may
// outlive the requests submitted to it and may be shared by many
// submitters.
type Port struct {
	alloc memory.Allocator
	log   log.Component

	queue *lockFreeQueue
	sem   *semaphore

	completeCh chan completion
	closeCh    chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// Open starts a Port with opts.WorkerLimit worker goroutines. alloc is
// reserved for request-scoped scratch allocation by callers; the port
// itself does not allocate through it today.
func Open(alloc memory.Allocator, opts Options) (*Port, error) {
	if opts.WorkerLimit <= 0 {
		return nil, errs.New(errs.InvalidArgument, nil, "worker_limit must be positive, got %d", opts.WorkerLimit)
	}
	p := &Port{
		alloc:      alloc,
		log:        log.With("aio"),
		queue:      newLockFreeQueue(),
		sem:        newSemaphore(),
		completeCh: make(chan completion, opts.WorkerLimit*8),
		closeCh:    make(chan struct{}),
	}
	for i := 0; i < opts.WorkerLimit; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p, nil
}

// Close terminates outstanding waits and releases worker goroutines.
// In-flight requests already picked up by a worker run to their natural
// completion and their callbacks still fire; only requests that never made
// it off the submission queue are abandoned.
func (p *Port) Close() {
	p.closeOnce.Do(func() {
		close(p.closeCh)
		p.sem.close()
		p.wg.Wait()
	})
}

// Bind associates a file handle with the port. Go's portable I/O surface
// (os.File.ReadAt/WriteAt) never requires this registration step, so Bind
// always succeeds.
func (p *Port) Bind(fileHandle) bool { return true }

func (p *Port) worker() {
	defer p.wg.Done()
	for {
		if !p.sem.wait() {
			return
		}
		req, ok := p.queue.pop()
		if !ok {
			// Closed concurrently with a spurious wakeup; loop to observe
			// the closed state on the next wait().
			continue
		}
		p.execute(req)
	}
}

func (p *Port) execute(req *Request) {
	var n int
	var err error
	if req.write {
		n, err = req.file.WriteAt(req.buf, req.offset)
	} else {
		n, err = req.file.ReadAt(req.buf, req.offset)
	}

	res := Result{Bytes: n}
	if err != nil {
		res.Status = StatusError
		res.Err = err
	} else {
		res.Status = StatusCompleted
	}

	select {
	case p.completeCh <- completion{req: req, result: res}:
	case <-p.closeCh:
		p.log.Warn("dropped completion on closed port", log.Fields{"request_id": req.ID, "bytes": n})
	}
}

func (p *Port) submit(req *Request, file fileHandle, offset int64, buf []byte, write bool) (Status, error) {
	select {
	case <-p.closeCh:
		return StatusError, errs.New(errs.InvalidArgument, nil, "port is closed")
	default:
	}

	req.port = p
	req.file = file
	req.offset = offset
	req.buf = buf
	req.write = write

	p.queue.push(req)
	p.sem.post()
	return StatusPending, nil
}

// ReadRequest submits a read of size bytes from file at offset into mem.
// Status is always Pending on success under this backend: the callback
// fires from a worker once the read completes.
func (p *Port) ReadRequest(req *Request, file fileHandle, offset int64, size memory.Size, mem []byte) (Status, error) {
	if memory.Size(len(mem)) < size {
		return StatusError, errs.New(errs.InvalidArgument, nil, "mem has %d bytes, need %d", len(mem), size)
	}
	return p.submit(req, file, offset, mem[:size], false)
}

// WriteRequest submits a write of data to file at offset.
func (p *Port) WriteRequest(req *Request, file fileHandle, offset int64, data []byte) (Status, error) {
	return p.submit(req, file, offset, data, true)
}

// ProcessEvents drains up to opts.MaxEvents completions, invoking each
// request's callback in turn, and returns the number delivered. It waits up
// to opts.TimeoutMS for the first completion; every subsequent completion in
// the same call is polled without blocking, so one call drains everything
// currently available.
func (p *Port) ProcessEvents(opts PollOptions) int {
	completed := 0
	timeout := time.Duration(opts.TimeoutMS) * time.Millisecond

	for {
		if opts.MaxEvents > 0 && completed >= opts.MaxEvents {
			return completed
		}

		if timeout <= 0 {
			select {
			case c := <-p.completeCh:
				p.deliver(c)
				completed++
				continue
			case <-p.closeCh:
				return completed
			default:
				return completed
			}
		}

		timer := time.NewTimer(timeout)
		select {
		case c := <-p.completeCh:
			timer.Stop()
			p.deliver(c)
			completed++
			timeout = 0
		case <-timer.C:
			return completed
		case <-p.closeCh:
			timer.Stop()
			return completed
		}
	}
}

func (p *Port) deliver(c completion) {
	if c.req.Callback != nil {
		c.req.Callback(c.result, c.req.Userdata)
	}
}
