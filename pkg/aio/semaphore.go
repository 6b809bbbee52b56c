package aio

import "sync"

// semaphore is a counting semaphore workers wait on between queue pops.
// close wakes every waiter permanently, which is how port closure surfaces
// as "no more completions" instead of a worker blocking forever.
type semaphore struct {
	mu     sync.Mutex
	cond   *sync.Cond
	count  int
	closed bool
}

func newSemaphore() *semaphore {
	s := &semaphore{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *semaphore) post() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	s.cond.Signal()
}

// wait blocks until a post is available or the semaphore is closed. It
// returns false once closed and drained, telling the worker to exit.
func (s *semaphore) wait() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.count == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.count == 0 {
		return false
	}
	s.count--
	return true
}

func (s *semaphore) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}
