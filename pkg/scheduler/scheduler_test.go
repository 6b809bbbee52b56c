package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerPoolSizeClamped(t *testing.T) {
	cases := []struct {
		requested int
		want      int
	}{
		{requested: 0, want: 2},
		{requested: 1, want: 2},
		{requested: 2, want: 2},
		{requested: 5, want: 5},
		{requested: 8, want: 8},
		{requested: 9, want: 8},
		{requested: 100, want: 8},
	}
	for _, tc := range cases {
		s := New(tc.requested)
		assert.Equal(t, tc.want, s.PoolSize())
		s.Close()
	}
}

func TestSchedulerRunsSubmittedTasks(t *testing.T) {
	s := New(4)
	defer s.Close()

	var n int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		ok := s.Submit(TaskPool, func() {
			defer wg.Done()
			atomic.AddInt64(&n, 1)
		})
		require.True(t, ok)
	}
	wg.Wait()
	assert.Equal(t, int64(50), n)
}

func TestSchedulerMainQueueRunsInSubmissionOrder(t *testing.T) {
	s := New(2)
	defer s.Close()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		s.Submit(Main, func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	wg.Wait()

	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestSchedulerGraphicsQueueIndependentOfMain(t *testing.T) {
	s := New(2)
	defer s.Close()

	mainDone := make(chan struct{})
	gfxDone := make(chan struct{})

	block := make(chan struct{})
	s.Submit(Main, func() {
		<-block
		close(mainDone)
	})
	s.Submit(Graphics, func() {
		close(gfxDone)
	})

	select {
	case <-gfxDone:
	case <-time.After(time.Second):
		t.Fatal("graphics task never ran while main queue was blocked")
	}
	close(block)
	<-mainDone
}

func TestSchedulerCloseWaitsForRunningTask(t *testing.T) {
	s := New(2)

	started := make(chan struct{})
	release := make(chan struct{})
	var finished int32

	s.Submit(TaskPool, func() {
		close(started)
		<-release
		atomic.StoreInt32(&finished, 1)
	})
	<-started

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned before the running task finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-closed
	assert.Equal(t, int32(1), atomic.LoadInt32(&finished))
}

func TestSchedulerSubmitAfterCloseFails(t *testing.T) {
	s := New(2)
	s.Close()

	ok := s.Submit(TaskPool, func() {})
	assert.False(t, ok)
}
