package aio

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/emberforge/ember/pkg/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempFileWithContents(t *testing.T, contents []byte) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "aio-*.bin")
	require.NoError(t, err)
	_, err = f.Write(contents)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestOpenRejectsInvalidWorkerLimit(t *testing.T) {
	_, err := Open(memory.NewHostAllocator(), Options{WorkerLimit: 0})
	require.Error(t, err)
}

func TestNewRequestAssignsUniqueID(t *testing.T) {
	a := NewRequest(nil, nil)
	b := NewRequest(nil, nil)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestReadRequestCompletesWithData(t *testing.T) {
	payload := []byte("hailstorm-chunk-payload")
	f := tempFileWithContents(t, payload)

	p, err := Open(memory.NewHostAllocator(), Options{WorkerLimit: 2})
	require.NoError(t, err)
	defer p.Close()

	require.True(t, p.Bind(f))

	buf := make([]byte, len(payload))
	var wg sync.WaitGroup
	wg.Add(1)
	var got Result
	req := NewRequest(func(res Result, _ any) {
		got = res
		wg.Done()
	}, nil)

	status, err := p.ReadRequest(req, f, 0, memory.Size(len(payload)), buf)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	deadline := time.After(2 * time.Second)
	for {
		if p.ProcessEvents(PollOptions{MaxEvents: 1, TimeoutMS: 200}) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for completion")
		default:
		}
	}
	wg.Wait()

	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, len(payload), got.Bytes)
	assert.Equal(t, payload, buf)
}

func TestWriteRequestThenReadBack(t *testing.T) {
	f := tempFileWithContents(t, make([]byte, 16))

	p, err := Open(memory.NewHostAllocator(), Options{WorkerLimit: 1})
	require.NoError(t, err)
	defer p.Close()

	data := []byte("abcdefgh")
	done := make(chan Result, 1)
	req := NewRequest(func(res Result, _ any) { done <- res }, nil)

	status, err := p.WriteRequest(req, f, 4, data)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	require.Eventually(t, func() bool {
		return p.ProcessEvents(PollOptions{MaxEvents: 1, TimeoutMS: 100}) > 0
	}, 2*time.Second, 10*time.Millisecond)

	res := <-done
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, len(data), res.Bytes)
}

func TestProcessEventsDrainsMultipleCompletionsInOneCall(t *testing.T) {
	payload := []byte("0123456789abcdef")
	f := tempFileWithContents(t, payload)

	p, err := Open(memory.NewHostAllocator(), Options{WorkerLimit: 4})
	require.NoError(t, err)
	defer p.Close()

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	bufs := make([][]byte, n)
	for i := 0; i < n; i++ {
		bufs[i] = make([]byte, 4)
		req := NewRequest(func(Result, any) { wg.Done() }, nil)
		_, err := p.ReadRequest(req, f, 0, 4, bufs[i])
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return p.ProcessEvents(PollOptions{MaxEvents: n, TimeoutMS: 500}) == n
	}, 3*time.Second, 10*time.Millisecond)
	wg.Wait()
}

func TestCloseUnblocksProcessEvents(t *testing.T) {
	p, err := Open(memory.NewHostAllocator(), Options{WorkerLimit: 1})
	require.NoError(t, err)

	done := make(chan int, 1)
	go func() {
		done <- p.ProcessEvents(PollOptions{MaxEvents: 1, TimeoutMS: 5000})
	}()

	time.Sleep(20 * time.Millisecond)
	p.Close()

	select {
	case count := <-done:
		assert.Zero(t, count)
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessEvents did not unblock on Close")
	}
}

func TestReadRequestErrorStatus(t *testing.T) {
	f := tempFileWithContents(t, []byte("short"))

	p, err := Open(memory.NewHostAllocator(), Options{WorkerLimit: 1})
	require.NoError(t, err)
	defer p.Close()

	done := make(chan Result, 1)
	buf := make([]byte, 64)
	req := NewRequest(func(res Result, _ any) { done <- res }, nil)

	_, err = p.ReadRequest(req, f, 0, 64, buf)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return p.ProcessEvents(PollOptions{MaxEvents: 1, TimeoutMS: 200}) > 0
	}, 2*time.Second, 10*time.Millisecond)

	res := <-done
	assert.Equal(t, StatusError, res.Status)
	assert.Error(t, res.Err)
}
