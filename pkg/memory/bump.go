package memory

import (
	"sync"
	"unsafe"

	"github.com/emberforge/ember/pkg/errs"
)

// Bump is a fixed-capacity, reset-only arena allocator: "bump/stack
// allocators... forbid interleaved ownership with heap allocators; reset
// invalidates all outstanding blocks." It is used for short-lived scratch
// buffers in hot loops (path building, temporary arrays) where allocation
// must not touch the Go heap per call.
//
// Stack is the single-inline-buffer specialization of the same idea; it is
// provided as a constructor, not a distinct type, since the behavior is
// identical once the backing storage exists.
type Bump struct {
	mu     sync.Mutex
	buf    []byte
	offset Size
}

var _ Allocator = (*Bump)(nil)

// NewBump creates a bump allocator over a freshly allocated capacity-byte
// arena.
func NewBump(capacity Size) *Bump {
	return &Bump{buf: make([]byte, capacity)}
}

// NewStack is an alias for NewBump kept for call-site clarity: a "stack
// allocator" is a bump allocator backed by fixed inline storage.
func NewStack(capacity Size) *Bump { return NewBump(capacity) }

func (b *Bump) Allocate(req Request) (Block, error) {
	if err := validate(req); err != nil {
		return Block{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	start := uintptr(unsafe.Pointer(&b.buf[0])) + uintptr(b.offset)
	aligned := (start + uintptr(req.Align) - 1) &^ (uintptr(req.Align) - 1)
	skip := Size(aligned) - Size(uintptr(unsafe.Pointer(&b.buf[0]))) - b.offset

	need := b.offset + skip + req.Size
	if need > Size(len(b.buf)) {
		return Block{}, errs.New(errs.InvalidArgument, nil, "bump allocator exhausted: need %d, have %d free", req.Size, Size(len(b.buf))-b.offset)
	}

	from := b.offset + skip
	b.offset = need
	data := b.buf[from : from+req.Size : from+req.Size]
	return Block{Data: data, Size: req.Size, Align: req.Align}, nil
}

// Deallocate is a no-op: a bump allocator only releases memory on Reset.
func (b *Bump) Deallocate(Block) {}

// Reset invalidates every block previously handed out by this allocator in
// one step. Callers must not touch blocks obtained before the reset.
func (b *Bump) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offset = 0
}

// Used reports the number of bytes currently allocated from the arena.
func (b *Bump) Used() Size {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.offset
}
