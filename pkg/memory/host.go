package memory

import "unsafe"

// HostAllocator allocates from the Go heap, honoring arbitrary power-of-two
// alignment by over-allocating and slicing to the aligned start. It is the
// process-wide default allocator and is safe for concurrent use (the heap
// itself is), matching the "host allocator... is thread-safe" invariant.
type HostAllocator struct{}

var _ Allocator = HostAllocator{}

// NewHostAllocator returns the process host allocator.
func NewHostAllocator() HostAllocator { return HostAllocator{} }

func (HostAllocator) Allocate(req Request) (Block, error) {
	if err := validate(req); err != nil {
		return Block{}, err
	}
	if req.Align <= Align8 {
		// The Go allocator already aligns small objects to at least 8
		// bytes; no need to pad.
		buf := make([]byte, req.Size)
		return Block{Data: buf, Size: req.Size, Align: req.Align}, nil
	}

	pad := Size(req.Align) - 1
	raw := make([]byte, req.Size+pad)
	start := uintptr(unsafe.Pointer(&raw[0]))
	aligned := (start + uintptr(req.Align) - 1) &^ (uintptr(req.Align) - 1)
	skip := Size(aligned - start)
	return Block{Data: raw[skip : skip+req.Size : skip+req.Size], Size: req.Size, Align: req.Align}, nil
}

func (HostAllocator) Deallocate(Block) {
	// The Go garbage collector reclaims host allocations; nothing to do
	// beyond letting the caller drop its reference.
}
