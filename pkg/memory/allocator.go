package memory

import "github.com/emberforge/ember/pkg/errs"

// Request is a tagged allocation request: a size and the alignment the
// caller wants the returned Block's backing storage aligned to.
type Request struct {
	Size  Size
	Align Alignment
}

// Allocator is the polymorphic capability set every subsystem allocates
// through: allocate(size, align) and deallocate(block). A Block returned by
// an Allocator is only valid until it is deallocated through that same
// Allocator — passing it to a different allocator's Deallocate is a caller
// bug. Deallocate returns no error, so such a call is not reported (Bump's
// Deallocate ignores every block).
type Allocator interface {
	Allocate(req Request) (Block, error)
	Deallocate(b Block)
}

func validate(req Request) error {
	if req.Size == 0 {
		return errs.New(errs.InvalidArgument, nil, "allocation size must be non-zero")
	}
	if !req.Align.Valid() {
		return errs.New(errs.InvalidArgument, nil, "alignment %d is not a power of two", req.Align)
	}
	return nil
}
