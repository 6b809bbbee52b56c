package memory

import "sync/atomic"

// Proxy forwards every call to a parent Allocator while tagging each
// allocation with a debug name and keeping a running count, so a subsystem's
// allocator usage can be inspected without changing its allocation code.
// This is the Go analogue of the teacher's chained proxy-allocator pattern:
// compose behavior by wrapping, not by subclassing.
type Proxy struct {
	parent Allocator
	tag    string
	live   atomic.Int64
}

var _ Allocator = (*Proxy)(nil)

// NewProxy wraps parent, tagging every allocation made through it with tag
// for diagnostic reporting.
func NewProxy(parent Allocator, tag string) *Proxy {
	return &Proxy{parent: parent, tag: tag}
}

func (p *Proxy) Allocate(req Request) (Block, error) {
	b, err := p.parent.Allocate(req)
	if err != nil {
		return Block{}, err
	}
	p.live.Add(1)
	return b, nil
}

func (p *Proxy) Deallocate(b Block) {
	p.parent.Deallocate(b)
	p.live.Add(-1)
}

// Tag returns the debug name this proxy was created with.
func (p *Proxy) Tag() string { return p.tag }

// Live returns the number of allocations made through this proxy that have
// not yet been deallocated through it.
func (p *Proxy) Live() int64 { return p.live.Load() }
