package memory

import (
	"testing"
	"unsafe"

	"github.com/emberforge/ember/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignTo(t *testing.T) {
	assert.Equal(t, Size(0), AlignTo(0, Align16))
	assert.Equal(t, Size(16), AlignTo(1, Align16))
	assert.Equal(t, Size(16), AlignTo(16, Align16))
	assert.Equal(t, Size(32), AlignTo(17, Align16))
	assert.Equal(t, Size(5), AlignTo(5, Align1))
}

func TestAlignmentValid(t *testing.T) {
	assert.True(t, Align1.Valid())
	assert.True(t, Align64.Valid())
	assert.False(t, Alignment(0).Valid())
	assert.False(t, Alignment(3).Valid())
}

func TestHostAllocatorAlignment(t *testing.T) {
	h := NewHostAllocator()
	for _, align := range []Alignment{Align1, Align8, Align16, Align32, Align64} {
		b, err := h.Allocate(Request{Size: 64, Align: align})
		require.NoError(t, err)
		require.Len(t, b.Data, 64)
		addr := uintptr(unsafe.Pointer(&b.Data[0]))
		assert.Zero(t, addr%uintptr(align), "block misaligned for align=%d", align)
		h.Deallocate(b)
	}
}

func TestHostAllocatorRejectsInvalidRequest(t *testing.T) {
	h := NewHostAllocator()
	_, err := h.Allocate(Request{Size: 0, Align: Align8})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidArgument))

	_, err = h.Allocate(Request{Size: 16, Align: 3})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidArgument))
}

func TestBumpAllocateAndReset(t *testing.T) {
	b := NewBump(128)

	a, err := b.Allocate(Request{Size: 32, Align: Align16})
	require.NoError(t, err)
	require.Len(t, a.Data, 32)

	c, err := b.Allocate(Request{Size: 16, Align: Align8})
	require.NoError(t, err)
	require.Len(t, c.Data, 16)

	assert.Positive(t, b.Used())

	b.Reset()
	assert.Zero(t, b.Used())

	// Reused space after reset is indistinguishable from a fresh arena.
	d, err := b.Allocate(Request{Size: 64, Align: Align8})
	require.NoError(t, err)
	require.Len(t, d.Data, 64)
}

func TestBumpExhaustion(t *testing.T) {
	b := NewBump(16)
	_, err := b.Allocate(Request{Size: 8, Align: Align8})
	require.NoError(t, err)

	_, err = b.Allocate(Request{Size: 16, Align: Align8})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidArgument))
}

func TestStackIsBump(t *testing.T) {
	s := NewStack(64)
	blk, err := s.Allocate(Request{Size: 8, Align: Align8})
	require.NoError(t, err)
	require.True(t, blk.Valid())
}

func TestProxyTracksLiveAllocations(t *testing.T) {
	p := NewProxy(NewHostAllocator(), "ecs-scratch")
	assert.Equal(t, "ecs-scratch", p.Tag())

	b1, err := p.Allocate(Request{Size: 8, Align: Align8})
	require.NoError(t, err)
	b2, err := p.Allocate(Request{Size: 8, Align: Align8})
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.Live())

	p.Deallocate(b1)
	assert.EqualValues(t, 1, p.Live())
	p.Deallocate(b2)
	assert.EqualValues(t, 0, p.Live())
}
