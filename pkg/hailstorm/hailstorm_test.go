package hailstorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSeedS4HailstormMetadataDedup: pack two resources sharing metadata;
// both should point at the same meta_offset and the header should report
// count_resources=2.
func TestSeedS4HailstormMetadataDedup(t *testing.T) {
	buf, err := Pack(PackInput{
		Paths:           []string{"a.bin", "b.bin"},
		Metadata:        [][]byte{[]byte("shared-meta")},
		MetadataMapping: []int{0, 0},
		Data:            [][]byte{[]byte("AAAA"), []byte("BBBBBBBB")},
	})
	require.NoError(t, err)

	b, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, b.CountResources())

	r0 := b.Resource(0)
	r1 := b.Resource(1)
	assert.Equal(t, r0.MetaChunk, r1.MetaChunk)
	assert.Equal(t, r0.MetaOffset, r1.MetaOffset)
	assert.Equal(t, r0.MetaSize, r1.MetaSize)
	assert.Equal(t, []byte("shared-meta"), b.Metadata(0))
	assert.Equal(t, []byte("shared-meta"), b.Metadata(1))
}

// TestHailstormRoundTrip covers Testable Property #7: pack then parse
// recovers every path and data byte exactly.
func TestHailstormRoundTrip(t *testing.T) {
	in := PackInput{
		Paths:           []string{"textures/a.png", "sounds/b.ogg", "empty.bin"},
		Metadata:        [][]byte{[]byte("meta-a"), []byte("meta-b")},
		MetadataMapping: []int{0, 1, 0},
		Data:            [][]byte{[]byte("pngbytes"), []byte("oggbytes!!"), nil},
	}
	buf, err := Pack(in)
	require.NoError(t, err)

	b, err := Parse(buf)
	require.NoError(t, err)
	require.Equal(t, 3, b.CountResources())
	for i, p := range in.Paths {
		assert.Equal(t, p, b.Path(i))
		assert.Equal(t, in.Data[i], b.Data(i))
	}
	assert.Equal(t, []byte("meta-a"), b.Metadata(0))
	assert.Equal(t, []byte("meta-b"), b.Metadata(1))
	assert.Equal(t, []byte("meta-a"), b.Metadata(2))
}

func TestPackRejectsMismatchedLengths(t *testing.T) {
	_, err := Pack(PackInput{Paths: []string{"a"}, Data: nil, MetadataMapping: []int{0}, Metadata: [][]byte{{1}}})
	assert.Error(t, err)
}

type recordingStream struct {
	writes map[uint64][]byte
}

func newRecordingStream() *recordingStream { return &recordingStream{writes: map[uint64][]byte{}} }

func (s *recordingStream) record(offset uint64, data []byte) bool {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.writes[offset] = cp
	return true
}
func (s *recordingStream) WriteHeader(offset uint64, data []byte) bool   { return s.record(offset, data) }
func (s *recordingStream) WriteResource(offset uint64, data []byte) bool { return s.record(offset, data) }
func (s *recordingStream) WriteMetadata(offset uint64, data []byte) bool { return s.record(offset, data) }

func (s *recordingStream) assemble(totalSize uint64) []byte {
	buf := make([]byte, totalSize)
	for off, data := range s.writes {
		copy(buf[off:], data)
	}
	return buf
}

// TestPackStreamingMatchesPack: the streaming writer computes the same
// layout and emits the same bytes as the synchronous writer, just through
// a callback set instead of one big buffer.
func TestPackStreamingMatchesPack(t *testing.T) {
	in := PackInput{
		Paths:           []string{"one.bin", "two.bin"},
		Metadata:        [][]byte{[]byte("m")},
		MetadataMapping: []int{0, 0},
		Data:            [][]byte{[]byte("111"), []byte("22222")},
	}
	want, err := Pack(in)
	require.NoError(t, err)

	s := newRecordingStream()
	require.NoError(t, PackStreaming(in, s))
	got := s.assemble(uint64(len(want)))

	assert.Equal(t, want, got)
}

type rejectingStream struct{ allow int }

func (s *rejectingStream) gate() bool {
	if s.allow == 0 {
		return false
	}
	s.allow--
	return true
}
func (s *rejectingStream) WriteHeader(uint64, []byte) bool   { return s.gate() }
func (s *rejectingStream) WriteResource(uint64, []byte) bool { return s.gate() }
func (s *rejectingStream) WriteMetadata(uint64, []byte) bool { return s.gate() }

func TestPackStreamingTornDownOnCallbackFailure(t *testing.T) {
	in := PackInput{
		Paths:           []string{"a"},
		Data:            [][]byte{[]byte("x")},
		Metadata:        [][]byte{[]byte("m")},
		MetadataMapping: []int{0},
	}

	err := PackStreaming(in, &rejectingStream{allow: 0})
	assert.Error(t, err)
}

// TestSeedS6PathPrefix: prefix ["a.txt","b.txt"] with "pkg/"; both
// path_offset values should move and path_size should grow by 4.
func TestSeedS6PathPrefix(t *testing.T) {
	buf, err := Pack(PackInput{
		Paths:           []string{"a.txt", "b.txt"},
		Data:            [][]byte{[]byte("A"), []byte("B")},
		Metadata:        [][]byte{[]byte("m")},
		MetadataMapping: []int{0, 0},
	})
	require.NoError(t, err)

	before, err := Parse(buf)
	require.NoError(t, err)
	oldOffsets := []uint16{before.Resource(0).PathOffset, before.Resource(1).PathOffset}
	oldSizes := []uint16{before.Resource(0).PathSize, before.Resource(1).PathSize}

	grown := make([]byte, len(buf), len(buf)+64)
	copy(grown, buf)

	out, err := PrefixPaths(grown, "pkg/")
	require.NoError(t, err)

	after, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "pkg/a.txt", after.Path(0))
	assert.Equal(t, "pkg/b.txt", after.Path(1))
	assert.NotEqual(t, oldOffsets[0], after.Resource(0).PathOffset)
	assert.NotEqual(t, oldOffsets[1], after.Resource(1).PathOffset)
	assert.Equal(t, oldSizes[0]+4, after.Resource(0).PathSize)
	assert.Equal(t, oldSizes[1]+4, after.Resource(1).PathSize)
	assert.Equal(t, []byte("A"), after.Data(0))
	assert.Equal(t, []byte("B"), after.Data(1))
}

// TestPathPrefixEmptyIsNoop covers Testable Property #9's identity case.
func TestPathPrefixEmptyIsNoop(t *testing.T) {
	buf, err := Pack(PackInput{Paths: []string{"a.txt"}, Data: [][]byte{[]byte("A")}})
	require.NoError(t, err)

	out, err := PrefixPaths(buf, "")
	require.NoError(t, err)
	assert.Equal(t, buf, out)
}

// TestPathPrefixFailsWithoutCapacity covers the "fails without partial
// mutation" half of the path-prefixing contract.
func TestPathPrefixFailsWithoutCapacity(t *testing.T) {
	buf, err := Pack(PackInput{Paths: []string{"a.txt"}, Data: [][]byte{[]byte("A")}})
	require.NoError(t, err)

	original := make([]byte, len(buf))
	copy(original, buf)

	_, err = PrefixPaths(buf, "pkg/")
	assert.Error(t, err)
	assert.Equal(t, original, buf, "failed prefix must not mutate the buffer")
}
