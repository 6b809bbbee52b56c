package hailstorm

import "github.com/emberforge/ember/pkg/errs"

// PrefixPaths rewrites a packed cluster in place so every resource's path
// gains the given prefix, returning the grown slice. data's length must be
// exactly its current packed size (so Parse can validate it); its capacity
// is the "supplied buffer" the algorithm must fit the enlarged paths block
// into — grow data's capacity first (e.g. append a zero-filled tail) if a
// nonempty prefix is being applied.
//
// The rewrite enlarges the paths block by count(resources) × len(prefix)
// bytes, then walks resources back-to-front so each path's new, farther-
// forward position is written before the next path's old bytes would be
// overwritten, then updates every resource's path_offset/path_size and
// every region's shifted offset. It fails without mutating data at all if
// the enlarged block would not fit within cap(data) (Testable Property #9:
// PrefixPaths(data, "") is a byte-identical no-op).
func PrefixPaths(data []byte, prefix string) ([]byte, error) {
	b, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		return data, nil
	}

	n := b.CountResources()
	growPaths := uint64(len(prefix)) * uint64(n)
	newPathsSize := b.paths.Size + growPaths
	newChunkStart := alignUp8(b.paths.Offset + newPathsSize)
	shift := newChunkStart - b.header.DataOffset
	newTotalSize := b.header.TotalSize + shift
	if newTotalSize > uint64(cap(data)) {
		return nil, errs.New(errs.InvalidArgument, nil, "enlarged paths block (+%d bytes) does not fit in a %d byte capacity buffer", shift, cap(data))
	}

	oldTotalSize := b.header.TotalSize
	out := data[:newTotalSize]
	for i := oldTotalSize; i < newTotalSize; i++ {
		out[i] = 0
	}

	tailStart := b.header.DataOffset
	copy(out[tailStart+shift:newTotalSize], out[tailStart:oldTotalSize])

	oldPaths := make([]byte, b.paths.Size)
	copy(oldPaths, out[b.paths.Offset:b.paths.Offset+b.paths.Size])

	cursor := newPathsSize
	newOffsets := make([]uint16, n)
	newSizes := make([]uint16, n)
	for i := n - 1; i >= 0; i-- {
		r := b.resources[i]
		oldStart := uint64(r.PathOffset)
		pathLen := uint64(r.PathSize)

		cursor -= pathLen + 1
		copy(out[b.paths.Offset+cursor:b.paths.Offset+cursor+pathLen], oldPaths[oldStart:oldStart+pathLen])
		out[b.paths.Offset+cursor+pathLen] = 0

		cursor -= uint64(len(prefix))
		copy(out[b.paths.Offset+cursor:b.paths.Offset+cursor+uint64(len(prefix))], prefix)

		newOffsets[i] = uint16(cursor)
		newSizes[i] = uint16(len(prefix)) + uint16(pathLen)
	}

	resourcesOff := uint64(headerSizeBytes) + pathsDescriptorSizeBytes + uint64(len(b.chunks))*chunkSizeBytes
	for i := 0; i < n; i++ {
		r := b.resources[i]
		r.PathOffset = newOffsets[i]
		r.PathSize = newSizes[i]
		off := resourcesOff + uint64(i)*resourceSizeBytes
		copy(out[off:off+resourceSizeBytes], r.marshal())
	}

	newHeader := b.header
	newHeader.TotalSize = newTotalSize
	newHeader.DataOffset = newChunkStart
	copy(out[0:headerSizeBytes], newHeader.marshal())

	newPD := PathsDescriptor{Offset: b.paths.Offset, Size: newPathsSize}
	copy(out[headerSizeBytes:headerSizeBytes+pathsDescriptorSizeBytes], newPD.marshal())

	for i, c := range b.chunks {
		c.Offset += shift
		off := uint64(headerSizeBytes) + pathsDescriptorSizeBytes + uint64(i)*chunkSizeBytes
		copy(out[off:off+chunkSizeBytes], c.marshal())
	}

	return out, nil
}
