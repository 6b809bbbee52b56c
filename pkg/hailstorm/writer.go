package hailstorm

// PackInput is the writer's input: paths and per-resource data, plus a
// deduplicated metadata array and a mapping from resource index to the
// metadata entry it uses. Two resources with the same MetadataMapping
// value share one emitted metadata copy (Testable Property #8).
type PackInput struct {
	Paths           []string
	Metadata        [][]byte
	MetadataMapping []int
	Data            [][]byte
}

// Pack computes the layout and emits a complete cluster blob in one
// allocation — the package's synchronous writer. It packs all resource
// data into a single Data chunk and all distinct metadata into a single
// Meta chunk (the concrete default policy for the "select a destination
// chunk, grow if it doesn't fit" algorithm the format describes; an
// embedding application with its own chunk-grouping strategy would supply
// its own select/create callbacks, which this default policy stands in
// for here since nothing in this module needs a custom one).
func Pack(in PackInput) ([]byte, error) {
	l, err := planLayout(in)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, l.header.TotalSize)
	copy(buf[0:headerSizeBytes], l.header.marshal())

	pathsDescOff := uint64(headerSizeBytes)
	copy(buf[pathsDescOff:pathsDescOff+pathsDescriptorSizeBytes], l.paths.marshal())

	chunksOff := pathsDescOff + pathsDescriptorSizeBytes
	for i, c := range l.chunks {
		off := chunksOff + uint64(i)*chunkSizeBytes
		copy(buf[off:off+chunkSizeBytes], c.marshal())
	}

	resourcesOff := chunksOff + uint64(len(l.chunks))*chunkSizeBytes
	pathCursor := l.paths.Offset
	for i, pr := range l.resources {
		copy(buf[pathCursor:pathCursor+uint64(len(pr.path))], pr.path)
		buf[pathCursor+uint64(len(pr.path))] = 0
		pathCursor += uint64(len(pr.path)) + 1

		off := resourcesOff + uint64(i)*resourceSizeBytes
		copy(buf[off:off+resourceSizeBytes], pr.entry.marshal())

		if pr.ownedMeta != nil {
			dst := l.metaChunkOffset(pr.entry) + uint64(pr.entry.MetaOffset)
			copy(buf[dst:dst+uint64(len(pr.ownedMeta))], pr.ownedMeta)
		}
		if len(pr.ownedData) > 0 {
			dst := l.dataChunkOffset(pr.entry) + uint64(pr.entry.Offset)
			copy(buf[dst:dst+uint64(len(pr.ownedData))], pr.ownedData)
		}
	}

	return buf, nil
}
