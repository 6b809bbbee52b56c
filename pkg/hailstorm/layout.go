package hailstorm

import "github.com/emberforge/ember/pkg/errs"

// plannedResource is a fully laid-out resource entry plus the metadata
// bytes it should emit (nil if another resource already owns the emission
// for its canonical metadata index).
type plannedResource struct {
	path      string
	entry     Resource
	ownedMeta []byte
	ownedData []byte
}

// layout is the shared size/offset computation used by both the
// synchronous and streaming writers: given identical inputs they compute
// identical chunk, resource, and paths-block placement.
type layout struct {
	header    Header
	paths     PathsDescriptor
	chunks    []Chunk
	resources []plannedResource
}

func planLayout(in PackInput) (*layout, error) {
	n := len(in.Paths)
	if len(in.Data) != n {
		return nil, errs.New(errs.InvalidArgument, nil, "paths/data length mismatch")
	}
	if len(in.MetadataMapping) > n {
		return nil, errs.New(errs.InvalidArgument, nil, "metadata_mapping longer than paths")
	}

	ownerOffset := make(map[int]uint32, len(in.Metadata))
	metaAssign := make([]uint32, n)
	metaSizeAssign := make([]uint32, n)
	owns := make([]bool, n)
	var metaCursor uint32
	haveMeta := false
	for i := 0; i < n; i++ {
		if i >= len(in.MetadataMapping) {
			continue
		}
		canon := in.MetadataMapping[i]
		if canon < 0 {
			continue // resource carries no metadata
		}
		if canon >= len(in.Metadata) {
			return nil, errs.New(errs.InvalidArgument, nil, "metadata_mapping[%d]=%d out of range", i, canon)
		}
		meta := in.Metadata[canon]
		off, ok := ownerOffset[canon]
		if !ok {
			off = metaCursor
			ownerOffset[canon] = off
			metaCursor += uint32(alignUp8(uint64(len(meta))))
			haveMeta = true
			owns[i] = true
		}
		metaAssign[i] = off
		metaSizeAssign[i] = uint32(len(meta))
	}

	dataAssign := make([]uint32, n)
	dataSizeAssign := make([]uint32, n)
	var dataCursor uint32
	haveData := false
	for i := 0; i < n; i++ {
		d := in.Data[i]
		dataAssign[i] = dataCursor
		dataSizeAssign[i] = uint32(len(d))
		dataCursor += uint32(alignUp8(uint64(len(d))))
		if len(d) > 0 {
			haveData = true
		}
	}

	var chunks []Chunk
	var metaChunkIdx, dataChunkIdx uint16
	if haveMeta {
		metaChunkIdx = uint16(len(chunks))
		chunks = append(chunks, Chunk{Size: metaCursor, SizeOrigin: metaCursor, Align: 8, Type: ChunkMeta, CountEntries: uint16(len(ownerOffset))})
	}
	if haveData {
		dataChunkIdx = uint16(len(chunks))
		chunks = append(chunks, Chunk{Size: dataCursor, SizeOrigin: dataCursor, Align: 8, Type: ChunkData, CountEntries: uint16(n)})
	}

	var pathsBytes uint64
	for _, p := range in.Paths {
		pathsBytes += uint64(len(p)) + 1
	}
	pathsBytes = alignUp8(pathsBytes)

	pathsDescOff := uint64(headerSizeBytes)
	chunksOff := pathsDescOff + pathsDescriptorSizeBytes
	resourcesOff := chunksOff + uint64(len(chunks))*chunkSizeBytes
	pathsDataOff := resourcesOff + uint64(n)*resourceSizeBytes
	chunkPayloadStart := alignUp8(pathsDataOff + pathsBytes)

	cursor := chunkPayloadStart
	for i := range chunks {
		chunks[i].Offset = cursor
		cursor += alignUp8(uint64(chunks[i].Size))
	}
	totalSize := cursor
	if totalSize > maxHeaderSize {
		return nil, errs.New(errs.InvalidArgument, nil, "packed cluster size %d exceeds %d byte cap", totalSize, maxHeaderSize)
	}

	header := Header{
		Magic:          Magic,
		HeaderVersion:  HeaderVersion,
		TotalSize:      totalSize,
		DataOffset:     chunkPayloadStart,
		HeaderSize:     pathsDataOff,
		Version:        1,
		CountChunks:    uint16(len(chunks)),
		CountResources: uint16(n),
	}

	resources := make([]plannedResource, n)
	pathCursor := pathsDataOff
	for i, p := range in.Paths {
		relOffset := uint16(pathCursor - pathsDataOff)
		pathSize := uint16(len(p))
		pathCursor += uint64(len(p)) + 1

		entry := Resource{
			DataChunk:  dataChunkIdx,
			MetaChunk:  metaChunkIdx,
			Size:       dataSizeAssign[i],
			Offset:     dataAssign[i],
			MetaSize:   metaSizeAssign[i],
			MetaOffset: metaAssign[i],
			PathSize:   pathSize,
			PathOffset: relOffset,
		}
		pr := plannedResource{path: p, entry: entry, ownedData: in.Data[i]}
		if owns[i] {
			pr.ownedMeta = in.Metadata[in.MetadataMapping[i]]
		}
		resources[i] = pr
	}

	return &layout{
		header:    header,
		paths:     PathsDescriptor{Offset: pathsDataOff, Size: pathsBytes},
		chunks:    chunks,
		resources: resources,
	}, nil
}

func (l *layout) dataChunkOffset(r Resource) uint64 {
	if len(l.chunks) == 0 {
		return 0
	}
	return l.chunks[r.DataChunk].Offset
}

func (l *layout) metaChunkOffset(r Resource) uint64 {
	if len(l.chunks) == 0 {
		return 0
	}
	return l.chunks[r.MetaChunk].Offset
}
