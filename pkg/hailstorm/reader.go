package hailstorm

import "github.com/emberforge/ember/pkg/errs"

// Blob is a parsed cluster: it indexes into the byte slice it was given
// without copying chunk payloads.
type Blob struct {
	data      []byte
	header    Header
	paths     PathsDescriptor
	chunks    []Chunk
	resources []Resource
}

// Parse validates a packed cluster's header and tables and returns a Blob
// that reads directly out of data.
func Parse(data []byte) (*Blob, error) {
	if len(data) < headerSizeBytes+pathsDescriptorSizeBytes {
		return nil, errs.New(errs.InvalidArgument, nil, "cluster blob too small: %d bytes", len(data))
	}
	h := unmarshalHeader(data)
	if h.Magic != Magic {
		return nil, errs.New(errs.InvalidArgument, nil, "bad magic %q", h.Magic[:])
	}
	if h.HeaderVersion != HeaderVersion {
		return nil, errs.New(errs.InvalidArgument, nil, "unsupported header version %d", h.HeaderVersion)
	}
	if h.TotalSize > maxHeaderSize {
		return nil, errs.New(errs.InvalidArgument, nil, "cluster total_size %d exceeds %d byte cap", h.TotalSize, maxHeaderSize)
	}
	if h.TotalSize != uint64(len(data)) {
		return nil, errs.New(errs.InvalidArgument, nil, "cluster total_size %d does not match buffer length %d", h.TotalSize, len(data))
	}

	pathsDescOff := uint64(headerSizeBytes)
	if pathsDescOff+pathsDescriptorSizeBytes > uint64(len(data)) {
		return nil, errs.New(errs.InvalidArgument, nil, "cluster blob truncated before paths descriptor")
	}
	pd := unmarshalPathsDescriptor(data[pathsDescOff : pathsDescOff+pathsDescriptorSizeBytes])

	chunksOff := pathsDescOff + pathsDescriptorSizeBytes
	chunksEnd := chunksOff + uint64(h.CountChunks)*chunkSizeBytes
	if chunksEnd > uint64(len(data)) {
		return nil, errs.New(errs.InvalidArgument, nil, "cluster blob truncated in chunk table")
	}
	chunks := make([]Chunk, h.CountChunks)
	for i := range chunks {
		off := chunksOff + uint64(i)*chunkSizeBytes
		chunks[i] = unmarshalChunk(data[off : off+chunkSizeBytes])
	}

	resourcesOff := chunksEnd
	resourcesEnd := resourcesOff + uint64(h.CountResources)*resourceSizeBytes
	if resourcesEnd > uint64(len(data)) {
		return nil, errs.New(errs.InvalidArgument, nil, "cluster blob truncated in resource table")
	}
	resources := make([]Resource, h.CountResources)
	for i := range resources {
		off := resourcesOff + uint64(i)*resourceSizeBytes
		resources[i] = unmarshalResource(data[off : off+resourceSizeBytes])
	}

	if h.HeaderSize != resourcesEnd {
		return nil, errs.New(errs.InvalidArgument, nil, "cluster header_size %d does not match computed paths-data offset %d", h.HeaderSize, resourcesEnd)
	}
	if pd.Offset+pd.Size > h.DataOffset || pd.Offset < resourcesEnd {
		return nil, errs.New(errs.InvalidArgument, nil, "cluster paths descriptor [%d,%d) out of bounds", pd.Offset, pd.Offset+pd.Size)
	}
	if h.DataOffset > uint64(len(data)) {
		return nil, errs.New(errs.InvalidArgument, nil, "cluster data_offset %d out of range", h.DataOffset)
	}

	return &Blob{data: data, header: h, paths: pd, chunks: chunks, resources: resources}, nil
}

// Header returns the parsed header.
func (b *Blob) Header() Header { return b.header }

// CountChunks reports the number of chunk descriptors.
func (b *Blob) CountChunks() int { return len(b.chunks) }

// CountResources reports the number of resource entries.
func (b *Blob) CountResources() int { return len(b.resources) }

// Chunk returns the i'th chunk descriptor.
func (b *Blob) Chunk(i int) Chunk { return b.chunks[i] }

// Path returns the i'th resource's path string.
func (b *Blob) Path(i int) string {
	r := b.resources[i]
	start := b.paths.Offset + uint64(r.PathOffset)
	return string(b.data[start : start+uint64(r.PathSize)])
}

// Resource returns the i'th resource entry as parsed off the wire.
func (b *Blob) Resource(i int) Resource { return b.resources[i] }

// Data returns the raw data bytes of the i'th resource, sliced directly out
// of its data chunk's payload — no copy.
func (b *Blob) Data(i int) []byte {
	r := b.resources[i]
	if r.Size == 0 {
		return nil
	}
	c := b.chunks[r.DataChunk]
	start := c.Offset + uint64(r.Offset)
	return b.data[start : start+uint64(r.Size)]
}

// Metadata returns the raw metadata bytes of the i'th resource. Two
// resources that shared a MetadataMapping entry at pack time return
// byte-identical slices backed by the same underlying storage.
func (b *Blob) Metadata(i int) []byte {
	r := b.resources[i]
	if r.MetaSize == 0 {
		return nil
	}
	c := b.chunks[r.MetaChunk]
	start := c.Offset + uint64(r.MetaOffset)
	return b.data[start : start+uint64(r.MetaSize)]
}
