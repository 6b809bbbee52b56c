package hailstorm

import "encoding/binary"

// Magic identifies a hailstorm cluster blob: ASCII "HSC1".
var Magic = [4]byte{'H', 'S', 'C', '1'}

const HeaderVersion uint16 = 1

// headerSizeBytes is sizeof(Header) on the wire (64 bytes).
const headerSizeBytes = 64

// pathsDescriptorSizeBytes is sizeof(PathsDescriptor) on the wire.
const pathsDescriptorSizeBytes = 16

// chunkSizeBytes is sizeof(Chunk) on the wire (32 bytes).
const chunkSizeBytes = 32

// resourceSizeBytes is sizeof(Resource) on the wire (32 bytes).
const resourceSizeBytes = 32

// maxHeaderSize caps a header's declared total size at 1 GiB, per the
// reader's sanity check.
const maxHeaderSize = 1 << 30

// Flag bits for Header.Flags.
const (
	FlagEncrypted uint32 = 1 << iota
	FlagExpansion
	FlagPatch
	FlagBaked
)

// ChunkType tags what a Chunk's entries hold.
type ChunkType uint8

const (
	ChunkMeta  ChunkType = 1
	ChunkData  ChunkType = 2
	ChunkMixed ChunkType = 3
)

// Header is the cluster's 64-byte fixed header.
type Header struct {
	Magic          [4]byte
	HeaderVersion  uint16
	_pad0          uint16
	TotalSize      uint64
	DataOffset     uint64
	HeaderSize     uint64
	Version        uint32
	Flags          uint32
	CountChunks    uint16
	CountResources uint16
	_pad1          uint32
	Custom         [16]byte
}

func (h Header) marshal() []byte {
	buf := make([]byte, headerSizeBytes)
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.HeaderVersion)
	binary.LittleEndian.PutUint64(buf[8:16], h.TotalSize)
	binary.LittleEndian.PutUint64(buf[16:24], h.DataOffset)
	binary.LittleEndian.PutUint64(buf[24:32], h.HeaderSize)
	binary.LittleEndian.PutUint32(buf[32:36], h.Version)
	binary.LittleEndian.PutUint32(buf[36:40], h.Flags)
	binary.LittleEndian.PutUint16(buf[40:42], h.CountChunks)
	binary.LittleEndian.PutUint16(buf[42:44], h.CountResources)
	copy(buf[48:64], h.Custom[:])
	return buf
}

func unmarshalHeader(buf []byte) Header {
	var h Header
	copy(h.Magic[:], buf[0:4])
	h.HeaderVersion = binary.LittleEndian.Uint16(buf[4:6])
	h.TotalSize = binary.LittleEndian.Uint64(buf[8:16])
	h.DataOffset = binary.LittleEndian.Uint64(buf[16:24])
	h.HeaderSize = binary.LittleEndian.Uint64(buf[24:32])
	h.Version = binary.LittleEndian.Uint32(buf[32:36])
	h.Flags = binary.LittleEndian.Uint32(buf[36:40])
	h.CountChunks = binary.LittleEndian.Uint16(buf[40:42])
	h.CountResources = binary.LittleEndian.Uint16(buf[42:44])
	copy(h.Custom[:], buf[48:64])
	return h
}

// PathsDescriptor locates the paths block within the blob.
type PathsDescriptor struct {
	Offset uint64
	Size   uint64
}

func (p PathsDescriptor) marshal() []byte {
	buf := make([]byte, pathsDescriptorSizeBytes)
	binary.LittleEndian.PutUint64(buf[0:8], p.Offset)
	binary.LittleEndian.PutUint64(buf[8:16], p.Size)
	return buf
}

func unmarshalPathsDescriptor(buf []byte) PathsDescriptor {
	return PathsDescriptor{
		Offset: binary.LittleEndian.Uint64(buf[0:8]),
		Size:   binary.LittleEndian.Uint64(buf[8:16]),
	}
}

// Chunk is the on-disk chunk descriptor.
type Chunk struct {
	Offset       uint64
	Size         uint32
	SizeOrigin   uint32
	Align        uint8
	Type         ChunkType
	CountEntries uint16
}

func (c Chunk) marshal() []byte {
	buf := make([]byte, chunkSizeBytes)
	binary.LittleEndian.PutUint64(buf[0:8], c.Offset)
	binary.LittleEndian.PutUint32(buf[8:12], c.Size)
	binary.LittleEndian.PutUint32(buf[12:16], c.SizeOrigin)
	buf[16] = c.Align
	buf[17] = uint8(c.Type)
	binary.LittleEndian.PutUint16(buf[18:20], c.CountEntries)
	return buf
}

func unmarshalChunk(buf []byte) Chunk {
	return Chunk{
		Offset:       binary.LittleEndian.Uint64(buf[0:8]),
		Size:         binary.LittleEndian.Uint32(buf[8:12]),
		SizeOrigin:   binary.LittleEndian.Uint32(buf[12:16]),
		Align:        buf[16],
		Type:         ChunkType(buf[17]),
		CountEntries: binary.LittleEndian.Uint16(buf[18:20]),
	}
}

// Resource is the on-disk resource entry.
type Resource struct {
	DataChunk  uint16
	MetaChunk  uint16
	Size       uint32
	Offset     uint32
	MetaSize   uint32
	MetaOffset uint32
	PathSize   uint16
	PathOffset uint16
}

func (r Resource) marshal() []byte {
	buf := make([]byte, resourceSizeBytes)
	binary.LittleEndian.PutUint16(buf[0:2], r.DataChunk)
	binary.LittleEndian.PutUint16(buf[2:4], r.MetaChunk)
	binary.LittleEndian.PutUint32(buf[4:8], r.Size)
	binary.LittleEndian.PutUint32(buf[8:12], r.Offset)
	binary.LittleEndian.PutUint32(buf[12:16], r.MetaSize)
	binary.LittleEndian.PutUint32(buf[16:20], r.MetaOffset)
	binary.LittleEndian.PutUint16(buf[20:22], r.PathSize)
	binary.LittleEndian.PutUint16(buf[22:24], r.PathOffset)
	return buf
}

func unmarshalResource(buf []byte) Resource {
	return Resource{
		DataChunk:  binary.LittleEndian.Uint16(buf[0:2]),
		MetaChunk:  binary.LittleEndian.Uint16(buf[2:4]),
		Size:       binary.LittleEndian.Uint32(buf[4:8]),
		Offset:     binary.LittleEndian.Uint32(buf[8:12]),
		MetaSize:   binary.LittleEndian.Uint32(buf[12:16]),
		MetaOffset: binary.LittleEndian.Uint32(buf[16:20]),
		PathSize:   binary.LittleEndian.Uint16(buf[20:22]),
		PathOffset: binary.LittleEndian.Uint16(buf[22:24]),
	}
}

func alignUp8(n uint64) uint64 { return (n + 7) &^ 7 }
