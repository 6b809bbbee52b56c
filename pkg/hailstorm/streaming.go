package hailstorm

import (
	"github.com/emberforge/ember/pkg/errs"
	"github.com/google/uuid"
)

// StreamWriter receives the packed cluster's bytes as they're computed,
// each write addressed by its absolute offset into the final blob. It
// mirrors the "async_write_header/resource/metadata" callback set: open,
// write the header regions up front, write each resource's metadata and
// data at their computed offsets, then write the resource table and
// paths-data, then close.
//
// A callback returns false to abort; PackStreaming then returns an error
// without calling any further callback ("destroy on error" — there is no
// partial-write rollback here because nothing but the caller's sink has
// been touched, so there is nothing else to tear down).
type StreamWriter interface {
	WriteHeader(offset uint64, data []byte) bool
	WriteResource(offset uint64, data []byte) bool
	WriteMetadata(offset uint64, data []byte) bool
}

// PackStreaming computes the identical layout Pack would and feeds it
// through w one region at a time, instead of building the whole blob in
// memory.
func PackStreaming(in PackInput, w StreamWriter) error {
	l, err := planLayout(in)
	if err != nil {
		return err
	}

	// session correlates every error this call can return, since a single
	// StreamWriter's rejected writes otherwise carry no way to tell which
	// of several concurrent PackStreaming calls (one per task-pool worker)
	// produced them.
	session := uuid.New()

	if !w.WriteHeader(0, l.header.marshal()) {
		return errs.New(errs.IoError, nil, "stream session %s: writer rejected header write", session)
	}

	pathsDescOff := uint64(headerSizeBytes)
	if !w.WriteHeader(pathsDescOff, l.paths.marshal()) {
		return errs.New(errs.IoError, nil, "stream session %s: writer rejected paths descriptor write", session)
	}

	chunksOff := pathsDescOff + pathsDescriptorSizeBytes
	for i, c := range l.chunks {
		off := chunksOff + uint64(i)*chunkSizeBytes
		if !w.WriteHeader(off, c.marshal()) {
			return errs.New(errs.IoError, nil, "stream session %s: writer rejected chunk descriptor write", session)
		}
	}

	for _, pr := range l.resources {
		if pr.ownedMeta != nil && len(pr.ownedMeta) > 0 {
			dst := l.metaChunkOffset(pr.entry) + uint64(pr.entry.MetaOffset)
			if !w.WriteMetadata(dst, pr.ownedMeta) {
				return errs.New(errs.IoError, nil, "stream session %s: writer rejected metadata write for %q", session, pr.path)
			}
		}
		if len(pr.ownedData) > 0 {
			dst := l.dataChunkOffset(pr.entry) + uint64(pr.entry.Offset)
			if !w.WriteResource(dst, pr.ownedData) {
				return errs.New(errs.IoError, nil, "stream session %s: writer rejected data write for %q", session, pr.path)
			}
		}
	}

	resourcesOff := chunksOff + uint64(len(l.chunks))*chunkSizeBytes
	pathCursor := l.paths.Offset
	pathsData := make([]byte, l.paths.Size)
	base := pathCursor
	for i, pr := range l.resources {
		rel := pathCursor - base
		copy(pathsData[rel:rel+uint64(len(pr.path))], pr.path)
		pathsData[rel+uint64(len(pr.path))] = 0
		pathCursor += uint64(len(pr.path)) + 1

		off := resourcesOff + uint64(i)*resourceSizeBytes
		if !w.WriteHeader(off, pr.entry.marshal()) {
			return errs.New(errs.IoError, nil, "stream session %s: writer rejected resource entry write for %q", session, pr.path)
		}
	}
	if len(pathsData) > 0 {
		if !w.WriteHeader(base, pathsData) {
			return errs.New(errs.IoError, nil, "stream session %s: writer rejected paths-data write", session)
		}
	}

	return nil
}
