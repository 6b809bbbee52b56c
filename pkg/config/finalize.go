package config

import (
	"encoding/binary"

	"github.com/emberforge/ember/pkg/errs"
	"github.com/emberforge/ember/pkg/memory"
)

// flatEntry is one array slot of the finalized layout: entry 0 is the
// synthetic root, the last entry is the all-zero sentinel, and every entry
// in between is a real tree node. Children of one container occupy a
// contiguous run of the array (childFirst..childFirst+len-1) so a reader
// can walk siblings by following "next" one slot at a time; this requires
// the flatten traversal itself to place each container's children as a
// block (breadth-first over the array). Key interning order is computed
// separately by internKeys walking the build tree depth-first, so the two
// traversals can disagree on layout without disagreeing on intern order.
type flatEntry struct {
	hasKey      bool
	key         string
	last        bool // true if this is the last child in its sibling run
	vtype       ValueType
	scalarBits  uint64
	tail        []byte
	isContainer bool
	childFirst  int // index of first child, -1 if container is empty
	selfIndex   int

	// tableSizeOwner and tableSize mirror the original format's trick of
	// packing a Table container's child count into its first child's
	// otherwise-unused key offset/size fields (Table elements carry no key
	// text, so those fields are free). Only ever set on a Table's first
	// child.
	tableSizeOwner bool
	tableSize      int
}

func flatten(root *buildEntry) []*flatEntry {
	rootFlat := &flatEntry{selfIndex: 0}
	flats := []*flatEntry{rootFlat}

	type pending struct {
		be  *buildEntry
		idx int
	}
	queue := []pending{{root, 0}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		fe := flats[item.idx]
		fe.vtype = item.be.value.vtype

		if fe.vtype.isContainer() {
			fe.isContainer = true
			ctr := item.be.value.container
			if len(ctr.children) == 0 {
				fe.childFirst = -1
			} else {
				fe.childFirst = len(flats)
				for i, child := range ctr.children {
					cf := &flatEntry{
						hasKey:    child.hasKey,
						key:       child.key,
						last:      i == len(ctr.children)-1,
						selfIndex: len(flats),
					}
					if ctr.kind == ValueTable && i == 0 {
						cf.tableSizeOwner = true
						cf.tableSize = len(ctr.children)
					}
					flats = append(flats, cf)
					queue = append(queue, pending{child, cf.selfIndex})
				}
			}
		} else {
			fe.scalarBits = item.be.value.scalarBits
			fe.tail = item.be.value.tail
		}
	}

	flats = append(flats, &flatEntry{selfIndex: len(flats)}) // sentinel
	return flats
}

type internTable struct {
	order  []string
	offset map[string]uint32
}

// internKeys walks the build tree depth-first, interning each key the
// first time it is seen (spec: "Key interning order is first-seen order
// across a depth-first traversal"). This traversal is independent of
// flatten's breadth-first array layout.
func internKeys(root *buildEntry) (*internTable, error) {
	t := &internTable{offset: map[string]uint32{}}
	var cursor uint32

	var visit func(be *buildEntry) error
	visit = func(be *buildEntry) error {
		if be.hasKey {
			if len(be.key) > maxSize {
				return errs.New(errs.InvalidArgument, nil, "key %q exceeds %d bytes", be.key, maxSize)
			}
			if _, ok := t.offset[be.key]; !ok {
				if cursor > maxOffset {
					return errs.New(errs.InvalidArgument, nil, "interned key table exceeds %d bytes", maxOffset)
				}
				t.offset[be.key] = cursor
				t.order = append(t.order, be.key)
				cursor += uint32(len(be.key))
			}
		}
		if be.value.vtype.isContainer() {
			for _, child := range be.value.container.children {
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	return t, nil
}

// Finalize walks b's tree and emits the frozen blob described in the
// package doc. It fails only on a malformed tree (a key or the interned-key
// table overflowing its bit-field width); the Go allocator backing it does
// not itself report failure short of a panic.
func Finalize(b *Builder) ([]byte, error) {
	flats := flatten(b.root)
	interned, err := internKeys(b.root)
	if err != nil {
		return nil, err
	}

	var wideCount uint64
	var tailBytes uint64
	for _, fe := range flats {
		if fe.vtype.isWide() {
			wideCount++
		}
		if fe.vtype == ValueString || fe.vtype == ValueBlob {
			tailBytes += uint64(len(fe.tail)) + 1
		}
	}

	keysBytes := uint64(len(flats)) * keyWidth
	valuesBytes := uint64(len(flats)) * valueWidth
	var internedBytes uint64
	for _, k := range interned.order {
		internedBytes += uint64(len(k))
	}

	internedRegionStart := uint64(headerSize) + keysBytes + valuesBytes
	headerAreaEnd := internedRegionStart + internedBytes
	payloadStart := uint64(memory.AlignTo(memory.Size(headerAreaEnd), memory.Align8))
	payloadBytes := wideCount * 8
	totalSize := payloadStart + payloadBytes + tailBytes

	buf := make([]byte, totalSize)
	putHeader(buf, uint32(totalSize), uint32(payloadStart))

	for _, k := range interned.order {
		off := internedRegionStart + uint64(interned.offset[k])
		copy(buf[off:off+uint64(len(k))], k)
	}

	payloadCursor := payloadStart
	tailCursor := totalSize

	for _, fe := range flats {
		var kt KeyType
		var keyOffset uint32
		var keySize uint8
		switch {
		case fe.hasKey:
			kt = KeyString
			keyOffset = interned.offset[fe.key]
			keySize = uint8(len(fe.key))
		case fe.tableSizeOwner:
			// A Table element carries no key text, so its offset/size
			// fields are otherwise unused; pack the table's own child
			// count into them the way the original builder does, split
			// across the two fields at this format's own bit widths
			// rather than its literal ">> 8 / & 0xff" constants.
			maxTableSize := (uint64(maxOffset) << sizeBits) | uint64(maxSize)
			if uint64(fe.tableSize) > maxTableSize {
				return nil, errs.New(errs.InvalidArgument, nil, "table has too many entries: %d", fe.tableSize)
			}
			keyOffset = uint32(fe.tableSize >> sizeBits)
			keySize = uint8(fe.tableSize & maxSize)
		case fe.selfIndex == 0:
			// The root never has a key, so its Key.offset field is free;
			// Parse relies on it to recover the entry count (see reader.go).
			if len(flats) > maxOffset {
				return nil, errs.New(errs.InvalidArgument, nil, "config tree has too many entries: %d", len(flats))
			}
			keyOffset = uint32(len(flats))
		}

		var internal uint32
		switch {
		case fe.isContainer:
			if fe.childFirst < 0 {
				internal = emptyContainer
			} else {
				internal = uint32(fe.childFirst - fe.selfIndex)
			}
		case fe.vtype.isWide():
			binary.LittleEndian.PutUint64(buf[payloadCursor:payloadCursor+8], fe.scalarBits)
			internal = uint32(payloadCursor)
			payloadCursor += 8
		case fe.vtype == ValueString || fe.vtype == ValueBlob:
			n := uint64(len(fe.tail))
			tailCursor -= n + 1
			buf[tailCursor] = 0
			copy(buf[tailCursor+1:tailCursor+1+n], fe.tail)
			internal = uint32(tailCursor + 1)
		case fe.vtype != ValueNone:
			internal = uint32(fe.scalarBits)
		}

		// "next" marks whether another sibling follows in this entry's
		// contiguous run; the root (index 0) and the sentinel (last index)
		// are never part of a sibling run.
		isRootOrSentinel := fe.selfIndex == 0 || fe.selfIndex == len(flats)-1
		next := !isRootOrSentinel && !fe.last

		kb := packKey(next, kt, fe.vtype, keyOffset, keySize)
		keyOff := uint64(headerSize) + uint64(fe.selfIndex)*keyWidth
		binary.LittleEndian.PutUint64(buf[keyOff:keyOff+keyWidth], uint64(kb))

		valOff := uint64(headerSize) + keysBytes + uint64(fe.selfIndex)*valueWidth
		binary.LittleEndian.PutUint32(buf[valOff:valOff+valueWidth], internal)
	}

	return buf, nil
}

