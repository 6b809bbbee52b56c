package ecs

import "sort"

// ArchetypeID is the stable, order-independent identifier for a component
// set: two registrations listing the same components in any order resolve
// to the same id and the same Archetype record.
type ArchetypeID uint64

// archetypeOfNothingHash seeds the mix so the empty archetype still has a
// well-defined, non-zero id.
const archetypeOfNothingHash ArchetypeID = 0xcbf29ce484222325 // FNV-1a 64-bit offset basis

func sortedDedupComponents(components []Component) []Component {
	out := append([]Component(nil), components...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	deduped := out[:0]
	var last ComponentID
	haveLast := false
	for _, c := range out {
		if haveLast && c.ID == last {
			continue
		}
		deduped = append(deduped, c)
		last = c.ID
		haveLast = true
	}
	return deduped
}

// mixComponentHash avalanches a component id into the running archetype
// hash; XOR-accumulating avalanched values keeps the overall hash
// order-independent regardless of registration order.
func mixComponentHash(acc ArchetypeID, id ComponentID) ArchetypeID {
	x := uint64(id) + 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x = x ^ (x >> 31)
	return acc ^ ArchetypeID(x)
}

func hashArchetype(components []Component) ArchetypeID {
	h := archetypeOfNothingHash
	for _, c := range components {
		h = mixComponentHash(h, c.ID)
	}
	return h
}

// Archetype is a registered, sorted, deduplicated component set with its
// own chunk pool and linked list of chunks.
type Archetype struct {
	ID         ArchetypeID
	Components []Component

	columnIndex map[ComponentID]int

	chunkCapacity int
	pool          *chunkPool
	head          *chunk
	tail          *chunk
}

func newArchetype(id ArchetypeID, components []Component, chunkCapacity int) *Archetype {
	a := &Archetype{
		ID:            id,
		Components:    components,
		columnIndex:   make(map[ComponentID]int, len(components)),
		chunkCapacity: chunkCapacity,
	}
	for i, c := range components {
		a.columnIndex[c.ID] = i
	}
	a.pool = newChunkPool(a)
	// A head "empty" chunk stands in until the first entity is added, so
	// queries and iteration always see a valid chunk pointer.
	a.head = newChunk(a, chunkCapacity)
	a.tail = a.head
	return a
}

// HasComponent reports whether id is part of this archetype's column set.
func (a *Archetype) HasComponent(id ComponentID) bool {
	_, ok := a.columnIndex[id]
	return ok
}

func (a *Archetype) appendChunk() *chunk {
	c := a.pool.acquire()
	a.tail.next = c
	a.tail = c
	return c
}
