package ecs

import (
	"sync"

	"github.com/emberforge/ember/pkg/errs"
)

const defaultChunkCapacity = 256

// DataSlot locates an entity's row: which archetype, which chunk in that
// archetype's linked list, and which row within the chunk.
type DataSlot struct {
	archetype *Archetype
	chunk     *chunk
	row       int
	valid     bool
}

// ComponentData is one column's worth of bytes to write for a single
// entity; len(Bytes) must equal the destination archetype's registered
// size for ID.
type ComponentData struct {
	ID    ComponentID
	Bytes []byte
}

// Registry owns entity allocation, archetype registration, and the
// data-slot table mapping every live entity to its storage location.
type Registry struct {
	mu         sync.Mutex
	alloc      *entityAllocator
	archetypes map[ArchetypeID]*Archetype
	slots      []DataSlot
	trackers   map[ComponentID]*AccessTracker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		alloc:      newEntityAllocator(),
		archetypes: make(map[ArchetypeID]*Archetype),
		trackers:   make(map[ComponentID]*AccessTracker),
	}
}

// RegisterArchetype registers (or looks up) the archetype for the given
// component set. Two registrations of the same logical set, regardless of
// input order, return the same *Archetype.
func (r *Registry) RegisterArchetype(components []Component) *Archetype {
	sorted := sortedDedupComponents(components)
	id := hashArchetype(sorted)

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.archetypes[id]; ok {
		return a
	}
	a := newArchetype(id, sorted, defaultChunkCapacity)
	r.archetypes[id] = a
	for _, c := range sorted {
		if _, ok := r.trackers[c.ID]; !ok {
			r.trackers[c.ID] = &AccessTracker{}
		}
	}
	return a
}

// ArchetypeCount returns the number of distinct archetypes registered so
// far, for metrics reporting.
func (r *Registry) ArchetypeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.archetypes)
}

func (r *Registry) ensureSlotCapacity(index uint32) {
	for uint32(len(r.slots)) <= index {
		r.slots = append(r.slots, DataSlot{})
	}
}

// SlotOf returns entity e's current data slot.
func (r *Registry) SlotOf(e Entity) (DataSlot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := e.Index()
	if int(idx) >= len(r.slots) || !r.slots[idx].valid {
		return DataSlot{}, false
	}
	return r.slots[idx], true
}

// IsAlive reports whether e is a live, non-recycled handle.
func (r *Registry) IsAlive(e Entity) bool { return r.alloc.isAlive(e) }

// Archetype returns the slot's owning archetype (Testable Property #4).
func (s DataSlot) Archetype() *Archetype { return s.archetype }

// EntityAt returns the entity stored in this slot's chunk row.
func (s DataSlot) EntityAt() Entity { return s.chunk.entities[s.row] }

func dataMap(data []ComponentData) map[ComponentID][]byte {
	m := make(map[ComponentID][]byte, len(data))
	for _, d := range data {
		m[d.ID] = d.Bytes
	}
	return m
}

// allocRow finds or creates room for one more entity in archetype a,
// returning the chunk and row index. The head chunk is used first; once
// full, a new chunk is appended.
func allocRow(a *Archetype) (*chunk, int) {
	c := a.tail
	if c.count == c.capacity {
		c = a.appendChunk()
	}
	row := c.count
	c.count++
	return c, row
}

// writeRow copies provided component bytes into dst's row, zero-filling any
// column of dst not present in data.
func writeRow(dst *Archetype, c *chunk, row int, data map[ComponentID][]byte) {
	for _, comp := range dst.Components {
		if comp.IsTag() {
			continue
		}
		slice := c.componentBytes(comp, row)
		if src, ok := data[comp.ID]; ok {
			copy(slice, src)
		} else {
			for i := range slice {
				slice[i] = 0
			}
		}
	}
}

// Spawn creates a new entity in archetype target, writing data for any
// columns provided and zero-filling the rest.
func (r *Registry) Spawn(target *Archetype, data []ComponentData) Entity {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.alloc.alloc()
	r.ensureSlotCapacity(e.Index())

	c, row := allocRow(target)
	c.entities[row] = e
	writeRow(target, c, row, dataMap(data))

	r.slots[e.Index()] = DataSlot{archetype: target, chunk: c, row: row, valid: true}
	return e
}

// removeRowLocked swap-removes the entity at slot s, relocating the tail
// entity of the same chunk into the freed row and fixing up its slot, then
// returning the chunk to the pool once it is fully empty (unless it is the
// archetype's permanent head placeholder).
func (r *Registry) removeRowLocked(s DataSlot) {
	c := s.chunk
	last := c.count - 1
	if s.row != last {
		c.entities[s.row] = c.entities[last]
		for _, comp := range s.archetype.Components {
			if comp.IsTag() {
				continue
			}
			copy(c.componentBytes(comp, s.row), c.componentBytes(comp, last))
		}
		moved := c.entities[s.row]
		r.slots[moved.Index()] = DataSlot{archetype: s.archetype, chunk: c, row: s.row, valid: true}
	}
	c.count--
	if a := s.archetype; c.count == 0 && c != a.head {
		prev := a.head
		for prev.next != c {
			prev = prev.next
		}
		prev.next = c.next
		if a.tail == c {
			a.tail = prev
		}
		a.pool.release(c)
	}
}

// Despawn removes e from its archetype and recycles its index.
func (r *Registry) Despawn(e Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := e.Index()
	if int(idx) >= len(r.slots) || !r.slots[idx].valid {
		return errs.New(errs.ResourceNotFound, nil, "entity %d is not alive", idx)
	}
	r.removeRowLocked(r.slots[idx])
	r.slots[idx] = DataSlot{}
	r.alloc.release(e)
	return nil
}

// Update overwrites component data on e's existing row; the archetype does
// not change.
func (r *Registry) Update(e Entity, data []ComponentData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := e.Index()
	if int(idx) >= len(r.slots) || !r.slots[idx].valid {
		return errs.New(errs.ResourceNotFound, nil, "entity %d is not alive", idx)
	}
	s := r.slots[idx]
	for _, d := range data {
		comp, ok := componentByID(s.archetype, d.ID)
		if !ok || comp.IsTag() {
			continue
		}
		copy(s.chunk.componentBytes(comp, s.row), d.Bytes)
	}
	return nil
}

// ChangeArchetype moves e to target, copying the intersection of its old
// and new component sets before overwriting with any newly provided data,
// then removing the old row.
func (r *Registry) ChangeArchetype(e Entity, target *Archetype, data []ComponentData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := e.Index()
	if int(idx) >= len(r.slots) || !r.slots[idx].valid {
		return errs.New(errs.ResourceNotFound, nil, "entity %d is not alive", idx)
	}
	src := r.slots[idx]

	merged := make(map[ComponentID][]byte, len(target.Components))
	for _, comp := range target.Components {
		if comp.IsTag() {
			continue
		}
		if srcComp, ok := componentByID(src.archetype, comp.ID); ok && !srcComp.IsTag() {
			merged[comp.ID] = append([]byte(nil), src.chunk.componentBytes(srcComp, src.row)...)
		}
	}
	for _, d := range data {
		merged[d.ID] = d.Bytes
	}

	c, row := allocRow(target)
	c.entities[row] = e
	writeRow(target, c, row, merged)

	r.removeRowLocked(src)
	r.slots[idx] = DataSlot{archetype: target, chunk: c, row: row, valid: true}
	return nil
}

func componentByID(a *Archetype, id ComponentID) (Component, bool) {
	if i, ok := a.columnIndex[id]; ok {
		return a.Components[i], true
	}
	return Component{}, false
}
