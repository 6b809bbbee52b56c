package ecs

import (
	"sync/atomic"

	"github.com/emberforge/ember/pkg/errs"
)

// AccessTracker is the per-component quiescence counter: readers/writers
// bump stageNext on entry and stageExecuted on exit. A tracker is
// quiescent when the two counters are equal, meaning no query holding that
// component is mid-iteration.
type AccessTracker struct {
	stageNext     atomic.Uint64
	stageExecuted atomic.Uint64
}

func (t *AccessTracker) enter() { t.stageNext.Add(1) }
func (t *AccessTracker) exit()  { t.stageExecuted.Add(1) }

// Quiescent reports stageNext == stageExecuted.
func (t *AccessTracker) Quiescent() bool {
	return t.stageNext.Load() == t.stageExecuted.Load()
}

func (r *Registry) trackerFor(id ComponentID) *AccessTracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[id]
	if !ok {
		t = &AccessTracker{}
		r.trackers[id] = t
	}
	return t
}

// Query declares the read and write component sets one iteration touches.
type Query struct {
	reg   *Registry
	read  []ComponentID
	write []ComponentID
}

// NewQuery declares a query over the given read and write component sets.
func (r *Registry) NewQuery(read, write []ComponentID) *Query {
	return &Query{reg: r, read: read, write: write}
}

func (q *Query) all() []ComponentID {
	out := make([]ComponentID, 0, len(q.read)+len(q.write))
	out = append(out, q.read...)
	out = append(out, q.write...)
	return out
}

// Run executes fn with every declared component's tracker marked "in
// flight," so a concurrent structural mutation attempt is rejected until
// fn returns.
func (q *Query) Run(fn func()) {
	ids := q.all()
	for _, id := range ids {
		q.reg.trackerFor(id).enter()
	}
	defer func() {
		for _, id := range ids {
			q.reg.trackerFor(id).exit()
		}
	}()
	fn()
}

// ExecuteOperations asserts every registered component's tracker is
// quiescent, then applies ops in submission order. This is the structural
// mutation gate: "no structural mutation while a query iterates."
func (r *Registry) ExecuteOperations(ops []Operation) error {
	r.mu.Lock()
	for id, t := range r.trackers {
		if !t.Quiescent() {
			r.mu.Unlock()
			return errs.New(errs.InvalidArgument, nil, "structural mutation attempted while component %d is being queried", id)
		}
	}
	r.mu.Unlock()

	for _, op := range ops {
		if err := r.apply(op); err != nil {
			return err
		}
	}
	return nil
}

// OpKind selects what an Operation does.
type OpKind int

const (
	OpSetArchetype OpKind = iota
	OpUpdate
	OpRemove
)

// Operation is one entry of an ordered operation buffer applied atomically
// with respect to queries by ExecuteOperations. Entity must already be
// alive (allocated via Registry.Spawn); ExecuteOperations moves, updates,
// or removes existing entities, it does not create new ones — creation
// always goes through Spawn so the caller receives the new Entity handle
// directly instead of through a side channel.
type Operation struct {
	Entity     Entity
	Kind       OpKind
	Target     *Archetype
	Components []ComponentData
}

func (r *Registry) apply(op Operation) error {
	switch op.Kind {
	case OpSetArchetype:
		return r.ChangeArchetype(op.Entity, op.Target, op.Components)
	case OpUpdate:
		return r.Update(op.Entity, op.Components)
	case OpRemove:
		return r.Despawn(op.Entity)
	default:
		return errs.New(errs.InvalidArgument, nil, "unknown operation kind %d", op.Kind)
	}
}
