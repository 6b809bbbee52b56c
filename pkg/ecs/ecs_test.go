package ecs

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/emberforge/ember/pkg/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	compPos ComponentID = 1
	compVel ComponentID = 2
)

func posVelArchetype(r *Registry) *Archetype {
	return r.RegisterArchetype([]Component{
		{ID: compPos, Size: 8, Align: memory.Align4},
		{ID: compVel, Size: 8, Align: memory.Align4},
	})
}

func encodeVec2(x, y float32) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(x))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(y))
	return buf
}

func decodeVec2(b []byte) (float32, float32) {
	x := math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(b[4:8]))
	return x, y
}

func TestNilEntityIsNeverIssuedOrAlive(t *testing.T) {
	r := NewRegistry()
	a := posVelArchetype(r)

	e := r.Spawn(a, []ComponentData{
		{ID: compPos, Bytes: encodeVec2(1, 2)},
		{ID: compVel, Bytes: encodeVec2(3, 4)},
	})
	assert.NotEqual(t, Nil, e)
	assert.False(t, r.IsAlive(Nil))
}

func TestArchetypeRegistrationIsOrderIndependent(t *testing.T) {
	r := NewRegistry()
	a1 := r.RegisterArchetype([]Component{{ID: compPos, Size: 8}, {ID: compVel, Size: 8}})
	a2 := r.RegisterArchetype([]Component{{ID: compVel, Size: 8}, {ID: compPos, Size: 8}})
	assert.Equal(t, a1.ID, a2.ID)
	assert.Same(t, a1, a2)
}

// TestSeedS2ECSAddRemove: register Pos/Vel, add 3 entities, remove the
// middle one, expect the third entity (e3) swapped into index 1 with columns
// {(1,2),(5,6)}.
func TestSeedS2ECSAddRemove(t *testing.T) {
	r := NewRegistry()
	a := posVelArchetype(r)

	e1 := r.Spawn(a, []ComponentData{{ID: compPos, Bytes: encodeVec2(1, 2)}, {ID: compVel, Bytes: encodeVec2(1, 2)}})
	e2 := r.Spawn(a, []ComponentData{{ID: compPos, Bytes: encodeVec2(3, 4)}, {ID: compVel, Bytes: encodeVec2(3, 4)}})
	e3 := r.Spawn(a, []ComponentData{{ID: compPos, Bytes: encodeVec2(5, 6)}, {ID: compVel, Bytes: encodeVec2(5, 6)}})

	require.NoError(t, r.Despawn(e2))

	s1, ok := r.SlotOf(e1)
	require.True(t, ok)
	assert.Equal(t, 0, s1.row)

	s3, ok := r.SlotOf(e3)
	require.True(t, ok)
	assert.Equal(t, 1, s3.row, "e3 should have been swapped into the freed index")
	assert.Equal(t, e3, s3.EntityAt())

	posComp, _ := componentByID(a, compPos)
	x, y := decodeVec2(s1.chunk.componentBytes(posComp, s1.row))
	assert.Equal(t, float32(1), x)
	assert.Equal(t, float32(2), y)

	x, y = decodeVec2(s3.chunk.componentBytes(posComp, s3.row))
	assert.Equal(t, float32(5), x)
	assert.Equal(t, float32(6), y)

	assert.False(t, r.IsAlive(e2))
}

// TestSlotInjectionInvariant covers invariant 4.
func TestSlotInjectionInvariant(t *testing.T) {
	r := NewRegistry()
	a := posVelArchetype(r)
	e := r.Spawn(a, []ComponentData{{ID: compPos, Bytes: encodeVec2(9, 9)}})

	s, ok := r.SlotOf(e)
	require.True(t, ok)
	assert.Equal(t, a.ID, s.Archetype().ID)
	assert.Equal(t, e, s.EntityAt())
}

// TestMovePreservesData covers invariant 5: components present in both
// archetypes retain byte-identical values after a change-archetype move.
func TestMovePreservesData(t *testing.T) {
	const compTag ComponentID = 3
	r := NewRegistry()
	src := r.RegisterArchetype([]Component{{ID: compPos, Size: 8}})
	dst := r.RegisterArchetype([]Component{{ID: compPos, Size: 8}, {ID: compTag}})

	e := r.Spawn(src, []ComponentData{{ID: compPos, Bytes: encodeVec2(42, 7)}})
	require.NoError(t, r.ChangeArchetype(e, dst, nil))

	s, ok := r.SlotOf(e)
	require.True(t, ok)
	assert.Equal(t, dst.ID, s.Archetype().ID)
	posComp, _ := componentByID(dst, compPos)
	x, y := decodeVec2(s.chunk.componentBytes(posComp, s.row))
	assert.Equal(t, float32(42), x)
	assert.Equal(t, float32(7), y)
}

// TestRemoveStability covers invariant 6: after removal every remaining
// entity's slot points at a chunk index < count_entities with the value
// written at add time.
func TestRemoveStability(t *testing.T) {
	r := NewRegistry()
	a := posVelArchetype(r)

	entities := make([]Entity, 0, 5)
	for i := 0; i < 5; i++ {
		v := float32(i)
		entities = append(entities, r.Spawn(a, []ComponentData{{ID: compPos, Bytes: encodeVec2(v, v)}}))
	}

	require.NoError(t, r.Despawn(entities[1]))
	require.NoError(t, r.Despawn(entities[3]))

	posComp, _ := componentByID(a, compPos)
	for i, e := range entities {
		if i == 1 || i == 3 {
			assert.False(t, r.IsAlive(e))
			continue
		}
		s, ok := r.SlotOf(e)
		require.True(t, ok)
		require.Less(t, s.row, s.chunk.count)
		x, _ := decodeVec2(s.chunk.componentBytes(posComp, s.row))
		assert.Equal(t, float32(i), x)
	}
}

func TestExecuteOperationsRejectsDuringActiveQuery(t *testing.T) {
	r := NewRegistry()
	a := posVelArchetype(r)
	e := r.Spawn(a, []ComponentData{{ID: compPos, Bytes: encodeVec2(1, 1)}})

	q := r.NewQuery([]ComponentID{compPos}, nil)
	blocked := make(chan struct{})
	done := make(chan struct{})
	go q.Run(func() {
		close(blocked)
		<-done
	})
	<-blocked

	err := r.ExecuteOperations([]Operation{{Entity: e, Kind: OpUpdate, Components: []ComponentData{{ID: compPos, Bytes: encodeVec2(2, 2)}}}})
	assert.Error(t, err)
	close(done)
}
