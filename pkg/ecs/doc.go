// Package ecs implements the engine's archetype-based entity storage:
// entities are 64-bit (index, generation) handles, components are stored as
// struct-of-arrays chunks grouped by archetype, and a data-slot table gives
// O(1) lookup from an entity to its chunk and row.
package ecs
