package ecs

import "github.com/emberforge/ember/pkg/memory"

// ComponentID identifies a component kind. 0 is reserved for the implicit
// Entity column every chunk carries.
type ComponentID uint32

// Component describes one column's storage shape. Size == Align == 0
// denotes a tag component: it marks archetype membership but reserves no
// per-entity storage.
type Component struct {
	ID    ComponentID
	Size  memory.Size
	Align memory.Alignment
}

// IsTag reports whether c is a zero-size marker component.
func (c Component) IsTag() bool { return c.Size == 0 && c.Align == 0 }
