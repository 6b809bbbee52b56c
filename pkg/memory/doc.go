/*
Package memory provides the engine runtime's sized/aligned memory primitives:
distinct byte-size and byte-offset types, a power-of-two Alignment enum, and
a small family of Allocator implementations (host, bump/stack, proxy).
Other packages use the size and alignment types, but chunk pools (pkg/ecs),
config blobs (pkg/config) and hailstorm clusters (pkg/hailstorm) do not
allocate through an Allocator: they create their byte buffers with
make([]byte, n) directly.

Grounded on the reference engine's memory/allocator split (one polymorphic
allocator value, proxy allocators that tag, bump/stack allocators that only
reset as a whole) — rendered here as a small interface plus concrete structs
rather than a virtual base class, which is the idiomatic Go shape for the
same "polymorphic over allocate/deallocate" contract.
*/
package memory
