// Package hailstorm implements the engine's sealed resource-cluster
// container format: a header, chunk descriptors, resource entries, a
// NUL-terminated paths block, and the chunk payloads themselves, all
// little-endian and 8-byte aligned.
//
// A Writer packs paths/metadata/data into one blob (or streams it through
// an async callback set); Parse reads a packed blob back without copying
// its chunk payloads.
package hailstorm
