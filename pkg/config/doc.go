// Package config implements the engine's offset-addressed configuration
// blob: a mutable Builder tree finalized into a single frozen []byte, and a
// Reader that navigates the frozen form without ever copying it into Go
// values.
//
// The wire format never stores pointers, only byte offsets relative to
// either the blob start or a region start (the same "pointer-as-offset"
// trick the engine uses for every persisted format), so a blob can be
// mapped into memory and read directly.
package config
