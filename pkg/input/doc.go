// Package input implements the engine's input action layer: normalized
// device-event sources, declarative actions gated by condition series, and
// a text-format script parser for defining layers outside of Go code.
package input
