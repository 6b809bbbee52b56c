// Package errs carries the engine runtime's error taxonomy: a small set of
// named kinds (not Go types) that every subsystem's result returns, plus the
// last-resort Assert used for invariants that must never break.
package errs
