/*
Package log provides the engine runtime's logging and assert collaborator.

The reference engine reaches logging and assertions through a process-wide
function-pointer vtable wired up once at module load. Go has no equivalent of
a raw function table, so this package replaces it with an explicit Sink
interface plus a single atomically-swappable "current sink" — the one hidden
global the design allows. Subsystems call log.With(component) or log.Current()
instead of keeping their own copy of a logger.

# Architecture

	┌───────────────────── LOG COLLABORATOR ─────────────────────┐
	│  atomic.Pointer[Sink]  ← SetSink() / Current()              │
	│           │                                                  │
	│           ▼                                                  │
	│  zerologSink (default)  — JSON or console, component tagged │
	│           │                                                  │
	│           ▼                                                  │
	│  log.With("aio").Error(err, "read failed", nil)             │
	└──────────────────────────────────────────────────────────────┘

Severity follows the error-handling policy: Assertion failures log at
Critical and are fatal by construction (pkg/errs.Assert calls into this
package rather than panicking blind).
*/
package log
