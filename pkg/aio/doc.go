// Package aio implements the engine's asynchronous I/O port: a submission
// queue backed by a fixed worker pool, drained through process_events-style
// completion polling.
//
// This package implements only the portable fallback branch of the design —
// a lock-free multi-producer/multi-consumer submission queue plus a
// counting semaphore, with workers performing blocking reads/writes — since
// Go exposes no portable binding to native completion-port APIs (IOCP,
// io_uring, kqueue). The public contract (Open/Close/Bind/ReadRequest/
// WriteRequest/ProcessEvents) is identical regardless of backend, so a
// native backend could be added later without touching callers.
package aio
