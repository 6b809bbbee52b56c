package aio

import "github.com/google/uuid"

// Status reports how a submission or a completion resolved.
type Status int

const (
	// StatusCompleted means the data transfer already happened; for a read
	// this means mem already holds the bytes.
	StatusCompleted Status = iota
	// StatusPending means a completion callback will fire later via
	// ProcessEvents.
	StatusPending
	// StatusError means the operation failed; no callback fires for an
	// Error returned directly from ReadRequest/WriteRequest.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusPending:
		return "pending"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is reported exactly once per submitted request, via its Callback.
type Result struct {
	Status Status
	Bytes  int
	Err    error
}

// Callback is invoked with the request's userdata when its I/O completes.
type Callback func(res Result, userdata any)

// Request holds everything the port needs to carry a single read or write
// through to completion. It is never moved once submitted: callers own its
// storage and must not reuse it until its callback has fired.
type Request struct {
	Callback Callback
	Userdata any

	// ID correlates this request's submission and completion in logs; it
	// has no on-wire meaning.
	ID uuid.UUID

	port   *Port
	file   fileHandle
	offset int64
	buf    []byte
	write  bool
}

// fileHandle is the minimal surface ReadRequest/WriteRequest need from a
// file; *os.File satisfies it.
type fileHandle interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
}

// NewRequest returns a Request ready to be submitted through ReadRequest or
// WriteRequest, carrying callback and userdata to be handed back on
// completion.
func NewRequest(callback Callback, userdata any) *Request {
	return &Request{Callback: callback, Userdata: userdata, ID: uuid.New()}
}
