package log

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Severity mirrors the error-handling design's surfacing levels.
type Severity string

const (
	DebugLevel    Severity = "debug"
	InfoLevel     Severity = "info"
	WarnLevel     Severity = "warn"
	ErrorLevel    Severity = "error"
	CriticalLevel Severity = "critical"
)

// Fields is a bag of structured log attributes.
type Fields map[string]any

// Sink is the logging collaborator every subsystem talks to. It stands in
// for the reference engine's function-pointer log vtable: one interface,
// swappable as a whole, never reached into partially.
type Sink interface {
	Log(sev Severity, component, msg string, fields Fields)
}

var current atomic.Pointer[Sink]

func init() {
	var s Sink = newZerologSink(zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger())
	current.Store(&s)
}

// SetSink atomically installs the process-wide log sink. Safe to call from
// any goroutine; in-flight calls to Current() either see the old or the new
// sink, never a torn one.
func SetSink(s Sink) {
	current.Store(&s)
}

// Current returns the active sink.
func Current() Sink {
	return *current.Load()
}

// Config configures the default zerolog-backed sink installed by Init.
type Config struct {
	Level      Severity
	JSONOutput bool
	Output     io.Writer
}

// Init installs the default Sink implementation, backed by zerolog, matching
// the engine's two on-disk log shapes: structured JSON for production
// aggregation, console for local development.
func Init(cfg Config) {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel, CriticalLevel:
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	var zl zerolog.Logger
	if cfg.JSONOutput {
		zl = zerolog.New(output).With().Timestamp().Logger()
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	SetSink(newZerologSink(zl))
}

type zerologSink struct {
	logger zerolog.Logger
}

func newZerologSink(l zerolog.Logger) *zerologSink {
	return &zerologSink{logger: l}
}

func (s *zerologSink) Log(sev Severity, component, msg string, fields Fields) {
	var ev *zerolog.Event
	switch sev {
	case DebugLevel:
		ev = s.logger.Debug()
	case WarnLevel:
		ev = s.logger.Warn()
	case ErrorLevel:
		ev = s.logger.Error()
	case CriticalLevel:
		ev = s.logger.Error().Bool("critical", true)
	default:
		ev = s.logger.Info()
	}
	if component != "" {
		ev = ev.Str("component", component)
	}
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// Component is a thin, component-scoped handle over the current sink. It is
// re-resolved on every call so a SetSink during a test does not leave
// stale handles pointed at the old sink.
type Component struct {
	name string
}

// With returns a component-scoped logging handle, the Go analogue of
// WithComponent child loggers.
func With(component string) Component {
	return Component{name: component}
}

func (c Component) Debug(msg string, fields Fields) { Current().Log(DebugLevel, c.name, msg, fields) }
func (c Component) Info(msg string, fields Fields)  { Current().Log(InfoLevel, c.name, msg, fields) }
func (c Component) Warn(msg string, fields Fields)  { Current().Log(WarnLevel, c.name, msg, fields) }
func (c Component) Error(err error, msg string, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	Current().Log(ErrorLevel, c.name, msg, fields)
}
func (c Component) Critical(msg string, fields Fields) {
	Current().Log(CriticalLevel, c.name, msg, fields)
}
