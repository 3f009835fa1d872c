// Package monitoring provides the leveled log streams shared by the
// analysis packages.
//
// Each package owns a Streams value with its own prefix and exposes a
// SetLogWriters function so binaries can route or mute it.
package monitoring

import (
	"io"
	"log"
	"sync"
)

// LogWriters holds the io.Writers for each logging stream.
type LogWriters struct {
	Ops   io.Writer // actionable warnings, errors, lifecycle events
	Diag  io.Writer // day-to-day diagnostics, tuning context
	Trace io.Writer // high-frequency per-frame telemetry
}

// Streams is a prefixed set of ops/diag/trace loggers. The zero value is
// muted. Safe for concurrent use.
type Streams struct {
	mu     sync.RWMutex
	prefix string
	ops    *log.Logger
	diag   *log.Logger
	trace  *log.Logger
}

// NewStreams returns muted streams that will use prefix once writers are set.
func NewStreams(prefix string) *Streams {
	return &Streams{prefix: prefix}
}

// Set configures all three streams at once.
// Pass nil for any writer to disable that stream.
func (s *Streams) Set(w LogWriters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = newLogger(s.prefix, w.Ops)
	s.diag = newLogger(s.prefix, w.Diag)
	s.trace = newLogger(s.prefix, w.Trace)
}

// newLogger creates a *log.Logger for a given writer, or returns nil if w is nil.
func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs to the ops stream.
func (s *Streams) Opsf(format string, args ...interface{}) {
	s.mu.RLock()
	l := s.ops
	s.mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// Diagf logs to the diag stream.
func (s *Streams) Diagf(format string, args ...interface{}) {
	s.mu.RLock()
	l := s.diag
	s.mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// Tracef logs to the trace stream.
func (s *Streams) Tracef(format string, args ...interface{}) {
	s.mu.RLock()
	l := s.trace
	s.mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// TraceEnabled reports whether the trace stream has a writer, so callers
// can skip building expensive per-frame messages.
func (s *Streams) TraceEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trace != nil
}
