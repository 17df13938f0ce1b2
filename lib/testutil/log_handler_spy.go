/*package testutil contains test doubles shared by the tests of the other
packages.*/
package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// LogHandlerSpy is a slog.Handler that captures log records so that tests can
// check which diagnostics were emitted.
type LogHandlerSpy struct {
	mu sync.Mutex
	records []slog.Record
}

// NewLogHandlerSpy creates an empty LogHandlerSpy.
func NewLogHandlerSpy() *LogHandlerSpy { return &LogHandlerSpy{ } }

// NewLogger returns a logger that writes into a new LogHandlerSpy along with
// the spy itself.
func NewLogger() (*slog.Logger, *LogHandlerSpy) {
	spy := NewLogHandlerSpy()
	return slog.New(spy), spy
}

// Handle implements slog.Handler.
func (s *LogHandlerSpy) Handle(_ context.Context, record slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record.Clone())
	return nil
}

// Enabled implements slog.Handler.
func (s *LogHandlerSpy) Enabled(context.Context, slog.Level) bool { return true }

// WithAttrs implements slog.Handler. Attributes are dropped.
func (s *LogHandlerSpy) WithAttrs([]slog.Attr) slog.Handler { return s }

// WithGroup implements slog.Handler.
func (s *LogHandlerSpy) WithGroup(string) slog.Handler { return s }

// Records returns a copy of the captured records.
func (s *LogHandlerSpy) Records() []slog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]slog.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Count returns the number of captured records at the given level.
func (s *LogHandlerSpy) Count(level slog.Level) int {
	n := 0
	for _, r := range s.Records() {
		if r.Level == level { n++ }
	}
	return n
}

// HasWarning returns true if a warning with the given message was captured.
func (s *LogHandlerSpy) HasWarning(message string) bool {
	for _, r := range s.Records() {
		if r.Level == slog.LevelWarn && r.Message == message { return true }
	}
	return false
}

// Attr returns the value of an attribute of the first record with the given
// message.
func (s *LogHandlerSpy) Attr(message, key string) (slog.Value, bool) {
	for _, r := range s.Records() {
		if r.Message != message { continue }
		var (
			val slog.Value
			found bool
		)
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				val, found = a.Value, true
				return false
			}
			return true
		})
		if found { return val, true }
	}
	return slog.Value{ }, false
}

// Reset drops all captured records.
func (s *LogHandlerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
}
