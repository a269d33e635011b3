package testutil

import (
	"sync"

	"github.com/convoloop/convoloop/observability"
)

// CaptureSink records every emitted event for assertions. Safe for
// concurrent use.
type CaptureSink struct {
	mu     sync.Mutex
	events []observability.LogEvent
}

// NewCaptureSink creates an empty capture sink.
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{}
}

// Emit implements observability.Sink.
func (s *CaptureSink) Emit(ev observability.LogEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of the recorded events in emission order.
func (s *CaptureSink) Events() []observability.LogEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]observability.LogEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Messages returns the recorded event messages in emission order.
func (s *CaptureSink) Messages() []string {
	evs := s.Events()
	msgs := make([]string, len(evs))
	for i, ev := range evs {
		msgs[i] = ev.Message
	}
	return msgs
}

// Count returns how many recorded events carry the given message.
func (s *CaptureSink) Count(message string) int {
	n := 0
	for _, ev := range s.Events() {
		if ev.Message == message {
			n++
		}
	}
	return n
}

// Filter returns the recorded events carrying the given message.
func (s *CaptureSink) Filter(message string) []observability.LogEvent {
	var out []observability.LogEvent
	for _, ev := range s.Events() {
		if ev.Message == message {
			out = append(out, ev)
		}
	}
	return out
}
