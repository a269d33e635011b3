package observability

// MultiSink fans an event out to several sinks in order. A failing member
// cannot affect the others; each Emit is already required to contain its own
// failures.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines the given sinks. Nil members are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	ms := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			ms.sinks = append(ms.sinks, s)
		}
	}
	return ms
}

// Emit forwards the event to every member sink.
func (m *MultiSink) Emit(ev LogEvent) {
	for _, s := range m.sinks {
		s.Emit(ev)
	}
}
