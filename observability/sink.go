package observability

// Sink consumes LogEvents. Emit must never panic or propagate an error to
// the caller; implementations contain backend failures internally. Events
// submitted by one component instance are forwarded in submission order.
type Sink interface {
	Emit(ev LogEvent)
}

// NoopSink discards all events. Useful for tests or disabled logging.
type NoopSink struct{}

// Emit discards the event.
func (NoopSink) Emit(LogEvent) {}
