package observability

import (
	"sync"
	"sync/atomic"
)

// AsyncSinkOptions configures an AsyncSink.
type AsyncSinkOptions struct {
	// QueueSize bounds the dispatch queue. When the queue is full, Emit drops
	// the event rather than block the producer.
	QueueSize int
}

// AsyncSink decouples event emission from a potentially slow or failing
// backend: Emit enqueues onto a bounded queue drained by a single background
// goroutine, so a stalled backend can never delay the reasoning loop or token
// delivery. Submission order is preserved for delivered events; overflow
// events are counted and dropped.
type AsyncSink struct {
	inner   Sink
	queue   chan LogEvent
	dropped atomic.Int64

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewAsyncSink wraps inner with a bounded fire-and-forget queue.
func NewAsyncSink(inner Sink, optFns ...func(o *AsyncSinkOptions)) *AsyncSink {
	opts := AsyncSinkOptions{QueueSize: 1024}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}

	s := &AsyncSink{
		inner: inner,
		queue: make(chan LogEvent, opts.QueueSize),
		done:  make(chan struct{}),
	}
	go s.drain()
	return s
}

func (s *AsyncSink) drain() {
	defer close(s.done)
	for ev := range s.queue {
		s.forward(ev)
	}
}

func (s *AsyncSink) forward(ev LogEvent) {
	defer func() {
		_ = recover() // a panicking backend must not kill the drain loop
	}()
	s.inner.Emit(ev)
}

// Emit enqueues the event without blocking. Events are dropped when the
// queue is full or the sink is closed. The mutex only orders Emit against
// Close; the enqueue itself never waits.
func (s *AsyncSink) Emit(ev LogEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.dropped.Add(1)
		return
	}

	select {
	case s.queue <- ev:
	default:
		s.dropped.Add(1)
	}
}

// Dropped reports how many events were discarded due to overflow or
// emission after Close.
func (s *AsyncSink) Dropped() int64 { return s.dropped.Load() }

// Close stops accepting events and blocks until the queue is drained.
// Subsequent calls are no-ops.
func (s *AsyncSink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
}
