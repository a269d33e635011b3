package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink collects events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []LogEvent
}

func (r *recordingSink) Emit(ev LogEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) Events() []LogEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEvent, len(r.events))
	copy(out, r.events)
	return out
}

// panickingSink simulates a backend that blows up on every emit.
type panickingSink struct{}

func (panickingSink) Emit(LogEvent) { panic("backend unreachable") }

func TestNewLogEventCopiesMetadata(t *testing.T) {
	md := map[string]any{"tool": "web_search"}
	ev := NewLogEvent(SeverityInfo, "tool.start", md)

	md["tool"] = "mutated"
	assert.Equal(t, "web_search", ev.Metadata["tool"])
	assert.False(t, ev.Timestamp.IsZero())
}

func TestSlogSinkEmitsAppLabel(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSlogSink(func(o *SlogSinkOptions) {
		o.Output = &buf
		o.AppLabel = "convoloop-test"
	})

	sink.Emit(NewLogEvent(SeverityInfo, "turn.start", map[string]any{"conversation_id": "c1"}))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "convoloop-test", record["app"])
	assert.Equal(t, "turn.start", record["msg"])
	assert.Equal(t, "c1", record["conversation_id"])
}

func TestSlogSinkMinSeverityFilters(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSlogSink(func(o *SlogSinkOptions) {
		o.Output = &buf
		o.MinSeverity = SeverityWarn
	})

	sink.Emit(NewLogEvent(SeverityDebug, "turn.token", nil))
	sink.Emit(NewLogEvent(SeverityError, "turn.error", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "turn.error")
}

func TestAsyncSinkPreservesOrder(t *testing.T) {
	rec := &recordingSink{}
	sink := NewAsyncSink(rec)

	for i := 0; i < 100; i++ {
		sink.Emit(NewLogEvent(SeverityDebug, "turn.token", map[string]any{"seq": i}))
	}
	sink.Close()

	events := rec.Events()
	require.Len(t, events, 100)
	for i, ev := range events {
		assert.Equal(t, i, ev.Metadata["seq"])
	}
	assert.EqualValues(t, 0, sink.Dropped())
}

func TestAsyncSinkNeverBlocksOnSlowBackend(t *testing.T) {
	blocked := make(chan struct{})
	slow := sinkFunc(func(LogEvent) { <-blocked })
	sink := NewAsyncSink(slow, func(o *AsyncSinkOptions) { o.QueueSize = 2 })

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			sink.Emit(NewLogEvent(SeverityDebug, "turn.token", nil))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a stalled backend")
	}
	assert.Greater(t, sink.Dropped(), int64(0))
	close(blocked)
	sink.Close()
}

func TestAsyncSinkSwallowsBackendPanics(t *testing.T) {
	sink := NewAsyncSink(panickingSink{})
	for i := 0; i < 10; i++ {
		sink.Emit(NewLogEvent(SeverityInfo, "turn.start", nil))
	}
	sink.Close() // must not hang or panic
}

func TestAsyncSinkEmitAfterClose(t *testing.T) {
	rec := &recordingSink{}
	sink := NewAsyncSink(rec)
	sink.Close()

	assert.NotPanics(t, func() {
		sink.Emit(NewLogEvent(SeverityInfo, "turn.start", nil))
	})
	assert.EqualValues(t, 1, sink.Dropped())
	assert.NotPanics(t, sink.Close) // Close is idempotent
	assert.Empty(t, rec.Events())
}

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	ms := NewMultiSink(a, nil, b)

	ms.Emit(NewLogEvent(SeverityInfo, "turn.end", nil))
	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}

func TestSeverityStrings(t *testing.T) {
	assert.Equal(t, "DEBUG", SeverityDebug.String())
	assert.Equal(t, "INFO", SeverityInfo.String())
	assert.Equal(t, "WARN", SeverityWarn.String())
	assert.Equal(t, "ERROR", SeverityError.String())
}

// sinkFunc adapts a function to the Sink interface.
type sinkFunc func(LogEvent)

func (f sinkFunc) Emit(ev LogEvent) { f(ev) }
