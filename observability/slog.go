package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// DefaultAppLabel is the application label attached to every forwarded
// record. Log-aggregation consumers query by this label.
const DefaultAppLabel = "convoloop"

// SlogSinkOptions configures a SlogSink.
type SlogSinkOptions struct {
	// AppLabel is emitted as the "app" attribute on every record.
	AppLabel string
	// Output receives the encoded records. Defaults to os.Stdout.
	Output io.Writer
	// Format selects "json" (default) or "text" encoding.
	Format string
	// MinSeverity drops events below this severity before encoding.
	MinSeverity Severity
}

// SlogSink forwards LogEvents to a slog handler. Metadata keys are flattened
// into top-level attributes, the event severity maps onto the slog level and
// the configured application label is attached to every record. Internal
// handler failures are swallowed per the Sink contract.
type SlogSink struct {
	logger *slog.Logger
	opts   SlogSinkOptions
}

// NewSlogSink builds a SlogSink with JSON output and the default app label.
func NewSlogSink(optFns ...func(o *SlogSinkOptions)) *SlogSink {
	opts := SlogSinkOptions{
		AppLabel:    DefaultAppLabel,
		Output:      os.Stdout,
		Format:      "json",
		MinSeverity: SeverityDebug,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	hopts := &slog.HandlerOptions{Level: opts.MinSeverity.SlogLevel()}

	var handler slog.Handler
	if opts.Format == "text" {
		handler = slog.NewTextHandler(opts.Output, hopts)
	} else {
		handler = slog.NewJSONHandler(opts.Output, hopts)
	}

	return &SlogSink{logger: slog.New(handler), opts: opts}
}

// NewSlogSinkFromLogger wraps an existing slog.Logger.
func NewSlogSinkFromLogger(logger *slog.Logger, optFns ...func(o *SlogSinkOptions)) *SlogSink {
	opts := SlogSinkOptions{AppLabel: DefaultAppLabel, MinSeverity: SeverityDebug}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SlogSink{logger: logger, opts: opts}
}

// Emit encodes the event. It never panics even if the underlying writer
// misbehaves.
func (s *SlogSink) Emit(ev LogEvent) {
	defer func() {
		_ = recover() // sink failures are invisible to the caller
	}()

	if ev.Severity < s.opts.MinSeverity {
		return
	}

	attrs := make([]slog.Attr, 0, len(ev.Metadata)+2)
	attrs = append(attrs,
		slog.String("app", s.opts.AppLabel),
		slog.Time("event_time", ev.Timestamp),
	)
	for k, v := range ev.Metadata {
		attrs = append(attrs, slog.Any(k, v))
	}

	s.logger.LogAttrs(context.Background(), ev.Severity.SlogLevel(), ev.Message, attrs...)
}
