package observability

import (
	"log/slog"
	"time"
)

// Severity classifies a LogEvent. Values map 1:1 onto slog levels.
type Severity int

const (
	// SeverityDebug is for high-volume lifecycle detail (per-token events).
	SeverityDebug Severity = iota
	// SeverityInfo is for turn and tool lifecycle boundaries.
	SeverityInfo
	// SeverityWarn is for degraded but non-fatal conditions.
	SeverityWarn
	// SeverityError is for turn-fatal failures.
	SeverityError
)

// String returns the severity's canonical text form.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SlogLevel maps the severity to the corresponding slog.Level.
func (s Severity) SlogLevel() slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityWarn:
		return slog.LevelWarn
	case SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogEvent is an immutable structured observability record. Events from one
// turn preserve emission order; no ordering holds across conversations.
type LogEvent struct {
	Message   string
	Metadata  map[string]any
	Timestamp time.Time
	Severity  Severity
}

// NewLogEvent creates a timestamped event. The metadata map is copied so the
// event stays immutable after emission.
func NewLogEvent(severity Severity, message string, metadata map[string]any) LogEvent {
	md := make(map[string]any, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	return LogEvent{
		Message:   message,
		Metadata:  md,
		Timestamp: time.Now().UTC(),
		Severity:  severity,
	}
}
