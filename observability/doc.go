// Package observability provides the structured event sink the orchestrator
// and its collaborators emit lifecycle events through. Sinks never propagate
// errors to their callers: backend failures are contained, optionally written
// to a local fallback, and dropped. Use AsyncSink to decouple emission from a
// slow backend so logging can never stall reasoning or token delivery.
package observability
