// Package core defines the conversational data model shared by every other
// package: conversations, turns, reasoning steps, durable checkpoints and the
// fatal error taxonomy of the orchestrator.
package core
