// Package stream implements the token stream interceptor: the lifecycle hook
// surface the orchestrator drives while a turn runs. The interceptor forwards
// generated tokens into the caller's channel in arrival order and mirrors
// every lifecycle point (turn start, token, turn end, tool call) to the
// observability sink.
package stream
