// Package model defines the reasoning engine boundary: an opaque capability
// that, given conversation state, a question and the available tools, yields
// a stream of answer tokens possibly interleaved with tool call requests.
// Provider adapters live in the anthropic and openai subpackages.
package model
