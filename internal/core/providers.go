package core

import "context"

// AIProvider is the uniform text-generation capability. The memory engine is
// provider-agnostic; adapters live in internal/providers/llm.
type AIProvider interface {
	Chat(ctx context.Context, history []ChatMessage, opts GenOptions) (Reply, error)
}

// StreamingProvider is implemented by backends that can deliver incremental
// deltas. Callers must drain the channel; the final delta has Done set.
type StreamingProvider interface {
	AIProvider
	ChatStream(ctx context.Context, history []ChatMessage, opts GenOptions) (<-chan StreamDelta, error)
}
