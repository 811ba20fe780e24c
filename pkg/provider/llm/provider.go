// Package llm defines the Provider interface for Large Language Model backends.
//
// An LLM provider wraps a remote or local model API (e.g., DeepSeek, OpenAI,
// or a local Ollama instance) and exposes a uniform streaming interface so the
// chat orchestrator can drive completions without coupling to any specific SDK.
//
// Providers deliver the raw stream: text fragments, reasoning fragments, and
// index-tagged tool-call fragments exactly as the wire carries them. Assembly
// of complete tool calls happens downstream so that every consumer surface
// reconstructs identical conversation state from the same stream.
//
// Implementors must be safe for concurrent use. Channels returned by
// StreamCompletion must be closed by the implementation when the stream ends or
// when the supplied context is cancelled.
package llm

import "context"

// CompletionRequest carries everything the LLM needs to produce a response.
// At minimum Messages must be non-empty.
type CompletionRequest struct {
	// Model optionally overrides the provider's default model for this request.
	// Used to switch to a reasoning-capable model for reasoning-mode turns.
	Model string

	// Messages is the ordered conversation transcript, system message first.
	Messages []Message

	// Tools is the set of function/tool definitions offered to the model.
	Tools []ToolDefinition

	// Temperature controls output randomness in [0.0, 2.0]. Zero means the
	// provider default.
	Temperature float64

	// MaxTokens caps the number of completion tokens. Zero means provider default.
	MaxTokens int

	// ReasoningEffort is an opaque provider hint ("low", "medium", "high")
	// forwarded verbatim when non-empty. Providers that do not understand it
	// ignore it.
	ReasoningEffort string
}

// Chunk is a single delta event emitted by a streaming completion. A chunk may
// carry any combination of text, reasoning text, tool-call fragments, and a
// finish signal; consumers must handle all fields independently.
type Chunk struct {
	// Text is the incremental answer text of this chunk. May be empty.
	Text string

	// Reasoning is the incremental deliberation text, for models that expose a
	// reasoning channel. Tracked separately from Text.
	Reasoning string

	// ToolCalls contains the raw tool-call fragments carried by this chunk.
	ToolCalls []ToolCallDelta

	// FinishReason is set on the final chunk and indicates why generation
	// stopped: "stop", "length", "tool_calls", or "error" for mid-stream
	// failures (Text then holds the error message).
	FinishReason string
}

// FinishError is the FinishReason value used to surface errors that occur
// after the stream has been established.
const FinishError = "error"

// Provider is the abstraction over any LLM backend.
//
// Implementations must be safe for concurrent use from multiple goroutines and
// must propagate context cancellation promptly: when ctx is cancelled the
// stream channel must be closed as quickly as possible.
type Provider interface {
	// StreamCompletion sends req to the model and returns a read-only channel
	// that emits Chunk values as they arrive. The channel is closed by the
	// implementation when generation finishes or when ctx is cancelled.
	//
	// Callers must drain the channel to avoid goroutine leaks. Errors that
	// occur after the channel is opened are surfaced as a Chunk with
	// FinishReason == FinishError; the initial error return is non-nil only
	// for failures that prevent the stream from starting (invalid credentials,
	// malformed request, unreachable host).
	//
	// The returned channel is never nil when error is nil.
	StreamCompletion(ctx context.Context, req CompletionRequest) (<-chan Chunk, error)

	// Name returns a short identifier for the backing provider ("deepseek",
	// "openai", ...), used in logs and metrics attributes.
	Name() string
}
