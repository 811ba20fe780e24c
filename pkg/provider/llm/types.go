package llm

// Message represents a single message in an LLM conversation history.
type Message struct {
	// Role is one of "system", "user", "assistant", or "tool".
	Role string

	// Content is the text content of the message.
	Content string

	// ReasoningContent is the model's deliberation text, when the provider
	// exposes a reasoning channel (e.g. deepseek-reasoner). Kept for display
	// only; it is never resubmitted to the model.
	ReasoningContent string

	// ToolCalls contains any tool invocations requested by the assistant.
	ToolCalls []ToolCall

	// ToolCallID is set when Role is "tool", identifying which tool call this responds to.
	ToolCallID string
}

// ToolCall is a fully assembled tool/function invocation requested by the LLM.
type ToolCall struct {
	// ID is the unique identifier for this tool call (provider-assigned).
	ID string

	// Name is the tool/function name.
	Name string

	// Arguments is the JSON-encoded arguments string.
	Arguments string
}

// ToolCallDelta is one streamed fragment of a tool call. A single call is
// typically spread across many deltas sharing the same Index: the ID and Name
// arrive once, the argument text arrives piecewise and must be concatenated
// in arrival order by the consumer.
type ToolCallDelta struct {
	// Index is the call's position within the response, assigned by the model.
	// Indices may first appear in any order and need not be contiguous.
	Index int

	// ID is the call identifier. Empty on all but (usually) the first fragment.
	ID string

	// Name is the function name. Empty on all but (usually) the first fragment.
	Name string

	// Arguments is the next piece of the JSON argument text. May be empty.
	Arguments string
}

// ToolDefinition describes a tool that can be offered to an LLM.
type ToolDefinition struct {
	// Name is the tool's unique identifier.
	Name string

	// Description explains what the tool does (included in LLM prompts).
	Description string

	// Parameters is the JSON Schema describing the tool's input parameters.
	Parameters map[string]any
}
