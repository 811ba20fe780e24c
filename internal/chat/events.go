package chat

// EventKind names the kinds of events a turn emits while it runs. The
// vocabulary is shared by every front end: the SSE endpoint maps kinds to SSE
// event names, the WebSocket endpoint wraps them in JSON frames, and the REPL
// renders them to the terminal.
type EventKind string

const (
	EventReasoningDelta EventKind = "reasoning_delta"
	EventReasoningDone  EventKind = "reasoning_done"
	EventTextDelta      EventKind = "text_delta"
	EventTextDone       EventKind = "text_done"
	EventToolStart      EventKind = "tool_start"
	EventToolDone       EventKind = "tool_done"
	EventRoundDone      EventKind = "round_done"
	EventDone           EventKind = "done"
	EventError          EventKind = "error"
)

// Event is one unit of turn progress. Data holds the kind-specific payload
// and is JSON-serializable for every kind.
type Event struct {
	Kind EventKind
	Data any
}

// Sink receives turn events in emission order. A non-nil return aborts the
// turn: the orchestrator stops streaming, discards the partial round, and
// leaves the conversation as it was before the failed round.
type Sink func(Event) error

// ContentPayload carries a text or reasoning fragment.
type ContentPayload struct {
	Content string `json:"content"`
}

// ToolStartPayload announces that a tool is about to run.
type ToolStartPayload struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Args        map[string]any `json:"args"`
}

// ToolDonePayload reports a finished tool execution. Result is the handler's
// payload, or an error payload when the dispatch failed.
type ToolDonePayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Result      any    `json:"result"`
}

// DonePayload closes a successful turn.
type DonePayload struct {
	Rounds           int  `json:"rounds"`
	ReasoningEnabled bool `json:"reasoning_enabled"`
}

// ErrorPayload closes a failed turn.
type ErrorPayload struct {
	Message string `json:"message"`
}
