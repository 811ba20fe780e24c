package session

import (
	"fmt"

	"github.com/nongzhi-ai/nongzhi/pkg/provider/llm"
)

// Role tags a transcript message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// IsValid reports whether r is a recognised role.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// Message is one entry of a session transcript. The payload fields that are
// meaningful depend on Role; use the constructors below rather than struct
// literals so invalid shapes are rejected at construction.
type Message struct {
	// Role is the message author.
	Role Role

	// Content is the text payload. For tool messages it is the serialized
	// tool result; for assistant messages it may be empty on a pure
	// tool-call-only turn.
	Content string

	// ReasoningContent is the assistant's deliberation text when reasoning
	// mode was active for the round that produced this message.
	ReasoningContent string

	// ToolCalls holds the tool invocations an assistant message requested.
	ToolCalls []llm.ToolCall

	// ToolCallID links a tool message to the assistant tool call it answers.
	ToolCallID string
}

// System constructs the system message that anchors a transcript.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User constructs a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant constructs an assistant message carrying answer text, optional
// reasoning text, and any tool calls the model requested. Content may be empty
// when the message carries at least one tool call or reasoning text; a
// reasoning model sometimes ends a turn having only deliberated.
func Assistant(content, reasoning string, calls []llm.ToolCall) Message {
	return Message{
		Role:             RoleAssistant,
		Content:          content,
		ReasoningContent: reasoning,
		ToolCalls:        calls,
	}
}

// ToolResult constructs a tool message answering the call identified by callID.
// content carries the serialized result payload, or raw error text on failure.
func ToolResult(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// Validate checks the role-specific shape invariants of m.
func (m Message) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser:
		if len(m.ToolCalls) > 0 || m.ToolCallID != "" {
			return fmt.Errorf("session: %s message must not carry tool fields", m.Role)
		}
	case RoleAssistant:
		if m.ToolCallID != "" {
			return fmt.Errorf("session: assistant message must not carry a tool call ID")
		}
		if m.Content == "" && m.ReasoningContent == "" && len(m.ToolCalls) == 0 {
			return fmt.Errorf("session: assistant message needs text, reasoning or tool calls")
		}
	case RoleTool:
		if m.ToolCallID == "" {
			return fmt.Errorf("session: tool message needs a tool call ID")
		}
		if len(m.ToolCalls) > 0 {
			return fmt.Errorf("session: tool message must not request tool calls")
		}
	default:
		return fmt.Errorf("session: unknown role %q", m.Role)
	}
	return nil
}

// LLM converts m into the provider-facing message shape.
func (m Message) LLM() llm.Message {
	return llm.Message{
		Role:       string(m.Role),
		Content:    m.Content,
		ToolCalls:  m.ToolCalls,
		ToolCallID: m.ToolCallID,
	}
}

// VisibleMessage is a transcript entry enriched for display: tool messages
// carry the human-readable name of the tool that produced them.
type VisibleMessage struct {
	Role             string         `json:"role"`
	Content          string         `json:"content"`
	ReasoningContent string         `json:"reasoning_content,omitempty"`
	ToolCalls        []llm.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID       string         `json:"tool_call_id,omitempty"`
	DisplayName      string         `json:"display_name,omitempty"`
}
