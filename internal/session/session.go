// Package session holds per-conversation state: the append-only transcript,
// the tool-call-ID → tool-name map used for display, and the reasoning-mode
// settings. A Store owns all live sessions.
//
// Concurrency contract: a session supports at most one active turn at a time.
// Callers must hold the turn lock (BeginTurn/EndTurn) for the full duration of
// a multi-round turn, not just per append, so that two concurrent turns can
// never interleave their transcript appends. Independent sessions are fully
// independent and may run turns in parallel.
package session

import (
	"fmt"
	"sync"
	"time"
)

// Effort values accepted for the reasoning-mode hint. The hint is forwarded to
// the provider verbatim; its semantics are provider-defined.
const (
	EffortLow    = "low"
	EffortMedium = "medium"
	EffortHigh   = "high"
)

// ValidEffort reports whether e is an accepted reasoning effort value.
func ValidEffort(e string) bool {
	return e == EffortLow || e == EffortMedium || e == EffortHigh
}

// Session is one conversation. All exported methods are safe for concurrent
// use; the turn lock is separate from the internal state lock so that readers
// (message listing) are not blocked for the duration of an in-flight turn.
type Session struct {
	// ID is the opaque session identifier.
	ID string

	// turnMu serializes whole turns. Held from BeginTurn to EndTurn.
	turnMu sync.Mutex

	// mu guards the fields below.
	mu              sync.Mutex
	msgs            []Message
	toolNames       map[string]string
	reasoning       bool
	reasoningEffort string
	createdAt       time.Time
}

// newSession creates a session anchored by the given system prompt.
func newSession(id, systemPrompt string) *Session {
	return &Session{
		ID:              id,
		msgs:            []Message{System(systemPrompt)},
		toolNames:       make(map[string]string),
		reasoningEffort: EffortMedium,
		createdAt:       time.Now(),
	}
}

// BeginTurn acquires the session's turn lock, blocking until any in-flight
// turn completes. The caller must call EndTurn when the turn is finished.
func (s *Session) BeginTurn() { s.turnMu.Lock() }

// EndTurn releases the turn lock acquired by BeginTurn.
func (s *Session) EndTurn() { s.turnMu.Unlock() }

// Append validates msg and adds it to the transcript. The transcript is
// append-only; there is no way to remove or reorder messages.
func (s *Session) Append(msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if msg.Role == RoleSystem {
		return fmt.Errorf("session: transcript already has a system message")
	}
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
	return nil
}

// Transcript returns a snapshot of the full transcript (system message
// included) in the provider-facing shape, ready to submit to the model.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// RecordToolName remembers which tool answered the call identified by callID,
// for later display enrichment.
func (s *Session) RecordToolName(callID, name string) {
	s.mu.Lock()
	s.toolNames[callID] = name
	s.mu.Unlock()
}

// ToolName returns the tool name recorded for callID, or "" if unknown.
func (s *Session) ToolName(callID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toolNames[callID]
}

// VisibleHistory returns all non-system messages, enriching tool messages
// with a display name resolved through displayName (tool name → label).
// Unknown call IDs fall back to the generic 工具 placeholder.
func (s *Session) VisibleHistory(displayName func(toolName string) string) []VisibleMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]VisibleMessage, 0, len(s.msgs))
	for _, m := range s.msgs {
		if m.Role == RoleSystem {
			continue
		}
		vm := VisibleMessage{
			Role:             string(m.Role),
			Content:          m.Content,
			ReasoningContent: m.ReasoningContent,
			ToolCalls:        m.ToolCalls,
			ToolCallID:       m.ToolCallID,
		}
		if m.Role == RoleTool {
			name := s.toolNames[m.ToolCallID]
			if name == "" {
				vm.DisplayName = "工具"
			} else if displayName != nil {
				vm.DisplayName = displayName(name)
			} else {
				vm.DisplayName = name
			}
		}
		out = append(out, vm)
	}
	return out
}

// Reasoning returns the session's reasoning-mode flag and effort hint.
func (s *Session) Reasoning() (enabled bool, effort string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reasoning, s.reasoningEffort
}

// SetReasoning toggles reasoning mode.
func (s *Session) SetReasoning(enabled bool) {
	s.mu.Lock()
	s.reasoning = enabled
	s.mu.Unlock()
}

// SetReasoningEffort updates the effort hint. Returns an error for values
// other than low, medium, or high.
func (s *Session) SetReasoningEffort(effort string) error {
	if !ValidEffort(effort) {
		return fmt.Errorf("session: reasoning effort must be low, medium, or high; got %q", effort)
	}
	s.mu.Lock()
	s.reasoningEffort = effort
	s.mu.Unlock()
	return nil
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createdAt
}
