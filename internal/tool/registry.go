// Package tool implements the farm tool registry: every capability offered to
// the model is registered here with its schema, a human-readable label, and a
// handler. Registration is explicit — the full tool set is assembled by a
// single call list at startup, never by import side effects.
package tool

import (
	"context"
	"fmt"
	"sync"

	"github.com/nongzhi-ai/nongzhi/pkg/provider/llm"
)

// Handler executes a tool with already-parsed arguments and returns a
// JSON-serializable result. A returned error is captured by Dispatch and
// turned into an error payload; it never crosses the registry boundary.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Definition is the registration input for one tool.
type Definition struct {
	// Name is the function name offered to the model.
	Name string

	// DisplayName is the human-readable label shown in transcripts and events.
	DisplayName string

	// Description tells the model what the tool does and when to use it.
	Description string

	// Parameters maps parameter name → JSON Schema fragment.
	Parameters map[string]any

	// Required lists the parameter names the model must supply.
	Required []string

	// Handler executes the tool.
	Handler Handler
}

// FailureKind classifies why a dispatch produced an error payload, so callers
// can branch on the kind without matching message strings.
type FailureKind string

const (
	// FailureUnknownTool means no tool with the requested name is registered.
	FailureUnknownTool FailureKind = "unknown_tool"

	// FailureBadArguments means the argument text could not be parsed; the
	// handler was never invoked.
	FailureBadArguments FailureKind = "bad_arguments"

	// FailureHandler means the handler itself returned an error or panicked.
	FailureHandler FailureKind = "handler_error"
)

// ErrorPayload is the structured result of a failed dispatch. It is returned
// in place of the handler result and fed back to the model, which sees the
// failure in its context on the next round and can self-correct.
type ErrorPayload struct {
	Error string      `json:"error"`
	Kind  FailureKind `json:"kind,omitempty"`
}

// BadArguments builds the error payload for unparseable argument text.
func BadArguments(err error) ErrorPayload {
	return ErrorPayload{
		Error: fmt.Sprintf("参数解析失败: %v", err),
		Kind:  FailureBadArguments,
	}
}

// Registry maps tool names to their definitions. Registration happens once at
// startup; Dispatch and the read accessors are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Definition
	order   []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Definition)}
}

// Register adds def. Registering a name twice silently overwrites the earlier
// entry — last registration wins.
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.entries[def.Name] = def
}

// Schemas returns the provider-facing definitions of all registered tools in
// registration order, for inclusion in every model request.
func (r *Registry) Schemas() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		def := r.entries[name]
		params := map[string]any{
			"type":       "object",
			"properties": def.Parameters,
		}
		if len(def.Required) > 0 {
			params["required"] = def.Required
		}
		out = append(out, llm.ToolDefinition{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  params,
		})
	}
	return out
}

// DisplayName returns the human label for name, falling back to the raw name
// when the tool is unknown or has no label.
func (r *Registry) DisplayName(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if def, ok := r.entries[name]; ok && def.DisplayName != "" {
		return def.DisplayName
	}
	return name
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Dispatch looks up name and executes its handler with args. It never panics
// and never returns a Go error across the boundary: unknown tools, handler
// errors, and handler panics all come back as an ErrorPayload so the
// orchestration loop can continue.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (result any) {
	r.mu.RLock()
	def, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return ErrorPayload{
			Error: fmt.Sprintf("未知工具: %s", name),
			Kind:  FailureUnknownTool,
		}
	}

	defer func() {
		if p := recover(); p != nil {
			result = ErrorPayload{
				Error: fmt.Sprintf("%v", p),
				Kind:  FailureHandler,
			}
		}
	}()

	res, err := def.Handler(ctx, args)
	if err != nil {
		return ErrorPayload{Error: err.Error(), Kind: FailureHandler}
	}
	return res
}
