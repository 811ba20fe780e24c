// Package chat implements the multi-round tool-calling conversation loop: it
// streams model completions, reassembles fragmented tool calls, executes them
// through the tool registry, and feeds results back to the model until it
// answers in plain text or the round limit is hit. Progress is pushed through
// a Sink so the SSE endpoint, the WebSocket endpoint, and the terminal REPL
// all observe the same event stream.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/nongzhi-ai/nongzhi/internal/observe"
	"github.com/nongzhi-ai/nongzhi/internal/session"
	"github.com/nongzhi-ai/nongzhi/internal/tool"
	"github.com/nongzhi-ai/nongzhi/pkg/provider/llm"
)

// DefaultMaxRounds caps the number of model rounds in one turn. A round is
// one streamed completion; tool calls trigger another round, so a runaway
// model cannot loop forever.
const DefaultMaxRounds = 10

// TurnStatus is the terminal state of a turn.
type TurnStatus string

const (
	// TurnDone means the model produced a final text answer.
	TurnDone TurnStatus = "done"

	// TurnRoundLimit means the round cap was reached while the model was
	// still requesting tools. Everything up to the cap is committed.
	TurnRoundLimit TurnStatus = "round_limit"

	// TurnFailed means the provider or the event sink failed. The partial
	// round is discarded; the transcript keeps only fully completed rounds.
	TurnFailed TurnStatus = "failed"
)

// TurnResult summarises a finished turn.
type TurnResult struct {
	Status TurnStatus
	Rounds int
}

// Config assembles an Orchestrator.
type Config struct {
	// Provider streams model completions.
	Provider llm.Provider

	// Registry holds the farm tools offered to the model.
	Registry *tool.Registry

	// Model is the default chat model.
	Model string

	// ReasoningModel is used instead of Model for sessions with reasoning
	// mode enabled. Empty means reasoning turns also use Model.
	ReasoningModel string

	// Temperature is forwarded to the provider. Zero means provider default.
	Temperature float64

	// MaxRounds caps rounds per turn. Zero means DefaultMaxRounds.
	MaxRounds int

	// Metrics receives turn instrumentation. Nil means the package-level
	// default instruments.
	Metrics *observe.Metrics
}

// Orchestrator drives complete chat turns against one provider and one tool
// registry. It is safe for concurrent use; per-session serialisation is
// enforced through the session's turn lock.
type Orchestrator struct {
	provider       llm.Provider
	registry       *tool.Registry
	model          string
	reasoningModel string
	temperature    float64
	maxRounds      int
	metrics        *observe.Metrics
}

// New creates an Orchestrator from cfg.
func New(cfg Config) *Orchestrator {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	return &Orchestrator{
		provider:       cfg.Provider,
		registry:       cfg.Registry,
		model:          cfg.Model,
		reasoningModel: cfg.ReasoningModel,
		temperature:    cfg.Temperature,
		maxRounds:      cfg.MaxRounds,
		metrics:        cfg.Metrics,
	}
}

// RunTurn executes one full user turn: it appends the user message, then runs
// model rounds until the model answers without tool calls, the round limit is
// reached, or something fails. The session's turn lock is held for the whole
// turn, so concurrent turns on the same session serialise while distinct
// sessions proceed independently.
//
// Events are pushed to sink in emission order. If sink returns an error
// (client gone), the in-flight round is abandoned and its partial output is
// not committed to the transcript.
func (o *Orchestrator) RunTurn(ctx context.Context, sess *session.Session, content string, sink Sink) (TurnResult, error) {
	sess.BeginTurn()
	defer sess.EndTurn()

	ctx, span := observe.StartSpan(ctx, "chat turn",
		trace.WithAttributes(observe.Attr("session_id", sess.ID)),
	)
	defer span.End()
	log := observe.Logger(ctx).With("session_id", sess.ID)

	if err := sess.Append(session.User(content)); err != nil {
		return TurnResult{Status: TurnFailed}, fmt.Errorf("chat: append user message: %w", err)
	}

	reasoning, effort := sess.Reasoning()
	model := o.model
	if reasoning && o.reasoningModel != "" {
		model = o.reasoningModel
	}

	rounds := 0
	for rounds < o.maxRounds {
		rounds++

		acc, err := o.streamRound(ctx, sess, model, reasoning, effort, sink)
		if err != nil {
			log.Error("round failed", "round", rounds, "error", err)
			o.metrics.RecordChatTurn(ctx, string(TurnFailed))
			_ = sink(Event{Kind: EventError, Data: ErrorPayload{Message: err.Error()}})
			return TurnResult{Status: TurnFailed, Rounds: rounds}, err
		}

		if r := acc.Reasoning(); r != "" {
			if err := sink(Event{Kind: EventReasoningDone, Data: ContentPayload{Content: r}}); err != nil {
				return TurnResult{Status: TurnFailed, Rounds: rounds}, err
			}
		}
		if txt := acc.Text(); txt != "" {
			if err := sink(Event{Kind: EventTextDone, Data: ContentPayload{Content: txt}}); err != nil {
				return TurnResult{Status: TurnFailed, Rounds: rounds}, err
			}
		}

		calls := normalizeCallIDs(acc.ToolCalls(), rounds)

		if len(calls) == 0 {
			// Final answer. A round with neither text nor tool calls is
			// legal; there is just nothing to commit.
			if acc.Text() != "" || acc.Reasoning() != "" {
				if err := sess.Append(session.Assistant(acc.Text(), acc.Reasoning(), nil)); err != nil {
					return TurnResult{Status: TurnFailed, Rounds: rounds}, fmt.Errorf("chat: append assistant message: %w", err)
				}
			}
			if err := sink(Event{Kind: EventRoundDone, Data: struct{}{}}); err != nil {
				return TurnResult{Status: TurnFailed, Rounds: rounds}, err
			}
			o.metrics.RecordChatTurn(ctx, string(TurnDone))
			if err := sink(Event{Kind: EventDone, Data: DonePayload{Rounds: rounds, ReasoningEnabled: reasoning}}); err != nil {
				return TurnResult{Status: TurnFailed, Rounds: rounds}, err
			}
			log.Info("turn completed", "rounds", rounds)
			return TurnResult{Status: TurnDone, Rounds: rounds}, nil
		}

		if err := sess.Append(session.Assistant(acc.Text(), acc.Reasoning(), calls)); err != nil {
			return TurnResult{Status: TurnFailed, Rounds: rounds}, fmt.Errorf("chat: append assistant message: %w", err)
		}

		if err := o.runTools(ctx, sess, calls, sink); err != nil {
			return TurnResult{Status: TurnFailed, Rounds: rounds}, err
		}

		if err := sink(Event{Kind: EventRoundDone, Data: struct{}{}}); err != nil {
			return TurnResult{Status: TurnFailed, Rounds: rounds}, err
		}
	}

	log.Warn("round limit reached", "rounds", rounds)
	o.metrics.RecordChatTurn(ctx, string(TurnRoundLimit))
	if err := sink(Event{Kind: EventDone, Data: DonePayload{Rounds: rounds, ReasoningEnabled: reasoning}}); err != nil {
		return TurnResult{Status: TurnFailed, Rounds: rounds}, err
	}
	return TurnResult{Status: TurnRoundLimit, Rounds: rounds}, nil
}

// streamRound runs one streamed completion, forwarding deltas to sink while
// accumulating the full message. The stream is cancelled and drained when the
// sink fails, so the provider goroutine never leaks.
func (o *Orchestrator) streamRound(ctx context.Context, sess *session.Session, model string, reasoning bool, effort string, sink Sink) (*Accumulator, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req := llm.CompletionRequest{
		Model:       model,
		Messages:    transcript(sess),
		Tools:       o.registry.Schemas(),
		Temperature: o.temperature,
	}
	if reasoning {
		req.ReasoningEffort = effort
	}

	start := time.Now()
	ch, err := o.provider.StreamCompletion(ctx, req)
	if err != nil {
		o.metrics.RecordProviderError(ctx, o.provider.Name(), model)
		return nil, fmt.Errorf("chat: start completion: %w", err)
	}

	acc := NewAccumulator()
	var streamErr, sinkErr error
	for chunk := range ch {
		if streamErr != nil || sinkErr != nil {
			continue // drain until closed
		}
		if chunk.FinishReason == llm.FinishError {
			streamErr = errors.New(chunk.Text)
			cancel()
			continue
		}
		acc.Add(chunk)
		if chunk.Reasoning != "" {
			if err := sink(Event{Kind: EventReasoningDelta, Data: ContentPayload{Content: chunk.Reasoning}}); err != nil {
				sinkErr = err
				cancel()
			}
		}
		if chunk.Text != "" {
			if err := sink(Event{Kind: EventTextDelta, Data: ContentPayload{Content: chunk.Text}}); err != nil {
				sinkErr = err
				cancel()
			}
		}
	}
	o.metrics.RoundDuration.Record(ctx, time.Since(start).Seconds())

	switch {
	case streamErr != nil:
		o.metrics.RecordProviderError(ctx, o.provider.Name(), model)
		return nil, fmt.Errorf("chat: completion stream: %w", streamErr)
	case sinkErr != nil:
		return nil, sinkErr
	}
	return acc, nil
}

// runTools executes the round's tool calls sequentially in stream order and
// commits one tool result message per call. Dispatch failures become error
// payloads in the transcript; they never abort the turn.
func (o *Orchestrator) runTools(ctx context.Context, sess *session.Session, calls []llm.ToolCall, sink Sink) error {
	for _, call := range calls {
		sess.RecordToolName(call.ID, call.Name)
		display := o.registry.DisplayName(call.Name)

		args, parseErr := parseArgs(call.Arguments)
		if err := sink(Event{Kind: EventToolStart, Data: ToolStartPayload{
			ID: call.ID, Name: call.Name, DisplayName: display, Args: args,
		}}); err != nil {
			return err
		}

		start := time.Now()
		var result any
		if parseErr != nil {
			result = tool.BadArguments(parseErr)
		} else {
			result = o.registry.Dispatch(ctx, call.Name, args)
		}
		o.metrics.ToolExecutionDuration.Record(ctx, time.Since(start).Seconds())

		status := "ok"
		if _, failed := result.(tool.ErrorPayload); failed {
			status = "error"
		}
		o.metrics.RecordToolCall(ctx, call.Name, status)

		encoded, err := json.Marshal(result)
		if err != nil {
			// The result came from our own registry; a marshal failure means a
			// handler returned something unserialisable.
			encoded, _ = json.Marshal(tool.ErrorPayload{
				Error: fmt.Sprintf("结果序列化失败: %v", err),
				Kind:  tool.FailureHandler,
			})
		}

		if err := sink(Event{Kind: EventToolDone, Data: ToolDonePayload{
			ID: call.ID, Name: call.Name, DisplayName: display, Result: result,
		}}); err != nil {
			return err
		}
		if err := sess.Append(session.ToolResult(call.ID, string(encoded))); err != nil {
			return fmt.Errorf("chat: append tool result: %w", err)
		}
	}
	return nil
}

// transcript snapshots the session as provider messages.
func transcript(sess *session.Session) []llm.Message {
	msgs := sess.Transcript()
	out := make([]llm.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.LLM()
	}
	return out
}

// parseArgs decodes the accumulated argument text. Some providers send an
// empty string for zero-argument tools, which counts as an empty object.
func parseArgs(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	return args, nil
}

// normalizeCallIDs fills in call IDs for providers that omit them, so tool
// result messages can always be paired with their originating call.
func normalizeCallIDs(calls []llm.ToolCall, round int) []llm.ToolCall {
	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = fmt.Sprintf("call-%d-%d", round, i)
		}
	}
	return calls
}
