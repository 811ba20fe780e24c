package chat

import (
	"sort"
	"strings"

	"github.com/nongzhi-ai/nongzhi/pkg/provider/llm"
)

// Accumulator merges the streamed deltas of one completion round back into a
// complete assistant message. Providers hand text, reasoning, and tool-call
// fragments through in arrival order; the accumulator keys tool-call
// fragments by stream index, fixes ID and name on their first non-empty
// occurrence, and concatenates argument text. The reconstruction is invariant
// to how the provider happened to split the stream: one big chunk and many
// one-byte chunks produce identical results.
type Accumulator struct {
	text      strings.Builder
	reasoning strings.Builder
	calls     map[int]*partialCall
}

type partialCall struct {
	id   string
	name string
	args strings.Builder
}

// NewAccumulator returns an empty Accumulator for a single round.
func NewAccumulator() *Accumulator {
	return &Accumulator{calls: make(map[int]*partialCall)}
}

// Add folds one streamed chunk into the accumulated state.
func (a *Accumulator) Add(chunk llm.Chunk) {
	a.text.WriteString(chunk.Text)
	a.reasoning.WriteString(chunk.Reasoning)
	for _, d := range chunk.ToolCalls {
		pc, ok := a.calls[d.Index]
		if !ok {
			pc = &partialCall{}
			a.calls[d.Index] = pc
		}
		if pc.id == "" {
			pc.id = d.ID
		}
		if pc.name == "" {
			pc.name = d.Name
		}
		pc.args.WriteString(d.Arguments)
	}
}

// Text returns the accumulated visible content so far.
func (a *Accumulator) Text() string { return a.text.String() }

// Reasoning returns the accumulated reasoning content so far.
func (a *Accumulator) Reasoning() string { return a.reasoning.String() }

// ToolCalls finalizes the accumulated fragments into complete calls, ordered
// by ascending stream index. It returns nil when the round requested none.
func (a *Accumulator) ToolCalls() []llm.ToolCall {
	if len(a.calls) == 0 {
		return nil
	}
	indexes := make([]int, 0, len(a.calls))
	for i := range a.calls {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	out := make([]llm.ToolCall, 0, len(indexes))
	for _, i := range indexes {
		pc := a.calls[i]
		out = append(out, llm.ToolCall{
			ID:        pc.id,
			Name:      pc.name,
			Arguments: pc.args.String(),
		})
	}
	return out
}
