// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify that the orchestrator sends correct
// CompletionRequests and to feed controlled chunk streams without a live LLM
// backend. All fields are safe to set before calling any method; mutating them
// during a concurrent call is the caller's responsibility.
//
// Example:
//
//	p := &mock.Provider{
//	    Scripts: [][]llm.Chunk{
//	        {{Text: "你好"}, {FinishReason: "stop"}},
//	    },
//	}
package mock

import (
	"context"
	"sync"

	"github.com/nongzhi-ai/nongzhi/pkg/provider/llm"
)

// StreamCall records a single invocation of StreamCompletion.
type StreamCall struct {
	// Ctx is the context passed to StreamCompletion.
	Ctx context.Context
	// Req is the CompletionRequest passed to StreamCompletion.
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider.
//
// Each call to StreamCompletion consumes the next entry of Scripts; once the
// scripts are exhausted, further calls emit no chunks and close immediately.
// Set StreamErr to make every call fail before a channel is opened.
type Provider struct {
	mu sync.Mutex

	// Scripts holds one chunk sequence per expected StreamCompletion call, in
	// order. All chunks of the matching script are sent before the channel is
	// closed.
	Scripts [][]llm.Chunk

	// StreamErr, if non-nil, is returned as the error from StreamCompletion
	// instead of starting a channel.
	StreamErr error

	// ProviderName is returned by Name. Defaults to "mock" when empty.
	ProviderName string

	// StreamCalls records every invocation of StreamCompletion in order.
	StreamCalls []StreamCall

	calls int
}

// StreamCompletion records the call and returns a channel that emits the next
// script. If StreamErr is set, it returns nil, StreamErr without opening a
// channel.
func (p *Provider) StreamCompletion(ctx context.Context, req llm.CompletionRequest) (<-chan llm.Chunk, error) {
	p.mu.Lock()
	p.StreamCalls = append(p.StreamCalls, StreamCall{Ctx: ctx, Req: req})
	if p.StreamErr != nil {
		err := p.StreamErr
		p.mu.Unlock()
		return nil, err
	}
	var chunks []llm.Chunk
	if p.calls < len(p.Scripts) {
		chunks = make([]llm.Chunk, len(p.Scripts[p.calls]))
		copy(chunks, p.Scripts[p.calls])
	}
	p.calls++
	p.mu.Unlock()

	ch := make(chan llm.Chunk, len(chunks))
	go func() {
		defer close(ch)
		for _, c := range chunks {
			select {
			case <-ctx.Done():
				return
			case ch <- c:
			}
		}
	}()
	return ch, nil
}

// Name implements llm.Provider.
func (p *Provider) Name() string {
	if p.ProviderName == "" {
		return "mock"
	}
	return p.ProviderName
}

// Calls returns how many times StreamCompletion has been invoked.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
