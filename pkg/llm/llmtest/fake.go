// Package llmtest provides an in-memory llm.LLMProvider for tests.
package llmtest

import (
	"context"
	"sync"
	"time"

	"datasense-be/pkg/llm"
)

// Call records one request seen by the fake.
type Call struct {
	History []llm.Message
	Options llm.Options
}

// FakeProvider returns Response or Err after Delay, recording every call.
type FakeProvider struct {
	Response string
	Err      error
	Delay    time.Duration
	// Respond, when set, overrides Response and Err.
	Respond func(history []llm.Message, opts llm.Options) (string, error)

	mu    sync.Mutex
	calls []Call
}

func (f *FakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(options...)

	f.mu.Lock()
	f.calls = append(f.calls, Call{History: append([]llm.Message(nil), history...), Options: opts})
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if f.Respond != nil {
		return f.Respond(history, opts)
	}
	return f.Response, f.Err
}

func (f *FakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func (f *FakeProvider) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
