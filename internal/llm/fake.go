package llm

import (
	"context"
	"fmt"
	"sync"
)

// FakeCall records one invocation of the fake client.
type FakeCall struct {
	Method string
	Prompt string
	Tier   ModelTier
	Image  []byte
}

type fakeReply struct {
	text  string
	usage Usage
	err   error
}

// Fake is a scripted Client for tests. Replies are consumed in FIFO order
// regardless of which generation method is called.
type Fake struct {
	mu      sync.Mutex
	replies []fakeReply
	config  *Config

	// Calls records every invocation for assertions.
	Calls []FakeCall
}

// NewFake returns an empty scripted client.
func NewFake() *Fake {
	return &Fake{config: DefaultConfig()}
}

// Enqueue scripts a successful reply.
func (f *Fake) Enqueue(text string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, fakeReply{text: text, usage: Usage{InputTokens: 100, OutputTokens: 50}})
	return f
}

// EnqueueError scripts a failing reply.
func (f *Fake) EnqueueError(err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, fakeReply{err: err})
	return f
}

func (f *Fake) next(call FakeCall) (string, Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
	if len(f.replies) == 0 {
		return "", Usage{}, fmt.Errorf("fake llm: no scripted reply for %s call %d", call.Method, len(f.Calls))
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply.text, reply.usage, reply.err
}

// GenerateContent returns the next scripted reply.
func (f *Fake) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, Usage, error) {
	return f.next(FakeCall{Method: "GenerateContent", Prompt: prompt, Tier: tier})
}

// GenerateJSON returns the next scripted reply.
func (f *Fake) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, Usage, error) {
	return f.next(FakeCall{Method: "GenerateJSON", Prompt: prompt, Tier: tier})
}

// GenerateGroundedJSON returns the next scripted reply.
func (f *Fake) GenerateGroundedJSON(ctx context.Context, prompt string, tier ModelTier) (string, Usage, error) {
	return f.next(FakeCall{Method: "GenerateGroundedJSON", Prompt: prompt, Tier: tier})
}

// GenerateJSONWithImage returns the next scripted reply.
func (f *Fake) GenerateJSONWithImage(ctx context.Context, prompt string, image []byte, mimeType string, tier ModelTier) (string, Usage, error) {
	return f.next(FakeCall{Method: "GenerateJSONWithImage", Prompt: prompt, Tier: tier, Image: image})
}

// GetModel returns the configured model name for a tier.
func (f *Fake) GetModel(tier ModelTier) string { return f.config.GetModel(tier) }

// Close is a no-op.
func (f *Fake) Close() error { return nil }

var _ Client = (*Fake)(nil)
