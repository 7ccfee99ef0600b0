package providers

import (
	"context"
	"fmt"
)

// mockProvider serves canned responses for local development and demos, so
// the full scan pipeline can run without any provider keys.
type mockProvider struct {
	name string
}

func NewMockProvider(name string) ModelProvider {
	return &mockProvider{name: name}
}

func (p *mockProvider) Name() string  { return p.name }
func (p *mockProvider) Model() string { return p.name + "-mock" }

func (p *mockProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := fmt.Sprintf(
		"Here are some popular options. %s There are also well-reviewed alternatives such as the Summit Gear Pro from NorthPeak.",
		prompt,
	)
	return &Completion{
		Text:  text,
		Model: p.Model(),
		Usage: Usage{InputTokens: int64(len(prompt) / 4), OutputTokens: int64(len(text) / 4)},
	}, nil
}
