package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/harborhq/harbor-backend/internal/logger"
	"github.com/harborhq/harbor-backend/internal/utils"
)

// The claude backend rides on the official SDK; retries and backoff are the
// SDK's, the per-attempt timeout and rate limit are ours.
type anthropicProvider struct {
	log     *logger.Logger
	client  anthropic.Client
	model   string
	limiter *rate.Limiter
	timeout time.Duration
}

func NewAnthropicProvider(log *logger.Logger) (ModelProvider, error) {
	apiKey := utils.GetEnv("ANTHROPIC_API_KEY", "", nil)
	if apiKey == "" {
		return nil, fmt.Errorf("missing ANTHROPIC_API_KEY")
	}
	model := utils.GetEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-20241022", log)
	timeoutSec := utils.GetEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 60, log)
	maxRetries := utils.GetEnvAsInt("PROVIDER_MAX_RETRIES", 4, log)

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(maxRetries),
	)

	return &anthropicProvider{
		log:     log.With("provider", ProviderClaude),
		client:  client,
		model:   model,
		limiter: limiterFor("ANTHROPIC", log),
		timeout: time.Duration(timeoutSec) * time.Second,
	}, nil
}

func (p *anthropicProvider) Name() string  { return ProviderClaude }
func (p *anthropicProvider) Model() string { return p.model }

func (p *anthropicProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Messages.New(callCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	return &Completion{
		Text:  text,
		Model: p.model,
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}
