package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/harborhq/harbor-backend/internal/logger"
	"github.com/harborhq/harbor-backend/internal/utils"
)

// Perplexity exposes an OpenAI-compatible chat completions API, so the
// request/response shapes are shared with the chatgpt provider.
type perplexityProvider struct {
	client *httpJSONClient
	model  string
}

func NewPerplexityProvider(log *logger.Logger) (ModelProvider, error) {
	apiKey := utils.GetEnv("PERPLEXITY_API_KEY", "", nil)
	if apiKey == "" {
		return nil, fmt.Errorf("missing PERPLEXITY_API_KEY")
	}
	baseURL := utils.GetEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai", log)
	model := utils.GetEnv("PERPLEXITY_MODEL", "sonar", log)
	timeoutSec := utils.GetEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 60, log)
	maxRetries := utils.GetEnvAsInt("PROVIDER_MAX_RETRIES", 4, log)

	return &perplexityProvider{
		client: &httpJSONClient{
			log:     log.With("provider", ProviderPerplexity),
			baseURL: baseURL,
			headers: map[string]string{
				"Authorization": "Bearer " + apiKey,
			},
			httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
			limiter:    limiterFor("PERPLEXITY", log),
			maxRetries: maxRetries,
		},
		model: model,
	}, nil
}

func (p *perplexityProvider) Name() string  { return ProviderPerplexity }
func (p *perplexityProvider) Model() string { return p.model }

func (p *perplexityProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	req := openAIChatRequest{
		Model: p.model,
		Messages: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	}

	var resp openAIChatResponse
	if err := p.client.do(ctx, "POST", "/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	return &Completion{
		Text:  resp.Choices[0].Message.Content,
		Model: p.model,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
