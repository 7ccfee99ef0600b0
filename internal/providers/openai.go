package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/harborhq/harbor-backend/internal/logger"
	"github.com/harborhq/harbor-backend/internal/utils"
)

type openAIProvider struct {
	client *httpJSONClient
	model  string
}

func NewOpenAIProvider(log *logger.Logger) (ModelProvider, error) {
	apiKey := utils.GetEnv("OPENAI_API_KEY", "", nil)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com", log)
	model := utils.GetEnv("OPENAI_MODEL", "gpt-4o-mini", log)
	timeoutSec := utils.GetEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 60, log)
	maxRetries := utils.GetEnvAsInt("PROVIDER_MAX_RETRIES", 4, log)

	return &openAIProvider{
		client: &httpJSONClient{
			log:     log.With("provider", ProviderChatGPT),
			baseURL: baseURL,
			headers: map[string]string{
				"Authorization": "Bearer " + apiKey,
			},
			httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
			limiter:    limiterFor("OPENAI", log),
			maxRetries: maxRetries,
		},
		model: model,
	}, nil
}

func (p *openAIProvider) Name() string  { return ProviderChatGPT }
func (p *openAIProvider) Model() string { return p.model }

type openAIChatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *openAIProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
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
	if err := p.client.do(ctx, "POST", "/v1/chat/completions", req, &resp); err != nil {
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
