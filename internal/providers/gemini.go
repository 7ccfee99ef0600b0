package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/harborhq/harbor-backend/internal/logger"
	"github.com/harborhq/harbor-backend/internal/utils"
)

type geminiProvider struct {
	client *httpJSONClient
	model  string
}

func NewGeminiProvider(log *logger.Logger) (ModelProvider, error) {
	apiKey := utils.GetEnv("GEMINI_API_KEY", "", nil)
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	baseURL := utils.GetEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com", log)
	model := utils.GetEnv("GEMINI_MODEL", "gemini-2.0-flash", log)
	timeoutSec := utils.GetEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 60, log)
	maxRetries := utils.GetEnvAsInt("PROVIDER_MAX_RETRIES", 4, log)

	return &geminiProvider{
		client: &httpJSONClient{
			log:     log.With("provider", ProviderGemini),
			baseURL: baseURL,
			headers: map[string]string{
				"x-goog-api-key": apiKey,
			},
			httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
			limiter:    limiterFor("GEMINI", log),
			maxRetries: maxRetries,
		},
		model: model,
	}, nil
}

func (p *geminiProvider) Name() string  { return ProviderGemini }
func (p *geminiProvider) Model() string { return p.model }

type geminiRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (p *geminiProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	var req geminiRequest
	req.Contents = make([]struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	}, 1)
	req.Contents[0].Parts = append(req.Contents[0].Parts, struct {
		Text string `json:"text"`
	}{Text: prompt})

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", p.model)
	var resp geminiResponse
	if err := p.client.do(ctx, "POST", path, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		text += part.Text
	}
	return &Completion{
		Text:  text,
		Model: p.model,
		Usage: Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}
