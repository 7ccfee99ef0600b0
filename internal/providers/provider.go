package providers

import (
	"context"
	"strings"

	"golang.org/x/time/rate"

	"github.com/harborhq/harbor-backend/internal/logger"
	"github.com/harborhq/harbor-backend/internal/utils"
)

// The four backends every category prompt is dispatched to.
const (
	ProviderChatGPT    = "chatgpt"
	ProviderClaude     = "claude"
	ProviderGemini     = "gemini"
	ProviderPerplexity = "perplexity"
)

// Usage is the per-call token accounting reported by a provider. Zero values
// mean the provider did not report usage.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Completion is the raw text answer for one prompt from one model backend.
type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// ModelProvider submits a prompt and returns the free-text response. Each
// implementation owns its own auth, retries and per-call timeout; callers only
// need to bound the context.
type ModelProvider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, prompt string) (*Completion, error)
}

// NewRegistry builds the provider set from the environment. Providers with no
// configured API key are skipped with a warning so a partially-configured
// deployment still scans with the backends it has. With HARBOR_MOCK_PROVIDERS
// on, all four backends are served by canned mock responses instead.
func NewRegistry(log *logger.Logger) []ModelProvider {
	if mockEnabled() {
		log.Warn("HARBOR_MOCK_PROVIDERS enabled; using mock model providers")
		return []ModelProvider{
			NewMockProvider(ProviderChatGPT),
			NewMockProvider(ProviderClaude),
			NewMockProvider(ProviderGemini),
			NewMockProvider(ProviderPerplexity),
		}
	}

	out := make([]ModelProvider, 0, 4)

	if p, err := NewOpenAIProvider(log); err != nil {
		log.Warn("chatgpt provider unavailable", "error", err)
	} else {
		out = append(out, p)
	}
	if p, err := NewAnthropicProvider(log); err != nil {
		log.Warn("claude provider unavailable", "error", err)
	} else {
		out = append(out, p)
	}
	if p, err := NewGeminiProvider(log); err != nil {
		log.Warn("gemini provider unavailable", "error", err)
	} else {
		out = append(out, p)
	}
	if p, err := NewPerplexityProvider(log); err != nil {
		log.Warn("perplexity provider unavailable", "error", err)
	} else {
		out = append(out, p)
	}

	return out
}

func mockEnabled() bool {
	v := strings.TrimSpace(strings.ToLower(utils.GetEnv("HARBOR_MOCK_PROVIDERS", "", nil)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

// limiterFor builds a per-provider request limiter from <PREFIX>_RPM.
func limiterFor(envPrefix string, log *logger.Logger) *rate.Limiter {
	rpm := utils.GetEnvAsInt(envPrefix+"_RPM", 60, log)
	if rpm <= 0 {
		rpm = 60
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
}
