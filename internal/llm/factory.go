package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/quiztutor/internal/store"
)

// NewProvider builds the configured backend and wraps it as
// timeout(retry(logging(base))), so every attempt is recorded and the
// deadline covers all of them. The mock provider is returned bare.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo) (Provider, error) {
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}

	base, err := newBase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	p := WithLogging(base, cfg.Provider, events)
	p = WithRetry(p, cfg.Retry)
	return WithTimeout(p, cfg.Timeout), nil
}

func newBase(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "deepseek":
		return NewDeepSeekProvider(cfg.DeepSeek)
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		return NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		return NewOpenRouterProvider(cfg.OpenRouter)
	}
	return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
}

// NewProviderFromEnv uses ConfigFromEnv, or DiscoverConfig when that does
// not validate.
func NewProviderFromEnv(ctx context.Context, events store.EventRepo) (Provider, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		found, ok := DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = found
	}
	return NewProvider(ctx, cfg, events)
}
