package llm

import "fmt"

const (
	defaultDeepSeekBaseURL   = "https://api.deepseek.com/v1"
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

var deepseekModels = map[string]string{
	"deepseek":          "deepseek-chat",
	"deepseek-chat":     "deepseek-chat",
	"deepseek-reasoner": "deepseek-reasoner",
}

// DeepSeekProvider targets the DeepSeek chat completions API. It speaks the
// OpenAI protocol but only offers json_object output, so the schema rides in
// the system prompt and the reply is validated locally.
type DeepSeekProvider struct {
	*OpenAIProvider
}

func NewDeepSeekProvider(cfg DeepSeekConfig) (*DeepSeekProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepseek API key is required")
	}
	base := orDefault(cfg.BaseURL, defaultDeepSeekBaseURL)
	model := resolveModel(cfg.Model, deepseekModels)
	return &DeepSeekProvider{OpenAIProvider: newOpenAICompatible(cfg.APIKey, base, model, true)}, nil
}

// OpenRouterProvider routes to whatever model ID is configured. Not every
// routed model honors json_schema, so it uses json_object like DeepSeek.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	base := orDefault(cfg.BaseURL, defaultOpenRouterBaseURL)
	return &OpenRouterProvider{OpenAIProvider: newOpenAICompatible(cfg.APIKey, base, cfg.Model, true)}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
