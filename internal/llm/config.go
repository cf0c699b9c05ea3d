package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config selects and configures the LLM backend.
type Config struct {
	// Provider is one of deepseek, anthropic, openai, gemini, openrouter or mock.
	Provider string

	DeepSeek   DeepSeekConfig
	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

type DeepSeekConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for compatible APIs
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider:   "deepseek",
		DeepSeek:   DeepSeekConfig{Model: "deepseek-chat", BaseURL: defaultDeepSeekBaseURL},
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "deepseek/deepseek-chat"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 60 * time.Second,
	}
}

// providerVars binds one provider's settings to its environment variables.
// wellKnown is the vendor's documented key variable, used for discovery.
type providerVars struct {
	name      string
	wellKnown string
	key       *string
	model     *string
	baseURL   *string
}

// bindings lists providers in discovery order.
func (c *Config) bindings() []providerVars {
	return []providerVars{
		{"deepseek", "DEEPSEEK_API_KEY", &c.DeepSeek.APIKey, &c.DeepSeek.Model, &c.DeepSeek.BaseURL},
		{"gemini", "GEMINI_API_KEY", &c.Gemini.APIKey, &c.Gemini.Model, nil},
		{"openai", "OPENAI_API_KEY", &c.OpenAI.APIKey, &c.OpenAI.Model, &c.OpenAI.BaseURL},
		{"anthropic", "ANTHROPIC_API_KEY", &c.Anthropic.APIKey, &c.Anthropic.Model, nil},
		{"openrouter", "OPENROUTER_API_KEY", &c.OpenRouter.APIKey, &c.OpenRouter.Model, &c.OpenRouter.BaseURL},
	}
}

func envPrefix(provider string) string {
	return "QUIZTUTOR_" + strings.ToUpper(provider) + "_"
}

// ConfigFromEnv reads QUIZTUTOR_LLM_PROVIDER, QUIZTUTOR_LLM_TIMEOUT and
// QUIZTUTOR_<PROVIDER>_{API_KEY,MODEL,BASE_URL} over the defaults. The
// DeepSeek key also falls back to DEEPSEEK_API_KEY.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("QUIZTUTOR_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if d, err := time.ParseDuration(os.Getenv("QUIZTUTOR_LLM_TIMEOUT")); err == nil {
		cfg.Timeout = d
	}

	for _, b := range cfg.bindings() {
		prefix := envPrefix(b.name)
		setFromEnv(b.key, prefix+"API_KEY")
		setFromEnv(b.model, prefix+"MODEL")
		setFromEnv(b.baseURL, prefix+"BASE_URL")
	}
	if cfg.DeepSeek.APIKey == "" {
		cfg.DeepSeek.APIKey = os.Getenv("DEEPSEEK_API_KEY")
	}
	return cfg
}

// DiscoverConfig picks the first provider whose vendor key variable is set,
// in the order DeepSeek, Gemini, OpenAI, Anthropic, OpenRouter.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, b := range cfg.bindings() {
		if k := os.Getenv(b.wellKnown); k != "" {
			cfg.Provider = b.name
			*b.key = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	for _, b := range c.bindings() {
		if b.name != c.Provider {
			continue
		}
		if *b.key == "" {
			return fmt.Errorf("%sAPI_KEY is required for the %s provider", envPrefix(b.name), b.name)
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider: %q", c.Provider)
}

func setFromEnv(dst *string, key string) {
	if dst == nil {
		return
	}
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
