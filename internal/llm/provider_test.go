package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_Script(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockJSON(map[string]int{"b": 2}),
		MockResponse{Err: &ErrRateLimit{}},
	)
	ctx := context.Background()

	resp, err := mock.Generate(ctx, Request{System: "sys"})
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.Content) != `{"a":1}` || resp.Usage.InputTokens != 10 || resp.StopReason != StopEnd {
		t.Errorf("first reply = %+v", resp)
	}

	resp, err = mock.Generate(ctx, Request{})
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.Content) != `{"b":2}` {
		t.Errorf("second reply = %s", resp.Content)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &rl) {
		t.Errorf("third reply error = %T, want *ErrRateLimit", err)
	}

	var unavail *ErrProviderUnavailable
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &unavail) {
		t.Errorf("exhausted script error = %T, want *ErrProviderUnavailable", err)
	}

	if mock.CallCount() != 4 || mock.Pending() != 0 {
		t.Errorf("calls = %d, pending = %d", mock.CallCount(), mock.Pending())
	}
	if mock.Calls[0].System != "sys" {
		t.Errorf("recorded system = %q", mock.Calls[0].System)
	}
	if mock.ModelID() != "mock" {
		t.Errorf("ModelID = %q", mock.ModelID())
	}
}

func TestMockProvider_CancelledContext(t *testing.T) {
	mock := NewMockProvider(MockJSON(map[string]bool{"ok": true}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.Pending() != 1 {
		t.Errorf("cancelled call consumed a reply")
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("untagged purpose = %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, "")); p != "unknown" {
		t.Fatalf("empty purpose = %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, PurposeQuestion)); p != "question-gen" {
		t.Fatalf("purpose = %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "deepseek without key",
			cfg:     Config{Provider: "deepseek"},
			wantErr: true,
		},
		{
			name:    "deepseek with key",
			cfg:     Config{Provider: "deepseek", DeepSeek: DeepSeekConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openrouter without key",
			cfg:     Config{Provider: "openrouter"},
			wantErr: true,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
