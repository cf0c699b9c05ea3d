package llm

import (
	"context"
	"encoding/json"
)

// Provider is one LLM backend. Generate returns the model output; when the
// request carries a Schema the Content is a JSON object that passed
// validation against it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single-turn or multi-turn generation request.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks for structured JSON output. Providers use their
	// native mechanism where one exists and validate locally either way.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage is the common single-turn prompt.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Schema is a named JSON Schema. Name doubles as the tool or schema name
// sent to providers and as the compile cache key, so it must be unique per
// definition (e.g. "quiz-question").
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that actually served the call, which can differ
	// from ModelID when the API resolves aliases.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
