package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/quiztutor/internal/llm"
)

// TopicCount is the number of topics requested per subject.
const TopicCount = 5

// ErrNoTopics is returned when the LLM suggests no usable topics.
var ErrNoTopics = errors.New("no topics generated")

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// Generate produces a single validated question for input.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestion)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      fmt.Sprintf(systemPrompt, input.Subject),
		Messages:    llm.UserMessage(buildUserMessage(input, g.config)),
		Schema:      QuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var q Question
	if err := json.Unmarshal(resp.Content, &q); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	normalize(&q)

	for _, v := range g.config.Validators {
		if verr := v.Validate(&q, input); verr != nil {
			return nil, verr
		}
	}

	return &q, nil
}

// Topics asks for TopicCount core topics of subject. Blank and duplicate
// entries are dropped and the list is cut to TopicCount.
func (g *LLMGenerator) Topics(ctx context.Context, subject string) ([]string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeTopics)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      topicsSystemPrompt,
		Messages:    llm.UserMessage(buildTopicsMessage(subject)),
		Schema:      TopicsSchema,
		MaxTokens:   200,
		Temperature: g.config.TopicTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM topic generation failed: %w", err)
	}

	var out struct {
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	seen := make(map[string]bool, len(out.Topics))
	topics := make([]string, 0, TopicCount)
	for _, t := range out.Topics {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		topics = append(topics, t)
		if len(topics) == TopicCount {
			break
		}
	}
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	return topics, nil
}

func normalize(q *Question) {
	q.Stage = strings.TrimSpace(q.Stage)
	q.Category = strings.TrimSpace(q.Category)
	q.Content = strings.TrimSpace(q.Content)
	q.CorrectAnswer = strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))

	opts := make(map[string]string, len(q.Options))
	for k, v := range q.Options {
		opts[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	q.Options = opts
}
