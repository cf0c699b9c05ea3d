package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/quiztutor/internal/llm"
	"github.com/abhisek/quiztutor/internal/store"
)

// Input is the learner context for one review.
type Input struct {
	Subject      string
	AvgScore     int
	RecentErrors []store.WrongAnswer
}

// Generator produces a phase review.
type Generator interface {
	Generate(ctx context.Context, in Input) (*Review, error)
}

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider    llm.Provider
	maxTokens   int
	temperature float64
}

// NewLLMGenerator creates a review generator backed by provider.
func NewLLMGenerator(provider llm.Provider) *LLMGenerator {
	return &LLMGenerator{provider: provider, maxTokens: 1500, temperature: 0.7}
}

// Generate asks the LLM for a review. The path type is always derived from
// the average score, whatever the model returns.
func (g *LLMGenerator) Generate(ctx context.Context, in Input) (*Review, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeReview)

	pathType := PathTypeFor(in.AvgScore)
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      fmt.Sprintf(systemPrompt, in.Subject),
		Messages:    llm.UserMessage(buildUserMessage(in, pathType)),
		Schema:      ReviewSchema,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM review failed: %w", err)
	}

	var r Review
	if err := json.Unmarshal(resp.Content, &r); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	if strings.TrimSpace(r.Gap) == "" {
		return nil, errors.New("review gap is empty")
	}
	r.PathType = pathType
	return &r, nil
}

const systemPrompt = `You are a learning path planner for %s. Analyze a student's recent mistakes and design a short personalized review.

Rules:
- Identify the single most important knowledge gap.
- Draw the recommended learning path as a Mermaid flowchart (graph TD).
- Pitch the material at the learner classification given.
- Give 2 to 4 practice exercises.`

func buildUserMessage(in Input, pathType string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Average score: %d/1000\n", in.AvgScore)
	fmt.Fprintf(&b, "Learner classification: %s\n", pathType)

	b.WriteString("\nRecent mistakes:\n")
	if len(in.RecentErrors) == 0 {
		b.WriteString("None")
		return b.String()
	}
	for i, w := range in.RecentErrors {
		fmt.Fprintf(&b, "%d. [%s] %s (answered %s, correct %s). Root cause: %s\n",
			i+1, w.Category, w.QuestionContent, w.StudentAnswer, w.CorrectAnswer, w.RootCause)
	}
	return strings.TrimRight(b.String(), "\n")
}
