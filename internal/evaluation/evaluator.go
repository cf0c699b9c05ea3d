package evaluation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/abhisek/quiztutor/internal/llm"
)

// Input describes the answer to evaluate.
type Input struct {
	Subject       string
	Category      string
	Difficulty    int
	Content       string
	CorrectAnswer string
	StudentAnswer string
	Correct       bool
}

// Evaluator grades an answer. Implementations may fail; callers pass the
// error through Resolve.
type Evaluator interface {
	Evaluate(ctx context.Context, in Input) (Result, error)
}

// Config holds generation settings for the LLM evaluator.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   300,
		Temperature: 0.3,
	}
}

// LLMEvaluator asks the LLM for a base score change and feedback.
type LLMEvaluator struct {
	provider llm.Provider
	cfg      Config
}

// NewLLMEvaluator creates an evaluator backed by provider.
func NewLLMEvaluator(provider llm.Provider, cfg Config) *LLMEvaluator {
	return &LLMEvaluator{provider: provider, cfg: cfg}
}

// Evaluate grades in. Output that fails schema validation or decoding is
// returned as *ParseError.
func (e *LLMEvaluator) Evaluate(ctx context.Context, in Input) (Result, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeEvaluation)

	userMsg, err := buildEvaluationMessage(in)
	if err != nil {
		return Result{}, fmt.Errorf("build evaluation prompt: %w", err)
	}

	resp, err := e.provider.Generate(ctx, llm.Request{
		System:      fmt.Sprintf(evaluationSystemPrompt, in.Subject),
		Messages:    llm.UserMessage(userMsg),
		Schema:      EvaluationSchema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		if errors.As(err, &invalid) {
			return Result{}, &ParseError{Raw: string(invalid.Content), Err: err}
		}
		return Result{}, fmt.Errorf("LLM evaluation failed: %w", err)
	}

	return Parse(resp.Content)
}

const evaluationSystemPrompt = `You are a senior mentor in %s. Score a student's answer and give growth feedback.

Rules:
- Give only a base score change with magnitude between 10 and 20: positive when the answer is correct, negative when it is incorrect. Difficulty and mastery weighting are applied afterwards, do not account for them.
- Point out the root cause of the error, or the core of the knowledge point when correct.
- Give a specific method to improve or consolidate.`

var evaluationUserTemplate = template.Must(template.New("evaluation").Parse(`Knowledge point: {{.Category}}
Difficulty: {{.Difficulty}} (1-5)
Question: {{.Content}}
Correct answer: {{.CorrectAnswer}}

Student chose: {{.StudentAnswer}}
Result: {{if .Correct}}Correct{{else}}Incorrect{{end}}`))

func buildEvaluationMessage(in Input) (string, error) {
	var buf bytes.Buffer
	if err := evaluationUserTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}
