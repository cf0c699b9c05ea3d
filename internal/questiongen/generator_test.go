package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/quiztutor/internal/llm"
)

func validQuestionJSON() json.RawMessage {
	return json.RawMessage(`{
		"stage": "Advanced Improvement",
		"category": " Loops ",
		"difficulty": 3,
		"content": "What does list(range(1, 4)) return?",
		"options": {"A": "[1, 2, 3]", "B": "[1, 2, 3, 4]", "C": "[0, 1, 2, 3]", "D": "[4]"},
		"correct_answer": " a "
	}`)
}

func TestGenerate_Valid(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuestionJSON()})
	gen := New(mock, DefaultConfig())

	q, err := gen.Generate(context.Background(), GenerateInput{
		Subject:      "Python Programming",
		Topic:        "Loops",
		Score:        500,
		RecentErrors: []string{"off by one in range", "while never terminates"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if q.CorrectAnswer != "A" {
		t.Errorf("CorrectAnswer = %q, want normalized %q", q.CorrectAnswer, "A")
	}
	if q.Category != "Loops" {
		t.Errorf("Category = %q, want trimmed", q.Category)
	}
	if q.Difficulty != 3 {
		t.Errorf("Difficulty = %d, want 3", q.Difficulty)
	}

	req := mock.Calls[0]
	if req.Schema != QuestionSchema {
		t.Error("request did not carry QuestionSchema")
	}
	if req.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", req.Temperature)
	}
	msg := req.Messages[0].Content
	for _, want := range []string{"Topic: Loops", "Stage: Advanced Improvement", "Difficulty range: 3-4", "1. off by one in range"} {
		if !strings.Contains(msg, want) {
			t.Errorf("user message missing %q:\n%s", want, msg)
		}
	}
}

func TestGenerate_NoTopicUsesWeakCategories(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuestionJSON()})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{
		Subject:        "Python Programming",
		Score:          120,
		WeakCategories: []string{"Recursion", "Closures"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	msg := mock.Calls[0].Messages[0].Content
	for _, want := range []string{"Weak categories", "2. Closures", "Stage: Basic Introduction"} {
		if !strings.Contains(msg, want) {
			t.Errorf("user message missing %q:\n%s", want, msg)
		}
	}
}

func TestGenerate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		validator string
	}{
		{
			"difficulty out of range",
			`{"stage":"s","category":"c","difficulty":7,"content":"q","options":{"A":"1","B":"2","C":"3","D":"4"},"correct_answer":"A"}`,
			"structural",
		},
		{
			"empty content",
			`{"stage":"s","category":"c","difficulty":2,"content":"  ","options":{"A":"1","B":"2","C":"3","D":"4"},"correct_answer":"A"}`,
			"structural",
		},
		{
			"three options",
			`{"stage":"s","category":"c","difficulty":2,"content":"q","options":{"A":"1","B":"2","C":"3"},"correct_answer":"A"}`,
			"options",
		},
		{
			"answer not a letter",
			`{"stage":"s","category":"c","difficulty":2,"content":"q","options":{"A":"1","B":"2","C":"3","D":"4"},"correct_answer":"E"}`,
			"options",
		},
	}

	for _, tt := range tests {
		mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.content)})
		gen := New(mock, DefaultConfig())

		_, err := gen.Generate(context.Background(), GenerateInput{Subject: "x", Score: 500})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: error = %v, want *ValidationError", tt.name, err)
			continue
		}
		if verr.Validator != tt.validator {
			t.Errorf("%s: validator = %q, want %q", tt.name, verr.Validator, tt.validator)
		}
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	gen := New(llm.NewMockProvider(), DefaultConfig())
	_, err := gen.Generate(context.Background(), GenerateInput{Subject: "x"})
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Errorf("error = %v, want wrapped ErrProviderUnavailable", err)
	}
}

func TestTopics(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"topics":["Variables"," Loops ","Loops","","Functions","Classes","Modules","Testing"]}`),
	})
	gen := New(mock, DefaultConfig())

	got, err := gen.Topics(context.Background(), "Python Programming")
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	want := []string{"Variables", "Loops", "Functions", "Classes", "Modules"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Topics = %v, want %v", got, want)
	}
	if mock.Calls[0].Temperature != 0.5 {
		t.Errorf("Temperature = %v, want 0.5", mock.Calls[0].Temperature)
	}
}

func TestTopics_Empty(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"topics":[" "]}`)})
	_, err := New(mock, DefaultConfig()).Topics(context.Background(), "x")
	if !errors.Is(err, ErrNoTopics) {
		t.Errorf("error = %v, want ErrNoTopics", err)
	}
}
