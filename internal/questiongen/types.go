// Package questiongen asks the LLM for multiple-choice questions pitched at
// the learner's current mastery, and for topic suggestions.
package questiongen

import "context"

// OptionKeys are the four option letters every question carries.
var OptionKeys = []string{"A", "B", "C", "D"}

// Question is a validated multiple-choice question.
type Question struct {
	Stage         string            `json:"stage"`
	Category      string            `json:"category"`
	Difficulty    int               `json:"difficulty"`
	Content       string            `json:"content"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
}

// GenerateInput is the learner context for one question.
type GenerateInput struct {
	Subject string
	// Topic is optional. When empty the question targets WeakCategories.
	Topic string
	// Score is the mastery score the question is pitched at.
	Score int
	// RecentErrors are summaries of the learner's recent mistakes on Topic,
	// newest first.
	RecentErrors   []string
	WeakCategories []string
}

// Generator produces questions and topic lists.
type Generator interface {
	Generate(ctx context.Context, input GenerateInput) (*Question, error)
	Topics(ctx context.Context, subject string) ([]string, error)
}
