package questiongen

import (
	"fmt"
	"strings"
)

// Validator checks a generated question.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	Name() string
	Validate(q *Question, input GenerateInput) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator checks required fields and the difficulty range.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	if strings.TrimSpace(q.Content) == "" {
		return &ValidationError{Validator: v.Name(), Message: "content is empty"}
	}
	if len(q.Content) > 2000 {
		return &ValidationError{Validator: v.Name(), Message: "content exceeds 2000 characters"}
	}
	if strings.TrimSpace(q.Category) == "" {
		return &ValidationError{Validator: v.Name(), Message: "category is empty"}
	}
	if q.Difficulty < 1 || q.Difficulty > 5 {
		return &ValidationError{Validator: v.Name(), Message: "difficulty must be between 1 and 5"}
	}
	return nil
}

// OptionsValidator checks that exactly options A-D are present and that the
// correct answer names one of them.
type OptionsValidator struct{}

func (v *OptionsValidator) Name() string { return "options" }

func (v *OptionsValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	if len(q.Options) != len(OptionKeys) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected %d options, got %d", len(OptionKeys), len(q.Options)),
		}
	}
	for _, k := range OptionKeys {
		if strings.TrimSpace(q.Options[k]) == "" {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("option %s is missing", k)}
		}
	}
	if _, ok := q.Options[q.CorrectAnswer]; !ok {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("correct_answer %q is not an option letter", q.CorrectAnswer),
		}
	}
	return nil
}
