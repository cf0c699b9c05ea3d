package evaluation

import "github.com/abhisek/quiztutor/internal/llm"

// EvaluationSchema defines the JSON schema for LLM answer evaluations.
var EvaluationSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "Base score change and growth feedback for one student answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score_change": map[string]any{
				"type":        "integer",
				"minimum":     -MaxScoreChange,
				"maximum":     MaxScoreChange,
				"description": "Base score change between 10 and 20 in magnitude: positive when correct, negative when incorrect",
			},
			"root_cause": map[string]any{
				"type":        "string",
				"description": "Root cause of the error or the core point of the knowledge tested, at most 50 characters",
			},
			"improvement": map[string]any{
				"type":        "string",
				"description": "Concrete improvement or consolidation method, at most 50 characters",
			},
		},
		"required":             []any{"score_change", "root_cause", "improvement"},
		"additionalProperties": false,
	},
}
