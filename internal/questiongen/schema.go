package questiongen

import "github.com/abhisek/quiztutor/internal/llm"

func optionProperty(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

// QuestionSchema defines the JSON schema for question generation responses.
var QuestionSchema = &llm.Schema{
	Name:        "quiz-question",
	Description: "A single multiple-choice question with four options",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"stage": map[string]any{
				"type":        "string",
				"description": "The learning stage the question targets",
			},
			"category": map[string]any{
				"type":        "string",
				"description": "The specific knowledge point tested",
			},
			"difficulty": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     5,
				"description": "Difficulty from 1 (easy) to 5 (hard)",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "The question text shown to the learner",
			},
			"options": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"A": optionProperty("Option A"),
					"B": optionProperty("Option B"),
					"C": optionProperty("Option C"),
					"D": optionProperty("Option D"),
				},
				"required":             []any{"A", "B", "C", "D"},
				"additionalProperties": false,
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"enum":        []any{"A", "B", "C", "D"},
				"description": "The letter of the correct option",
			},
		},
		"required":             []any{"stage", "category", "difficulty", "content", "options", "correct_answer"},
		"additionalProperties": false,
	},
}

// TopicsSchema defines the JSON schema for topic suggestions.
var TopicsSchema = &llm.Schema{
	Name:        "subject-topics",
	Description: "Core topics of a subject for learners to practice",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "string",
				},
				"description": "Exactly 5 core topic names",
			},
		},
		"required":             []any{"topics"},
		"additionalProperties": false,
	},
}
