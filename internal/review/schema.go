package review

import "github.com/abhisek/quiztutor/internal/llm"

func text(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

// ReviewSchema defines the JSON schema for phase review responses.
var ReviewSchema = &llm.Schema{
	Name:        "phase-review",
	Description: "A learning-path review built from a student's recent mistakes",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"gap":           text("The core knowledge gap behind the recent mistakes"),
			"mermaid_graph": text("A Mermaid flowchart of the recommended learning path"),
			"path_type":     text("The learner classification"),
			"content": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"video_script": text("A short explainer script"),
					"practices": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Targeted practice exercises",
					},
					"core_concept_clarification": text("Clarification of the misunderstood concept"),
					"methodology_summary":        text("A summary of how to approach this kind of problem"),
					"extension_q":                text("A follow-up question that extends the concept"),
					"application_case":           text("A real-world application of the concept"),
				},
				"required": []any{
					"video_script", "practices", "core_concept_clarification",
					"methodology_summary", "extension_q", "application_case",
				},
				"additionalProperties": false,
			},
		},
		"required":             []any{"gap", "mermaid_graph", "path_type", "content"},
		"additionalProperties": false,
	},
}
