package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the outermost JSON object out of a model reply. Models
// in json_object mode still occasionally wrap the object in a code fence or
// add a sentence before it. When no object is found the trimmed text is
// returned unchanged so validation reports the real content.
func ExtractJSON(text string) json.RawMessage {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return json.RawMessage(strings.TrimSpace(text))
	}
	return json.RawMessage(text[start : end+1])
}

// schemaInstruction renders the prompt suffix that carries a schema to
// providers without native structured output.
func schemaInstruction(schema *Schema) (string, error) {
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}

	var b strings.Builder
	b.WriteString("Respond with a single JSON object and nothing else. ")
	if schema.Description != "" {
		b.WriteString("The object is ")
		b.WriteString(strings.TrimSuffix(schema.Description, "."))
		b.WriteString(". ")
	}
	b.WriteString("It must conform to this JSON Schema:\n")
	b.Write(def)
	return b.String(), nil
}
