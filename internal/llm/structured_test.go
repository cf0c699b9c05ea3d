package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-question",
		Description: "A test question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"category":       map[string]any{"type": "string"},
				"difficulty":     map[string]any{"type": "integer", "minimum": 1, "maximum": 5},
				"correct_answer": map[string]any{"type": "string", "enum": []any{"A", "B", "C", "D"}},
			},
			"required": []any{"category", "difficulty"},
		},
	}
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"category":"Loops","difficulty":3,"correct_answer":"A"}`, false},
		{"optional omitted", `{"category":"Loops","difficulty":1}`, false},
		{"missing required", `{"category":"Loops"}`, true},
		{"wrong type", `{"category":"Loops","difficulty":"hard"}`, true},
		{"out of range", `{"category":"Loops","difficulty":9}`, true},
		{"bad enum", `{"category":"Loops","difficulty":2,"correct_answer":"E"}`, true},
		{"not json", `{"category":`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateJSON(testSchema(), json.RawMessage(tt.raw))
			if tt.wantErr != (err != nil) {
				t.Fatalf("validateJSON(%s) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("error type = %T, want *ErrInvalidResponse", err)
				}
				if string(inv.Content) != tt.raw {
					t.Errorf("Content = %s, want %s", inv.Content, tt.raw)
				}
			}
		})
	}
}

func TestValidateJSON_NilSchema(t *testing.T) {
	if err := validateJSON(nil, json.RawMessage(`not json at all`)); err != nil {
		t.Fatalf("nil schema error = %v", err)
	}
}

func TestValidateJSON_ReviewShape(t *testing.T) {
	schema := &Schema{
		Name: "test-review",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"content": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"video_script": map[string]any{"type": "string"},
						"practices":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
					"required": []any{"video_script", "practices"},
				},
			},
			"required": []any{"content"},
		},
	}

	if err := validateJSON(schema, json.RawMessage(`{"content":{"video_script":"Loops repeat work.","practices":["q1"]}}`)); err != nil {
		t.Fatalf("valid review rejected: %v", err)
	}
	if err := validateJSON(schema, json.RawMessage(`{"content":{"video_script":"x","practices":[1]}}`)); err == nil {
		t.Fatal("numeric practice accepted")
	}
}

func TestFinish(t *testing.T) {
	usage := Usage{InputTokens: 3, OutputTokens: 4, TotalTokens: 7}

	t.Run("plain text passes through", func(t *testing.T) {
		resp, err := finish(Request{}, "hello", usage, "m", StopEnd)
		if err != nil {
			t.Fatal(err)
		}
		if string(resp.Content) != "hello" || resp.Model != "m" || resp.Usage != usage {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("schema extracts object", func(t *testing.T) {
		resp, err := finish(Request{Schema: testSchema()}, "Sure! {\"category\":\"Loops\",\"difficulty\":2} Done.", usage, "m", StopEnd)
		if err != nil {
			t.Fatal(err)
		}
		if string(resp.Content) != `{"category":"Loops","difficulty":2}` {
			t.Errorf("content = %s", resp.Content)
		}
	})

	t.Run("invalid at end is invalid response", func(t *testing.T) {
		_, err := finish(Request{Schema: testSchema()}, `{"category":"Loops"}`, usage, "m", StopEnd)
		var inv *ErrInvalidResponse
		if !errors.As(err, &inv) {
			t.Fatalf("error = %T, want *ErrInvalidResponse", err)
		}
	})

	t.Run("invalid at max tokens is truncation", func(t *testing.T) {
		_, err := finish(Request{Schema: testSchema()}, `{"category":"Lo`, usage, "m", StopMaxTokens)
		var trunc *ErrMaxTokensExceeded
		if !errors.As(err, &trunc) {
			t.Fatalf("error = %T, want *ErrMaxTokensExceeded", err)
		}
	})
}
