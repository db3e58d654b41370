package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_MarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestCleanJSONBlock_PreambleText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "preamble before JSON object",
			input:    "As requested, here is the JSON:\n{\"target_keyword\": \"beef stew\"}",
			expected: `{"target_keyword": "beef stew"}`,
		},
		{
			name:     "preamble before JSON array",
			input:    "Here are the selected URLs:\n[\"https://a.example/x\"]",
			expected: `["https://a.example/x"]`,
		},
		{
			name:     "JSON with trailing text",
			input:    "{\"key\": \"value\"}\n\nLet me know if you need anything else!",
			expected: `{"key": "value"}`,
		},
		{
			name:     "JSON with escaped quotes",
			input:    "Result: {\"summary\": \"a \\\"glazed\\\" loin\"}",
			expected: `{"summary": "a \"glazed\" loin"}`,
		},
		{
			name:     "braces inside string values",
			input:    "Output: {\"html\": \"<p>{not a brace}</p>\"}",
			expected: `{"html": "<p>{not a brace}</p>"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONValue(t *testing.T) {
	assert.Equal(t, `{"a": {"b": "c"}}`, ExtractJSONValue(`noise {"a": {"b": "c"}} more noise`))
	assert.Equal(t, `["x", "y"]`, ExtractJSONValue(`list: ["x", "y"] done`))
	assert.Equal(t, "", ExtractJSONValue("no json here"))
	assert.Equal(t, "", ExtractJSONValue(`{"unterminated": `))
}
