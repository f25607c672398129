package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONContent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "чистый JSON без обертки",
			input:    `{"events": [{"type": "deal"}]}`,
			expected: `{"events": [{"type": "deal"}]}`,
		},
		{
			name:     "блок с меткой json",
			input:    "Here you go:\n```json\n{\"name\": \"The Circle\"}\n```\nHope that helps!",
			expected: `{"name": "The Circle"}`,
		},
		{
			name:     "блок без метки",
			input:    "```\n[1, 2, 3]\n```",
			expected: `[1, 2, 3]`,
		},
		{
			name:     "JSON внутри болтовни без блоков",
			input:    `Sure! The answer is {"outcome": "YES"} as requested.`,
			expected: `{"outcome": "YES"}`,
		},
		{
			name:     "массив внутри текста",
			input:    `Rankings: [{"questionId": "q1", "rank": 1}] done`,
			expected: `[{"questionId": "q1", "rank": 1}]`,
		},
		{
			name:     "оборванный объект добалансируется",
			input:    `{"groupId": "g1", "messages": [1, 2`,
			expected: `{"groupId": "g1", "messages": [1, 2]}`,
		},
		{
			name:     "совсем не JSON",
			input:    "I cannot do that.",
			expected: "",
		},
		{
			name:     "пустая строка",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJSONContent(tt.input))
		})
	}
}

func TestBalanceBrackets(t *testing.T) {
	t.Run("скобки в строковых литералах не считаются", func(t *testing.T) {
		in := `{"text": "smile }} and [brackets]", "n": 1`
		out := balanceBrackets(in)
		assert.True(t, isValidJSON(out), "got: %s", out)
	})

	t.Run("экранированные кавычки не ломают подсчет", func(t *testing.T) {
		in := `{"text": "she said \"hi {\"", "arr": [1, 2`
		out := balanceBrackets(in)
		assert.True(t, isValidJSON(out), "got: %s", out)
	})

	t.Run("сбалансированный текст не меняется", func(t *testing.T) {
		in := `{"ok": true}`
		assert.Equal(t, in, balanceBrackets(in))
	})
}
