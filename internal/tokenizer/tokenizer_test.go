package tokenizer_test

import (
	"testing"

	"github.com/ronak0808/CDP-chatbot/internal/tokenizer"
	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "  \n\t ", []string{}},
		{"lower-cases and drops stop words", "Getting Started guide for Segment", []string{"getting", "started", "guide", "segment"}},
		{"only stop words", "the a of", []string{}},
		{"punctuation dropped", "Hello, World! ... ???", []string{"hello", "world"}},
		{"numbers kept", "Track 42 events", []string{"track", "42", "events"}},
		{"duplicates preserved", "event event Event", []string{"event", "event", "event"}},
		{"non alphanumeric words dropped", "visit segment.com today", []string{"visit", "today"}},
		{"how-to question", "How do I create a source in Segment?", []string{"create", "source", "segment"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tokenizer.Tokenize(tt.text))
		})
	}
}

func TestTokenize_MalformedInput(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		tokenizer.Tokenize("caf\xc3\x28 \xff\xfe broken")
	})
}

func TestTokenizer_WithStopWords(t *testing.T) {
	t.Parallel()

	tok := tokenizer.New(tokenizer.WithStopWords("Segment"))

	assert.Equal(t, []string{"the", "guide"}, tok.Tokenize("the Segment guide"))
	assert.Equal(t, []string{"guide"}, tok.Tokenize("SEGMENT guide"))
}

func TestDefault_DropsEnglishStopWords(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"audience"}, tokenizer.Default().Tokenize("The audience"))
}
