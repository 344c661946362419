// Package tokenizer turns raw documentation text into normalized content tokens.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	bleveunicode "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// Tokenizer lower-cases text, splits it on Unicode word boundaries (UAX #29), and keeps
// only purely alphanumeric tokens that are not stop words. It is safe for concurrent use.
type Tokenizer struct {
	segmenter analysis.Tokenizer
	stopWords analysis.TokenMap
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithStopWords replaces the English stop-word list with words.
func WithStopWords(words ...string) Option {
	return func(t *Tokenizer) {
		m := analysis.NewTokenMap()
		for _, w := range words {
			m.AddToken(strings.ToLower(w))
		}
		t.stopWords = m
	}
}

// New returns a Tokenizer using bleve's English stop-word list unless overridden.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{
		segmenter: bleveunicode.NewUnicodeTokenizer(),
		stopWords: englishStopWords(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func englishStopWords() analysis.TokenMap {
	m := analysis.NewTokenMap()
	// The list is compiled into bleve; failing to parse it is a build defect.
	if err := m.LoadBytes(en.EnglishStopWords); err != nil {
		panic("tokenizer: load english stop words: " + err.Error())
	}
	return m
}

// Tokenize returns the content tokens of text in input order. Duplicates are kept
// because term frequency depends on them. Empty or malformed input yields an empty slice.
func (t *Tokenizer) Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}
	stream := t.segmenter.Tokenize([]byte(strings.ToLower(text)))
	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		term := string(tok.Term)
		if !isAlphanumeric(term) || t.isStopWord(term) {
			continue
		}
		tokens = append(tokens, term)
	}
	return tokens
}

// isStopWord reports whether the lower-cased word is in the stop-word set.
func (t *Tokenizer) isStopWord(word string) bool {
	return t.stopWords[strings.ToLower(word)]
}

// isAlphanumeric reports whether s is non-empty and every rune is a letter or a number.
func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

var defaultTokenizer = New()

// Tokenize tokenizes text with the shared English tokenizer.
func Tokenize(text string) []string {
	return defaultTokenizer.Tokenize(text)
}

// Default returns the shared English tokenizer.
func Default() *Tokenizer {
	return defaultTokenizer
}
