// Package suggest proposes vocabulary terms for query words the index does not know.
package suggest

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ronak0808/CDP-chatbot/internal/tfidf"
)

// Suggestion is a vocabulary term close to a misspelled word.
type Suggestion struct {
	Term     string
	Distance int
	// IDF of the term; lower means the term appears in more sections.
	IDF float64
}

// Suggester finds near matches in a fitted model's vocabulary.
type Suggester struct {
	model          *tfidf.Model
	idf            []float64
	maxDistance    int
	maxSuggestions int
}

// Option configures a Suggester.
type Option func(*Suggester)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) Option {
	return func(s *Suggester) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMaxSuggestions sets the maximum number of suggestions returned per term.
func WithMaxSuggestions(n int) Option {
	return func(s *Suggester) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// New creates a Suggester over model's vocabulary.
func New(model *tfidf.Model, opts ...Option) *Suggester {
	s := &Suggester{
		model:          model,
		idf:            model.IDF(),
		maxDistance:    2,
		maxSuggestions: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Known reports whether term is in the vocabulary.
func (s *Suggester) Known(term string) bool {
	_, ok := s.model.Vocabulary().Index(term)
	return ok
}

// Suggest returns vocabulary terms within the edit budget of term, closest first, then most
// common, then alphabetical. Words of four runes or fewer allow a single edit.
func (s *Suggester) Suggest(term string) []Suggestion {
	term = strings.ToLower(term)
	n := utf8.RuneCountInString(term)
	budget := s.maxDistance
	if n <= 4 {
		budget = 1
	}

	var out []Suggestion
	vocab := s.model.Vocabulary()
	for i, candidate := range vocab.Terms() {
		if candidate == term {
			continue
		}
		diff := utf8.RuneCountInString(candidate) - n
		if diff > budget || -diff > budget {
			continue
		}
		if d := DamerauLevenshteinDistance(term, candidate); d <= budget {
			out = append(out, Suggestion{Term: candidate, Distance: d, IDF: s.idf[i]})
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Distance != out[b].Distance {
			return out[a].Distance < out[b].Distance
		}
		if out[a].IDF != out[b].IDF {
			return out[a].IDF < out[b].IDF
		}
		return out[a].Term < out[b].Term
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out
}

// Correct replaces every unknown token with its best suggestion and joins the result with
// spaces. It reports false when no token was replaced.
func (s *Suggester) Correct(tokens []string) (string, bool) {
	corrected := make([]string, len(tokens))
	changed := false
	for i, tok := range tokens {
		corrected[i] = tok
		if s.Known(tok) {
			continue
		}
		if sugg := s.Suggest(tok); len(sugg) > 0 {
			corrected[i] = sugg[0].Term
			changed = true
		}
	}
	return strings.Join(corrected, " "), changed
}
