package collection

import (
	"sort"
	"time"

	"github.com/ronak0808/CDP-chatbot/internal/models"
	"github.com/ronak0808/CDP-chatbot/internal/tfidf"
	"github.com/ronak0808/CDP-chatbot/internal/tokenizer"
	"github.com/ronak0808/CDP-chatbot/internal/vector"
)

// Collection is one keyed partition of a snapshot. Vectors row i belongs to Sections[i].
type Collection struct {
	Key         string
	Sections    []models.Section
	Vectors     *vector.Matrix
	Fingerprint uint64
}

// Snapshot is an immutable, fully built index: one model fitted over the pooled sections of
// every loaded collection and each collection's vectors under that model.
type Snapshot struct {
	Generation  string
	BuiltAt     time.Time
	Model       *tfidf.Model
	tokenizer   *tokenizer.Tokenizer
	collections map[string]*Collection
}

func emptySnapshot(tok *tokenizer.Tokenizer) *Snapshot {
	return &Snapshot{
		Model:       tfidf.Fit(nil),
		tokenizer:   tok,
		collections: map[string]*Collection{},
	}
}

// Collection returns the collection stored under key.
func (s *Snapshot) Collection(key string) (*Collection, bool) {
	c, ok := s.collections[key]
	return c, ok
}

// Keys returns the collection keys in ascending order.
func (s *Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.collections))
	for k := range s.collections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SectionCount returns the number of sections across all collections.
func (s *Snapshot) SectionCount() int {
	return s.Model.DocumentCount()
}

// Tokens returns the normalized content tokens of text.
func (s *Snapshot) Tokens(text string) []string {
	return s.tokenizer.Tokenize(text)
}

// Vectorize tokenizes text and projects it into this snapshot's vector space.
func (s *Snapshot) Vectorize(text string) tfidf.Vector {
	return s.Model.Vectorize(s.tokenizer.Tokenize(text))
}
