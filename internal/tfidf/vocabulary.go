// Package tfidf builds a term-frequency / inverse-document-frequency vector space
// over tokenized documents.
package tfidf

import "sort"

// Vocabulary maps each distinct token of a corpus to a column index. Columns are
// assigned in lexicographic order so identical input always yields identical indices.
// A Vocabulary is immutable once built.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// BuildVocabulary takes the set union of all token sequences in docs.
// An empty corpus yields a vocabulary of size 0.
func BuildVocabulary(docs [][]string) *Vocabulary {
	seen := make(map[string]struct{})
	for _, tokens := range docs {
		for _, tok := range tokens {
			seen[tok] = struct{}{}
		}
	}
	terms := make([]string, 0, len(seen))
	for tok := range seen {
		terms = append(terms, tok)
	}
	sort.Strings(terms)
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}
	return &Vocabulary{terms: terms, index: index}
}

// Len returns the number of columns.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Index returns the column of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Terms returns a copy of the terms in column order.
func (v *Vocabulary) Terms() []string {
	return append([]string(nil), v.terms...)
}

// TermFrequency returns the raw count vector of tokens: one entry per column, equal to
// the number of occurrences of that column's term. Tokens outside the vocabulary are ignored.
func (v *Vocabulary) TermFrequency(tokens []string) Vector {
	tf := make(Vector, len(v.terms))
	for _, tok := range tokens {
		if i, ok := v.index[tok]; ok {
			tf[i]++
		}
	}
	return tf
}
