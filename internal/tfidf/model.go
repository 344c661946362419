package tfidf

import (
	"math"

	"github.com/ronak0808/CDP-chatbot/pkg/utils"
)

// Vector is a dense weighted term distribution, one entry per vocabulary column.
type Vector []float64

// Norm returns the L2 norm of v.
func (v Vector) Norm() float64 {
	return utils.NormL2(v)
}

// IsZero reports whether every entry of v is zero.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// InverseDocumentFrequency returns one weight per vocabulary column:
// ln(N / (df + 1)) + 1, where N is len(docs) and df is the number of documents whose
// token set contains the column's term. The smoothing keeps weights finite and positive
// for every N >= 1, including terms with df = 0.
func InverseDocumentFrequency(docs [][]string, vocab *Vocabulary) []float64 {
	idf := make([]float64, vocab.Len())
	if len(docs) == 0 {
		return idf
	}
	df := make([]int, vocab.Len())
	for _, tokens := range docs {
		seen := make(map[int]struct{}, len(tokens))
		for _, tok := range tokens {
			i, ok := vocab.Index(tok)
			if !ok {
				continue
			}
			if _, dup := seen[i]; dup {
				continue
			}
			seen[i] = struct{}{}
			df[i]++
		}
	}
	n := float64(len(docs))
	for i := range idf {
		idf[i] = math.Log(n/float64(df[i]+1)) + 1
	}
	return idf
}

// Model is a vocabulary and its IDF weights, always derived together from one corpus.
// It is immutable and safe for concurrent use.
type Model struct {
	vocab *Vocabulary
	idf   []float64
	docs  int
}

// Fit builds the vocabulary and IDF weights of docs, where each document is a token sequence.
func Fit(docs [][]string) *Model {
	vocab := BuildVocabulary(docs)
	return &Model{
		vocab: vocab,
		idf:   InverseDocumentFrequency(docs, vocab),
		docs:  len(docs),
	}
}

// Vocabulary returns the model's vocabulary.
func (m *Model) Vocabulary() *Vocabulary {
	return m.vocab
}

// IDF returns a copy of the IDF weights in column order.
func (m *Model) IDF() []float64 {
	return append([]float64(nil), m.idf...)
}

// Dimensions returns the vector length produced by Vectorize.
func (m *Model) Dimensions() int {
	return m.vocab.Len()
}

// DocumentCount returns the number of documents the model was fitted on.
func (m *Model) DocumentCount() int {
	return m.docs
}

// Vectorize multiplies the term frequencies of tokens by the IDF weights and
// L2-normalizes the result. A vector with zero norm is returned as all zeros.
func (m *Model) Vectorize(tokens []string) Vector {
	v := m.vocab.TermFrequency(tokens)
	for i := range v {
		v[i] *= m.idf[i]
	}
	utils.NormalizeL2(v)
	return v
}
