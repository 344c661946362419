package models

import (
	"errors"
	"strings"
)

// DefaultMinScore is the similarity a hit must exceed to be returned.
const DefaultMinScore = 0.1

var (
	// ErrEmptyQuery is returned when the query text is empty or only whitespace.
	ErrEmptyQuery = errors.New("query cannot be empty")
	// ErrInvalidTopK is returned when top_k is not a positive integer.
	ErrInvalidTopK = errors.New("top_k must be positive")
	// ErrInvalidMinScore is returned when min_score is outside [0, 1].
	ErrInvalidMinScore = errors.New("min_score must be within [0, 1]")
	// ErrEmptyCollection is returned when no collection key is given.
	ErrEmptyCollection = errors.New("collection cannot be empty")
)

// SearchQuery is a search request against one collection.
// MinScore is a pointer so that an explicit 0 can be told apart from "use the default".
type SearchQuery struct {
	Query      string   `json:"query"`
	Collection string   `json:"collection"`
	TopK       int      `json:"top_k,omitempty"`
	MinScore   *float64 `json:"min_score,omitempty"`
}

// Validate checks the query against its declared constraints. It does not apply defaults;
// callers that accept an omitted top_k set it before validating.
func (q *SearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return ErrEmptyQuery
	}
	if q.Collection == "" {
		return ErrEmptyCollection
	}
	if q.TopK <= 0 {
		return ErrInvalidTopK
	}
	if q.MinScore != nil && (*q.MinScore < 0 || *q.MinScore > 1) {
		return ErrInvalidMinScore
	}
	return nil
}

// MinScoreOr returns the explicit min score, or def when none was given.
func (q *SearchQuery) MinScoreOr(def float64) float64 {
	if q.MinScore == nil {
		return def
	}
	return *q.MinScore
}

// IsInputError reports whether err is one of the query validation errors.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyQuery) ||
		errors.Is(err, ErrInvalidTopK) ||
		errors.Is(err, ErrInvalidMinScore) ||
		errors.Is(err, ErrEmptyCollection)
}
