package models

// SearchResult is a single ranked section.
type SearchResult struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
	Rank    int     `json:"rank"`
	// Position is the section's index within its collection.
	Position int `json:"position"`
}

// SearchResponse is the response for a search request. An unknown collection or a
// query with no recognized terms yields an empty Results slice, not an error.
type SearchResponse struct {
	Query      string          `json:"query"`
	Collection string          `json:"collection"`
	Results    []*SearchResult `json:"results"`
	Total      int             `json:"total"`
	QueryTime  int64           `json:"query_time_ms"`
	Generation string          `json:"generation,omitempty"`
	// DidYouMean is a respelled query, set only when nothing matched and some query
	// words are not in the index vocabulary.
	DidYouMean string `json:"did_you_mean,omitempty"`
}

// Contents returns the content strings of the results in rank order.
func (r *SearchResponse) Contents() []string {
	out := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Content)
	}
	return out
}
