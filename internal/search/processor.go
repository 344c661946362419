package search

import (
	"github.com/ronak0808/CDP-chatbot/internal/config"
	"github.com/ronak0808/CDP-chatbot/internal/models"
)

// ProcessQuery validates the query and returns a copy with top_k capped at the
// configured maximum. The caller's query is left as it was.
func ProcessQuery(query *models.SearchQuery, cfg *config.SearchConfig) (models.SearchQuery, error) {
	if query == nil {
		return models.SearchQuery{}, models.ErrEmptyQuery
	}
	if err := query.Validate(); err != nil {
		return models.SearchQuery{}, err
	}
	processed := *query
	if cfg != nil && cfg.MaxTopK > 0 && processed.TopK > cfg.MaxTopK {
		processed.TopK = cfg.MaxTopK
	}
	return processed, nil
}
