// Package search answers free-text queries against one collection of the published index.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ronak0808/CDP-chatbot/internal/collection"
	"github.com/ronak0808/CDP-chatbot/internal/config"
	"github.com/ronak0808/CDP-chatbot/internal/models"
	"github.com/ronak0808/CDP-chatbot/internal/suggest"
	"github.com/ronak0808/CDP-chatbot/internal/vector"
)

// ErrComputation marks an internal failure while scoring a query. Search logs it and
// returns an empty result instead of surfacing it.
var ErrComputation = errors.New("search computation failed")

// SnapshotProvider supplies the index a query runs against.
type SnapshotProvider interface {
	Snapshot() *collection.Snapshot
}

// Engine runs TF-IDF cosine search.
type Engine struct {
	snapshots SnapshotProvider
	config    *config.SearchConfig
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a search engine over the snapshots published by snapshots.
// A nil cfg uses the defaults.
func NewEngine(snapshots SnapshotProvider, cfg *config.SearchConfig, opts ...Option) *Engine {
	if cfg == nil {
		var c config.Config
		config.ApplyDefaults(&c)
		cfg = &c.Search
	}
	e := &Engine{
		snapshots: snapshots,
		config:    cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search scores every section of the query's collection and returns at most TopK of them,
// best first, keeping only scores strictly above the minimum. An unknown collection or a
// query with no known terms yields an empty response.
func (e *Engine) Search(ctx context.Context, in *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	processed, err := ProcessQuery(in, e.config)
	if err != nil {
		return nil, err
	}
	query := &processed
	minScore := query.MinScoreOr(e.config.MinScoreOrDefault())

	snap := e.snapshots.Snapshot()
	response := &models.SearchResponse{
		Query:      query.Query,
		Collection: query.Collection,
		Results:    make([]*models.SearchResult, 0),
		Generation: snap.Generation,
	}

	c, ok := snap.Collection(query.Collection)
	if !ok || c.Vectors.Size() == 0 {
		e.logger.Debug("no documents for collection", zap.String("collection", query.Collection))
		response.QueryTime = time.Since(startTime).Milliseconds()
		return response, nil
	}

	hits, err := e.rank(ctx, snap, c, query.Query, query.TopK)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger.Error("search failed",
			zap.String("collection", query.Collection),
			zap.String("query", query.Query),
			zap.Error(err),
		)
		response.QueryTime = time.Since(startTime).Milliseconds()
		return response, nil
	}

	for _, hit := range hits {
		if hit.Score <= minScore {
			continue
		}
		sec := c.Sections[hit.Index]
		response.Results = append(response.Results, &models.SearchResult{
			Title:    sec.Title,
			Content:  sec.Content,
			Score:    hit.Score,
			Rank:     len(response.Results) + 1,
			Position: hit.Index,
		})
	}
	response.Total = len(response.Results)
	if response.Total == 0 {
		response.DidYouMean = suggestQuery(snap, query.Query)
	}
	response.QueryTime = time.Since(startTime).Milliseconds()
	return response, nil
}

// suggestQuery respells unknown query words against the snapshot vocabulary, or returns ""
// when there is nothing to correct.
func suggestQuery(snap *collection.Snapshot, text string) string {
	tokens := snap.Tokens(text)
	if len(tokens) == 0 {
		return ""
	}
	corrected, changed := suggest.New(snap.Model).Correct(tokens)
	if !changed {
		return ""
	}
	return corrected
}

// SearchContents returns the contents of the best matching sections using the configured
// minimum score.
func (e *Engine) SearchContents(ctx context.Context, query, key string, topK int) ([]string, error) {
	resp, err := e.Search(ctx, &models.SearchQuery{Query: query, Collection: key, TopK: topK})
	if err != nil {
		return nil, err
	}
	return resp.Contents(), nil
}

func (e *Engine) rank(ctx context.Context, snap *collection.Snapshot, c *collection.Collection, text string, topK int) (hits []vector.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrComputation, r)
		}
	}()
	q := snap.Vectorize(text)
	if q.IsZero() {
		return nil, nil
	}
	hits, err = c.Vectors.Search(ctx, q, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrComputation, err)
	}
	return hits, nil
}
