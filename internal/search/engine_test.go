package search_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ronak0808/CDP-chatbot/internal/collection"
	"github.com/ronak0808/CDP-chatbot/internal/config"
	"github.com/ronak0808/CDP-chatbot/internal/models"
	"github.com/ronak0808/CDP-chatbot/internal/search"
	"github.com/ronak0808/CDP-chatbot/internal/storage"
	"github.com/ronak0808/CDP-chatbot/internal/vector"
)

func newTestEngine(t *testing.T, docs map[string][]models.Section) (*search.Engine, *collection.Store) {
	t.Helper()
	ctx := context.Background()
	src, err := storage.NewJSONSource(t.TempDir())
	require.NoError(t, err)
	keys := make([]string, 0, len(docs))
	for key, sections := range docs {
		require.NoError(t, src.PersistSections(ctx, key, sections))
		keys = append(keys, key)
	}
	store, err := collection.NewStore(src, collection.WithWorkers(2))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.LoadAll(ctx, keys))
	return search.NewEngine(store, nil), store
}

func sampleDocs() map[string][]models.Section {
	return map[string][]models.Section{
		"segment": {
			{Title: "Sources", Content: "To create a source in Segment, open the workspace and add a source."},
			{Title: "Destinations", Content: "Destinations receive data that a source sends to Segment."},
			{Title: "Tracking plans", Content: "A tracking plan validates events before they reach destinations."},
			{Title: "Warehouses", Content: "Warehouses store raw event data for analysis."},
		},
		"mparticle": {
			{Title: "Audiences", Content: "Build an audience in mParticle using the audience builder."},
			{Title: "Kits", Content: "Kits forward events to partner integrations."},
		},
	}
}

func TestSearch_GettingStarted(t *testing.T) {
	engine, _ := newTestEngine(t, map[string][]models.Section{
		"segment": {{Title: "Intro", Content: "Getting Started guide for Segment"}},
	})
	got, err := engine.SearchContents(context.Background(), "getting started", "segment", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Getting Started guide for Segment"}, got)
}

func TestSearch_PlaceholderCollection(t *testing.T) {
	engine, store := newTestEngine(t, map[string][]models.Section{"lytics": {}})
	require.Equal(t, 1, store.DocumentCount("lytics"))
	ctx := context.Background()

	got, err := engine.SearchContents(ctx, "warehouse schema migration", "lytics", 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = engine.SearchContents(ctx, "lytics documentation", "lytics", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Welcome to Lytics documentation."}, got)
}

func TestSearch_StopWordsOnly(t *testing.T) {
	engine, _ := newTestEngine(t, sampleDocs())
	for _, key := range []string{"segment", "mparticle"} {
		resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "the a of", Collection: key, TopK: 3})
		require.NoError(t, err)
		assert.Empty(t, resp.Results, key)
		assert.Equal(t, 0, resp.Total)
	}
}

func TestSearch_OrderingAndLimits(t *testing.T) {
	engine, _ := newTestEngine(t, sampleDocs())
	ctx := context.Background()

	for _, k := range []int{1, 2, 3, 10} {
		resp, err := engine.Search(ctx, &models.SearchQuery{Query: "source destinations events", Collection: "segment", TopK: k})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(resp.Results), k)
		for i, r := range resp.Results {
			assert.Greater(t, r.Score, models.DefaultMinScore)
			assert.Equal(t, i+1, r.Rank)
			if i > 0 {
				assert.GreaterOrEqual(t, resp.Results[i-1].Score, r.Score)
			}
		}
	}

	resp, err := engine.Search(ctx, &models.SearchQuery{Query: "create a source", Collection: "segment", TopK: 3})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "Sources", resp.Results[0].Title)
	assert.Equal(t, 0, resp.Results[0].Position)
	assert.NotEmpty(t, resp.Generation)
}

func TestSearch_MinScore(t *testing.T) {
	engine, _ := newTestEngine(t, sampleDocs())
	ctx := context.Background()

	zero := 0.0
	loose, err := engine.Search(ctx, &models.SearchQuery{Query: "events", Collection: "segment", TopK: 10, MinScore: &zero})
	require.NoError(t, err)
	require.NotEmpty(t, loose.Results)

	one := 1.0
	strict, err := engine.Search(ctx, &models.SearchQuery{Query: "events", Collection: "segment", TopK: 10, MinScore: &one})
	require.NoError(t, err)
	assert.Empty(t, strict.Results)
}

func TestSearch_UnknownCollection(t *testing.T) {
	engine, _ := newTestEngine(t, sampleDocs())
	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "source", Collection: "zeotap", TopK: 3})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, "zeotap", resp.Collection)
}

func TestSearch_InputErrors(t *testing.T) {
	engine, _ := newTestEngine(t, sampleDocs())
	ctx := context.Background()
	bad := 2.0

	tests := []struct {
		name  string
		query *models.SearchQuery
		want  error
	}{
		{"nil query", nil, models.ErrEmptyQuery},
		{"empty query", &models.SearchQuery{Collection: "segment", TopK: 3}, models.ErrEmptyQuery},
		{"zero top_k", &models.SearchQuery{Query: "source", Collection: "segment"}, models.ErrInvalidTopK},
		{"negative top_k", &models.SearchQuery{Query: "source", Collection: "segment", TopK: -2}, models.ErrInvalidTopK},
		{"min score out of range", &models.SearchQuery{Query: "source", Collection: "segment", TopK: 3, MinScore: &bad}, models.ErrInvalidMinScore},
		{"missing collection", &models.SearchQuery{Query: "source", TopK: 3}, models.ErrEmptyCollection},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Search(ctx, tt.query)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, models.IsInputError(err))
		})
	}
}

func TestSearch_TopKCappedAtMax(t *testing.T) {
	_, store := newTestEngine(t, sampleDocs())
	cfg := &config.SearchConfig{MaxTopK: 1}
	engine := search.NewEngine(store, cfg)
	zero := 0.0
	q := &models.SearchQuery{Query: "source destinations", Collection: "segment", TopK: 10, MinScore: &zero}
	resp, err := engine.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, 10, q.TopK, "caller's query must not be modified")
}

func TestSearch_ComputationErrorDegradesToEmpty(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	_, store := newTestEngine(t, sampleDocs())
	engine := search.NewEngine(store, nil, search.WithLogger(zap.New(core)))

	// Replace the collection's vectors with rows one column wider than the model.
	snap := store.Snapshot()
	c, ok := snap.Collection("segment")
	require.True(t, ok)
	width := snap.Model.Dimensions() + 1
	rows := make([][]float64, c.Vectors.Size())
	for i := range rows {
		rows[i] = make([]float64, width)
	}
	c.Vectors, _ = vector.NewMatrix(width, rows)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "source", Collection: "segment", TopK: 3})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.Total)

	entries := logs.FilterMessage("search failed").All()
	require.Len(t, entries, 1)
	logged, ok := entries[0].ContextMap()["error"].(string)
	require.True(t, ok)
	assert.Contains(t, logged, search.ErrComputation.Error())
	assert.Contains(t, logged, vector.ErrDimensionMismatch.Error())
}

func TestSearch_Canceled(t *testing.T) {
	engine, _ := newTestEngine(t, sampleDocs())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.Search(ctx, &models.SearchQuery{Query: "source", Collection: "segment", TopK: 3})
	assert.ErrorIs(t, err, context.Canceled)
}

// IDF is computed over the pooled sections of every collection.
func TestSearch_PooledIDF(t *testing.T) {
	_, store := newTestEngine(t, map[string][]models.Section{
		"segment": {{Title: "a", Content: "personas identity"}, {Title: "b", Content: "warehouse sync"}},
		"lytics":  {{Title: "c", Content: "identity resolution"}},
	})
	snap := store.Snapshot()
	i, ok := snap.Model.Vocabulary().Index("identity")
	require.True(t, ok)
	// identity appears in 2 of 3 pooled sections.
	assert.InDelta(t, math.Log(3.0/3.0)+1, snap.Model.IDF()[i], 1e-12)

	j, ok := snap.Model.Vocabulary().Index("resolution")
	require.True(t, ok)
	assert.InDelta(t, math.Log(3.0/2.0)+1, snap.Model.IDF()[j], 1e-12)
}

func TestSearch_AfterUpdate(t *testing.T) {
	engine, store := newTestEngine(t, sampleDocs())
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "mparticle", nil))
	got, err := engine.SearchContents(ctx, "audience builder", "mparticle", 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = engine.SearchContents(ctx, "mparticle documentation", "mparticle", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Welcome to Mparticle documentation."}, got)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", search.Snippet("  a\n b\t c ", 0))
	assert.Equal(t, "abc...", search.Snippet("abcdef", 3))
}

func TestSearch_DidYouMean(t *testing.T) {
	engine, _ := newTestEngine(t, sampleDocs())
	ctx := context.Background()

	resp, err := engine.Search(ctx, &models.SearchQuery{Query: "warehuses", Collection: "segment", TopK: 3})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, "warehouses", resp.DidYouMean)

	resp, err = engine.Search(ctx, &models.SearchQuery{Query: "warehouses", Collection: "segment", TopK: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Results)
	assert.Empty(t, resp.DidYouMean)
}
