package search_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronak0808/CDP-chatbot/internal/collection"
	"github.com/ronak0808/CDP-chatbot/internal/models"
	"github.com/ronak0808/CDP-chatbot/internal/search"
	"github.com/ronak0808/CDP-chatbot/internal/storage"
)

// corpusCase is a query whose signature words occur in exactly one section.
type corpusCase struct {
	collection string
	query      string
	title      string
}

// cdpCorpus returns sections for the four default collections and one query per section.
func cdpCorpus() (map[string][]models.Section, []corpusCase) {
	topics := map[string][][3]string{
		"segment": {
			{"Sources", "Connect a JavaScript source with the snippet installation.", "snippet installation"},
			{"Destinations", "Forward events to Amplitude through cloud-mode destinations.", "amplitude cloud"},
			{"Protocols", "Protocols enforces tracking plan violations blocking.", "violations blocking"},
			{"Personas", "Personas computes traits from identity graph merges.", "traits merges"},
			{"Functions", "Source functions transform webhook payloads in JavaScript handlers.", "webhook handlers"},
			{"Replay", "Replay resends archived historical data to new tools.", "archived historical"},
		},
		"mparticle": {
			{"Kits", "Embedded kits bundle partner SDKs inside the app binary.", "embedded binary"},
			{"Audiences", "Real-time audiences qualify users by behavioural criteria.", "behavioural criteria"},
			{"Data Planning", "Data plans validate schemas against versioned blueprints.", "versioned blueprints"},
			{"IDSync", "IDSync resolves customer identifiers through login callbacks.", "login callbacks"},
			{"Calculated Attributes", "Calculated attributes aggregate lifetime purchase totals.", "lifetime purchase"},
			{"Feeds", "Inbound feeds ingest partner CSV uploads nightly.", "csv nightly"},
		},
		"lytics": {
			{"Affinities", "Content affinities score topical interest from article reads.", "topical article"},
			{"Behavioral Scores", "Behavioral scores rank momentum and frequency engagement.", "momentum frequency"},
			{"Jobs", "Workflow jobs export segments to Facebook custom audiences.", "facebook workflow"},
			{"Lookalikes", "Lookalike models predict conversion propensity.", "propensity conversion"},
			{"Experiences", "Experiences orchestrate personalized modal campaigns.", "modal campaigns"},
			{"Schema", "LQL statements map incoming fields onto profile columns.", "lql statements"},
		},
		"zeotap": {
			{"Catalogue", "The catalogue lists third-party enrichment attributes.", "catalogue enrichment"},
			{"Consent", "Consent orchestration honours GDPR opt-out signals.", "gdpr honours"},
			{"Unify", "Unify stitches deterministic keys into golden records.", "deterministic golden"},
			{"Symphony", "Symphony journeys trigger multichannel orchestration nodes.", "symphony multichannel"},
			{"Audiences", "Audience builder filters by recency thresholds.", "recency thresholds"},
			{"Integrations", "Outbound integrations push to DV360 endpoints.", "dv360 endpoints"},
		},
	}
	docs := make(map[string][]models.Section, len(topics))
	var cases []corpusCase
	for key, entries := range topics {
		for _, e := range entries {
			docs[key] = append(docs[key], models.Section{Title: e[0], Content: e[1]})
			cases = append(cases, corpusCase{collection: key, query: e[2], title: e[0]})
		}
	}
	return docs, cases
}

func TestCorpus_SignatureQueriesRankFirst(t *testing.T) {
	docs, cases := cdpCorpus()
	backends := map[string]func(t *testing.T) storage.Source{
		"json": func(t *testing.T) storage.Source {
			src, err := storage.NewJSONSource(t.TempDir())
			require.NoError(t, err)
			return src
		},
		"sqlite": func(t *testing.T) storage.Source {
			src, err := storage.NewSQLiteSource(filepath.Join(t.TempDir(), "docs.db"))
			require.NoError(t, err)
			return src
		},
	}
	for name, open := range backends {
		open := open
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			src := open(t)
			t.Cleanup(func() { _ = src.Close() })
			keys := make([]string, 0, len(docs))
			for key, sections := range docs {
				require.NoError(t, src.PersistSections(ctx, key, sections))
				keys = append(keys, key)
			}
			store, err := collection.NewStore(src, collection.WithWorkers(4))
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			require.NoError(t, store.LoadAll(ctx, keys))

			engine := search.NewEngine(store, nil)
			for _, tc := range cases {
				resp, err := engine.Search(ctx, &models.SearchQuery{Query: tc.query, Collection: tc.collection, TopK: 3})
				require.NoError(t, err)
				if assert.NotEmpty(t, resp.Results, "%s: %q", tc.collection, tc.query) {
					assert.Equal(t, tc.title, resp.Results[0].Title, "%s: %q", tc.collection, tc.query)
					assert.Len(t, resp.Results, 1, "signature words should match a single section")
				}
			}
		})
	}
}

func BenchmarkSearch(b *testing.B) {
	ctx := context.Background()
	src, err := storage.NewJSONSource(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	sections := make([]models.Section, 500)
	for i := range sections {
		sections[i] = models.Section{
			Title:   fmt.Sprintf("Section %d", i),
			Content: fmt.Sprintf("Event tracking guide %d covers sources, destinations and warehouse sync number %d.", i, i*7),
		}
	}
	if err := src.PersistSections(ctx, "segment", sections); err != nil {
		b.Fatal(err)
	}
	store, err := collection.NewStore(src)
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	if err := store.Load(ctx, "segment"); err != nil {
		b.Fatal(err)
	}
	engine := search.NewEngine(store, nil)
	query := &models.SearchQuery{Query: "warehouse sync destinations", Collection: "segment", TopK: 10}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Search(ctx, query); err != nil {
			b.Fatal(err)
		}
	}
}
