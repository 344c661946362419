// Package collection owns the keyed document collections and the index built over them.
package collection

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ronak0808/CDP-chatbot/internal/fileid"
	"github.com/ronak0808/CDP-chatbot/internal/models"
	"github.com/ronak0808/CDP-chatbot/internal/storage"
	"github.com/ronak0808/CDP-chatbot/internal/tfidf"
	"github.com/ronak0808/CDP-chatbot/internal/tokenizer"
	"github.com/ronak0808/CDP-chatbot/internal/vector"
)

// Store loads collections from a storage.Source and publishes immutable snapshots.
//
// Readers call Snapshot and never block. Load, LoadAll, Update, Reload and RebuildAll
// are serialized by one writer lock; fetching from the source happens before the lock
// is taken, so a slow source does not hold up other writers' rebuilds.
type Store struct {
	source    storage.Source
	tokenizer *tokenizer.Tokenizer
	logger    *zap.Logger
	workers   int
	pool      *ants.Pool

	mu  sync.Mutex
	raw map[string][]models.Section
	// versions counts Updates per key. A fetch that started before an Update of the
	// same key is stale and must not overwrite it.
	versions map[string]uint64
	closed   bool

	current atomic.Pointer[Snapshot]
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkers sets how many goroutines vectorize sections during a rebuild and
// how many collections LoadAll fetches at once.
func WithWorkers(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTokenizer replaces the default English tokenizer.
func WithTokenizer(tok *tokenizer.Tokenizer) Option {
	return func(s *Store) {
		if tok != nil {
			s.tokenizer = tok
		}
	}
}

// NewStore creates an empty store backed by source. Call Close to release its worker pool.
func NewStore(source storage.Source, opts ...Option) (*Store, error) {
	if source == nil {
		return nil, fmt.Errorf("document source is required")
	}
	s := &Store{
		source:    source,
		tokenizer: tokenizer.Default(),
		logger:    zap.NewNop(),
		workers:   runtime.GOMAXPROCS(0),
		raw:       make(map[string][]models.Section),
		versions:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create vectorization pool: %w", err)
	}
	s.pool = pool
	s.current.Store(emptySnapshot(s.tokenizer))
	return s, nil
}

// Snapshot returns the currently published snapshot. It is never nil.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Keys returns the loaded collection keys in ascending order.
func (s *Store) Keys() []string {
	return s.Snapshot().Keys()
}

// DocumentCount returns the number of sections in the collection, or 0 if it is not loaded.
func (s *Store) DocumentCount(key string) int {
	c, ok := s.Snapshot().Collection(key)
	if !ok {
		return 0
	}
	return len(c.Sections)
}

// Fingerprint returns the content hash of a loaded collection.
func (s *Store) Fingerprint(key string) (uint64, bool) {
	c, ok := s.Snapshot().Collection(key)
	if !ok {
		return 0, false
	}
	return c.Fingerprint, true
}

// Sections returns a copy of a loaded collection's sections.
func (s *Store) Sections(key string) ([]models.Section, bool) {
	c, ok := s.Snapshot().Collection(key)
	if !ok {
		return nil, false
	}
	return append([]models.Section(nil), c.Sections...), true
}

// Load fetches one collection from the source and rebuilds the index.
func (s *Store) Load(ctx context.Context, key string) error {
	return s.LoadAll(ctx, []string{key})
}

// LoadAll fetches several collections concurrently and rebuilds the index once.
// If any fetch fails nothing is applied.
func (s *Store) LoadAll(ctx context.Context, keys []string) error {
	seen := s.versionsOf(keys)
	fetched, err := s.fetchAll(ctx, keys)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	candidate := s.candidateLocked(fetched, seen)
	return s.rebuildLocked(ctx, candidate)
}

// Reload re-fetches the given collections, or every loaded collection when keys is empty,
// and rebuilds only if some content changed. It reports whether a rebuild happened.
func (s *Store) Reload(ctx context.Context, keys ...string) (bool, error) {
	if len(keys) == 0 {
		s.mu.Lock()
		for k := range s.raw {
			keys = append(keys, k)
		}
		s.mu.Unlock()
		sort.Strings(keys)
	}
	if len(keys) == 0 {
		return false, nil
	}
	seen := s.versionsOf(keys)
	fetched, err := s.fetchAll(ctx, keys)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	candidate := s.candidateLocked(fetched, seen)
	// Compare against what is served, not what was last applied: a failed rebuild
	// leaves the two apart.
	published := s.current.Load()
	changed := false
	for _, key := range keys {
		sections, ok := candidate[key]
		if !ok {
			continue
		}
		c, ok := published.Collection(key)
		if !ok || c.Fingerprint != Fingerprint(sections) {
			changed = true
		}
	}
	if !changed {
		s.logger.Debug("reload found no changes", zap.Strings("collections", keys))
		return false, nil
	}
	return true, s.rebuildLocked(ctx, candidate)
}

// versionsOf records the update counters of keys before a fetch.
func (s *Store) versionsOf(keys []string) map[string]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]uint64, len(keys))
	for _, key := range keys {
		seen[key] = s.versions[key]
	}
	return seen
}

// candidateLocked copies the applied sections and overlays fetched entries, skipping
// keys that were updated while the fetch was in flight.
func (s *Store) candidateLocked(fetched map[string][]models.Section, seen map[string]uint64) map[string][]models.Section {
	candidate := make(map[string][]models.Section, len(s.raw)+len(fetched))
	for key, sections := range s.raw {
		candidate[key] = sections
	}
	for key, sections := range fetched {
		if s.versions[key] != seen[key] {
			s.logger.Debug("dropping stale fetch", zap.String("collection", key))
			continue
		}
		candidate[key] = sections
	}
	return candidate
}

// Update replaces a collection's sections, persists them to the source and rebuilds the
// index. An empty list stores the collection's placeholder section instead.
func (s *Store) Update(ctx context.Context, key string, sections []models.Section) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if len(sections) == 0 {
		sections = []models.Section{models.PlaceholderSection(key)}
	} else {
		sections = append([]models.Section(nil), sections...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.source.PersistSections(ctx, key, sections); err != nil {
		return fmt.Errorf("%w: persist %s: %w", ErrSourceUnavailable, key, err)
	}
	s.versions[key]++
	candidate := make(map[string][]models.Section, len(s.raw)+1)
	for k, v := range s.raw {
		candidate[k] = v
	}
	candidate[key] = sections
	return s.rebuildLocked(ctx, candidate)
}

// RebuildAll recomputes the vocabulary, IDF weights and every section vector from the
// currently loaded sections and publishes the result. The output is a pure function of
// the loaded sections, so repeating it yields identical vectors. Cost is
// O(total sections × vocabulary size).
func (s *Store) RebuildAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.rebuildLocked(ctx, s.raw)
}

// Close releases the worker pool. The last snapshot remains readable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.pool.Release()
	return nil
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := fileid.ValidateKey(key); err != nil {
		return fmt.Errorf("%q: %w", key, err)
	}
	return nil
}

func (s *Store) fetchAll(ctx context.Context, keys []string) (map[string][]models.Section, error) {
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return nil, err
		}
	}
	results := make([][]models.Section, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			sections, err := s.fetch(gctx, key)
			if err != nil {
				return err
			}
			results[i] = sections
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	fetched := make(map[string][]models.Section, len(keys))
	for i, key := range keys {
		fetched[key] = results[i]
	}
	return fetched, nil
}

// fetch reads one collection. A collection unknown to the source gets its placeholder
// persisted; a known but empty one gets the placeholder in memory only.
func (s *Store) fetch(ctx context.Context, key string) ([]models.Section, error) {
	sections, err := s.source.FetchSections(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		placeholder := []models.Section{models.PlaceholderSection(key)}
		if perr := s.source.PersistSections(ctx, key, placeholder); perr != nil {
			s.logger.Warn("failed to persist placeholder collection",
				zap.String("collection", key), zap.Error(perr))
		} else {
			s.logger.Info("created placeholder collection", zap.String("collection", key))
		}
		return placeholder, nil
	case err != nil:
		return nil, fmt.Errorf("%w: fetch %s: %w", ErrSourceUnavailable, key, err)
	case len(sections) == 0:
		return []models.Section{models.PlaceholderSection(key)}, nil
	}
	return sections, nil
}

// rebuildLocked builds and publishes a snapshot of raw, which becomes the applied set
// only once the snapshot is published. It must be called with s.mu held.
func (s *Store) rebuildLocked(ctx context.Context, raw map[string][]models.Section) error {
	start := time.Now()
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Pooled corpus in key order, then section order.
	var docs [][]string
	offsets := make([]int, len(keys)+1)
	for i, key := range keys {
		offsets[i] = len(docs)
		for _, sec := range raw[key] {
			docs = append(docs, s.tokenizer.Tokenize(sec.Content))
		}
	}
	offsets[len(keys)] = len(docs)

	model := tfidf.Fit(docs)
	vectors, err := s.vectorize(ctx, model, docs)
	if err != nil {
		return err
	}

	snap := &Snapshot{
		Generation:  uuid.NewString(),
		BuiltAt:     time.Now(),
		Model:       model,
		tokenizer:   s.tokenizer,
		collections: make(map[string]*Collection, len(keys)),
	}
	for i, key := range keys {
		rows := make([][]float64, 0, offsets[i+1]-offsets[i])
		for _, v := range vectors[offsets[i]:offsets[i+1]] {
			rows = append(rows, v)
		}
		matrix, err := vector.NewMatrix(model.Dimensions(), rows)
		if err != nil {
			return fmt.Errorf("build vectors for %s: %w", key, err)
		}
		sections := raw[key]
		snap.collections[key] = &Collection{
			Key:         key,
			Sections:    sections,
			Vectors:     matrix,
			Fingerprint: Fingerprint(sections),
		}
	}

	s.current.Store(snap)
	s.raw = raw
	s.logger.Info("index rebuilt",
		zap.String("generation", snap.Generation),
		zap.Int("collections", len(keys)),
		zap.Int("sections", len(docs)),
		zap.Int("vocabulary", model.Dimensions()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// vectorize projects every document on the worker pool. Results are placed by index.
func (s *Store) vectorize(ctx context.Context, model *tfidf.Model, docs [][]string) ([]tfidf.Vector, error) {
	vectors := make([]tfidf.Vector, len(docs))
	var wg sync.WaitGroup
	for i := range docs {
		i := i
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			vectors[i] = model.Vectorize(docs[i])
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit vectorization: %w", err)
		}
	}
	wg.Wait()
	return vectors, nil
}
