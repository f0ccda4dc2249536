package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"movierag/internal/catalog"
	"movierag/internal/domain"
	"movierag/internal/embedding"
	"movierag/internal/embedding/cache"
	"movierag/internal/vectorstore"
)

// DefaultTopK is used when a caller asks for fewer than one hit.
const DefaultTopK = 3

// Pipeline orchestrates catalog loading, embedding (with cache),
// index construction and query-time search. Initialize must complete
// before Search is called; afterwards the pipeline is read-mostly and
// Search is safe for concurrent callers.
type Pipeline struct {
	datasetPath string
	encoder     embedding.Encoder
	cache       *cache.Cache
	index       vectorstore.Index

	cat         *catalog.Catalog
	initialized bool
}

// NewPipeline wires the injected capabilities together. Nothing is
// loaded until Initialize runs.
func NewPipeline(datasetPath string, encoder embedding.Encoder, store *cache.Cache, index vectorstore.Index) *Pipeline {
	return &Pipeline{
		datasetPath: datasetPath,
		encoder:     encoder,
		cache:       store,
		index:       index,
	}
}

// Initialize loads the catalog, obtains its embedding set (from the
// cache when the catalog bytes and encoder identity match a stored
// entry, otherwise from the encoder) and rebuilds the index. Loader
// and encoder failures propagate; the pipeline never initializes
// partially.
func (p *Pipeline) Initialize() error {
	start := time.Now()
	cat, err := catalog.Load(p.datasetPath)
	if err != nil {
		return err
	}
	if cat.Len() == 0 {
		return domain.ErrEmptyCatalog
	}

	sig := cache.Signature(cat.Raw)
	encoderID := p.encoder.Name()

	vectors, hit := p.cache.Load(sig, encoderID)
	if hit && len(vectors) != cat.Len() {
		// A matching signature implies a matching row count; disagreement
		// means the entry cannot be trusted.
		slog.Warn("cached embedding count disagrees with catalog, recomputing",
			"cached", len(vectors), "catalog", cat.Len())
		hit = false
	}
	if !hit {
		slog.Info("embedding catalog", "items", cat.Len(), "encoder", encoderID)
		vectors, err = p.encoder.EncodeBatch(cat.Texts())
		if err != nil {
			return fmt.Errorf("embed catalog: %w", err)
		}
		if len(vectors) != cat.Len() {
			return fmt.Errorf("encoder returned %d vectors for %d items", len(vectors), cat.Len())
		}
		// The cache is an optimization; a failed write costs a re-embed
		// on the next start, not correctness.
		if err := p.cache.Store(sig, encoderID, vectors); err != nil {
			slog.Warn("failed to persist embedding cache", "error", err)
		}
	} else {
		slog.Info("embedding cache hit", "items", cat.Len(), "encoder", encoderID)
	}

	entries := make([]domain.IndexEntry, cat.Len())
	for i, rec := range cat.Records {
		entries[i] = domain.IndexEntry{Row: i, Vector: vectors[i], Payload: rec}
	}
	if err := p.index.Rebuild(entries); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	p.cat = cat
	p.initialized = true
	slog.Info("pipeline initialized", "items", cat.Len(), "took", time.Since(start))
	return nil
}

// Search encodes the prompt with the pipeline's encoder and returns
// the k nearest catalog items. A prompt that is blank after trimming
// is rejected before any encoding work.
func (p *Pipeline) Search(prompt string, k int) ([]domain.SearchHit, error) {
	if !p.initialized {
		return nil, errors.New("pipeline not initialized")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.ErrEmptyPrompt
	}
	if k < 1 {
		k = DefaultTopK
	}
	vec, err := p.encoder.Encode(prompt)
	if err != nil {
		return nil, fmt.Errorf("encode prompt: %w", err)
	}
	return p.index.Search(vec, k)
}

// Catalog exposes the loaded records, for analytics over the same
// rows the index serves. Nil before Initialize.
func (p *Pipeline) Catalog() *catalog.Catalog { return p.cat }
