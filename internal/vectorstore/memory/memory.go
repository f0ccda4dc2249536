package memory

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"movierag/internal/catalog"
	"movierag/internal/domain"
)

// Index is an in-memory brute-force cosine similarity index. Rebuild
// swaps the whole entry set under the write lock, so concurrent
// searches see either the old or the new index, never a mix.
type Index struct {
	mu      sync.RWMutex
	dim     int
	entries []domain.IndexEntry
}

func NewIndex() *Index { return &Index{} }

// Rebuild replaces any existing index content.
func (x *Index) Rebuild(entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return domain.ErrEmptyCatalog
	}
	dim := len(entries[0].Vector)
	if dim == 0 {
		return errors.New("invalid dimension")
	}
	staged := make([]domain.IndexEntry, len(entries))
	copy(staged, entries)
	sort.SliceStable(staged, func(i, j int) bool { return staged[i].Row < staged[j].Row })
	for _, e := range staged {
		if len(e.Vector) != dim {
			return fmt.Errorf("vector for row %d has dimension %d, want %d", e.Row, len(e.Vector), dim)
		}
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.dim = dim
	x.entries = staged
	return nil
}

// Search scores every stored vector against the query vector and
// returns the k best. Entries are kept in ascending row order, so the
// stable sort on score alone preserves the row-order tie-break.
func (x *Index) Search(vector []float64, k int) ([]domain.SearchHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(x.entries) == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	if len(vector) != x.dim {
		return nil, fmt.Errorf("query vector has dimension %d, want %d", len(vector), x.dim)
	}
	if k < 0 {
		k = 0
	}
	if k > len(x.entries) {
		k = len(x.entries)
	}

	type scored struct {
		entry domain.IndexEntry
		score float64
	}
	all := make([]scored, len(x.entries))
	for i, e := range x.entries {
		all[i] = scored{entry: e, score: cosine(vector, e.Vector)}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	hits := make([]domain.SearchHit, 0, k)
	for _, s := range all[:k] {
		hits = append(hits, domain.SearchHit{
			Title:   s.entry.Payload.StringField(catalog.TitleColumn),
			Payload: s.entry.Payload,
			Score:   s.score,
		})
	}
	return hits, nil
}

// cosine returns the cosine of the angle between a and b, or 0 when
// either vector has zero magnitude.
func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
