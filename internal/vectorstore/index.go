package vectorstore

import "movierag/internal/domain"

// Index holds one vector per catalog item and answers k-nearest-
// neighbor queries by cosine similarity. There is no incremental
// insert or delete; any catalog change requires a full Rebuild.
type Index interface {
	// Rebuild atomically replaces all index content. Searches see either
	// the fully old or fully new index, never a partial mix. Fails with
	// domain.ErrEmptyCatalog when entries is empty.
	Rebuild(entries []domain.IndexEntry) error

	// Search returns up to k hits ordered by descending score, ties
	// broken by ascending original row index. k larger than the index
	// is clamped, never an error.
	Search(vector []float64, k int) ([]domain.SearchHit, error)
}
