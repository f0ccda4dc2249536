package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierag/internal/catalog"
	"movierag/internal/domain"
)

func entry(row int, title string, vec ...float64) domain.IndexEntry {
	return domain.IndexEntry{
		Row:     row,
		Vector:  vec,
		Payload: domain.ItemRecord{catalog.TitleColumn: title},
	}
}

func TestRebuild_EmptyCatalog(t *testing.T) {
	x := NewIndex()
	require.ErrorIs(t, x.Rebuild(nil), domain.ErrEmptyCatalog)
}

func TestRebuild_DimensionMismatch(t *testing.T) {
	x := NewIndex()
	err := x.Rebuild([]domain.IndexEntry{
		entry(0, "A", 1, 0),
		entry(1, "B", 1),
	})
	require.Error(t, err)
}

func TestSearch_RankingDescending(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.Rebuild([]domain.IndexEntry{
		entry(0, "far", 0, 1),
		entry(1, "near", 1, 0),
		entry(2, "middle", 1, 1),
	}))

	hits, err := x.Search([]float64{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "near", hits[0].Title)
	assert.Equal(t, "middle", hits[1].Title)
	assert.Equal(t, "far", hits[2].Title)
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i].Score, hits[i-1].Score)
	}
}

func TestSearch_ExactMatchScoresOne(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.Rebuild([]domain.IndexEntry{
		entry(0, "A", 1, 0),
		entry(1, "B", 0, 1),
	}))

	hits, err := x.Search([]float64{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "A", hits[0].Title)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-12)
}

func TestSearch_TiesBrokenByRowOrder(t *testing.T) {
	x := NewIndex()
	// rows 2 and 0 share a vector; row 0 must come first on a tie
	require.NoError(t, x.Rebuild([]domain.IndexEntry{
		entry(2, "later twin", 1, 1),
		entry(0, "earlier twin", 1, 1),
		entry(1, "other", 0, 1),
	}))

	hits, err := x.Search([]float64{1, 1}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "earlier twin", hits[0].Title)
	assert.Equal(t, "later twin", hits[1].Title)
}

func TestSearch_ClampsOversizedK(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.Rebuild([]domain.IndexEntry{
		entry(0, "A", 1, 0),
		entry(1, "B", 0, 1),
	}))

	hits, err := x.Search([]float64{1, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.Rebuild([]domain.IndexEntry{entry(0, "A", 1, 0)}))
	_, err := x.Search([]float64{1, 0, 0}, 1)
	require.Error(t, err)
}

func TestSearch_BeforeRebuild(t *testing.T) {
	x := NewIndex()
	_, err := x.Search([]float64{1, 0}, 1)
	require.ErrorIs(t, err, domain.ErrEmptyCatalog)
}

func TestRebuild_ReplacesWholesale(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.Rebuild([]domain.IndexEntry{
		entry(0, "old A", 1, 0),
		entry(1, "old B", 0, 1),
	}))
	require.NoError(t, x.Rebuild([]domain.IndexEntry{
		entry(0, "new only", 1, 0),
	}))

	hits, err := x.Search([]float64{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new only", hits[0].Title)
}

func TestSearch_ZeroVectorScoresZero(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.Rebuild([]domain.IndexEntry{entry(0, "A", 1, 0)}))
	hits, err := x.Search([]float64{0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0.0, hits[0].Score)
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2}, []float64{1, 2}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"scale_invariant", []float64{1, 0}, []float64{100, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosine(tt.a, tt.b), 1e-12)
		})
	}
}
