package qdrant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierag/internal/catalog"
	"movierag/internal/domain"
)

type fakeQdrant struct {
	deletes       int
	createBody    map[string]any
	upsertBody    map[string]any
	searchBody    map[string]any
	searchResults []map[string]any
}

func (f *fakeQdrant) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete:
			f.deletes++
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/top_movies":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&f.createBody))
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/top_movies/points":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&f.upsertBody))
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/collections/top_movies/points/search":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&f.searchBody))
			_ = json.NewEncoder(w).Encode(map[string]any{"result": f.searchResults})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestIndex(t *testing.T, f *fakeQdrant) (*Index, *httptest.Server) {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewIndex(Config{URL: srv.URL, Collection: "top_movies"}), srv
}

func TestRebuild_RecreatesCollection(t *testing.T) {
	f := &fakeQdrant{}
	x, _ := newTestIndex(t, f)

	entries := []domain.IndexEntry{
		{Row: 0, Vector: []float64{1, 0}, Payload: domain.ItemRecord{catalog.TitleColumn: "A"}},
		{Row: 1, Vector: []float64{0, 1}, Payload: domain.ItemRecord{catalog.TitleColumn: "B"}},
	}
	require.NoError(t, x.Rebuild(entries))

	assert.Equal(t, 1, f.deletes)

	vectors := f.createBody["vectors"].(map[string]any)
	assert.Equal(t, 2.0, vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])

	points := f.upsertBody["points"].([]any)
	require.Len(t, points, 2)
	first := points[0].(map[string]any)
	assert.Equal(t, 0.0, first["id"])
	payload := first["payload"].(map[string]any)
	assert.Equal(t, "A", payload[catalog.TitleColumn])
	assert.Equal(t, 0.0, payload["_row"])
}

func TestRebuild_EmptyCatalog(t *testing.T) {
	f := &fakeQdrant{}
	x, _ := newTestIndex(t, f)
	require.ErrorIs(t, x.Rebuild(nil), domain.ErrEmptyCatalog)
	assert.Zero(t, f.deletes)
}

func TestSearch(t *testing.T) {
	f := &fakeQdrant{
		searchResults: []map[string]any{
			{"score": 0.93, "payload": map[string]any{catalog.TitleColumn: "A", "genre": "Sci-Fi", "_row": 0}},
			{"score": 0.41, "payload": map[string]any{catalog.TitleColumn: "B", "_row": 1}},
		},
	}
	x, _ := newTestIndex(t, f)

	hits, err := x.Search([]float64{1, 0}, 2)
	require.NoError(t, err)

	assert.Equal(t, 2.0, f.searchBody["limit"])
	assert.Equal(t, true, f.searchBody["with_payload"])

	require.Len(t, hits, 2)
	assert.Equal(t, "A", hits[0].Title)
	assert.Equal(t, 0.93, hits[0].Score)
	assert.Equal(t, "Sci-Fi", hits[0].Payload.StringField(catalog.GenreColumn))
	assert.NotContains(t, hits[0].Payload, "_row")
}

func TestSearch_NonPositiveK(t *testing.T) {
	f := &fakeQdrant{}
	x, _ := newTestIndex(t, f)
	hits, err := x.Search([]float64{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Nil(t, f.searchBody)
}

func TestSearch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	x := NewIndex(Config{URL: srv.URL, Collection: "top_movies"})

	_, err := x.Search([]float64{1, 0}, 3)
	require.Error(t, err)
}
