package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddingsServer(t *testing.T, handle func(inputs []string) any) (*httptest.Server, *int) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "/embeddings", r.URL.Path)
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(handle(req.Input))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func openaiResponse(inputs []string) any {
	type item struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	}
	data := make([]item, len(inputs))
	// deliver out of order to exercise index-based reassembly
	for i := range inputs {
		j := len(inputs) - 1 - i
		data[i] = item{Index: j, Embedding: []float64{float64(j), 1}}
	}
	return map[string]any{"data": data}
}

func TestEncode(t *testing.T) {
	srv, calls := embeddingsServer(t, openaiResponse)
	c := NewClient(Config{BaseURL: srv.URL, Model: "test-model"})

	vec, err := c.Encode("a movie about dreams")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, vec)
	assert.Equal(t, 1, *calls)
}

func TestEncodeBatch_IndexOrder(t *testing.T) {
	srv, _ := embeddingsServer(t, openaiResponse)
	c := NewClient(Config{BaseURL: srv.URL, Model: "test-model"})

	vecs, err := c.EncodeBatch([]string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for i, v := range vecs {
		assert.Equal(t, []float64{float64(i), 1}, v)
	}
}

func TestEncodeBatch_SplitsIntoBatches(t *testing.T) {
	srv, calls := embeddingsServer(t, openaiResponse)
	c := NewClient(Config{BaseURL: srv.URL, Model: "test-model", BatchSize: 2})

	vecs, err := c.EncodeBatch([]string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Len(t, vecs, 5)
	assert.Equal(t, 3, *calls)
}

func TestEncode_OllamaShape(t *testing.T) {
	srv, _ := embeddingsServer(t, func(inputs []string) any {
		return map[string]any{"embedding": []float64{1, 2, 3}}
	})
	c := NewClient(Config{BaseURL: srv.URL, Model: "test-model"})

	vec, err := c.Encode("anything")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, vec)
}

func TestEncode_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, Model: "test-model"})

	_, err := c.Encode("anything")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestName_IsModelIdentifier(t *testing.T) {
	c := NewClient(Config{Model: "text-embedding-3-small"})
	assert.Equal(t, "text-embedding-3-small", c.Name())
}

func TestDecodeVectors_WrongCountRejected(t *testing.T) {
	payload, _ := json.Marshal(map[string]any{
		"data": []map[string]any{{"index": 0, "embedding": []float64{1}}},
	})
	_, err := decodeVectors(payload, 2)
	require.Error(t, err)
}
