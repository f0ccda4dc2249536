package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"movierag/internal/catalog"
	"movierag/internal/domain"
)

// Index is a minimal REST client to Qdrant implementing the same
// contract as the in-memory index. Rebuild drops and recreates the
// collection with cosine distance, mirroring rebuild-from-scratch
// semantics.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewIndex(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (x *Index) Rebuild(entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return domain.ErrEmptyCatalog
	}
	dim := len(entries[0].Vector)
	if dim == 0 {
		return errors.New("invalid dimension")
	}

	// Best-effort drop; a missing collection is fine.
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", x.url, x.collection), nil)
	x.auth(req)
	if resp, err := x.client.Do(req); err == nil {
		_ = resp.Body.Close()
	}

	create := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": "Cosine",
		},
	}
	if err := x.putJSON(fmt.Sprintf("%s/collections/%s", x.url, x.collection), create); err != nil {
		return err
	}

	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		payload := make(map[string]any, len(e.Payload)+1)
		for k, v := range e.Payload {
			payload[k] = v
		}
		payload["_row"] = e.Row
		points[i] = map[string]any{
			"id":      e.Row,
			"vector":  e.Vector,
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	return x.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", x.url, x.collection), body)
}

func (x *Index) Search(vector []float64, k int) ([]domain.SearchHit, error) {
	if k <= 0 {
		return []domain.SearchHit{}, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := x.postJSON(fmt.Sprintf("%s/collections/%s/points/search", x.url, x.collection), req, &resp); err != nil {
		return nil, err
	}
	hits := make([]domain.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		payload := domain.ItemRecord{}
		for key, v := range r.Payload {
			if key == "_row" {
				continue
			}
			payload[key] = v
		}
		hits = append(hits, domain.SearchHit{
			Title:   payload.StringField(catalog.TitleColumn),
			Payload: payload,
			Score:   r.Score,
		})
	}
	return hits, nil
}

func (x *Index) auth(req *http.Request) {
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}
}

func (x *Index) putJSON(url string, body any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	x.auth(req)
	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (x *Index) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	x.auth(req)
	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
