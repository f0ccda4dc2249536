// Package summarizer turns a ranked hit list plus the original prompt
// into a natural-language synopsis via an OpenAI-compatible chat
// completions endpoint. It is strictly opt-in: without a configured
// model it does nothing, and a failed call never invalidates the hits.
package summarizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"movierag/internal/domain"
)

const systemPrompt = "You recommend movies based on provided candidates."

// Summarizer holds the endpoint configuration and nothing else; each
// Summarize call is independent and makes a single attempt.
type Summarizer struct {
	model   string
	baseURL string
	apiKey  string
	client  *http.Client
}

// Config configures the summarizer. An empty Model disables the
// feature entirely.
type Config struct {
	Model     string
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

func New(cfg Config) *Summarizer {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	var key string
	if cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	return &Summarizer{
		model:   cfg.Model,
		baseURL: baseURL,
		apiKey:  key,
		client:  &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a model is configured.
func (s *Summarizer) Enabled() bool { return s.model != "" }

// Summarize returns a synopsis of the hits for the given prompt. With
// no model configured it returns "" without attempting any external
// call. Transport, authentication and malformed-response failures come
// back wrapped in domain.ErrSummarizationFailed so callers can keep
// showing the search hits.
func (s *Summarizer) Summarize(hits []domain.SearchHit, prompt string) (string, error) {
	if s.model == "" {
		return "", nil
	}

	var candidates strings.Builder
	for _, h := range hits {
		payload, _ := json.Marshal(h.Payload)
		fmt.Fprintf(&candidates, "- %s (score %.4f): %s\n", h.Title, h.Score, payload)
	}

	body := map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": "Prompt: " + prompt + "\nCandidates:\n" + candidates.String()},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSummarizationFailed, err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSummarizationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSummarizationFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s", domain.ErrSummarizationFailed, resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSummarizationFailed, err)
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSummarizationFailed, err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no completion returned", domain.ErrSummarizationFailed)
	}
	return out.Choices[0].Message.Content, nil
}
