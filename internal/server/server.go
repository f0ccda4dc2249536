package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"movierag/internal/catalog"
	"movierag/internal/domain"
)

// SearchPort is the pipeline surface the HTTP layer consumes.
type SearchPort interface {
	Search(prompt string, k int) ([]domain.SearchHit, error)
}

// SummarizePort is the optional summarization surface.
type SummarizePort interface {
	Summarize(hits []domain.SearchHit, prompt string) (string, error)
}

// Server marshals HTTP requests onto the retrieval pipeline.
type Server struct {
	search     SearchPort
	summarizer SummarizePort
	analytics  *catalog.Analytics
}

func New(search SearchPort, summarizer SummarizePort, analytics *catalog.Analytics) *Server {
	return &Server{search: search, summarizer: summarizer, analytics: analytics}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/api/search", s.handleSearch)
	r.GET("/api/analysis", s.handleAnalysis)
	return r
}

// Run serves the API on addr, blocking until the listener fails.
func (s *Server) Run(addr string) error {
	slog.Info("serving HTTP API", "addr", addr)
	return s.Router().Run(addr)
}

const (
	defaultTopK = 3
	maxTopK     = 20
)

type searchRequest struct {
	Prompt    string `json:"prompt"`
	TopK      int    `json:"top_k"`
	Summarize bool   `json:"summarize"`
}

type movieResult struct {
	Title       string            `json:"title"`
	Genre       *string           `json:"genre"`
	ReleaseYear *int              `json:"release_year"`
	Score       float64           `json:"score"`
	Payload     domain.ItemRecord `json:"payload"`
}

type searchResponse struct {
	Results      []movieResult `json:"results"`
	Summary      *string       `json:"summary,omitempty"`
	SummaryError *string       `json:"summary_error,omitempty"`
}

func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt must not be empty"})
		return
	}
	topK := req.TopK
	if topK < 1 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	hits, err := s.search.Search(req.Prompt, topK)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyPrompt) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "prompt must not be empty"})
			return
		}
		slog.Error("search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	resp := searchResponse{Results: make([]movieResult, 0, len(hits))}
	for _, h := range hits {
		resp.Results = append(resp.Results, movieResult{
			Title:       h.Title,
			Genre:       optionalString(h.Payload, catalog.GenreColumn),
			ReleaseYear: optionalInt(h.Payload, catalog.YearColumn),
			Score:       h.Score,
			Payload:     h.Payload,
		})
	}

	// A summarization failure is reported alongside the hits, never
	// instead of them.
	if req.Summarize && s.summarizer != nil {
		summary, err := s.summarizer.Summarize(hits, req.Prompt)
		switch {
		case err != nil:
			slog.Warn("summarization failed", "error", err)
			msg := "summarization failed"
			resp.SummaryError = &msg
		case summary != "":
			resp.Summary = &summary
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleAnalysis(c *gin.Context) {
	if s.analytics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analytics not available"})
		return
	}
	c.JSON(http.StatusOK, s.analytics.SummaryPayload())
}

func optionalString(rec domain.ItemRecord, field string) *string {
	v := rec.StringField(field)
	if v == "" {
		return nil
	}
	return &v
}

func optionalInt(rec domain.ItemRecord, field string) *int {
	f, ok := rec.NumberField(field)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}
