package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"movierag/internal/catalog"
	"movierag/internal/config"
	"movierag/internal/domain"
	"movierag/internal/embedding/cache"
	"movierag/internal/embedding/openai"
	"movierag/internal/server"
	"movierag/internal/service"
	"movierag/internal/summarizer"
	"movierag/internal/tui"
	"movierag/internal/vectorstore"
	"movierag/internal/vectorstore/memory"
	"movierag/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	var (
		cfgPath   string
		prompt    string
		topK      int
		summarize bool
		llmModel  string
		addr      string
	)

	rootCmd := &cobra.Command{
		Use:   "movierag",
		Short: "Semantic movie search over a fixed catalog",
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search the catalog; one-shot with --prompt, interactive otherwise",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if llmModel != "" {
				cfg.LLM.Model = llmModel
			}
			if summarize && cfg.LLM.Model == "" {
				return fmt.Errorf("--summarize requires --llm-model or MOVIE_RAG_LLM_MODEL")
			}
			pipeline, sum, err := assemble(cfg)
			if err != nil {
				return err
			}
			if prompt != "" {
				return oneShot(pipeline, sum, prompt, topK, summarize)
			}
			m := tui.New(pipeline, sum, topK, summarize)
			_, err = tea.NewProgram(m).Run()
			return err
		},
	}
	searchCmd.Flags().StringVar(&prompt, "prompt", "", "Run a single prompt in batch mode")
	searchCmd.Flags().IntVar(&topK, "top-k", service.DefaultTopK, "Number of movies to retrieve per query")
	searchCmd.Flags().BoolVar(&summarize, "summarize", false, "Summarize the results with the configured LLM")
	searchCmd.Flags().StringVar(&llmModel, "llm-model", "", "Model for summarization (defaults to MOVIE_RAG_LLM_MODEL env)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP search and analysis API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			pipeline, sum, err := assemble(cfg)
			if err != nil {
				return err
			}
			analytics := catalog.NewAnalytics(pipeline.Catalog())
			return server.New(pipeline, sum, analytics).Run(cfg.Server.Addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	rootCmd.AddCommand(searchCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, used, err := config.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		slog.Info("config loaded", "path", used)
		return cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// assemble wires the configured components and runs the one-time
// initialization sequence.
func assemble(cfg *config.AppConfig) (*service.Pipeline, *summarizer.Summarizer, error) {
	encoder := openai.NewClient(openai.Config{
		BaseURL:   cfg.Encoder.BaseURL,
		APIKeyEnv: cfg.Encoder.APIKeyEnv,
		Model:     cfg.Encoder.Model,
		BatchSize: cfg.Encoder.BatchSize,
		Timeout:   time.Duration(cfg.Encoder.TimeoutSecs) * time.Second,
	})

	var index vectorstore.Index
	switch cfg.Index.Type {
	case "memory", "":
		index = memory.NewIndex()
	case "qdrant":
		if cfg.Index.Qdrant == nil {
			return nil, nil, fmt.Errorf("qdrant index config missing")
		}
		index = qdrant.NewIndex(qdrant.Config{
			URL:        cfg.Index.Qdrant.URL,
			APIKey:     cfg.Index.Qdrant.APIKey,
			Collection: cfg.Dataset.Collection,
			Timeout:    time.Duration(cfg.Index.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		return nil, nil, fmt.Errorf("unknown index type: %s", cfg.Index.Type)
	}

	store := cache.New(cfg.Cache.Dir, cfg.Dataset.Collection)
	pipeline := service.NewPipeline(cfg.Dataset.Path, encoder, store, index)
	if err := pipeline.Initialize(); err != nil {
		return nil, nil, err
	}

	sum := summarizer.New(summarizer.Config{
		Model:     cfg.LLM.Model,
		BaseURL:   cfg.LLM.BaseURL,
		APIKeyEnv: cfg.LLM.APIKeyEnv,
		Timeout:   time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	return pipeline, sum, nil
}

func oneShot(pipeline *service.Pipeline, sum *summarizer.Summarizer, prompt string, topK int, summarize bool) error {
	hits, err := pipeline.Search(prompt, topK)
	if err != nil {
		return err
	}
	printHits(hits)
	if summarize {
		summary, err := sum.Summarize(hits, prompt)
		if err != nil {
			fmt.Fprintln(os.Stderr, "summary unavailable:", err)
			return nil
		}
		if summary != "" {
			fmt.Println("\nSummary:\n" + summary)
		}
	}
	return nil
}

func printHits(hits []domain.SearchHit) {
	if len(hits) == 0 {
		fmt.Println("No matches found.")
		return
	}
	for i, h := range hits {
		genre := h.Payload.StringField(catalog.GenreColumn)
		if genre == "" {
			genre = "?"
		}
		year := h.Payload.StringField(catalog.YearColumn)
		if year == "" {
			year = "?"
		}
		fmt.Printf("%d. %s (genre: %s, year: %s)  score=%.4f\n", i+1, h.Title, genre, year, h.Score)
	}
}
