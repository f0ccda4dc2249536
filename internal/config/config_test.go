package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "movies_dataset.csv", cfg.Dataset.Path)
	assert.Equal(t, "top_movies", cfg.Dataset.Collection)
	assert.Equal(t, ".cache", cfg.Cache.Dir)
	assert.Equal(t, "memory", cfg.Index.Type)
	assert.Equal(t, "text-embedding-3-small", cfg.Encoder.Model)
	assert.Equal(t, 128, cfg.Encoder.BatchSize)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "dataset:\n  path: /data/catalog.csv\nindex:\n  type: qdrant\n  qdrant:\n    url: http://localhost:6333\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/catalog.csv", cfg.Dataset.Path)
	assert.Equal(t, "qdrant", cfg.Index.Type)
	require.NotNil(t, cfg.Index.Qdrant)
	assert.Equal(t, "http://localhost:6333", cfg.Index.Qdrant.URL)
	// untouched sections still get defaults
	assert.Equal(t, "top_movies", cfg.Dataset.Collection)
	assert.Equal(t, 30, cfg.Encoder.TimeoutSecs)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\tnot yaml"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Dataset.Path = "/srv/movies.csv"
	cfg.LLM.Model = "gpt-4o-mini"

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLLMModelFromEnv(t *testing.T) {
	t.Setenv("MOVIE_RAG_LLM_MODEL", "env-model")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-model", cfg.LLM.Model)
}
