// Package cache persists catalog embeddings across process restarts,
// keyed by a content signature of the raw catalog bytes and the
// encoder identifier. A mismatched or unreadable entry is a miss,
// never an error: the caller simply recomputes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"movierag/internal/domain"
)

// Cache stores one entry per (collection, encoder) pair as two
// companion artifacts: a JSON metadata record and a binary vector
// blob. The metadata is the sole validity gate on load.
type Cache struct {
	dir        string
	collection string
}

type metadata struct {
	DatasetSignature string `json:"dataset_signature"`
	EncoderName      string `json:"encoder_name"`
	VectorDim        int    `json:"vector_dim"`
	VectorsChecksum  string `json:"vectors_checksum"`
}

// New creates a cache rooted at dir for the named collection.
func New(dir, collection string) *Cache {
	return &Cache{dir: dir, collection: collection}
}

// Signature digests the exact bytes read from the catalog source.
// Any byte difference, including formatting-only changes, produces a
// different signature and therefore forces re-embedding.
func Signature(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Load returns the cached embedding set when the stored entry's
// signature and encoder name both match exactly. Anything else,
// including a torn or corrupt entry, reads as a miss.
func (c *Cache) Load(signature, encoderID string) ([][]float64, bool) {
	metaPath, vecPath := c.paths(encoderID)

	metaRaw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, false
	}
	var meta metadata
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		c.warnCorrupt(metaPath, fmt.Errorf("%w: %v", domain.ErrCacheCorrupt, err))
		return nil, false
	}
	if meta.DatasetSignature != signature || meta.EncoderName != encoderID {
		return nil, false
	}

	blob, err := os.ReadFile(vecPath)
	if err != nil {
		c.warnCorrupt(vecPath, fmt.Errorf("%w: metadata without blob: %v", domain.ErrCacheCorrupt, err))
		return nil, false
	}
	if sum := sha256.Sum256(blob); hex.EncodeToString(sum[:]) != meta.VectorsChecksum {
		c.warnCorrupt(vecPath, fmt.Errorf("%w: checksum mismatch", domain.ErrCacheCorrupt))
		return nil, false
	}

	vectors, err := decodeBlob(blob)
	if err != nil {
		c.warnCorrupt(vecPath, err)
		return nil, false
	}
	if len(vectors) > 0 && len(vectors[0]) != meta.VectorDim {
		c.warnCorrupt(vecPath, fmt.Errorf("%w: dimension disagrees with metadata", domain.ErrCacheCorrupt))
		return nil, false
	}
	return vectors, true
}

// Store persists the embedding set, replacing any prior entry for the
// same (signature, encoder) key. Both artifacts are written to
// temporary files and renamed into place, blob first and metadata
// last, so a concurrent reader never observes a half-written entry:
// until the metadata lands, the old entry (or no entry) is what loads.
func (c *Cache) Store(signature, encoderID string, vectors [][]float64) error {
	if len(vectors) == 0 {
		return fmt.Errorf("refusing to cache empty embedding set")
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	blob := encodeBlob(vectors)
	sum := sha256.Sum256(blob)
	meta := metadata{
		DatasetSignature: signature,
		EncoderName:      encoderID,
		VectorDim:        dim,
		VectorsChecksum:  hex.EncodeToString(sum[:]),
	}
	metaRaw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}

	metaPath, vecPath := c.paths(encoderID)
	if err := writeAtomic(vecPath, blob); err != nil {
		return fmt.Errorf("write vector blob: %w", err)
	}
	if err := writeAtomic(metaPath, metaRaw); err != nil {
		return fmt.Errorf("write cache metadata: %w", err)
	}
	return nil
}

func (c *Cache) paths(encoderID string) (metaPath, vecPath string) {
	base := fmt.Sprintf("%s_%s", c.collection, strings.ReplaceAll(encoderID, "/", "_"))
	return filepath.Join(c.dir, base+".json"), filepath.Join(c.dir, base+".vec")
}

func (c *Cache) warnCorrupt(path string, err error) {
	slog.Warn("ignoring unusable cache entry", "path", path, "error", err)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
