package cache

import (
	"encoding/binary"
	"fmt"
	"math"

	"movierag/internal/domain"
)

// Blob layout: two little-endian uint32 (vector count, dimension)
// followed by count*dimension little-endian float64 values in row
// order. Fixed-width and endian-pinned so entries are portable across
// platforms.

func encodeBlob(vectors [][]float64) []byte {
	count := len(vectors)
	dim := 0
	if count > 0 {
		dim = len(vectors[0])
	}
	out := make([]byte, 8+count*dim*8)
	binary.LittleEndian.PutUint32(out[0:4], uint32(count))
	binary.LittleEndian.PutUint32(out[4:8], uint32(dim))
	off := 8
	for _, vec := range vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint64(out[off:off+8], math.Float64bits(v))
			off += 8
		}
	}
	return out
}

func decodeBlob(blob []byte) ([][]float64, error) {
	if len(blob) < 8 {
		return nil, fmt.Errorf("%w: blob truncated", domain.ErrCacheCorrupt)
	}
	count := int(binary.LittleEndian.Uint32(blob[0:4]))
	dim := int(binary.LittleEndian.Uint32(blob[4:8]))
	if len(blob) != 8+count*dim*8 {
		return nil, fmt.Errorf("%w: blob size disagrees with header", domain.ErrCacheCorrupt)
	}
	vectors := make([][]float64, count)
	off := 8
	for i := range vectors {
		vec := make([]float64, dim)
		for j := range vec {
			vec[j] = math.Float64frombits(binary.LittleEndian.Uint64(blob[off : off+8]))
			off += 8
		}
		vectors[i] = vec
	}
	return vectors, nil
}
