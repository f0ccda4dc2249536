package domain

// ItemRecord is one catalog entry: an opaque mapping of column name to
// scalar value (string, float64, or nil). Records are immutable once
// loaded; their position in the catalog is their identity.
type ItemRecord map[string]any

// StringField returns the named field rendered as a trimmed string,
// or "" when the field is absent or empty.
func (r ItemRecord) StringField(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return trimmed(t)
	case float64:
		return formatNumber(t)
	default:
		return ""
	}
}

// NumberField returns the named field as a float64 when it holds a number.
func (r ItemRecord) NumberField(name string) (float64, bool) {
	v, ok := r[name]
	if !ok || v == nil {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// IndexEntry pairs a catalog row with its embedding vector. The row
// position doubles as the item identifier.
type IndexEntry struct {
	Row     int
	Vector  []float64
	Payload ItemRecord
}

// SearchHit is a single ranked result. Score is the cosine similarity
// between the query vector and the item vector, in [-1, 1].
type SearchHit struct {
	Title   string
	Payload ItemRecord
	Score   float64
}

// QueryRequest is one search call: a free-text prompt and the number
// of hits wanted.
type QueryRequest struct {
	Prompt string
	TopK   int
}
