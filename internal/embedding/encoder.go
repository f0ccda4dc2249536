package embedding

// Encoder maps free text to a fixed-dimension numeric vector. The name
// identifies the encoder family and is the cache partition key: vectors
// produced under one name must never be served under another.
type Encoder interface {
	Name() string
	Encode(text string) ([]float64, error)
	EncodeBatch(texts []string) ([][]float64, error)
}
