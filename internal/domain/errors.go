package domain

import "errors"

// Startup failures abort pipeline initialization entirely. Request
// failures are scoped to a single call and never affect pipeline state.
var (
	// ErrDatasetNotFound means the catalog path did not resolve to a file.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrDatasetMalformed means the catalog exists but required columns
	// are absent or rows are unparsable.
	ErrDatasetMalformed = errors.New("dataset malformed")

	// ErrCacheCorrupt marks a cache entry that cannot be trusted. It is
	// always treated as a miss and triggers a recompute, never a failure.
	ErrCacheCorrupt = errors.New("embedding cache corrupt")

	// ErrEmptyCatalog means there is nothing to index.
	ErrEmptyCatalog = errors.New("empty catalog")

	// ErrEmptyPrompt rejects a query that is blank after trimming,
	// before any encoding work happens.
	ErrEmptyPrompt = errors.New("empty prompt")

	// ErrSummarizationFailed wraps an external summarization call that
	// went wrong. Search hits stay valid when this is returned.
	ErrSummarizationFailed = errors.New("summarization failed")
)
