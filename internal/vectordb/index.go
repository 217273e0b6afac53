package vectordb

import (
	"context"
	"errors"
	"fmt"

	"github.com/clauselens/clauselens/internal/chunker"
	"github.com/clauselens/clauselens/internal/embeddings"
)

var (
	// ErrEmptyCorpus is returned by Build when given zero chunks.
	ErrEmptyCorpus = errors.New("cannot build index from an empty corpus")

	// ErrNotBuilt is returned by Query before any successful Build.
	ErrNotBuilt = errors.New("index has not been built")

	// ErrIndexUnavailable means no embedding strategy could be
	// initialized. Fatal for the session; surfaced immediately.
	ErrIndexUnavailable = errors.New("no embedding strategy available")

	// ErrRebuildRequired is returned by Add on strategies whose
	// corpus-global statistics cannot be updated incrementally.
	ErrRebuildRequired = errors.New("index strategy requires a full rebuild to add chunks")
)

// DefaultMinSimilarity discards near-random matches on unrelated corpora.
const DefaultMinSimilarity = 0.01

// Result pairs a retrieved chunk with its similarity score.
type Result struct {
	Chunk      chunker.Chunk
	Similarity float64
}

// Index stores per-chunk vectors and answers nearest-neighbor queries.
// Two interchangeable strategies implement it: a dense embedding index
// (ChromemIndex) and a TF-IDF fallback (TFIDFIndex). Callers are
// agnostic to which is active.
//
// An Index is owned by a single session. Calls must be serialized by
// the owner; there is no internal locking.
type Index interface {
	// Build replaces any previously indexed state with the given
	// chunks. Fails with ErrEmptyCorpus when chunks is empty.
	Build(ctx context.Context, chunks []chunker.Chunk) error

	// Add indexes additional chunks without discarding prior state.
	// Only the dense strategy supports this; the TF-IDF strategy
	// returns ErrRebuildRequired.
	Add(ctx context.Context, chunks []chunker.Chunk) error

	// Query returns up to k chunks ranked best match first, never any
	// with similarity below the configured minimum. Fails with
	// ErrNotBuilt before the first Build.
	Query(ctx context.Context, text string, k int) ([]Result, error)

	// Count reports the number of indexed chunks.
	Count() int

	// Name identifies the active strategy.
	Name() string

	// Persist writes the index to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the index from the given directory.
	Load(ctx context.Context, dir string) error
}

// New selects an index strategy. With a non-nil embedder the dense
// chromem-backed index is used; otherwise, or when the dense index
// cannot be constructed and fallback is allowed, the TF-IDF index
// steps in. Returns ErrIndexUnavailable when nothing can be set up.
func New(embedder embeddings.Embedder, minSimilarity float64, allowFallback bool) (Index, error) {
	if embedder != nil {
		idx, err := NewChromemIndex(embedder, minSimilarity)
		if err == nil {
			return idx, nil
		}
		if !allowFallback {
			return nil, fmt.Errorf("%w: dense index: %v", ErrIndexUnavailable, err)
		}
	} else if !allowFallback {
		return nil, fmt.Errorf("%w: no embedder configured and fallback disabled", ErrIndexUnavailable)
	}
	return NewTFIDFIndex(minSimilarity), nil
}
