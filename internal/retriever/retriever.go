// Package retriever answers document questions against the embedding
// index, expanding clause topics into multiple query variants to
// bridge the gap between how users phrase a topic and how the
// document phrases it.
package retriever

import (
	"context"
	"fmt"

	"github.com/clauselens/clauselens/internal/vectordb"
)

// variantSuffixes generate the query variants tried for one topic.
var variantSuffixes = []string{"", " clause", " provision", " terms"}

// Retriever wraps an Index with clause-aware search strategies.
type Retriever struct {
	index vectordb.Index
}

// New creates a Retriever over the given index.
func New(index vectordb.Index) *Retriever {
	return &Retriever{index: index}
}

// Search queries the index directly, without topic expansion. Used for
// free-text questions that match no clause keyword.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]vectordb.Result, error) {
	results, err := r.index.Query(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	return results, nil
}

// SearchByTopic issues one query per topic variant and merges the
// results: variant order, duplicates removed by exact content (first
// occurrence wins), truncated to k. Fewer than k results is a valid
// partial outcome, not an error.
func (r *Retriever) SearchByTopic(ctx context.Context, topic string, k int) ([]vectordb.Result, error) {
	if k <= 0 {
		k = 5
	}

	// Over-fetch per variant so deduplication still has a good chance
	// of filling k slots.
	perVariant := (k+len(variantSuffixes)-1)/len(variantSuffixes) + 1

	var merged []vectordb.Result
	seen := make(map[string]struct{})

	for _, suffix := range variantSuffixes {
		results, err := r.index.Query(ctx, topic+suffix, perVariant)
		if err != nil {
			return nil, fmt.Errorf("searching topic %q: %w", topic, err)
		}
		for _, res := range results {
			if _, dup := seen[res.Chunk.Content]; dup {
				continue
			}
			seen[res.Chunk.Content] = struct{}{}
			merged = append(merged, res)
			if len(merged) >= k {
				return merged, nil
			}
		}
	}
	return merged, nil
}
