package clause

import (
	"strings"

	"github.com/clauselens/clauselens/internal/chunker"
)

// Tagger annotates chunks with the clause topics their content mentions.
type Tagger struct {
	vocabulary []string
}

// NewTagger creates a Tagger over the default vocabulary. Additional
// keywords extend the vocabulary and are matched after the defaults.
func NewTagger(extra ...string) *Tagger {
	vocab := make([]string, 0, len(Vocabulary)+len(extra))
	vocab = append(vocab, Vocabulary...)
	vocab = append(vocab, extra...)
	return &Tagger{vocabulary: vocab}
}

// Tag records, for each chunk, every vocabulary keyword contained in
// its content (case-insensitive). Chunks without matches get an empty
// tag list. Tag never fails; it returns the same slice with metadata
// filled in.
func (t *Tagger) Tag(chunks []chunker.Chunk) []chunker.Chunk {
	for i := range chunks {
		content := strings.ToLower(chunks[i].Content)
		var tags []string
		for _, kw := range t.vocabulary {
			if strings.Contains(content, kw) {
				tags = append(tags, kw)
			}
		}
		chunks[i].PotentialClauses = tags
	}
	return chunks
}

// DetectTopic inspects a free-text query and returns the first clause
// topic whose synonyms appear in it, or "" when the query is not
// clause-specific.
func DetectTopic(query string) string {
	q := strings.ToLower(query)
	for _, topic := range topicOrder {
		for _, syn := range topicSynonyms[topic] {
			if strings.Contains(q, syn) {
				return topic
			}
		}
	}
	return ""
}
