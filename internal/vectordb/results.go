package vectordb

import (
	"fmt"
	"strings"
)

// FormatResults renders retrieved sections as human-readable text for
// the summarization step and for direct display.
func FormatResults(query string, results []Result) string {
	if len(results) == 0 {
		return "No relevant sections found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d relevant section(s) for query: %q\n", len(results), query))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Section %d (similarity: %.4f) ---\n", i+1, r.Similarity))
		sb.WriteString(fmt.Sprintf("Source: %s (chunk %d)\n", r.Chunk.Source, r.Chunk.Index))
		if len(r.Chunk.PotentialClauses) > 0 {
			sb.WriteString(fmt.Sprintf("Identified clauses: %s\n", strings.Join(r.Chunk.PotentialClauses, ", ")))
		}
		sb.WriteString(strings.TrimSpace(r.Chunk.Content))
		sb.WriteString("\n")
	}

	return sb.String()
}
