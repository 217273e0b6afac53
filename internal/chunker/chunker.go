package chunker

import (
	"errors"
	"strings"
)

// ErrEmptyInput is returned when a document contains no usable text
// after normalization.
var ErrEmptyInput = errors.New("document contains no text after normalization")

// Chunk is one retrievable unit of document text. Chunks are created
// during ingestion and never mutated afterwards.
type Chunk struct {
	Content string
	Source  string
	Index   int
	// PotentialClauses lists the clause-topic keywords detected in the
	// chunk content, in vocabulary order. Populated by clause.Tagger.
	PotentialClauses []string
}

// separators are tried in order: paragraph breaks first, then lines,
// then spaces, then arbitrary character boundaries.
var separators = []string{"\n\n", "\n", " ", ""}

// Chunker splits raw document text into overlapping fixed-size chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a Chunker with the given target chunk size and overlap,
// both in characters. Non-positive values fall back to the defaults
// (1000 and 200).
func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap <= 0 {
		overlap = 200
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Normalize collapses whitespace runs to single spaces and strips null
// and Unicode replacement characters.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "�", "")
	return strings.Join(strings.Fields(text), " ")
}

// Split normalizes text and cuts it into chunks of at most chunkSize
// characters, each chunk after the first repeating the trailing overlap
// of its predecessor. Chunk indices are assigned 0..N-1 in document
// order. Returns ErrEmptyInput if nothing remains after normalization.
func (c *Chunker) Split(text, source string) ([]Chunk, error) {
	normalized := Normalize(text)
	if normalized == "" {
		return nil, ErrEmptyInput
	}

	pieces := c.splitText(normalized, separators)

	chunks := make([]Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = Chunk{Content: p, Source: source, Index: i}
	}
	return chunks, nil
}

// splitText recursively splits text on the first separator that
// produces pieces, then merges the pieces back into chunks that
// respect chunkSize and overlap. Pieces still larger than chunkSize
// are re-split with the remaining, less-preferred separators.
func (c *Chunker) splitText(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, s := range seps {
		if s == "" {
			sep = s
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		return splitEvery(text, c.chunkSize, c.overlap)
	}
	splits = strings.Split(text, sep)

	var final []string
	var pending []string
	flush := func() {
		if len(pending) > 0 {
			final = append(final, c.mergeSplits(pending, sep)...)
			pending = nil
		}
	}

	for _, s := range splits {
		if s == "" {
			continue
		}
		if len(s) <= c.chunkSize {
			pending = append(pending, s)
			continue
		}
		// Oversized piece: flush what we have and re-split it with the
		// remaining separators.
		flush()
		if len(rest) == 0 {
			final = append(final, splitEvery(s, c.chunkSize, c.overlap)...)
		} else {
			final = append(final, c.splitText(s, rest)...)
		}
	}
	flush()
	return final
}

// mergeSplits greedily packs consecutive splits into chunks of at most
// chunkSize characters, carrying the trailing overlap of each chunk
// into the next one.
func (c *Chunker) mergeSplits(splits []string, sep string) []string {
	sepLen := len(sep)
	var chunks []string
	var current []string
	total := 0

	for _, s := range splits {
		add := len(s)
		if len(current) > 0 {
			add += sepLen
		}
		if total+add > c.chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, sep))
			// Drop leading splits until the retained tail fits the
			// overlap and leaves room for the incoming split.
			for len(current) > 0 && (total > c.overlap || total+add > c.chunkSize) {
				total -= len(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
				add = len(s)
				if len(current) > 0 {
					add += sepLen
				}
			}
		}
		current = append(current, s)
		total += add
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, sep))
	}
	return chunks
}

// splitEvery cuts text into fixed-size pieces, each repeating the
// trailing overlap of its predecessor. Last-resort split when no
// separator is available.
func splitEvery(text string, size, overlap int) []string {
	if len(text) <= size {
		return []string{text}
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}
	var out []string
	for start := 0; start < len(text); start += step {
		end := start + size
		if end >= len(text) {
			out = append(out, text[start:])
			break
		}
		out = append(out, text[start:end])
	}
	return out
}
