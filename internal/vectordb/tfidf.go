package vectordb

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/clauselens/clauselens/internal/chunker"
)

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]+\b`)

// TFIDFIndex is the fallback strategy: a corpus-fitted TF-IDF
// vectorizer with brute-force cosine ranking. It needs no external
// embedding service, trading semantic recall for zero dependencies.
//
// IDF is a corpus-global statistic, so this strategy cannot add chunks
// incrementally; Add always demands a rebuild.
type TFIDFIndex struct {
	minSimilarity float64

	vocabulary map[string]int
	idf        []float64
	vectors    [][]float64
	chunks     []chunker.Chunk
	built      bool
}

// NewTFIDFIndex creates an unbuilt TF-IDF index.
func NewTFIDFIndex(minSimilarity float64) *TFIDFIndex {
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	return &TFIDFIndex{minSimilarity: minSimilarity}
}

func (x *TFIDFIndex) Name() string { return "tfidf" }

// Build fits the vocabulary and IDF table over the whole corpus and
// embeds every chunk. Prior state is discarded.
func (x *TFIDFIndex) Build(ctx context.Context, chunks []chunker.Chunk) error {
	if len(chunks) == 0 {
		return ErrEmptyCorpus
	}

	// Document frequency per term.
	df := make(map[string]int)
	tokenized := make([][]string, len(chunks))
	for i, ch := range chunks {
		tokens := tokenize(ch.Content)
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Stable vocabulary ordering.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(chunks))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log(n / float64(df[term]))
	}

	vectors := make([][]float64, len(chunks))
	for i, tokens := range tokenized {
		vectors[i] = embedTokens(tokens, vocab, idf)
	}

	x.vocabulary = vocab
	x.idf = idf
	x.vectors = vectors
	x.chunks = append([]chunker.Chunk(nil), chunks...)
	x.built = true
	return nil
}

// Add is unsupported: the IDF table would have to be re-fit over the
// whole corpus.
func (x *TFIDFIndex) Add(ctx context.Context, chunks []chunker.Chunk) error {
	return ErrRebuildRequired
}

func (x *TFIDFIndex) Query(ctx context.Context, text string, k int) ([]Result, error) {
	if !x.built {
		return nil, ErrNotBuilt
	}
	if k <= 0 {
		k = 5
	}

	// Out-of-vocabulary query terms contribute zero weight.
	queryVec := embedTokens(tokenize(text), x.vocabulary, x.idf)

	scored := make([]Result, len(x.chunks))
	for i, vec := range x.vectors {
		scored[i] = Result{
			Chunk:      x.chunks[i],
			Similarity: cosineSimilarity(queryVec, vec),
		}
	}
	// Stable: ties keep original chunk order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	var results []Result
	for _, r := range scored {
		if len(results) >= k {
			break
		}
		if r.Similarity < x.minSimilarity {
			break
		}
		results = append(results, r)
	}
	return results, nil
}

func (x *TFIDFIndex) Count() int { return len(x.chunks) }

// tfidfState is the on-disk gob layout.
type tfidfState struct {
	Vocabulary map[string]int
	IDF        []float64
	Vectors    [][]float64
	Chunks     []chunker.Chunk
}

func (x *TFIDFIndex) Persist(ctx context.Context, dir string) error {
	if !x.built {
		return ErrNotBuilt
	}
	f, err := os.Create(filepath.Join(dir, "tfidf.gob"))
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	state := tfidfState{
		Vocabulary: x.vocabulary,
		IDF:        x.idf,
		Vectors:    x.vectors,
		Chunks:     x.chunks,
	}
	if err := gob.NewEncoder(f).Encode(state); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}

func (x *TFIDFIndex) Load(ctx context.Context, dir string) error {
	f, err := os.Open(filepath.Join(dir, "tfidf.gob"))
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var state tfidfState
	if err := gob.NewDecoder(f).Decode(&state); err != nil {
		return fmt.Errorf("decode index: %w", err)
	}
	x.vocabulary = state.Vocabulary
	x.idf = state.IDF
	x.vectors = state.Vectors
	x.chunks = state.Chunks
	x.built = true
	return nil
}

// tokenize extracts case-folded alphabetic tokens.
func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// embedTokens maps tokens to a TF-IDF weighted vector over the fitted
// vocabulary. Term frequency is normalized by the token count;
// vocabulary misses are silently dropped.
func embedTokens(tokens []string, vocab map[string]int, idf []float64) []float64 {
	vec := make([]float64, len(vocab))
	if len(tokens) == 0 {
		return vec
	}
	counts := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := vocab[tok]; ok {
			counts[idx]++
		}
	}
	total := float64(len(tokens))
	for idx, count := range counts {
		vec[idx] = float64(count) / total * idf[idx]
	}
	return vec
}

// cosineSimilarity returns 0, not NaN, when either vector has zero
// magnitude.
func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		magA += v * v
	}
	for _, v := range b {
		magB += v * v
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
