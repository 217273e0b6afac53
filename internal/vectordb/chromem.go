package vectordb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/clauselens/clauselens/internal/chunker"
	"github.com/clauselens/clauselens/internal/embeddings"
)

const collectionName = "document"

// ChromemIndex is the dense embedding strategy, backed by chromem-go
// with vectors from an external embedding service.
type ChromemIndex struct {
	db            *chromem.DB
	collection    *chromem.Collection
	embedder      embeddings.Embedder
	embedFunc     chromem.EmbeddingFunc
	minSimilarity float64
	built         bool
}

// NewChromemIndex creates an empty dense index over the given embedder.
func NewChromemIndex(embedder embeddings.Embedder, minSimilarity float64) (*ChromemIndex, error) {
	if embedder == nil {
		return nil, fmt.Errorf("dense index requires an embedder")
	}
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	idx := &ChromemIndex{
		embedder:      embedder,
		embedFunc:     embeddings.ToChromemFunc(embedder),
		minSimilarity: minSimilarity,
	}
	if err := idx.reset(); err != nil {
		return nil, err
	}
	return idx, nil
}

// reset swaps in a fresh empty database and collection.
func (x *ChromemIndex) reset() error {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, x.embedFunc)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	x.db = db
	x.collection = col
	return nil
}

func (x *ChromemIndex) Name() string { return "dense/" + x.embedder.Name() }

// Build indexes the chunks into a fresh collection, replacing all prior
// entries. The new collection is assembled off to the side and only
// swapped in once complete.
func (x *ChromemIndex) Build(ctx context.Context, chunks []chunker.Chunk) error {
	if len(chunks) == 0 {
		return ErrEmptyCorpus
	}

	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, x.embedFunc)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	if err := col.AddDocuments(ctx, toChromemDocs(chunks), 1); err != nil {
		return fmt.Errorf("indexing chunks: %w", err)
	}

	x.db = db
	x.collection = col
	x.built = true
	return nil
}

// Add indexes additional chunks without a rebuild. Before the first
// Build it behaves like Build.
func (x *ChromemIndex) Add(ctx context.Context, chunks []chunker.Chunk) error {
	if !x.built {
		return x.Build(ctx, chunks)
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := x.collection.AddDocuments(ctx, toChromemDocs(chunks), 1); err != nil {
		return fmt.Errorf("adding chunks: %w", err)
	}
	return nil
}

func (x *ChromemIndex) Query(ctx context.Context, text string, k int) ([]Result, error) {
	if !x.built {
		return nil, ErrNotBuilt
	}
	if k <= 0 {
		k = 5
	}
	// chromem-go requires nResults <= collection size.
	count := x.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	raw, err := x.collection.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	results := make([]Result, 0, len(raw))
	for _, r := range raw {
		sim := float64(r.Similarity)
		if sim < x.minSimilarity {
			continue
		}
		results = append(results, Result{
			Chunk:      metadataToChunk(r.Content, r.Metadata),
			Similarity: sim,
		})
	}
	return results, nil
}

func (x *ChromemIndex) Count() int {
	if !x.built {
		return 0
	}
	return x.collection.Count()
}

func (x *ChromemIndex) Persist(ctx context.Context, dir string) error {
	if !x.built {
		return ErrNotBuilt
	}
	return x.db.ExportToFile(dir+"/index.gob.gz", true, "")
}

func (x *ChromemIndex) Load(ctx context.Context, dir string) error {
	if err := x.db.ImportFromFile(dir+"/index.gob.gz", ""); err != nil {
		return fmt.Errorf("import index: %w", err)
	}
	col := x.db.GetCollection(collectionName, x.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	x.collection = col
	x.built = true
	return nil
}

func toChromemDocs(chunks []chunker.Chunk) []chromem.Document {
	docs := make([]chromem.Document, len(chunks))
	for i, ch := range chunks {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("%s:%d", ch.Source, ch.Index),
			Content: ch.Content,
			Metadata: map[string]string{
				"source":      ch.Source,
				"chunk_index": strconv.Itoa(ch.Index),
				"clauses":     strings.Join(ch.PotentialClauses, ","),
			},
		}
	}
	return docs
}

func metadataToChunk(content string, md map[string]string) chunker.Chunk {
	idx, _ := strconv.Atoi(md["chunk_index"])
	var clauses []string
	if md["clauses"] != "" {
		clauses = strings.Split(md["clauses"], ",")
	}
	return chunker.Chunk{
		Content:          content,
		Source:           md["source"],
		Index:            idx,
		PotentialClauses: clauses,
	}
}
