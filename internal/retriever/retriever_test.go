package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/clauselens/clauselens/internal/chunker"
	"github.com/clauselens/clauselens/internal/vectordb"
)

func buildTestIndex(t *testing.T) vectordb.Index {
	t.Helper()
	texts := []string{
		"scope of work provider agrees to perform consulting services",
		"client shall pay provider a total fee in monthly installments",
		"invoices are payable within thirty days of receipt",
		"either party may terminate this agreement upon written notice termination clause",
		"both parties agree to maintain confidentiality of proprietary information",
		"provider total liability shall not exceed the total fees paid",
		"all work products created by provider shall be owned by client",
		"payment terms require payment within thirty days of each invoice",
		"neither party shall be liable for force majeure delays",
		"this agreement is governed by the laws of the state",
	}
	chunks := make([]chunker.Chunk, len(texts))
	for i, txt := range texts {
		chunks[i] = chunker.Chunk{Content: txt, Source: "contract.txt", Index: i}
	}
	idx := vectordb.NewTFIDFIndex(0)
	if err := idx.Build(context.Background(), chunks); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestSearchByTopic_FindsMatchingChunk(t *testing.T) {
	r := New(buildTestIndex(t))

	results, err := r.SearchByTopic(context.Background(), "termination", 3)
	if err != nil {
		t.Fatalf("SearchByTopic: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results for termination topic")
	}

	found := false
	for _, res := range results {
		if res.Chunk.Index == 3 {
			found = true
		}
	}
	if !found {
		t.Error("termination chunk (index 3) not in results")
	}
}

func TestSearchByTopic_NoDuplicateContent(t *testing.T) {
	r := New(buildTestIndex(t))

	results, err := r.SearchByTopic(context.Background(), "payment", 5)
	if err != nil {
		t.Fatalf("SearchByTopic: %v", err)
	}

	seen := make(map[string]bool)
	for _, res := range results {
		if seen[res.Chunk.Content] {
			t.Errorf("duplicate content in results: %q", res.Chunk.Content)
		}
		seen[res.Chunk.Content] = true
	}
}

func TestSearchByTopic_RespectsK(t *testing.T) {
	r := New(buildTestIndex(t))

	for _, k := range []int{1, 2, 3} {
		results, err := r.SearchByTopic(context.Background(), "payment", k)
		if err != nil {
			t.Fatalf("SearchByTopic(k=%d): %v", k, err)
		}
		if len(results) > k {
			t.Errorf("k=%d: got %d results", k, len(results))
		}
	}
}

func TestSearchByTopic_PartialResultIsNotAnError(t *testing.T) {
	r := New(buildTestIndex(t))

	// Far more results requested than the corpus can supply.
	results, err := r.SearchByTopic(context.Background(), "indemnification", 50)
	if err != nil {
		t.Fatalf("SearchByTopic: %v", err)
	}
	if len(results) > 10 {
		t.Errorf("more results than chunks in corpus: %d", len(results))
	}
}

func TestSearch_Direct(t *testing.T) {
	r := New(buildTestIndex(t))

	results, err := r.Search(context.Background(), "confidentiality proprietary information", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Chunk.Index != 4 {
		t.Errorf("top result: got chunk %d, want chunk 4", results[0].Chunk.Index)
	}
}

func TestSearch_SurfacesNotBuilt(t *testing.T) {
	r := New(vectordb.NewTFIDFIndex(0))

	if _, err := r.Search(context.Background(), "anything", 3); !errors.Is(err, vectordb.ErrNotBuilt) {
		t.Errorf("got %v, want ErrNotBuilt", err)
	}
	if _, err := r.SearchByTopic(context.Background(), "termination", 3); !errors.Is(err, vectordb.ErrNotBuilt) {
		t.Errorf("got %v, want ErrNotBuilt", err)
	}
}
