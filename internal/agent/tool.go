package agent

import (
	"context"

	"github.com/clauselens/clauselens/internal/clause"
	"github.com/clauselens/clauselens/internal/retriever"
	"github.com/clauselens/clauselens/internal/summarizer"
	"github.com/clauselens/clauselens/internal/vectordb"
)

// Tool is a capability the agent can invoke with a query.
type Tool interface {
	Run(ctx context.Context, query string) (string, error)
}

// RetrievalTool searches the document index, routing clause-topic
// queries through topic expansion.
type RetrievalTool struct {
	retriever  *retriever.Retriever
	maxResults int
}

// NewRetrievalTool wraps a retriever as an agent tool.
func NewRetrievalTool(r *retriever.Retriever, maxResults int) *RetrievalTool {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &RetrievalTool{retriever: r, maxResults: maxResults}
}

func (t *RetrievalTool) Run(ctx context.Context, query string) (string, error) {
	var (
		results []vectordb.Result
		err     error
	)
	if topic := clause.DetectTopic(query); topic != "" {
		results, err = t.retriever.SearchByTopic(ctx, topic, t.maxResults)
	} else {
		results, err = t.retriever.Search(ctx, query, t.maxResults)
	}
	if err != nil {
		return "", err
	}
	return vectordb.FormatResults(query, results), nil
}

// SummaryTool rewrites legal text in the style the query asks for.
type SummaryTool struct {
	summarizer *summarizer.Summarizer
}

// NewSummaryTool wraps a summarizer as an agent tool. The style and
// focus are inferred from the query itself.
func NewSummaryTool(s *summarizer.Summarizer) *SummaryTool {
	return &SummaryTool{summarizer: s}
}

func (t *SummaryTool) Run(ctx context.Context, query string) (string, error) {
	style := summarizer.DetectStyle(query)
	focus := summarizer.DetectFocus(query)
	return t.summarizer.Summarize(ctx, query, style, focus)
}

// summarizeText applies query-derived style and focus to already
// retrieved content.
func (t *SummaryTool) summarizeText(ctx context.Context, text, query string) (string, error) {
	style := summarizer.DetectStyle(query)
	focus := summarizer.DetectFocus(query)
	return t.summarizer.Summarize(ctx, text, style, focus)
}
