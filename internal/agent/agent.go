// Package agent orchestrates retrieval, summarization and direct
// responses over a conversation, deciding per query which path to
// take.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/memory"
	"github.com/clauselens/clauselens/internal/vectordb"
)

// Action is the routing decision for one query.
type Action string

const (
	ActionRetrieve  Action = "retrieve"
	ActionSummarize Action = "summarize"
	ActionRespond   Action = "respond"
)

// ParseAction clamps free-form model output to a valid Action.
// Anything unrecognized becomes ActionRetrieve.
func ParseAction(s string) Action {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionSummarize:
		return ActionSummarize
	case ActionRespond:
		return ActionRespond
	default:
		return ActionRetrieve
	}
}

const reasoningPromptFormat = `You are a Legal Assistant Agent helping students understand legal documents.

Conversation Context:
%s

Current User Query: "%s"

Based on the query, determine what action you need to take:
1. "retrieve" - if the user is asking about specific clauses, document content, or needs information from the document
2. "summarize" - if you already have content that needs to be simplified or explained
3. "respond" - if this is a general question that doesn't require document retrieval

Consider the conversation context to provide better continuity.

Respond with just one word: retrieve, summarize, or respond`

const respondPromptFormat = `You are a helpful Legal Assistant Agent for students.

Conversation Context:
%s

User Query: "%s"

Please provide a helpful response. If this is a general legal question, provide educational information.
If the user is asking about document content but no document has been uploaded, let them know they need to upload a document first.

Keep your response friendly, educational, and appropriate for students learning about legal documents.`

// Agent answers queries by routing them through its tools and records
// every exchange in conversation memory.
type Agent struct {
	provider  llm.Provider
	retrieval *RetrievalTool
	summary   *SummaryTool
	memory    *memory.Conversation
}

// New creates an Agent from its collaborators.
func New(provider llm.Provider, retrieval *RetrievalTool, summary *SummaryTool, mem *memory.Conversation) *Agent {
	return &Agent{
		provider:  provider,
		retrieval: retrieval,
		summary:   summary,
		memory:    mem,
	}
}

// Memory exposes the conversation for history and follow-up access.
func (a *Agent) Memory() *memory.Conversation { return a.memory }

// Process answers one user query. The exchange is appended to memory
// regardless of which path produced the answer.
func (a *Agent) Process(ctx context.Context, query string) (string, error) {
	convContext := a.memory.ContextFor(query)
	action := a.decide(ctx, query, convContext)

	var (
		retrieved string
		response  string
		err       error
	)

	switch action {
	case ActionRetrieve:
		retrieved, response, err = a.retrieveAndExplain(ctx, query, convContext)
	case ActionSummarize:
		// Nothing retrieved yet this turn, so there is no content to
		// condense. Treat it as a direct response.
		response, err = a.respond(ctx, query, convContext)
	case ActionRespond:
		response, err = a.respond(ctx, query, convContext)
	}
	if err != nil {
		return "", err
	}

	a.memory.Append(query, response, map[string]any{
		"action_taken":             string(action),
		"retrieved_content_length": len(retrieved),
	})
	return response, nil
}

func (a *Agent) decide(ctx context.Context, query, convContext string) Action {
	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf(reasoningPromptFormat, convContext, query),
		}},
	})
	if err != nil {
		log.Printf("agent: reasoning failed, defaulting to retrieve: %v", err)
		return ActionRetrieve
	}
	return ParseAction(resp.Content)
}

// retrieveAndExplain fetches matching document sections and, when any
// were found, simplifies them with the summarizer. An index that is
// not built yet routes to a direct response so the user hears they
// need to load a document.
func (a *Agent) retrieveAndExplain(ctx context.Context, query, convContext string) (retrieved, response string, err error) {
	retrieved, err = a.retrieval.Run(ctx, query)
	if err != nil {
		if errors.Is(err, vectordb.ErrNotBuilt) || errors.Is(err, vectordb.ErrEmptyCorpus) {
			response, err = a.respond(ctx, query, convContext)
			return "", response, err
		}
		return "", "", fmt.Errorf("retrieving for %q: %w", query, err)
	}

	if retrieved == "" || strings.Contains(retrieved, "No relevant") {
		return retrieved, retrieved, nil
	}

	summary, serr := a.summary.summarizeText(ctx, retrieved, query)
	if serr != nil {
		log.Printf("agent: summarization failed, returning raw results: %v", serr)
		return retrieved, retrieved, nil
	}
	return retrieved, summary, nil
}

func (a *Agent) respond(ctx context.Context, query, convContext string) (string, error) {
	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf(respondPromptFormat, convContext, query),
		}},
	})
	if err != nil {
		return "", fmt.Errorf("responding to %q: %w", query, err)
	}
	return resp.Content, nil
}

var baseSuggestions = []string{
	"Can you explain this in simpler terms?",
	"What are the key risks I should be aware of?",
	"What are my obligations under this clause?",
}

// topicSuggestions are appended when their topic came up in the
// conversation.
var topicSuggestions = []struct {
	topic      string
	suggestion string
}{
	{"termination", "What notice period is required for termination?"},
	{"payment", "What happens if payment is late?"},
	{"liability", "How much liability am I exposed to?"},
}

// FollowUpSuggestions returns up to five questions worth asking next,
// seeded with the topics discussed so far.
func (a *Agent) FollowUpSuggestions() []string {
	discussed := make(map[string]struct{})
	for _, t := range a.memory.Topics() {
		discussed[t] = struct{}{}
	}

	suggestions := append([]string(nil), baseSuggestions...)
	for _, ts := range topicSuggestions {
		if _, ok := discussed[ts.topic]; ok {
			suggestions = append(suggestions, ts.suggestion)
		}
	}
	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions
}
