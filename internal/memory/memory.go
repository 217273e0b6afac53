// Package memory tracks the question/answer history of one
// conversation and derives the session-level context used to answer
// follow-up questions. "No history yet" is a normal state here: every
// operation returns an empty or default value on a fresh conversation,
// never an error.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/clauselens/clauselens/internal/clause"
)

const (
	defaultMaxTurns         = 20
	defaultMaxContextTokens = 4000

	// recentTurnWindow is how many turns ContextFor quotes verbatim.
	recentTurnWindow = 5
	// relatedTurnWindow is how far back RelatedTurns scans.
	relatedTurnWindow = 10
	// DefaultRelatedThreshold is the minimum shared-word count for a
	// prior turn to count as related.
	DefaultRelatedThreshold = 3

	responsePreviewLen = 200
	followUpPreviewLen = 100
)

// Turn is one user-question/agent-answer exchange. Immutable once
// appended.
type Turn struct {
	Timestamp     time.Time      `json:"timestamp"`
	UserInput     string         `json:"user_input"`
	AgentResponse string         `json:"agent_response"`
	Context       map[string]any `json:"context,omitempty"`
}

// FollowUpContext summarizes the conversation state for generating
// follow-up suggestions.
type FollowUpContext struct {
	LastQuery           string   `json:"last_query"`
	LastResponsePreview string   `json:"last_response_preview"`
	TopicsDiscussed     []string `json:"topics_discussed"`
	ConversationLength  int      `json:"conversation_length"`
	SuggestedFollowUps  []string `json:"suggested_followups"`
}

// followUpRules maps a discussed topic to a follow-up suggested while
// a second topic has not come up yet. Intentionally small and explicit.
var followUpRules = []struct {
	discussed string
	missing   string
	suggest   string
}{
	{"termination", "notice", "notice requirements for termination"},
	{"liability", "damages", "types of damages mentioned"},
}

// Conversation is a bounded FIFO log of turns plus derived session
// statistics. Owned by a single session; callers serialize access.
type Conversation struct {
	maxTurns         int
	maxContextTokens int

	turns []Turn

	topics          map[string]struct{}
	documentQueries int
	clauseQueries   int
	lastQueryTime   time.Time
}

// New creates a Conversation that remembers at most maxTurns exchanges
// and trims assembled context above maxContextTokens (estimated at 4
// characters per token). Non-positive arguments select the defaults
// (20 turns, 4000 tokens).
func New(maxTurns, maxContextTokens int) *Conversation {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	if maxContextTokens <= 0 {
		maxContextTokens = defaultMaxContextTokens
	}
	return &Conversation{
		maxTurns:         maxTurns,
		maxContextTokens: maxContextTokens,
		topics:           make(map[string]struct{}),
	}
}

// Append records a new turn, evicting the oldest one when the log
// exceeds maxTurns, and folds the user input into the session
// statistics. Empty inputs are valid.
func (c *Conversation) Append(userInput, agentResponse string, turnContext map[string]any) {
	turn := Turn{
		Timestamp:     time.Now(),
		UserInput:     userInput,
		AgentResponse: agentResponse,
		Context:       turnContext,
	}
	c.turns = append(c.turns, turn)
	if len(c.turns) > c.maxTurns {
		c.turns = c.turns[len(c.turns)-c.maxTurns:]
	}
	c.absorb(turn)
}

// absorb updates the session statistics from one turn.
func (c *Conversation) absorb(turn Turn) {
	input := strings.ToLower(turn.UserInput)

	for _, kw := range clause.SessionKeywords {
		if strings.Contains(input, kw) {
			c.topics[kw] = struct{}{}
		}
	}
	if strings.Contains(input, "document") || strings.Contains(input, "contract") {
		c.documentQueries++
	}
	if strings.Contains(input, "clause") {
		c.clauseQueries++
	}
	c.lastQueryTime = turn.Timestamp
}

// Len reports how many turns are currently remembered.
func (c *Conversation) Len() int { return len(c.turns) }

// History returns a copy of the most recent n turns, oldest first.
// n <= 0 returns all remembered turns.
func (c *Conversation) History(n int) []Turn {
	if n <= 0 || n > len(c.turns) {
		n = len(c.turns)
	}
	out := make([]Turn, n)
	copy(out, c.turns[len(c.turns)-n:])
	return out
}

// Topics returns the distinct clause topics mentioned so far, sorted.
// The set only grows until Clear.
func (c *Conversation) Topics() []string {
	out := make([]string, 0, len(c.topics))
	for t := range c.topics {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ContextFor assembles the context string injected ahead of reasoning
// about the current query: a header, the session statistics, the last
// few turns verbatim, and any related prior turns. When the estimated
// token count exceeds the budget, only the first three and last three
// sections survive. Deterministic and lossy, not a summarizer.
func (c *Conversation) ContextFor(currentQuery string) string {
	if len(c.turns) == 0 {
		return "No previous conversation context."
	}

	parts := []string{"CONVERSATION CONTEXT:"}

	parts = append(parts, "\nSession Information:")
	if len(c.topics) > 0 {
		parts = append(parts, fmt.Sprintf("- topics_discussed: %s", strings.Join(c.Topics(), ", ")))
	}
	if c.documentQueries > 0 {
		parts = append(parts, fmt.Sprintf("- document_queries: %d", c.documentQueries))
	}
	if c.clauseQueries > 0 {
		parts = append(parts, fmt.Sprintf("- clause_queries: %d", c.clauseQueries))
	}
	parts = append(parts, fmt.Sprintf("- last_query_time: %s", c.lastQueryTime.Format(time.RFC3339)))

	parts = append(parts, "\nRecent Conversation:")
	for i, turn := range c.History(recentTurnWindow) {
		parts = append(parts, fmt.Sprintf("\n%d. User: %s", i+1, turn.UserInput))
		parts = append(parts, fmt.Sprintf("   Agent: %s", truncate(turn.AgentResponse, responsePreviewLen)))
	}

	if related := c.RelatedTurns(currentQuery, DefaultRelatedThreshold); len(related) > 0 {
		parts = append(parts, "\nRelated Previous Queries:")
		for _, turn := range related {
			parts = append(parts, fmt.Sprintf("- User asked: %s", turn.UserInput))
		}
	}

	text := strings.Join(parts, "\n")

	// Crude estimate: one token per four characters. Over budget, keep
	// the first and last three sections only.
	if len(text)*4 > c.maxContextTokens && len(parts) > 6 {
		kept := append(append([]string{}, parts[:3]...), parts[len(parts)-3:]...)
		text = strings.Join(kept, "\n")
	}
	return text
}

// RelatedTurns scans the most recent turns for prior questions sharing
// at least threshold words with the current query, case-insensitive.
// Results come back in chronological order.
func (c *Conversation) RelatedTurns(currentQuery string, threshold int) []Turn {
	if len(c.turns) == 0 {
		return nil
	}
	if threshold <= 0 {
		threshold = DefaultRelatedThreshold
	}

	queryWords := wordSet(currentQuery)
	var related []Turn
	for _, turn := range c.History(relatedTurnWindow) {
		common := 0
		for w := range wordSet(turn.UserInput) {
			if _, ok := queryWords[w]; ok {
				common++
			}
		}
		if common >= threshold {
			related = append(related, turn)
		}
	}
	return related
}

// FollowUp returns context for generating follow-up questions. A fresh
// or cleared conversation yields the zero value.
func (c *Conversation) FollowUp() FollowUpContext {
	if len(c.turns) == 0 {
		return FollowUpContext{}
	}

	last := c.turns[len(c.turns)-1]
	fc := FollowUpContext{
		LastQuery:           last.UserInput,
		LastResponsePreview: truncate(last.AgentResponse, followUpPreviewLen),
		TopicsDiscussed:     c.Topics(),
		ConversationLength:  len(c.turns),
	}

	for _, rule := range followUpRules {
		_, has := c.topics[rule.discussed]
		_, covered := c.topics[rule.missing]
		if has && !covered {
			fc.SuggestedFollowUps = append(fc.SuggestedFollowUps, rule.suggest)
		}
	}
	return fc
}

// Clear empties the turn log and the session statistics entirely.
func (c *Conversation) Clear() {
	c.turns = nil
	c.topics = make(map[string]struct{})
	c.documentQueries = 0
	c.clauseQueries = 0
	c.lastQueryTime = time.Time{}
}

// Restore replaces the conversation with previously exported turns,
// preserving their timestamps and re-deriving the session statistics.
func (c *Conversation) Restore(turns []Turn) {
	c.Clear()
	if len(turns) > c.maxTurns {
		turns = turns[len(turns)-c.maxTurns:]
	}
	c.turns = append(c.turns, turns...)
	for _, turn := range c.turns {
		c.absorb(turn)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
