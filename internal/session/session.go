// Package session ties one document index, one conversation and one
// agent together under a single lock, and manages the set of live
// sessions.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clauselens/clauselens/internal/agent"
	"github.com/clauselens/clauselens/internal/chunker"
	"github.com/clauselens/clauselens/internal/clause"
	"github.com/clauselens/clauselens/internal/embeddings"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/memory"
	"github.com/clauselens/clauselens/internal/retriever"
	"github.com/clauselens/clauselens/internal/summarizer"
	"github.com/clauselens/clauselens/internal/vectordb"
)

// Options configure a new session. Zero values select the defaults of
// each component. A nil Embedder selects the lexical fallback index.
type Options struct {
	Provider         llm.Provider
	Embedder         embeddings.Embedder
	ChunkSize        int
	ChunkOverlap     int
	MinSimilarity    float64
	MaxResults       int
	MaxTurns         int
	MaxContextTokens int
}

// Session owns the state of one conversation over one document. All
// access is serialized by a single mutex, so a document reload cannot
// interleave with a question.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	index     vectordb.Index
	retriever *retriever.Retriever
	conv      *memory.Conversation
	agent     *agent.Agent
	chunker   *chunker.Chunker
	tagger    *clause.Tagger

	documentSource string
	chunkCount     int
}

// New creates an empty session. Documents are loaded afterwards with
// LoadDocument.
func New(opts Options) (*Session, error) {
	index, err := vectordb.New(opts.Embedder, opts.MinSimilarity, true)
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	conv := memory.New(opts.MaxTurns, opts.MaxContextTokens)
	ret := retriever.New(index)
	retrieval := agent.NewRetrievalTool(ret, opts.MaxResults)
	summary := agent.NewSummaryTool(summarizer.New(opts.Provider))

	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		index:     index,
		retriever: ret,
		conv:      conv,
		agent:     agent.New(opts.Provider, retrieval, summary, conv),
		chunker:   chunker.New(opts.ChunkSize, opts.ChunkOverlap),
		tagger:    clause.NewTagger(),
	}, nil
}

// LoadDocument chunks, tags and indexes the given text, replacing any
// previously loaded document. The conversation is kept: the user may
// compare against what was already discussed. Returns the number of
// indexed chunks.
func (s *Session) LoadDocument(ctx context.Context, source, text string) (int, error) {
	chunks, err := s.chunker.Split(text, source)
	if err != nil {
		return 0, fmt.Errorf("chunking %s: %w", source, err)
	}
	chunks = s.tagger.Tag(chunks)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Build(ctx, chunks); err != nil {
		return 0, fmt.Errorf("indexing %s: %w", source, err)
	}
	s.documentSource = source
	s.chunkCount = len(chunks)
	return len(chunks), nil
}

// Ask runs one agent turn for the given query.
func (s *Session) Ask(ctx context.Context, query string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent.Process(ctx, query)
}

// Search queries the index directly, bypassing the agent.
func (s *Session) Search(ctx context.Context, query string, k int) ([]vectordb.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Query(ctx, query, k)
}

// SearchTopic queries the index with clause-topic variant expansion,
// bypassing the agent.
func (s *Session) SearchTopic(ctx context.Context, topic string, k int) ([]vectordb.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retriever.SearchByTopic(ctx, topic, k)
}

// History returns the most recent n conversation turns, oldest first.
func (s *Session) History(n int) []memory.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.History(n)
}

// Suggestions returns follow-up questions worth asking next.
func (s *Session) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent.FollowUpSuggestions()
}

// FollowUp returns the structured follow-up context of the
// conversation.
func (s *Session) FollowUp() memory.FollowUpContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.FollowUp()
}

// ClearConversation forgets all turns and session statistics. The
// indexed document stays.
func (s *Session) ClearConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.Clear()
}

// RestoreConversation replaces the conversation with previously stored
// turns.
func (s *Session) RestoreConversation(turns []memory.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.Restore(turns)
}

// DocumentSource reports which document is currently indexed, if any.
func (s *Session) DocumentSource() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentSource
}

// ChunkCount reports how many chunks the current document produced.
func (s *Session) ChunkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chunkCount
}

// PersistIndex writes the current index to the given directory.
func (s *Session) PersistIndex(ctx context.Context, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Persist(ctx, dir)
}

// LoadIndex restores a previously persisted index from the given
// directory.
func (s *Session) LoadIndex(ctx context.Context, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.index.Load(ctx, dir); err != nil {
		return err
	}
	s.chunkCount = s.index.Count()
	return nil
}

// IndexName reports which index strategy is active.
func (s *Session) IndexName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Name()
}

// Manager tracks live sessions by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
}

// NewManager creates a Manager that builds sessions with the given
// options.
func NewManager(opts Options) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// Create starts a new session and registers it.
func (m *Manager) Create() (*Session, error) {
	s, err := New(m.opts)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// IDs returns the ids of all live sessions.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
