package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/memory"
	"github.com/clauselens/clauselens/internal/session"
)

type staticProvider struct{}

func (staticProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: "ok"}, nil
}
func (staticProvider) Name() string { return "static" }

const sampleText = `TERMINATION. Either party may terminate this Agreement and termination requires thirty days written notice. PAYMENT. Invoices are due within thirty days of receipt.`

func newTestSession(t *testing.T, loadDoc bool) *session.Session {
	t.Helper()
	sess, err := session.New(session.Options{Provider: staticProvider{}})
	if err != nil {
		t.Fatalf("session.New() error: %v", err)
	}
	if loadDoc {
		if _, err := sess.LoadDocument(context.Background(), "msa.txt", sampleText); err != nil {
			t.Fatalf("LoadDocument() error: %v", err)
		}
	}
	return sess
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want TextContent", result.Content[0])
	}
	return tc.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{searchDocumentTool, "search_document"},
		{searchClauseTool, "search_clause"},
		{conversationHistoryTool, "conversation_history"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer(newTestSession(t, false))
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
}

func TestHandleSearchDocument(t *testing.T) {
	srv := NewServer(newTestSession(t, true))
	ctx := context.Background()

	t.Run("basic search", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "termination notice"}

		result, err := srv.handleSearchDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(textContent(t, result), "msa.txt") {
			t.Error("result does not name the source document")
		}
	})

	t.Run("missing query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleSearchDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("no document loaded", func(t *testing.T) {
		emptySrv := NewServer(newTestSession(t, false))
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "anything"}

		result, err := emptySrv.handleSearchDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error before a document is loaded")
		}
	})
}

func TestHandleSearchClause(t *testing.T) {
	srv := NewServer(newTestSession(t, true))
	ctx := context.Background()

	t.Run("known topic", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"topic": "termination", "limit": float64(3)}

		result, err := srv.handleSearchClause(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(strings.ToLower(textContent(t, result)), "terminat") {
			t.Error("result off topic")
		}
	})

	t.Run("missing topic", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleSearchClause(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing topic")
		}
	})
}

func TestHandleConversationHistory(t *testing.T) {
	sess := newTestSession(t, false)
	srv := NewServer(sess)
	ctx := context.Background()

	t.Run("empty conversation", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleConversationHistory(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(textContent(t, result), "No conversation yet") {
			t.Errorf("unexpected text: %q", textContent(t, result))
		}
	})

	t.Run("with turns", func(t *testing.T) {
		sess.RestoreConversation([]memory.Turn{
			{Timestamp: time.Now(), UserInput: "what is the notice period?", AgentResponse: "thirty days"},
		})

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"limit": float64(5)}

		result, err := srv.handleConversationHistory(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := textContent(t, result)
		if !strings.Contains(text, "notice period") || !strings.Contains(text, "thirty days") {
			t.Errorf("history text = %q", text)
		}
	})
}
