package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/clauselens/clauselens/internal/vectordb"
)

// handleSearchDocument searches the loaded document with a free-text
// query.
func (s *Server) handleSearchDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	results, err := s.session.Search(ctx, query, limit)
	if err != nil {
		if errors.Is(err, vectordb.ErrNotBuilt) {
			return mcp.NewToolResultError("No document is loaded. Run `clauselens ingest` first."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return mcp.NewToolResultText(vectordb.FormatResults(query, results)), nil
}

// handleSearchClause searches the document for one clause topic.
func (s *Server) handleSearchClause(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := request.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: topic"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	results, err := s.session.SearchTopic(ctx, topic, limit)
	if err != nil {
		if errors.Is(err, vectordb.ErrNotBuilt) {
			return mcp.NewToolResultError("No document is loaded. Run `clauselens ingest` first."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("clause search failed: %v", err)), nil
	}

	return mcp.NewToolResultText(vectordb.FormatResults(topic, results)), nil
}

// handleConversationHistory returns the recent turns of the session.
func (s *Server) handleConversationHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 0)

	turns := s.session.History(limit)
	if len(turns) == 0 {
		return mcp.NewToolResultText("No conversation yet."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d turn(s):\n", len(turns)))
	for i, turn := range turns {
		sb.WriteString(fmt.Sprintf("\n--- Turn %d (%s) ---\n", i+1, turn.Timestamp.Format("2006-01-02 15:04:05")))
		sb.WriteString("User: " + turn.UserInput + "\n")
		sb.WriteString("Assistant: " + turn.AgentResponse + "\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}
