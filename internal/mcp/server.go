// Package mcp exposes document search and conversation history as MCP
// tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/clauselens/clauselens/internal/session"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes legal document QA tools.
// All tools operate on one shared session.
type Server struct {
	session *session.Session
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server over the given session.
func NewServer(sess *session.Session) *Server {
	s := &Server{session: sess}

	s.mcp = server.NewMCPServer(
		"clauselens",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentTool, s.handleSearchDocument)
	s.mcp.AddTool(searchClauseTool, s.handleSearchClause)
	s.mcp.AddTool(conversationHistoryTool, s.handleConversationHistory)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
