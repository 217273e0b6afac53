package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchDocumentTool defines the search_document MCP tool.
var searchDocumentTool = mcp.NewTool("search_document",
	mcp.WithDescription("Search the loaded legal document for sections matching a natural language query."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of sections to return (default 5)"),
	),
)

// searchClauseTool defines the search_clause MCP tool.
var searchClauseTool = mcp.NewTool("search_clause",
	mcp.WithDescription("Find the sections of the loaded document covering a specific clause topic."),
	mcp.WithString("topic",
		mcp.Required(),
		mcp.Description("Clause topic to look for"),
		mcp.Enum("termination", "payment", "liability", "confidentiality", "notice",
			"indemnification", "intellectual property", "force majeure", "governing law"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of sections to return (default 5)"),
	),
)

// conversationHistoryTool defines the conversation_history MCP tool.
var conversationHistoryTool = mcp.NewTool("conversation_history",
	mcp.WithDescription("Return the recent question/answer turns of the current conversation."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of turns to return (default all)"),
	),
)
