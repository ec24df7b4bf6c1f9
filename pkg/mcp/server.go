package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/refract/pkg/mcplog"
	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/parser/queries"
	"github.com/gnana997/refract/pkg/workspace"
)

const serverVersion = "0.1.0-dev"

// Server implements the MCP server for refract, exposing refactoring
// operations and workspace reference queries as tools.
type Server struct {
	mcpServer *server.MCPServer
	ws        *workspace.Workspace
	parsers   *parser.ParserManager
	queries   *queries.QueryManager
	slogger   *slog.Logger
	logger    *mcplog.Logger // JSONL call log; may be nil
}

// NewServer creates an MCP server over a workspace. callLog may be nil to
// disable tool call logging.
func NewServer(
	ws *workspace.Workspace,
	pm *parser.ParserManager,
	qm *queries.QueryManager,
	slogger *slog.Logger,
	callLog *mcplog.Logger,
) *Server {
	if slogger == nil {
		slogger = slog.Default()
	}

	s := &Server{
		ws:      ws,
		parsers: pm,
		queries: qm,
		slogger: slogger,
		logger:  callLog,
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if callLog != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("refract", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: extractFunctionTool(), Handler: s.handleExtractFunction},
		server.ServerTool{Tool: extractVariableTool(), Handler: s.handleExtractVariable},
		server.ServerTool{Tool: inlineVariableTool(), Handler: s.handleInlineVariable},
		server.ServerTool{Tool: changeSignatureTool(), Handler: s.handleChangeSignature},
		server.ServerTool{Tool: safeDeleteTool(), Handler: s.handleSafeDelete},
		server.ServerTool{Tool: findDeadCodeTool(), Handler: s.handleFindDeadCode},
		server.ServerTool{Tool: findReferencesTool(), Handler: s.handleFindReferences},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
