package mcpserver

import (
	"context"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kitbuilder587/research-mcp/internal/search"
	"github.com/kitbuilder587/research-mcp/internal/service"
)

const (
	serverName    = "tavily-research"
	serverVersion = "1.0.0"
)

// Server - тонкий MCP-адаптер над оркестратором. Все ошибки ядра
// превращаются в текстовые ответы, наружу protocol fault не уходит.
type Server struct {
	mcp    *server.MCPServer
	orch   *service.Orchestrator
	logger *zap.Logger
}

func New(orch *service.Orchestrator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		orch:   orch,
		logger: logger,
	}

	m := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
	)

	m.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Search the web via Tavily and return formatted results"),
		mcp.WithString("query", mcp.Required(), mcp.Description("The search query")),
		mcp.WithString("search_depth", mcp.Description("Search depth: basic or advanced")),
		mcp.WithString("topic", mcp.Description("Search category: general or news")),
		mcp.WithNumber("max_results", mcp.Description("Maximum number of results")),
		mcp.WithBoolean("include_images", mcp.Description("Include image metadata in results")),
		mcp.WithBoolean("include_raw_content", mcp.Description("Include raw page content")),
	), s.handleSearch)

	m.AddTool(mcp.NewTool("comprehensive_search",
		mcp.WithDescription("Research a query across business, news, finance and politics topics in parallel"),
		mcp.WithString("query", mcp.Required(), mcp.Description("The search query to research")),
	), s.handleComprehensiveSearch)

	s.mcp = m
	return s
}

// ServeStdio блокируется до EOF на stdin или отмены контекста
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("mcp server starting",
		zap.String("name", serverName),
		zap.String("version", serverVersion),
	)
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, ok := req.Params.Arguments["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	searchReq := search.Request{
		Query:         query,
		IncludeAnswer: true,
	}
	if depth, ok := req.Params.Arguments["search_depth"].(string); ok {
		searchReq.SearchDepth = depth
	}
	if topic, ok := req.Params.Arguments["topic"].(string); ok {
		searchReq.Topic = topic
	}
	if maxResults, ok := req.Params.Arguments["max_results"].(float64); ok && maxResults > 0 {
		searchReq.MaxResults = int(maxResults)
	}
	if includeImages, ok := req.Params.Arguments["include_images"].(bool); ok {
		searchReq.IncludeImages = includeImages
	}
	if includeRaw, ok := req.Params.Arguments["include_raw_content"].(bool); ok {
		searchReq.IncludeRawContent = includeRaw
	}

	resp, err := s.orch.Search(ctx, searchReq)
	if err != nil {
		s.logger.Warn("search tool failed", zap.Error(err))
		return mcp.NewToolResultError(service.FormatError(err)), nil
	}

	out := service.FormatCombined(&search.CombinedResponse{
		Results: resp.Results,
		Answer:  resp.Answer,
	})
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleComprehensiveSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, ok := req.Params.Arguments["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	combined, err := s.orch.ComprehensiveSearch(ctx, query)
	if err != nil {
		s.logger.Warn("comprehensive search tool failed", zap.Error(err))
		return mcp.NewToolResultError(service.FormatError(err)), nil
	}

	return mcp.NewToolResultText(service.FormatCombined(combined)), nil
}
