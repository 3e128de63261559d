// Package mcpserver exposes the page builder to AI agents over the Model
// Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"pagebuilder/internal/render"
	"pagebuilder/internal/service"
)

// Server is the MCP server for the page builder. It exposes tools,
// resources and prompts so agents can compose, generate and publish pages.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger

	pages      *service.PageService
	layouts    *service.LayoutService
	library    *service.LibraryService
	categories *service.CategoryService
	grounding  *service.GroundingService
	catalog    *service.CatalogService
	renderer   *render.Renderer

	mu           sync.Mutex
	activePageID string
}

// Deps holds the services the tools call into. Grounding and Catalog may be
// nil; their tools are not registered then.
type Deps struct {
	Logger     *zap.Logger
	Pages      *service.PageService
	Layouts    *service.LayoutService
	Library    *service.LibraryService
	Categories *service.CategoryService
	Grounding  *service.GroundingService
	Catalog    *service.CatalogService
	Renderer   *render.Renderer
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps, version string) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:     logger,
		pages:      deps.Pages,
		layouts:    deps.Layouts,
		library:    deps.Library,
		categories: deps.Categories,
		grounding:  deps.Grounding,
		catalog:    deps.Catalog,
		renderer:   deps.Renderer,
	}

	s.mcp = server.NewMCPServer(
		"pagebuilder-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	// Core
	s.registerPageTools()
	s.registerBlockTools()
	s.registerLayoutTools()
	s.registerLibraryTools()
	s.registerRenderTools()
	s.registerResources()

	// Storefront
	s.registerCategoryTools()
	s.registerGenerateTools()
	if s.grounding != nil {
		s.registerDatabaseTools()
	}
	if s.catalog != nil {
		s.registerCatalogTools()
	}
	s.registerPrompts()

	return s
}

// ServeStdio serves MCP on stdin/stdout until ctx is cancelled or the
// client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("mcp stdio server starting")
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func (s *Server) setActivePage(id string) {
	s.mu.Lock()
	s.activePageID = id
	s.mu.Unlock()
}

// resolvePageID returns the pageId argument or falls back to the active page.
func (s *Server) resolvePageID(args map[string]any) (string, error) {
	if pid, ok := args["pageId"].(string); ok && pid != "" {
		return pid, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activePageID != "" {
		return s.activePageID, nil
	}
	return "", fmt.Errorf("no pageId provided and no active page set (use set_active_page first)")
}
