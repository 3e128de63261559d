package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerCatalogTools() {
	s.mcp.AddTool(mcp.NewTool("list_import_jobs",
		mcp.WithDescription("List the configured catalog import jobs and available source types"),
	), s.handleListImportJobs)

	s.mcp.AddTool(mcp.NewTool("preview_import",
		mcp.WithDescription("Read and map the products of an import job without writing them"),
		mcp.WithString("job", mcp.Description("Job name"), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum products (default 10)")),
	), s.handlePreviewImport)

	s.mcp.AddTool(mcp.NewTool("run_import",
		mcp.WithDescription("🛑 DESTRUCTIVE: Run a catalog import job. Replace-mode jobs overwrite every product."),
		mcp.WithString("job", mcp.Description("Job name"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRunImport)

	s.mcp.AddTool(mcp.NewTool("list_import_runs",
		mcp.WithDescription("List recent runs of an import job, newest first"),
		mcp.WithString("job", mcp.Description("Job name"), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum runs (default 50)")),
	), s.handleListImportRuns)
}

func (s *Server) handleListImportJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{
		"jobs":    s.catalog.ListJobs(),
		"sources": s.catalog.ListSources(),
	})
}

func (s *Server) handlePreviewImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, err := requireString(args, "job")
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.Preview(ctx, name, getInt(args, "limit", 10))
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", name, err)
	}
	return jsonResult(products)
}

func (s *Server) handleRunImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requireString(req.GetArguments(), "job")
	if err != nil {
		return nil, err
	}
	res, err := s.catalog.RunJob(ctx, name)
	if err != nil {
		return nil, err
	}
	return jsonResult(res)
}

func (s *Server) handleListImportRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, err := requireString(args, "job")
	if err != nil {
		return nil, err
	}
	runs, err := s.catalog.ListRuns(name, getInt(args, "limit", 50))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return jsonResult(runs)
}
