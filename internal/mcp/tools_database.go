package mcpserver

import (
	"context"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDatabaseTools() {
	s.mcp.AddTool(mcp.NewTool("list_db_connections",
		mcp.WithDescription("List the configured database connections usable for grounding and imports"),
	), s.handleListDBConnections)

	s.mcp.AddTool(mcp.NewTool("test_db_connection",
		mcp.WithDescription("Check that a database connection is reachable"),
		mcp.WithString("connectionId", mcp.Description("Database connection ID"), mcp.Required()),
	), s.handleTestDBConnection)

	s.mcp.AddTool(mcp.NewTool("introspect_database",
		mcp.WithDescription("Get schema information (tables and columns) of a database connection"),
		mcp.WithString("connectionId", mcp.Description("Database connection ID"), mcp.Required()),
	), s.handleIntrospectDatabase)

	s.mcp.AddTool(mcp.NewTool("query_rows",
		mcp.WithDescription("Run a read-only query and return at most limit rows. Write statements are refused."),
		mcp.WithString("connectionId", mcp.Description("Database connection ID"), mcp.Required()),
		mcp.WithString("query", mcp.Description("SQL query, or for MongoDB a find/aggregate command document"), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum rows (default 50, max 500)")),
	), s.handleQueryRows)
}

// connectionSummary hides connection details agents do not need.
type connectionSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Driver string `json:"driver"`
	Open   bool   `json:"open"`
}

func (s *Server) handleListDBConnections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	open := s.grounding.OpenConnectors()
	conns := s.grounding.ListConnections()
	out := make([]connectionSummary, len(conns))
	for i, c := range conns {
		out[i] = connectionSummary{
			ID:     c.ID,
			Name:   c.Name,
			Driver: string(c.Driver),
			Open:   slices.Contains(open, c.ID),
		}
	}
	return jsonResult(out)
}

func (s *Server) handleTestDBConnection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	connID, err := requireString(req.GetArguments(), "connectionId")
	if err != nil {
		return nil, err
	}
	if err := s.grounding.TestConnection(ctx, connID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("connection %s is reachable", connID)), nil
}

func (s *Server) handleIntrospectDatabase(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	connID, err := requireString(req.GetArguments(), "connectionId")
	if err != nil {
		return nil, err
	}
	schema, err := s.grounding.Introspect(ctx, connID)
	if err != nil {
		return nil, err
	}
	return jsonResult(schema)
}

func (s *Server) handleQueryRows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	connID, err := requireString(args, "connectionId")
	if err != nil {
		return nil, err
	}
	query, err := requireString(args, "query")
	if err != nil {
		return nil, err
	}
	rows, err := s.grounding.Rows(ctx, connID, query, getInt(args, "limit", 0))
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", truncate(query, 80), err)
	}
	return jsonResult(rows)
}
