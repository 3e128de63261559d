package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerLayoutTools() {
	s.mcp.AddTool(mcp.NewTool("list_layouts",
		mcp.WithDescription("List the reusable layouts. At most one is marked default."),
	), s.handleListLayouts)

	s.mcp.AddTool(mcp.NewTool("save_layout",
		mcp.WithDescription("Save the blocks of a page as a new layout (copies, the page is unchanged)"),
		mcp.WithString("name", mcp.Description("Layout name"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Short description (optional)")),
		mcp.WithString("pageId", mcp.Description("Page to copy (optional, defaults to active page)")),
		mcp.WithBoolean("makeDefault", mcp.Description("Make this the default layout (default false)")),
	), s.handleSaveLayout)

	s.mcp.AddTool(mcp.NewTool("set_default_layout",
		mcp.WithDescription("Make a layout the default used for new pages"),
		mcp.WithString("layoutId", mcp.Description("Layout ID"), mcp.Required()),
	), s.handleSetDefaultLayout)

	s.mcp.AddTool(mcp.NewTool("delete_layout",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a layout. If it was the default, the oldest remaining layout becomes the default."),
		mcp.WithString("layoutId", mcp.Description("Layout ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteLayout)
}

type layoutSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"isDefault"`
	Blocks      int    `json:"blocks"`
}

func (s *Server) handleListLayouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	layouts, err := s.layouts.ListLayouts()
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	out := make([]layoutSummary, len(layouts))
	for i, l := range layouts {
		out[i] = layoutSummary{ID: l.ID, Name: l.Name, Description: l.Description, IsDefault: l.IsDefault, Blocks: len(l.Blocks)}
	}
	return jsonResult(out)
}

func (s *Server) handleSaveLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	makeDefault, _ := args["makeDefault"].(bool)
	l, err := s.layouts.CreateLayoutFromPage(ctx, pageID, name, req.GetString("description", ""), makeDefault)
	if err != nil {
		return nil, err
	}
	return jsonResult(layoutSummary{ID: l.ID, Name: l.Name, Description: l.Description, IsDefault: l.IsDefault, Blocks: len(l.Blocks)})
}

func (s *Server) handleSetDefaultLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "layoutId")
	if err != nil {
		return nil, err
	}
	if err := s.layouts.SetDefault(ctx, id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Layout %s is now the default", id)), nil
}

func (s *Server) handleDeleteLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "layoutId")
	if err != nil {
		return nil, err
	}
	if err := s.layouts.DeleteLayout(ctx, id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Layout %s deleted", id)), nil
}
