package mcpserver

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/render"
)

func (s *Server) registerRenderTools() {
	s.mcp.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render a page to HTML. Product rows are filled from the current catalog."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleRenderPage)
}

func (s *Server) handleRenderPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	p, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	html, err := s.renderHTML(ctx, p)
	if err != nil {
		return nil, err
	}
	return textResult(html), nil
}

func (s *Server) renderHTML(ctx context.Context, p *domain.Page) (string, error) {
	var buf bytes.Buffer
	if err := render.HTML(s.renderer.RenderPage(p.Blocks)...).Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}
