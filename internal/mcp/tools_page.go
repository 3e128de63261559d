package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPageTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages, most recently updated first"),
	), s.handleListPages)

	// ── get_page ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_page",
		mcp.WithDescription("Get a page with its blocks, by id or slug"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("slug", mcp.Description("Page slug (alternative to pageId)")),
	), s.handleGetPage)

	// ── create_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a draft page. With fromLayout the blocks of a layout are copied in (the default layout when layoutId is omitted). The new page becomes the active page."),
		mcp.WithString("title", mcp.Description("Page title"), mcp.Required()),
		mcp.WithString("slug", mcp.Description("URL slug (optional, derived from the title)")),
		mcp.WithBoolean("fromLayout", mcp.Description("Start from a layout (default false)")),
		mcp.WithString("layoutId", mcp.Description("Layout to copy (optional, defaults to the default layout)")),
	), s.handleCreatePage)

	// ── rename_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rename_page",
		mcp.WithDescription("Change the title and/or slug of a page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("title", mcp.Description("New title (optional)")),
		mcp.WithString("slug", mcp.Description("New slug (optional)")),
	), s.handleRenamePage)

	// ── publish_page / unpublish_page ──────────────────
	s.mcp.AddTool(mcp.NewTool("publish_page",
		mcp.WithDescription("Publish a page. Fails if any block does not satisfy its schema."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handlePublishPage)
	s.mcp.AddTool(mcp.NewTool("unpublish_page",
		mcp.WithDescription("Return a published page to draft"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleUnpublishPage)

	// ── delete_page (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a page and all its blocks."),
		mcp.WithString("pageId", mcp.Description("Page ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeletePage)

	// ── set_active_page ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_page",
		mcp.WithDescription("Set the active page for subsequent tool calls. Tools that accept pageId will default to this."),
		mcp.WithString("pageId", mcp.Description("ID of the page to make active"), mcp.Required()),
	), s.handleSetActivePage)
}

// pageSummary is the list view of a page.
type pageSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
	Blocks int    `json:"blocks"`
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages, err := s.pages.ListPages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	summaries := make([]pageSummary, len(pages))
	for i, p := range pages {
		summaries[i] = pageSummary{ID: p.ID, Title: p.Title, Slug: p.Slug, Status: string(p.Status), Blocks: len(p.Blocks)}
	}
	return jsonResult(summaries)
}

func (s *Server) handleGetPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if slug := req.GetString("slug", ""); slug != "" {
		p, err := s.pages.GetPageBySlug(slug)
		if err != nil {
			return nil, fmt.Errorf("get page: %w", err)
		}
		return jsonResult(p)
	}
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	p, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return jsonResult(p)
}

func (s *Server) handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	title, err := requireString(args, "title")
	if err != nil {
		return nil, err
	}
	slug := req.GetString("slug", "")
	layoutID := req.GetString("layoutId", "")

	fromLayout, _ := args["fromLayout"].(bool)
	if fromLayout || layoutID != "" {
		p, err := s.pages.CreatePageFromLayout(ctx, title, slug, layoutID)
		if err != nil {
			return nil, err
		}
		s.setActivePage(p.ID)
		return jsonResult(p)
	}
	p, err := s.pages.CreatePage(ctx, title, slug)
	if err != nil {
		return nil, err
	}
	s.setActivePage(p.ID)
	return jsonResult(p)
}

func (s *Server) handleRenamePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	p, err := s.pages.Rename(ctx, pageID, req.GetString("title", ""), req.GetString("slug", ""))
	if err != nil {
		return nil, err
	}
	return jsonResult(p)
}

func (s *Server) handlePublishPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	p, err := s.pages.Publish(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Page %s published at /%s", p.ID, p.Slug)), nil
}

func (s *Server) handleUnpublishPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	p, err := s.pages.Unpublish(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Page %s is now a draft", p.ID)), nil
}

func (s *Server) handleDeletePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req.GetArguments(), "pageId")
	if err != nil {
		return nil, err
	}
	if err := s.pages.DeletePage(ctx, pageID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.activePageID == pageID {
		s.activePageID = ""
	}
	s.mu.Unlock()
	return textResult(fmt.Sprintf("Page %s deleted", pageID)), nil
}

func (s *Server) handleSetActivePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req.GetArguments(), "pageId")
	if err != nil {
		return nil, err
	}
	p, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	s.setActivePage(p.ID)
	return textResult(fmt.Sprintf("Active page set to %q (%s)", p.Title, p.ID)), nil
}
