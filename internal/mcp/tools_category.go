package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/curation"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/service"
)

func (s *Server) registerCategoryTools() {
	modes := make([]string, 0, len(curation.Modes()))
	for _, m := range curation.Modes() {
		modes = append(modes, string(m))
	}

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the category menu entries in stored order"),
	), s.handleListCategories)

	s.mcp.AddTool(mcp.NewTool("save_category",
		mcp.WithDescription("Create a category, or update it when id names an existing one. New categories go to the end of the menu."),
		mcp.WithObject("category",
			mcp.Description(`Category detail: {"id"?, "name", "iconKey", "highlights": [{"title","image"}], "subCategories": [{"title","items": []}], "promoText", "promoImage"}`),
			mcp.Required(),
		),
	), s.handleSaveCategory)

	s.mcp.AddTool(mcp.NewTool("delete_category",
		mcp.WithDescription("Delete a category from the menu"),
		mcp.WithString("categoryId", mcp.Description("Category ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteCategory)

	s.mcp.AddTool(mcp.NewTool("reorder_categories",
		mcp.WithDescription("Set the stored order of the category menu"),
		mcp.WithString("categoryIds", mcp.Description("Comma-separated category IDs, every category exactly once"), mcp.Required()),
	), s.handleReorderCategories)

	s.mcp.AddTool(mcp.NewTool("curate_categories",
		mcp.WithDescription("Show the category menu as a shopper sees it: filtered and ordered by mode, with the active category's detail panel. Pass activeId and key to replay navigation."),
		mcp.WithString("mode", mcp.Description("Curation mode (default all)"), mcp.Enum(modes...)),
		mcp.WithString("activeId", mcp.Description("Currently active category (optional)")),
		mcp.WithString("key", mcp.Description("Navigation key to apply (optional)"),
			mcp.Enum(curation.KeyArrowDown, curation.KeyArrowUp, curation.KeyHome, curation.KeyEnd)),
	), s.handleCurateCategories)
}

func (s *Server) handleListCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats, err := s.categories.ListCategories()
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return jsonResult(cats)
}

func (s *Server) handleSaveCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	obj, err := getObject(req.GetArguments(), "category")
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var c domain.CategoryDetail
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("category: %w", err)
	}

	if c.ID != "" {
		existing, err := s.categories.GetCategory(c.ID)
		switch {
		case err == nil:
			c.Position = existing.Position
			if err := s.categories.UpdateCategory(&c); err != nil {
				return nil, err
			}
			return jsonResult(c)
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}
	if err := s.categories.CreateCategory(&c); err != nil {
		return nil, err
	}
	return jsonResult(c)
}

func (s *Server) handleDeleteCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "categoryId")
	if err != nil {
		return nil, err
	}
	if err := s.categories.DeleteCategory(id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Category %s deleted", id)), nil
}

func (s *Server) handleReorderCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := splitIDs(req.GetString("categoryIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("categoryIds is required")
	}
	if err := s.categories.Reorder(ids); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Reordered %d categories", len(ids))), nil
}

func (s *Server) handleCurateCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := curation.ParseMode(req.GetString("mode", ""))
	if err != nil {
		return nil, err
	}
	view, err := s.categories.Curate(service.CurateRequest{
		Mode:     mode,
		ActiveID: req.GetString("activeId", ""),
		Key:      req.GetString("key", ""),
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(view)
}
