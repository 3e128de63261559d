package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerLibraryTools() {
	s.mcp.AddTool(mcp.NewTool("save_block",
		mcp.WithDescription("Save a copy of a page block to the library for reuse"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("name", mcp.Description("Library name (optional, defaults to the kind label)")),
		mcp.WithString("category", mcp.Description("Library category (optional, defaults to General)")),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleSaveBlock)

	s.mcp.AddTool(mcp.NewTool("list_saved_blocks",
		mcp.WithDescription("List the block library grouped by category"),
	), s.handleListSavedBlocks)

	s.mcp.AddTool(mcp.NewTool("insert_saved_block",
		mcp.WithDescription("Insert a fresh copy of a saved block into a page. Appends unless index is given."),
		mcp.WithString("savedBlockId", mcp.Description("Saved block ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithNumber("index", mcp.Description("Insert position (optional)")),
	), s.handleInsertSavedBlock)

	s.mcp.AddTool(mcp.NewTool("delete_saved_block",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove a block from the library. Pages using copies are unaffected."),
		mcp.WithString("savedBlockId", mcp.Description("Saved block ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteSavedBlock)
}

func (s *Server) handleSaveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	sb, err := s.library.SaveBlockFromPage(pageID, blockID, req.GetString("name", ""), req.GetString("category", ""))
	if err != nil {
		return nil, err
	}
	return jsonResult(sb)
}

func (s *Server) handleListSavedBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := s.library.Grouped()
	if err != nil {
		return nil, fmt.Errorf("list saved blocks: %w", err)
	}
	return jsonResult(groups)
}

func (s *Server) handleInsertSavedBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	savedID, err := requireString(args, "savedBlockId")
	if err != nil {
		return nil, err
	}
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	p, _, err := s.library.InsertIntoPage(ctx, savedID, pageID, getInt(args, "index", -1))
	if err != nil {
		return nil, err
	}
	return jsonResult(summarize(p))
}

func (s *Server) handleDeleteSavedBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "savedBlockId")
	if err != nil {
		return nil, err
	}
	if err := s.library.DeleteSavedBlock(id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Saved block %s deleted", id)), nil
}
