package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/block"
	"pagebuilder/internal/compose"
	"pagebuilder/internal/domain"
)

func (s *Server) registerBlockTools() {
	// ── list_block_kinds ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_block_kinds",
		mcp.WithDescription("List the block kinds with their form fields and default data"),
	), s.handleListBlockKinds)

	// ── add_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Add a block with the kind's default data. Appends unless index is given."),
		mcp.WithString("kind",
			mcp.Description("Block kind"),
			mcp.Required(),
			mcp.Enum(kindNames()...),
		),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithNumber("index", mcp.Description("Insert position (optional)")),
	), s.handleAddBlock)

	// ── update_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Merge fields into a block's data. Fields not given keep their value."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithObject("data", mcp.Description("Fields to change, e.g. {\"title\": \"Summer sale\"}"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleUpdateBlock)

	// ── remove_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_block",
		mcp.WithDescription("Remove one or more blocks from a page"),
		mcp.WithString("blockIds", mcp.Description("Comma-separated block IDs"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveBlock)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Swap a block with its neighbor above or below. Moving past either end does nothing."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("direction", mcp.Description("up or down"), mcp.Required(), mcp.Enum("up", "down")),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleMoveBlock)

	// ── reorder_block ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_block",
		mcp.WithDescription("Drag a block from one position to another, shifting the blocks in between"),
		mcp.WithNumber("source", mcp.Description("Current position"), mcp.Required()),
		mcp.WithNumber("target", mcp.Description("New position"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleReorderBlock)

	// ── duplicate_block ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_block",
		mcp.WithDescription("Insert a copy of a block right after it"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleDuplicateBlock)
}

func kindNames() []string {
	kinds := block.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

// kindInfo describes one block kind for agents.
type kindInfo struct {
	Kind     block.Kind        `json:"kind"`
	Label    string            `json:"label"`
	Fields   []block.FieldSpec `json:"fields"`
	Defaults map[string]any    `json:"defaults"`
}

// blockSummary is the compact view of a block returned after edits.
type blockSummary struct {
	Index int        `json:"index"`
	ID    string     `json:"id"`
	Kind  block.Kind `json:"kind"`
}

func summarize(p *domain.Page) []blockSummary {
	out := make([]blockSummary, len(p.Blocks))
	for i, b := range p.Blocks {
		out[i] = blockSummary{Index: i, ID: b.ID, Kind: b.Kind}
	}
	return out
}

func (s *Server) handleListBlockKinds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kinds := block.Kinds()
	infos := make([]kindInfo, len(kinds))
	for i, k := range kinds {
		infos[i] = kindInfo{Kind: k, Label: k.Label(), Fields: block.Fields(k), Defaults: block.ToMap(block.DefaultPayload(k))}
	}
	return jsonResult(infos)
}

// edit runs fn on the resolved page and returns the resulting block list.
func (s *Server) edit(ctx context.Context, args map[string]any, fn func([]block.Block) ([]block.Block, error)) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	p, err := s.pages.Edit(ctx, pageID, fn)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarize(p))
}

func findBlock(seq []block.Block, id string) (int, error) {
	i := compose.IndexOf(seq, id)
	if i < 0 {
		return -1, fmt.Errorf("block %s: %w", id, compose.ErrBlockNotFound)
	}
	return i, nil
}

func (s *Server) handleAddBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind := block.Kind(req.GetString("kind", ""))
	if !block.IsKnown(kind) {
		return nil, fmt.Errorf("unknown block kind %q", kind)
	}
	return s.edit(ctx, args, func(seq []block.Block) ([]block.Block, error) {
		b := block.New(compose.NewID(), kind)
		return compose.Insert(seq, getInt(args, "index", len(seq)), b), nil
	})
}

func (s *Server) handleUpdateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	data, err := getObject(args, "data")
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, args, func(seq []block.Block) ([]block.Block, error) {
		return compose.Update(seq, blockID, data)
	})
}

func (s *Server) handleRemoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ids := splitIDs(req.GetString("blockIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("blockIds is required")
	}
	return s.edit(ctx, args, func(seq []block.Block) ([]block.Block, error) {
		for _, id := range ids {
			if _, err := findBlock(seq, id); err != nil {
				return nil, err
			}
			seq = compose.Remove(seq, id)
		}
		return seq, nil
	})
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	dir, err := compose.ParseDirection(req.GetString("direction", ""))
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, args, func(seq []block.Block) ([]block.Block, error) {
		i, err := findBlock(seq, blockID)
		if err != nil {
			return nil, err
		}
		return compose.Move(seq, i, dir), nil
	})
}

func (s *Server) handleReorderBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	source, target := getInt(args, "source", -1), getInt(args, "target", -1)
	return s.edit(ctx, args, func(seq []block.Block) ([]block.Block, error) {
		if source < 0 || source >= len(seq) || target < 0 || target >= len(seq) {
			return nil, fmt.Errorf("positions must be between 0 and %d", len(seq)-1)
		}
		return compose.Reorder(seq, source, target), nil
	})
}

func (s *Server) handleDuplicateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, args, func(seq []block.Block) ([]block.Block, error) {
		i, err := findBlock(seq, blockID)
		if err != nil {
			return nil, err
		}
		return compose.Insert(seq, i+1, compose.CloneBlock(seq[i])), nil
	})
}
